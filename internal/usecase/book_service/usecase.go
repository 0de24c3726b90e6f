package book_service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	availabilityRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/availability"
	serviceRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/service"
	"github.com/m04kA/SMC-MarketplaceService/internal/integrations/analyticsservice"
	"github.com/m04kA/SMC-MarketplaceService/pkg/simpletxmanager"
	"github.com/m04kA/SMC-MarketplaceService/pkg/txmanager"
)

// UseCase use case для бронирования услуги
//
// Захват слота и запись бронирования выполняются в одной сериализуемой
// транзакции: из конкурирующих запросов на один слот побеждает ровно
// один, остальные получают ErrSlotNotAvailable
type UseCase struct {
	serviceRepo      ServiceRepository
	availabilityRepo AvailabilityRepository
	bookingRepo      BookingRepository
	txManager        TransactionManager
	payment          PaymentServiceClient
	analytics        AnalyticsServiceClient
	metrics          Metrics
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
// payment, analytics и metrics могут быть nil, если компонент отключен
func NewUseCase(
	serviceRepo ServiceRepository,
	availabilityRepo AvailabilityRepository,
	bookingRepo BookingRepository,
	txManager TransactionManager,
	payment PaymentServiceClient,
	analytics AnalyticsServiceClient,
	metrics Metrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		serviceRepo:      serviceRepo,
		availabilityRepo: availabilityRepo,
		bookingRepo:      bookingRepo,
		txManager:        txManager,
		payment:          payment,
		analytics:        analytics,
		metrics:          metrics,
		logger:           logger,
	}
}

// Execute выполняет use case бронирования услуги
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("BookService: client=%d, service=%d, start_time=%d",
		req.ClientID, req.ServiceID, req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("BookService: validation failed: %v", err)
		return nil, err
	}

	var result *domain.Booking

	// 2. Захват слота и создание бронирования в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2.1. Получаем услугу
		svc, err := uc.serviceRepo.GetByID(txCtx, req.ServiceID)
		if err != nil {
			if errors.Is(err, serviceRepo.ErrServiceNotFound) {
				uc.logger.Warn("BookService: service id=%d not found", req.ServiceID)
				return ErrServiceNotFound
			}
			uc.logger.Error("BookService: failed to get service id=%d: %v", req.ServiceID, err)
			return fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
		}

		// 2.2. Услуга должна принимать бронирования
		if !svc.IsBookable() {
			uc.logger.Warn("BookService: service id=%d is not active (status=%s)", svc.ID, svc.Status)
			return ErrServiceNotActive
		}

		// 2.3. Захватываем слот: available true -> false, ровно один победитель
		if err := uc.availabilityRepo.Claim(txCtx, req.ServiceID, req.StartTime); err != nil {
			if errors.Is(err, availabilityRepo.ErrSlotNotAvailable) {
				uc.logger.Warn("BookService: slot (%d,%d) is not available", req.ServiceID, req.StartTime)
				return ErrSlotNotAvailable
			}
			uc.logger.Error("BookService: failed to claim slot (%d,%d): %v", req.ServiceID, req.StartTime, err)
			return fmt.Errorf("%w: failed to claim slot: %v", ErrInternal, err)
		}

		// 2.4. Создаем бронирование со снимком данных услуги
		booking := &domain.Booking{
			ServiceID:  svc.ID,
			ClientID:   req.ClientID,
			ProviderID: svc.ProviderID,
			StartTime:  req.StartTime,
			EndTime:    req.StartTime + int64(svc.DurationMinutes),
			PriceMin:   svc.PriceMin,
			PriceMax:   svc.PriceMax,
			Status:     domain.StatusPending,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			uc.logger.Error("BookService: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		// Проигрыш сериализации означает конкурирующее бронирование того же слота
		if errors.Is(err, txmanager.ErrSerializationFailure) ||
			errors.Is(err, simpletxmanager.ErrSerializationFailure) {
			uc.logger.Warn("BookService: serialization conflict for slot (%d,%d)", req.ServiceID, req.StartTime)
			uc.slotConflict("serialization")
			return nil, ErrSlotNotAvailable
		}
		if errors.Is(err, ErrSlotNotAvailable) {
			uc.slotConflict("taken")
		}
		return nil, err
	}

	uc.logger.Info("BookService: booking id=%d created for slot (%d,%d)",
		result.ID, req.ServiceID, req.StartTime)

	if uc.metrics != nil {
		uc.metrics.BookingCreated("success")
	}

	// 3. Создаем эскроу после фиксации транзакции, не блокируя бронирование:
	// при сбое PaymentReference остается пустым, бронирование живет дальше
	uc.establishEscrow(ctx, result)

	// 4. Событие аналитики
	if uc.analytics != nil {
		uc.analytics.RecordTransactionAsync(analyticsservice.Transaction{
			MetricType: analyticsservice.MetricBookingCreated,
			AccountID:  result.ClientID,
			Amount:     result.PriceMax,
			Metadata: map[string]string{
				"bookingId":  strconv.FormatInt(result.ID, 10),
				"serviceId":  strconv.FormatInt(result.ServiceID, 10),
				"providerId": strconv.FormatInt(result.ProviderID, 10),
			},
		})
	}

	return toResponse(result), nil
}

// establishEscrow создает эскроу и сохраняет ссылку в бронировании
func (uc *UseCase) establishEscrow(ctx context.Context, b *domain.Booking) {
	if uc.payment == nil {
		return
	}

	reference, err := uc.payment.EstablishEscrow(ctx, b.ID, b.PriceMin, b.PriceMax)
	if err != nil {
		uc.logger.Warn("BookService: failed to establish escrow for booking id=%d: %v", b.ID, err)
		return
	}

	if err := uc.bookingRepo.SetPaymentReference(ctx, b.ID, reference); err != nil {
		uc.logger.Error("BookService: failed to save payment reference for booking id=%d: %v", b.ID, err)
		return
	}

	b.PaymentReference = &reference
}

func (uc *UseCase) slotConflict(reason string) {
	if uc.metrics != nil {
		uc.metrics.SlotConflict(reason)
	}
}
