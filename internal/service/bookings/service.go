package bookings

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/booking"
	serviceRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/service"
	"github.com/m04kA/SMC-MarketplaceService/internal/integrations/analyticsservice"
	"github.com/m04kA/SMC-MarketplaceService/internal/service/bookings/models"
)

// Service сервис жизненного цикла бронирований
//
// Все смены статуса выполняются через CAS в репозитории: переход
// засчитывается ровно одному вызывающему, проигравший получает
// ErrInvalidStateTransition. Платёжный сервис уведомляется только
// победителем CAS, при сбое уведомления переход компенсируется
type Service struct {
	bookingRepo      BookingRepository
	serviceRepo      ServiceRepository
	availabilityRepo AvailabilityRepository
	txManager        TxManager
	payment          PaymentServiceClient
	analytics        AnalyticsServiceClient
	policy           AccessPolicy
	metrics          Metrics
	logger           Logger
}

// NewService создает новый экземпляр сервиса бронирований
// payment и analytics могут быть nil, если интеграция отключена
func NewService(
	bookingRepo BookingRepository,
	serviceRepo ServiceRepository,
	availabilityRepo AvailabilityRepository,
	txManager TxManager,
	payment PaymentServiceClient,
	analytics AnalyticsServiceClient,
	policy AccessPolicy,
	metrics Metrics,
	logger Logger,
) *Service {
	return &Service{
		bookingRepo:      bookingRepo,
		serviceRepo:      serviceRepo,
		availabilityRepo: availabilityRepo,
		txManager:        txManager,
		payment:          payment,
		analytics:        analytics,
		policy:           policy,
		metrics:          metrics,
		logger:           logger,
	}
}

// GetBooking возвращает бронирование по ID
// Доступно клиенту, исполнителю и оператору
func (s *Service) GetBooking(ctx context.Context, callerID, bookingID int64) (*models.BookingResponse, error) {
	b, err := s.getBooking(ctx, "GetBooking", bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.CanViewBooking(b, callerID); err != nil {
		s.logger.Warn("GetBooking: access denied for caller=%d to booking=%d", callerID, bookingID)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(b), nil
}

// ConfirmBooking переводит бронирование Pending -> Confirmed
// Доступно только исполнителю услуги
func (s *Service) ConfirmBooking(ctx context.Context, callerID, bookingID int64) (*models.BookingResponse, error) {
	s.logger.Info("ConfirmBooking: booking=%d, caller=%d", bookingID, callerID)

	b, err := s.getBooking(ctx, "ConfirmBooking", bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.CanConfirmBooking(b, callerID); err != nil {
		s.logger.Warn("ConfirmBooking: access denied for caller=%d to booking=%d", callerID, bookingID)
		return nil, ErrAccessDenied
	}

	if err := s.transition(ctx, "ConfirmBooking", bookingID, domain.StatusPending, domain.StatusConfirmed); err != nil {
		return nil, err
	}

	s.recordEvent(analyticsservice.MetricBookingConfirmed, b)

	return s.reload(ctx, "ConfirmBooking", bookingID)
}

// CompleteBooking переводит бронирование Confirmed -> Completed
// и поручает платёжному сервису выплату исполнителю
//
// Сначала выполняется CAS перехода, затем уведомление: победитель CAS
// является единственным уведомителем, поэтому ReleaseFunds вызывается
// не более одного раза на успешный переход. При сбое платёжного сервиса
// переход откатывается и возвращается ErrPaymentServiceUnavailable
func (s *Service) CompleteBooking(ctx context.Context, callerID, bookingID int64) (*models.BookingResponse, error) {
	s.logger.Info("CompleteBooking: booking=%d, caller=%d", bookingID, callerID)

	b, err := s.getBooking(ctx, "CompleteBooking", bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.CanCompleteBooking(b, callerID); err != nil {
		s.logger.Warn("CompleteBooking: access denied for caller=%d to booking=%d", callerID, bookingID)
		return nil, ErrAccessDenied
	}

	if err := s.transition(ctx, "CompleteBooking", bookingID, domain.StatusConfirmed, domain.StatusCompleted); err != nil {
		return nil, err
	}

	if s.payment != nil && b.PaymentReference != nil {
		if err := s.payment.ReleaseFunds(ctx, *b.PaymentReference); err != nil {
			s.logger.Error("CompleteBooking: release funds failed for booking=%d: %v", bookingID, err)

			// компенсация: возвращаем бронирование в Confirmed
			if casErr := s.bookingRepo.UpdateStatus(ctx, bookingID, domain.StatusCompleted, domain.StatusConfirmed); casErr != nil {
				s.logger.Error("CompleteBooking: compensation failed for booking=%d: %v", bookingID, casErr)
			}

			return nil, ErrPaymentServiceUnavailable
		}
	}

	s.recordEvent(analyticsservice.MetricBookingCompleted, b)

	return s.reload(ctx, "CompleteBooking", bookingID)
}

// CancelBooking отменяет бронирование из Pending или Confirmed
// и возвращает слот в реестр доступности
//
// Смена статуса и возврат слота выполняются в одной транзакции.
// Возврат средств поручается платёжному сервису после фиксации;
// при сбое переход и слот компенсируются обратно
func (s *Service) CancelBooking(ctx context.Context, callerID, bookingID int64) (*models.BookingResponse, error) {
	s.logger.Info("CancelBooking: booking=%d, caller=%d", bookingID, callerID)

	b, err := s.getBooking(ctx, "CancelBooking", bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.policy.CanCancelBooking(b, callerID); err != nil {
		s.logger.Warn("CancelBooking: access denied for caller=%d to booking=%d", callerID, bookingID)
		return nil, ErrAccessDenied
	}

	if !b.CanBeCancelled() {
		s.logger.Warn("CancelBooking: booking=%d in terminal status %s", bookingID, b.Status)
		return nil, ErrInvalidStateTransition
	}

	// Статус перечитывается внутри транзакции: между первым чтением и
	// транзакцией бронирование может легально сменить статус (Pending ->
	// Confirmed), и отмена должна исходить из актуального состояния
	var prior domain.BookingStatus

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		live, err := s.bookingRepo.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if !live.CanBeCancelled() {
			return ErrInvalidStateTransition
		}
		prior = live.Status

		if err := s.bookingRepo.UpdateStatus(ctx, bookingID, prior, domain.StatusCancelled); err != nil {
			return err
		}
		return s.availabilityRepo.Release(ctx, b.ServiceID, b.StartTime)
	})
	if err != nil {
		if errors.Is(err, ErrInvalidStateTransition) || errors.Is(err, bookingRepo.ErrStatusConflict) {
			s.logger.Warn("CancelBooking: concurrent transition lost for booking=%d", bookingID)
			return nil, ErrInvalidStateTransition
		}
		s.logger.Error("CancelBooking: transaction failed for booking=%d: %v", bookingID, err)
		return nil, fmt.Errorf("%w: CancelBooking - transaction failed: %v", ErrInternal, err)
	}

	if s.metrics != nil {
		s.metrics.StatusTransition(string(domain.StatusCancelled))
	}

	if s.payment != nil && b.PaymentReference != nil {
		if err := s.payment.Refund(ctx, *b.PaymentReference); err != nil {
			s.logger.Error("CancelBooking: refund failed for booking=%d: %v", bookingID, err)

			// компенсация: возвращаем статус и повторно занимаем слот
			compErr := s.txManager.Do(ctx, func(ctx context.Context) error {
				if err := s.availabilityRepo.Claim(ctx, b.ServiceID, b.StartTime); err != nil {
					return err
				}
				return s.bookingRepo.UpdateStatus(ctx, bookingID, domain.StatusCancelled, prior)
			})
			if compErr != nil {
				s.logger.Error("CancelBooking: compensation failed for booking=%d: %v", bookingID, compErr)
			}

			return nil, ErrPaymentServiceUnavailable
		}
	}

	s.recordEvent(analyticsservice.MetricBookingCancelled, b)

	return s.reload(ctx, "CancelBooking", bookingID)
}

// GetClientBookings возвращает страницу бронирований клиента
// Доступно самому клиенту и оператору
func (s *Service) GetClientBookings(ctx context.Context, callerID, clientID int64, page domain.Page) (*models.BookingListResponse, error) {
	if callerID != clientID && !s.policy.IsAdmin(callerID) {
		s.logger.Warn("GetClientBookings: access denied for caller=%d to client=%d", callerID, clientID)
		return nil, ErrAccessDenied
	}

	total, items, err := s.bookingRepo.ListByClient(ctx, clientID, page)
	if err != nil {
		s.logger.Error("GetClientBookings: repository error for client=%d: %v", clientID, err)
		return nil, fmt.Errorf("%w: GetClientBookings - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBookingList(total, items), nil
}

// GetProviderBookings возвращает страницу бронирований исполнителя
// Доступно самому исполнителю и оператору
func (s *Service) GetProviderBookings(ctx context.Context, callerID, providerID int64, page domain.Page) (*models.BookingListResponse, error) {
	if callerID != providerID && !s.policy.IsAdmin(callerID) {
		s.logger.Warn("GetProviderBookings: access denied for caller=%d to provider=%d", callerID, providerID)
		return nil, ErrAccessDenied
	}

	total, items, err := s.bookingRepo.ListByProvider(ctx, providerID, page)
	if err != nil {
		s.logger.Error("GetProviderBookings: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: GetProviderBookings - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBookingList(total, items), nil
}

// GetServiceBookings возвращает страницу бронирований услуги
// Доступно владельцу услуги и оператору
func (s *Service) GetServiceBookings(ctx context.Context, callerID, serviceID int64, page domain.Page) (*models.BookingListResponse, error) {
	svc, err := s.serviceRepo.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			s.logger.Warn("GetServiceBookings: service id=%d not found", serviceID)
			return nil, ErrServiceNotFound
		}
		s.logger.Error("GetServiceBookings: repository error for service=%d: %v", serviceID, err)
		return nil, fmt.Errorf("%w: GetServiceBookings - repository error: %v", ErrInternal, err)
	}

	if callerID != svc.ProviderID && !s.policy.IsAdmin(callerID) {
		s.logger.Warn("GetServiceBookings: access denied for caller=%d to service=%d", callerID, serviceID)
		return nil, ErrAccessDenied
	}

	total, items, err := s.bookingRepo.ListByService(ctx, serviceID, page)
	if err != nil {
		s.logger.Error("GetServiceBookings: repository error for service=%d: %v", serviceID, err)
		return nil, fmt.Errorf("%w: GetServiceBookings - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainBookingList(total, items), nil
}

// getBooking читает бронирование, транслируя ошибки репозитория
func (s *Service) getBooking(ctx context.Context, op string, bookingID int64) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, bookingID)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, bookingID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return b, nil
}

// transition выполняет CAS смену статуса; проигрыш CAS означает,
// что конкурирующий вызов успел раньше
func (s *Service) transition(ctx context.Context, op string, bookingID int64, from, to domain.BookingStatus) error {
	if err := s.bookingRepo.UpdateStatus(ctx, bookingID, from, to); err != nil {
		if errors.Is(err, bookingRepo.ErrStatusConflict) {
			s.logger.Warn("%s: concurrent transition lost for booking=%d (%s -> %s)", op, bookingID, from, to)
			return ErrInvalidStateTransition
		}
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking=%d: %v", op, bookingID, err)
		return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}

	if s.metrics != nil {
		s.metrics.StatusTransition(string(to))
	}

	return nil
}

// reload перечитывает бронирование после смены статуса
func (s *Service) reload(ctx context.Context, op string, bookingID int64) (*models.BookingResponse, error) {
	b, err := s.getBooking(ctx, op, bookingID)
	if err != nil {
		return nil, err
	}
	return models.FromDomainBooking(b), nil
}

// recordEvent отправляет событие в аналитику, не блокируя запрос
func (s *Service) recordEvent(metric string, b *domain.Booking) {
	if s.analytics == nil {
		return
	}

	s.analytics.RecordTransactionAsync(analyticsservice.Transaction{
		MetricType: metric,
		AccountID:  b.ClientID,
		Amount:     b.PriceMax,
		Metadata: map[string]string{
			"bookingId":  strconv.FormatInt(b.ID, 10),
			"serviceId":  strconv.FormatInt(b.ServiceID, 10),
			"providerId": strconv.FormatInt(b.ProviderID, 10),
		},
	})
}
