package expirer

import (
	"context"
	"errors"
	"time"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/booking"
)

const batchLimit = 100

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	ListStalePending(ctx context.Context, cutoff time.Time, limit int64) ([]*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error
}

// AvailabilityRepository интерфейс реестра слотов
type AvailabilityRepository interface {
	Release(ctx context.Context, serviceID, startTime int64) error
}

// TxManager интерфейс менеджера транзакций
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// PaymentServiceClient интерфейс клиента PaymentService
type PaymentServiceClient interface {
	Refund(ctx context.Context, paymentReference string) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Worker фоновый процесс отмены протухших Pending бронирований
//
// Бронирование считается протухшим, если исполнитель не подтвердил его
// за ttl с момента создания. Отмена выполняется от имени платформы тем
// же CAS переходом Pending -> Cancelled, что и ручная отмена: гонка с
// подтверждением исполнителя безопасна, проигравший просто пропускает
// запись
type Worker struct {
	bookingRepo      BookingRepository
	availabilityRepo AvailabilityRepository
	txManager        TxManager
	payment          PaymentServiceClient
	logger           Logger

	ttl      time.Duration
	interval time.Duration
	now      func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// New создает worker; payment может быть nil, если интеграция отключена
func New(
	bookingRepo BookingRepository,
	availabilityRepo AvailabilityRepository,
	txManager TxManager,
	payment PaymentServiceClient,
	logger Logger,
	ttl time.Duration,
	interval time.Duration,
) *Worker {
	return &Worker{
		bookingRepo:      bookingRepo,
		availabilityRepo: availabilityRepo,
		txManager:        txManager,
		payment:          payment,
		logger:           logger,
		ttl:              ttl,
		interval:         interval,
		now:              time.Now,
		stopCh:           make(chan struct{}),
		doneCh:           make(chan struct{}),
	}
}

// Start запускает фоновый цикл worker
func (w *Worker) Start(ctx context.Context) {
	go w.loop(ctx)
}

// Stop останавливает worker и дожидается завершения текущего прохода
func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

func (w *Worker) loop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("expirer: started, ttl=%s, interval=%s", w.ttl, w.interval)

	for {
		select {
		case <-w.stopCh:
			w.logger.Info("expirer: stopped")
			return
		case <-ctx.Done():
			w.logger.Info("expirer: context cancelled")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce выполняет один проход отмены протухших бронирований
func (w *Worker) RunOnce(ctx context.Context) {
	cutoff := w.now().Add(-w.ttl)

	stale, err := w.bookingRepo.ListStalePending(ctx, cutoff, batchLimit)
	if err != nil {
		w.logger.Error("expirer: failed to list stale pending bookings: %v", err)
		return
	}

	for _, b := range stale {
		w.expire(ctx, b)
	}
}

func (w *Worker) expire(ctx context.Context, b *domain.Booking) {
	err := w.txManager.Do(ctx, func(ctx context.Context) error {
		if err := w.bookingRepo.UpdateStatus(ctx, b.ID, domain.StatusPending, domain.StatusCancelled); err != nil {
			return err
		}
		return w.availabilityRepo.Release(ctx, b.ServiceID, b.StartTime)
	})
	if err != nil {
		// Проигрыш CAS: бронирование успели подтвердить или отменить
		if errors.Is(err, bookingRepo.ErrStatusConflict) || errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return
		}
		w.logger.Error("expirer: failed to cancel booking id=%d: %v", b.ID, err)
		return
	}

	w.logger.Info("expirer: cancelled stale booking id=%d (created at %s)", b.ID, b.CreatedAt.Format(time.RFC3339))

	if w.payment != nil && b.PaymentReference != nil {
		if err := w.payment.Refund(ctx, *b.PaymentReference); err != nil {
			w.logger.Error("expirer: refund failed for booking id=%d: %v", b.ID, err)
		}
	}
}
