package bookings

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	"github.com/m04kA/SMC-MarketplaceService/internal/integrations/analyticsservice"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error
	ListByClient(ctx context.Context, clientID int64, page domain.Page) (int64, []*domain.Booking, error)
	ListByProvider(ctx context.Context, providerID int64, page domain.Page) (int64, []*domain.Booking, error)
	ListByService(ctx context.Context, serviceID int64, page domain.Page) (int64, []*domain.Booking, error)
}

// ServiceRepository интерфейс репозитория услуг
// Нужен для проверки владельца при листинге бронирований услуги
type ServiceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

// AvailabilityRepository интерфейс реестра слотов
type AvailabilityRepository interface {
	Claim(ctx context.Context, serviceID, startTime int64) error
	Release(ctx context.Context, serviceID, startTime int64) error
}

// TxManager интерфейс менеджера транзакций
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// PaymentServiceClient интерфейс клиента PaymentService
type PaymentServiceClient interface {
	ReleaseFunds(ctx context.Context, paymentReference string) error
	Refund(ctx context.Context, paymentReference string) error
}

// AnalyticsServiceClient интерфейс клиента AnalyticsService
type AnalyticsServiceClient interface {
	RecordTransactionAsync(event analyticsservice.Transaction)
}

// AccessPolicy интерфейс проверок доступа к бронированиям
type AccessPolicy interface {
	IsAdmin(accountID int64) bool
	CanConfirmBooking(b *domain.Booking, caller int64) error
	CanCompleteBooking(b *domain.Booking, caller int64) error
	CanCancelBooking(b *domain.Booking, caller int64) error
	CanViewBooking(b *domain.Booking, caller int64) error
}

// Metrics интерфейс счётчиков жизненного цикла бронирований
type Metrics interface {
	StatusTransition(to string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
