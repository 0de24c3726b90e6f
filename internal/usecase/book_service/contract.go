package book_service

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	"github.com/m04kA/SMC-MarketplaceService/internal/integrations/analyticsservice"
)

// ServiceRepository интерфейс репозитория услуг
type ServiceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

// AvailabilityRepository интерфейс реестра слотов
type AvailabilityRepository interface {
	Claim(ctx context.Context, serviceID, startTime int64) error
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	SetPaymentReference(ctx context.Context, id int64, reference string) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// PaymentServiceClient интерфейс клиента PaymentService
type PaymentServiceClient interface {
	EstablishEscrow(ctx context.Context, bookingID int64, priceMin, priceMax uint64) (string, error)
}

// AnalyticsServiceClient интерфейс клиента AnalyticsService
type AnalyticsServiceClient interface {
	RecordTransactionAsync(event analyticsservice.Transaction)
}

// Metrics интерфейс счётчиков создания бронирований
type Metrics interface {
	BookingCreated(result string)
	SlotConflict(reason string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
