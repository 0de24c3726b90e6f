package availability

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
)

// ServiceRepository интерфейс репозитория услуг
type ServiceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

// AvailabilityRepository интерфейс реестра доступности слотов
type AvailabilityRepository interface {
	Set(ctx context.Context, serviceID, startTime int64, available bool) error
	Get(ctx context.Context, serviceID, startTime int64) (bool, error)
}

// AccessPolicy интерфейс проверок доступа
type AccessPolicy interface {
	CanManageService(svc *domain.Service, caller int64) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
