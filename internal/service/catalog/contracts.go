package catalog

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
)

// ServiceRepository интерфейс репозитория услуг
type ServiceRepository interface {
	Create(ctx context.Context, svc *domain.Service) (*domain.Service, error)
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
	Update(ctx context.Context, id int64, upd domain.ServiceUpdate) error
	UpdateStatus(ctx context.Context, id int64, status domain.ServiceStatus) error
	ListByProvider(ctx context.Context, providerID int64, page domain.Page) (int64, []*domain.Service, error)
	ListByCategory(ctx context.Context, categoryID int64, page domain.Page) (int64, []*domain.Service, error)
}

// CategoryServiceClient интерфейс клиента для CategoryService
// Используется только в строгом режиме validate_categories
type CategoryServiceClient interface {
	IsCategoryActive(ctx context.Context, categoryID int64) (bool, error)
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
