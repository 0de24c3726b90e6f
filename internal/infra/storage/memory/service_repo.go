package memory

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	serviceRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/service"
)

// ServiceRepository репозиторий услуг поверх хранилища в памяти
// Возвращает те же sentinel-ошибки, что и PostgreSQL-репозиторий:
// сервисный слой не зависит от движка хранения
type ServiceRepository struct {
	store *Store
}

// NewServiceRepository создает репозиторий услуг
func NewServiceRepository(store *Store) *ServiceRepository {
	return &ServiceRepository{store: store}
}

// Create создает услугу и добавляет её в индексы категории и провайдера
// одним атомарным блоком
func (r *ServiceRepository) Create(ctx context.Context, svc *domain.Service) (*domain.Service, error) {
	unlock := r.store.acquireWrite(ctx)
	defer unlock()

	now := r.store.now()

	svc.ID = r.store.allocator.Next()
	svc.CreatedAt = now
	svc.UpdatedAt = now

	r.store.services[svc.ID] = copyService(svc)

	// Индекс категории фиксируется на момент создания и не переносится
	// при последующей смене категории
	r.store.categoryServices[svc.CategoryID] = append(r.store.categoryServices[svc.CategoryID], svc.ID)
	r.store.providerServices[svc.ProviderID] = append(r.store.providerServices[svc.ProviderID], svc.ID)

	return copyService(svc), nil
}

// GetByID получает услугу по ID
func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	unlock := r.store.acquireRead(ctx)
	defer unlock()

	svc, ok := r.store.services[id]
	if !ok {
		return nil, serviceRepo.ErrServiceNotFound
	}

	return copyService(svc), nil
}

// Update перезаписывает изменяемые поля услуги и обновляет updated_at
func (r *ServiceRepository) Update(ctx context.Context, id int64, upd domain.ServiceUpdate) error {
	unlock := r.store.acquireWrite(ctx)
	defer unlock()

	svc, ok := r.store.services[id]
	if !ok {
		return serviceRepo.ErrServiceNotFound
	}

	svc.Title = upd.Title
	svc.Description = upd.Description
	svc.CategoryID = upd.CategoryID
	svc.PriceMin = upd.PriceMin
	svc.PriceMax = upd.PriceMax
	svc.DurationMinutes = upd.DurationMinutes
	svc.UpdatedAt = r.store.now()

	return nil
}

// UpdateStatus обновляет статус услуги
func (r *ServiceRepository) UpdateStatus(ctx context.Context, id int64, status domain.ServiceStatus) error {
	unlock := r.store.acquireWrite(ctx)
	defer unlock()

	svc, ok := r.store.services[id]
	if !ok {
		return serviceRepo.ErrServiceNotFound
	}

	svc.Status = status
	svc.UpdatedAt = r.store.now()

	return nil
}

// ListByProvider получает страницу услуг провайдера в порядке создания
func (r *ServiceRepository) ListByProvider(ctx context.Context, providerID int64, page domain.Page) (int64, []*domain.Service, error) {
	unlock := r.store.acquireRead(ctx)
	defer unlock()

	return r.window(r.store.providerServices[providerID], page)
}

// ListByCategory получает страницу услуг категории в порядке создания
func (r *ServiceRepository) ListByCategory(ctx context.Context, categoryID int64, page domain.Page) (int64, []*domain.Service, error) {
	unlock := r.store.acquireRead(ctx)
	defer unlock()

	return r.window(r.store.categoryServices[categoryID], page)
}

func (r *ServiceRepository) window(ids []int64, page domain.Page) (int64, []*domain.Service, error) {
	total, window := page.Window(ids)

	services := make([]*domain.Service, 0, len(window))
	for _, id := range window {
		if svc, ok := r.store.services[id]; ok {
			services = append(services, copyService(svc))
		}
	}

	return total, services, nil
}
