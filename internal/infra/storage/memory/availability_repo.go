package memory

import (
	"context"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	availabilityRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/availability"
)

// AvailabilityRepository реестр доступности слотов поверх хранилища в памяти
// Отсутствие ключа эквивалентно available = false
type AvailabilityRepository struct {
	store *Store
}

// NewAvailabilityRepository создает репозиторий доступности
func NewAvailabilityRepository(store *Store) *AvailabilityRepository {
	return &AvailabilityRepository{store: store}
}

// Set идемпотентно выставляет флаг доступности слота
func (r *AvailabilityRepository) Set(ctx context.Context, serviceID, startTime int64, available bool) error {
	unlock := r.store.acquireWrite(ctx)
	defer unlock()

	r.store.slots[domain.Slot{ServiceID: serviceID, StartTime: startTime}] = available
	return nil
}

// Get возвращает флаг доступности слота; для незаданного ключа false
func (r *AvailabilityRepository) Get(ctx context.Context, serviceID, startTime int64) (bool, error) {
	unlock := r.store.acquireRead(ctx)
	defer unlock()

	return r.store.slots[domain.Slot{ServiceID: serviceID, StartTime: startTime}], nil
}

// Claim атомарно захватывает слот: compare-and-swap available true -> false
// Ровно один из конкурирующих вызовов получает nil
func (r *AvailabilityRepository) Claim(ctx context.Context, serviceID, startTime int64) error {
	unlock := r.store.acquireWrite(ctx)
	defer unlock()

	key := domain.Slot{ServiceID: serviceID, StartTime: startTime}
	if !r.store.slots[key] {
		return availabilityRepo.ErrSlotNotAvailable
	}

	r.store.slots[key] = false
	return nil
}

// Release возвращает слот в доступное состояние
func (r *AvailabilityRepository) Release(ctx context.Context, serviceID, startTime int64) error {
	return r.Set(ctx, serviceID, startTime, true)
}
