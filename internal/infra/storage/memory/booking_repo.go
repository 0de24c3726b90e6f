package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/booking"
)

// BookingRepository репозиторий бронирований поверх хранилища в памяти
type BookingRepository struct {
	store *Store
}

// NewBookingRepository создает репозиторий бронирований
func NewBookingRepository(store *Store) *BookingRepository {
	return &BookingRepository{store: store}
}

// Create создает бронирование и добавляет его в индексы клиента,
// провайдера и услуги одним атомарным блоком
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	unlock := r.store.acquireWrite(ctx)
	defer unlock()

	now := r.store.now()

	b.ID = r.store.allocator.Next()
	b.CreatedAt = now
	b.UpdatedAt = now

	r.store.bookings[b.ID] = copyBooking(b)

	r.store.clientBookings[b.ClientID] = append(r.store.clientBookings[b.ClientID], b.ID)
	r.store.providerBookings[b.ProviderID] = append(r.store.providerBookings[b.ProviderID], b.ID)
	r.store.serviceBookings[b.ServiceID] = append(r.store.serviceBookings[b.ServiceID], b.ID)

	return copyBooking(b), nil
}

// GetByID получает бронирование по ID
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	unlock := r.store.acquireRead(ctx)
	defer unlock()

	b, ok := r.store.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}

	return copyBooking(b), nil
}

// UpdateStatus переводит бронирование из статуса from в статус to
// Compare-and-swap: при конкурирующих переходах выигрывает ровно один
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus) error {
	unlock := r.store.acquireWrite(ctx)
	defer unlock()

	b, ok := r.store.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}

	if b.Status != from {
		return bookingRepo.ErrStatusConflict
	}

	b.Status = to
	b.UpdatedAt = r.store.now()

	return nil
}

// SetPaymentReference записывает ссылку на эскроу после его создания
func (r *BookingRepository) SetPaymentReference(ctx context.Context, id int64, reference string) error {
	unlock := r.store.acquireWrite(ctx)
	defer unlock()

	b, ok := r.store.bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}

	ref := reference
	b.PaymentReference = &ref
	b.UpdatedAt = r.store.now()

	return nil
}

// ListByClient получает страницу бронирований клиента в порядке создания
func (r *BookingRepository) ListByClient(ctx context.Context, clientID int64, page domain.Page) (int64, []*domain.Booking, error) {
	unlock := r.store.acquireRead(ctx)
	defer unlock()

	return r.window(r.store.clientBookings[clientID], page)
}

// ListByProvider получает страницу бронирований провайдера в порядке создания
func (r *BookingRepository) ListByProvider(ctx context.Context, providerID int64, page domain.Page) (int64, []*domain.Booking, error) {
	unlock := r.store.acquireRead(ctx)
	defer unlock()

	return r.window(r.store.providerBookings[providerID], page)
}

// ListByService получает страницу бронирований услуги в порядке создания
func (r *BookingRepository) ListByService(ctx context.Context, serviceID int64, page domain.Page) (int64, []*domain.Booking, error) {
	unlock := r.store.acquireRead(ctx)
	defer unlock()

	return r.window(r.store.serviceBookings[serviceID], page)
}

// ListStalePending получает Pending-бронирования, созданные до cutoff
func (r *BookingRepository) ListStalePending(ctx context.Context, cutoff time.Time, limit int64) ([]*domain.Booking, error) {
	unlock := r.store.acquireRead(ctx)
	defer unlock()

	ids := make([]int64, 0)
	for id, b := range r.store.bookings {
		if b.Status == domain.StatusPending && b.CreatedAt.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if int64(len(ids)) > limit {
		ids = ids[:limit]
	}

	stale := make([]*domain.Booking, 0, len(ids))
	for _, id := range ids {
		stale = append(stale, copyBooking(r.store.bookings[id]))
	}

	return stale, nil
}

func (r *BookingRepository) window(ids []int64, page domain.Page) (int64, []*domain.Booking, error) {
	total, window := page.Window(ids)

	bookings := make([]*domain.Booking, 0, len(window))
	for _, id := range window {
		if b, ok := r.store.bookings[id]; ok {
			bookings = append(bookings, copyBooking(b))
		}
	}

	return total, bookings, nil
}
