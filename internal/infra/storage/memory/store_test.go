package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	availabilityRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/availability"
	bookingRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/booking"
	serviceRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/service"
)

func newTestService(providerID, categoryID int64) *domain.Service {
	return &domain.Service{
		ProviderID:      providerID,
		Title:           "стрижка",
		CategoryID:      categoryID,
		PriceMin:        1000,
		PriceMax:        2000,
		DurationMinutes: 60,
		Status:          domain.ServiceStatusActive,
	}
}

func TestAllocatorSharedAcrossEntities(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	services := NewServiceRepository(store)
	bookings := NewBookingRepository(store)

	svc, err := services.Create(ctx, newTestService(1, 1))
	require.NoError(t, err)

	b, err := bookings.Create(ctx, &domain.Booking{
		ServiceID:  svc.ID,
		ClientID:   2,
		ProviderID: 1,
		Status:     domain.StatusPending,
	})
	require.NoError(t, err)

	svc2, err := services.Create(ctx, newTestService(1, 1))
	require.NoError(t, err)

	// услуги и бронирования нумеруются из одного аллокатора
	assert.Equal(t, int64(1), svc.ID)
	assert.Equal(t, int64(2), b.ID)
	assert.Equal(t, int64(3), svc2.ID)
}

func TestClaimExactlyOneWinner(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	slots := NewAvailabilityRepository(store)

	require.NoError(t, slots.Set(ctx, 1, 1000, true))

	const attempts = 50
	var wg sync.WaitGroup
	wins := make(chan struct{}, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := slots.Claim(ctx, 1, 1000); err == nil {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	assert.Len(t, wins, 1)

	available, err := slots.Get(ctx, 1, 1000)
	require.NoError(t, err)
	assert.False(t, available)
}

func TestClaimUnsetSlot(t *testing.T) {
	ctx := context.Background()
	slots := NewAvailabilityRepository(NewStore())

	err := slots.Claim(ctx, 1, 42)
	assert.ErrorIs(t, err, availabilityRepo.ErrSlotNotAvailable)
}

func TestSetIsIdempotent(t *testing.T) {
	ctx := context.Background()
	slots := NewAvailabilityRepository(NewStore())

	require.NoError(t, slots.Set(ctx, 1, 1000, true))
	require.NoError(t, slots.Set(ctx, 1, 1000, true))

	available, err := slots.Get(ctx, 1, 1000)
	require.NoError(t, err)
	assert.True(t, available)

	require.NoError(t, slots.Set(ctx, 1, 1000, false))
	available, err = slots.Get(ctx, 1, 1000)
	require.NoError(t, err)
	assert.False(t, available)
}

func TestCategoryIndexFrozenAtCreate(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	services := NewServiceRepository(store)

	svc, err := services.Create(ctx, newTestService(1, 10))
	require.NoError(t, err)

	// смена категории не переносит услугу между индексами
	err = services.Update(ctx, svc.ID, domain.ServiceUpdate{
		Title:           svc.Title,
		Description:     svc.Description,
		CategoryID:      20,
		PriceMin:        svc.PriceMin,
		PriceMax:        svc.PriceMax,
		DurationMinutes: svc.DurationMinutes,
	})
	require.NoError(t, err)

	totalOld, inOld, err := services.ListByCategory(ctx, 10, domain.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), totalOld)
	require.Len(t, inOld, 1)
	// текущее поле категории при этом обновлено
	assert.Equal(t, int64(20), inOld[0].CategoryID)

	totalNew, _, err := services.ListByCategory(ctx, 20, domain.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(0), totalNew)
}

func TestServiceRepoNotFound(t *testing.T) {
	ctx := context.Background()
	services := NewServiceRepository(NewStore())

	_, err := services.GetByID(ctx, 99)
	assert.ErrorIs(t, err, serviceRepo.ErrServiceNotFound)

	err = services.UpdateStatus(ctx, 99, domain.ServiceStatusPaused)
	assert.ErrorIs(t, err, serviceRepo.ErrServiceNotFound)
}

func TestUpdateStatusCAS(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	bookings := NewBookingRepository(store)

	b, err := bookings.Create(ctx, &domain.Booking{
		ServiceID: 1, ClientID: 2, ProviderID: 3,
		Status: domain.StatusPending,
	})
	require.NoError(t, err)

	require.NoError(t, bookings.UpdateStatus(ctx, b.ID, domain.StatusPending, domain.StatusConfirmed))

	// повторный переход из Pending проигрывает CAS
	err = bookings.UpdateStatus(ctx, b.ID, domain.StatusPending, domain.StatusCancelled)
	assert.ErrorIs(t, err, bookingRepo.ErrStatusConflict)

	err = bookings.UpdateStatus(ctx, 999, domain.StatusPending, domain.StatusConfirmed)
	assert.ErrorIs(t, err, bookingRepo.ErrBookingNotFound)

	got, err := bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)
}

func TestBookingListPagination(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	bookings := NewBookingRepository(store)

	ids := make([]int64, 0, 5)
	for i := 0; i < 5; i++ {
		b, err := bookings.Create(ctx, &domain.Booking{
			ServiceID: 1, ClientID: 7, ProviderID: 3,
			StartTime: int64(i), Status: domain.StatusPending,
		})
		require.NoError(t, err)
		ids = append(ids, b.ID)
	}

	total, page, err := bookings.ListByClient(ctx, 7, domain.Page{Offset: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID)
	assert.Equal(t, ids[3], page[1].ID)

	total, page, err = bookings.ListByClient(ctx, 7, domain.Page{Offset: 10, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Empty(t, page)
}

func TestListStalePending(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := now

	store := NewStore(WithClock(func() time.Time { return clock }))
	bookings := NewBookingRepository(store)
	ctx := context.Background()

	stale, err := bookings.Create(ctx, &domain.Booking{
		ServiceID: 1, ClientID: 2, ProviderID: 3,
		Status: domain.StatusPending,
	})
	require.NoError(t, err)

	clock = now.Add(30 * time.Minute)
	fresh, err := bookings.Create(ctx, &domain.Booking{
		ServiceID: 1, ClientID: 2, ProviderID: 3,
		Status: domain.StatusPending,
	})
	require.NoError(t, err)

	confirmed, err := bookings.Create(ctx, &domain.Booking{
		ServiceID: 1, ClientID: 2, ProviderID: 3,
		Status: domain.StatusConfirmed,
	})
	require.NoError(t, err)

	cutoff := now.Add(15 * time.Minute)
	got, err := bookings.ListStalePending(ctx, cutoff, 10)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, stale.ID, got[0].ID)
	assert.NotEqual(t, fresh.ID, got[0].ID)
	assert.NotEqual(t, confirmed.ID, got[0].ID)
}

func TestTxManagerAtomicBlock(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	bookings := NewBookingRepository(store)
	slots := NewAvailabilityRepository(store)
	tx := NewTxManager(store)

	require.NoError(t, slots.Set(ctx, 1, 1000, true))

	b, err := bookings.Create(ctx, &domain.Booking{
		ServiceID: 1, ClientID: 2, ProviderID: 3,
		StartTime: 1000, Status: domain.StatusPending,
	})
	require.NoError(t, err)

	err = tx.Do(ctx, func(ctx context.Context) error {
		if err := bookings.UpdateStatus(ctx, b.ID, domain.StatusPending, domain.StatusCancelled); err != nil {
			return err
		}
		return slots.Release(ctx, 1, 1000)
	})
	require.NoError(t, err)

	got, err := bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)

	available, err := slots.Get(ctx, 1, 1000)
	require.NoError(t, err)
	assert.True(t, available)
}
