package expirer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	"github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-MarketplaceService/pkg/ptr"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fakePayment struct {
	refunds []string
}

func (p *fakePayment) Refund(_ context.Context, reference string) error {
	p.refunds = append(p.refunds, reference)
	return nil
}

func TestRunOnceCancelsStalePending(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := base

	store := memory.NewStore(memory.WithClock(func() time.Time { return clock }))
	bookings := memory.NewBookingRepository(store)
	slots := memory.NewAvailabilityRepository(store)
	payment := &fakePayment{}

	require.NoError(t, slots.Set(ctx, 1, 1000, false))
	stale, err := bookings.Create(ctx, &domain.Booking{
		ServiceID: 1, ClientID: 2, ProviderID: 3,
		StartTime: 1000, Status: domain.StatusPending,
		PaymentReference: ptr.Ptr("escrow-1"),
	})
	require.NoError(t, err)

	clock = base.Add(time.Hour)
	require.NoError(t, slots.Set(ctx, 1, 2000, false))
	fresh, err := bookings.Create(ctx, &domain.Booking{
		ServiceID: 1, ClientID: 2, ProviderID: 3,
		StartTime: 2000, Status: domain.StatusPending,
	})
	require.NoError(t, err)

	w := New(bookings, slots, memory.NewTxManager(store), payment, nopLogger{}, 30*time.Minute, time.Minute)
	w.now = func() time.Time { return clock }

	w.RunOnce(ctx)

	// протухшее бронирование отменено, слот возвращен, средства возвращены
	got, err := bookings.GetByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, got.Status)

	available, err := slots.Get(ctx, 1, 1000)
	require.NoError(t, err)
	assert.True(t, available)

	assert.Equal(t, []string{"escrow-1"}, payment.refunds)

	// свежее бронирование не тронуто
	got, err = bookings.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
}

func TestRunOnceSkipsConfirmed(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := base

	store := memory.NewStore(memory.WithClock(func() time.Time { return clock }))
	bookings := memory.NewBookingRepository(store)
	slots := memory.NewAvailabilityRepository(store)

	require.NoError(t, slots.Set(ctx, 1, 1000, false))
	confirmed, err := bookings.Create(ctx, &domain.Booking{
		ServiceID: 1, ClientID: 2, ProviderID: 3,
		StartTime: 1000, Status: domain.StatusConfirmed,
	})
	require.NoError(t, err)

	clock = base.Add(time.Hour)

	w := New(bookings, slots, memory.NewTxManager(store), nil, nopLogger{}, 30*time.Minute, time.Minute)
	w.now = func() time.Time { return clock }

	w.RunOnce(ctx)

	got, err := bookings.GetByID(ctx, confirmed.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)

	available, err := slots.Get(ctx, 1, 1000)
	require.NoError(t, err)
	assert.False(t, available)
}
