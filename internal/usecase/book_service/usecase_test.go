package book_service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	"github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/memory"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fakePayment struct {
	mu        sync.Mutex
	calls     int
	reference string
	fail      bool
}

func (p *fakePayment) EstablishEscrow(_ context.Context, bookingID int64, priceMin, priceMax uint64) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.fail {
		return "", errors.New("payment down")
	}
	return p.reference, nil
}

type fixture struct {
	uc       *UseCase
	store    *memory.Store
	services *memory.ServiceRepository
	bookings *memory.BookingRepository
	slots    *memory.AvailabilityRepository
	payment  *fakePayment
	service  *domain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	services := memory.NewServiceRepository(store)
	bookings := memory.NewBookingRepository(store)
	slots := memory.NewAvailabilityRepository(store)
	payment := &fakePayment{reference: "escrow-1"}

	svc, err := services.Create(ctx, &domain.Service{
		ProviderID:      10,
		Title:           "шиномонтаж",
		CategoryID:      1,
		PriceMin:        1000,
		PriceMax:        3000,
		DurationMinutes: 60,
		Status:          domain.ServiceStatusActive,
	})
	require.NoError(t, err)

	return &fixture{
		uc: NewUseCase(
			services,
			slots,
			bookings,
			memory.NewTxManager(store),
			payment,
			nil,
			nil,
			nopLogger{},
		),
		store:    store,
		services: services,
		bookings: bookings,
		slots:    slots,
		payment:  payment,
		service:  svc,
	}
}

func (f *fixture) openSlot(t *testing.T, startTime int64) {
	t.Helper()
	require.NoError(t, f.slots.Set(context.Background(), f.service.ID, startTime, true))
}

func TestBookService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.openSlot(t, 1000)

	result, err := f.uc.Execute(ctx, &Request{ClientID: 20, ServiceID: f.service.ID, StartTime: 1000})
	require.NoError(t, err)

	// снимок данных услуги и производный EndTime
	assert.Equal(t, string(domain.StatusPending), result.Status)
	assert.Equal(t, int64(10), result.ProviderID)
	assert.Equal(t, int64(1060), result.EndTime)
	assert.Equal(t, uint64(1000), result.PriceMin)
	assert.Equal(t, uint64(3000), result.PriceMax)

	// слот занят созданным бронированием
	available, err := f.slots.Get(ctx, f.service.ID, 1000)
	require.NoError(t, err)
	assert.False(t, available)

	// эскроу создан и ссылка сохранена
	require.NotNil(t, result.PaymentReference)
	assert.Equal(t, "escrow-1", *result.PaymentReference)

	stored, err := f.bookings.GetByID(ctx, result.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PaymentReference)
	assert.Equal(t, "escrow-1", *stored.PaymentReference)
}

func TestBookServiceSlotTaken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.openSlot(t, 1000)

	_, err := f.uc.Execute(ctx, &Request{ClientID: 20, ServiceID: f.service.ID, StartTime: 1000})
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, &Request{ClientID: 21, ServiceID: f.service.ID, StartTime: 1000})
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestBookServiceUnopenedSlot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// слот, который никогда не открывали, недоступен
	_, err := f.uc.Execute(ctx, &Request{ClientID: 20, ServiceID: f.service.ID, StartTime: 5000})
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestBookServiceNotActive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.openSlot(t, 1000)

	require.NoError(t, f.services.UpdateStatus(ctx, f.service.ID, domain.ServiceStatusPaused))

	_, err := f.uc.Execute(ctx, &Request{ClientID: 20, ServiceID: f.service.ID, StartTime: 1000})
	assert.ErrorIs(t, err, ErrServiceNotActive)

	// отказ не трогает реестр доступности
	available, err := f.slots.Get(ctx, f.service.ID, 1000)
	require.NoError(t, err)
	assert.True(t, available)
}

func TestBookServiceUnknownService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.uc.Execute(ctx, &Request{ClientID: 20, ServiceID: 999, StartTime: 1000})
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestBookServiceInvalidInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.uc.Execute(ctx, &Request{ClientID: 0, ServiceID: f.service.ID, StartTime: 1000})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.uc.Execute(ctx, &Request{ClientID: 20, ServiceID: 0, StartTime: 1000})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBookServiceNegativeStartTimeAllowed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.openSlot(t, -50)

	// метка времени непрозрачна: отрицательные значения допустимы
	result, err := f.uc.Execute(ctx, &Request{ClientID: 20, ServiceID: f.service.ID, StartTime: -50})
	require.NoError(t, err)
	assert.Equal(t, int64(-50), result.StartTime)
	assert.Equal(t, int64(10), result.EndTime)
}

func TestBookServiceEscrowFailureDoesNotBlockBooking(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.payment.fail = true
	f.openSlot(t, 1000)

	result, err := f.uc.Execute(ctx, &Request{ClientID: 20, ServiceID: f.service.ID, StartTime: 1000})
	require.NoError(t, err)

	// бронирование живет без эскроу, ссылка остается пустой
	assert.Equal(t, string(domain.StatusPending), result.Status)
	assert.Nil(t, result.PaymentReference)

	stored, err := f.bookings.GetByID(ctx, result.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.PaymentReference)
}

func TestBookServiceConcurrentOneWinner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.openSlot(t, 1000)

	const attempts = 20
	var wg sync.WaitGroup
	wins := make(chan int64, attempts)

	for i := 0; i < attempts; i++ {
		clientID := int64(100 + i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := f.uc.Execute(ctx, &Request{ClientID: clientID, ServiceID: f.service.ID, StartTime: 1000})
			if err == nil {
				wins <- result.ID
			} else {
				assert.ErrorIs(t, err, ErrSlotNotAvailable)
			}
		}()
	}
	wg.Wait()
	close(wins)

	var winners []int64
	for id := range wins {
		winners = append(winners, id)
	}
	require.Len(t, winners, 1)

	// проигравшие не оставили бронирований
	total, _, err := f.bookings.ListByService(ctx, f.service.ID, domain.Page{Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
