package bookings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceService/internal/access"
	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	"github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-MarketplaceService/pkg/ptr"
)

const (
	providerID = int64(10)
	clientID   = int64(20)
	strangerID = int64(30)
	adminID    = int64(777)
	slotTime   = int64(1000)
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fakePayment struct {
	releaseCalls []string
	refundCalls  []string
	failRelease  bool
	failRefund   bool
}

func (p *fakePayment) ReleaseFunds(_ context.Context, reference string) error {
	p.releaseCalls = append(p.releaseCalls, reference)
	if p.failRelease {
		return errors.New("payment down")
	}
	return nil
}

func (p *fakePayment) Refund(_ context.Context, reference string) error {
	p.refundCalls = append(p.refundCalls, reference)
	if p.failRefund {
		return errors.New("payment down")
	}
	return nil
}

type fixture struct {
	svc      *Service
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
	payment := &fakePayment{}

	svc, err := services.Create(ctx, &domain.Service{
		ProviderID:      providerID,
		Title:           "замена масла",
		CategoryID:      1,
		PriceMin:        1000,
		PriceMax:        3000,
		DurationMinutes: 60,
		Status:          domain.ServiceStatusActive,
	})
	require.NoError(t, err)

	return &fixture{
		svc: NewService(
			bookings,
			services,
			slots,
			memory.NewTxManager(store),
			payment,
			nil,
			access.NewPolicy([]int64{adminID}),
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

// seedBooking создает бронирование с занятым слотом
func (f *fixture) seedBooking(t *testing.T, status domain.BookingStatus, reference *string) *domain.Booking {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, f.slots.Set(ctx, f.service.ID, slotTime, false))

	b, err := f.bookings.Create(ctx, &domain.Booking{
		ServiceID:        f.service.ID,
		ClientID:         clientID,
		ProviderID:       providerID,
		StartTime:        slotTime,
		EndTime:          slotTime + 60,
		PriceMin:         1000,
		PriceMax:         3000,
		PaymentReference: reference,
		Status:           status,
	})
	require.NoError(t, err)
	return b
}

func TestGetBookingAccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBooking(t, domain.StatusPending, nil)

	for _, caller := range []int64{clientID, providerID, adminID} {
		got, err := f.svc.GetBooking(ctx, caller, b.ID)
		require.NoError(t, err)
		assert.Equal(t, b.ID, got.ID)
	}

	_, err := f.svc.GetBooking(ctx, strangerID, b.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.GetBooking(ctx, clientID, 999)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestConfirmBooking(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBooking(t, domain.StatusPending, nil)

	// подтверждает только исполнитель
	_, err := f.svc.ConfirmBooking(ctx, clientID, b.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	got, err := f.svc.ConfirmBooking(ctx, providerID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), got.Status)

	// повторное подтверждение проигрывает CAS
	_, err = f.svc.ConfirmBooking(ctx, providerID, b.ID)
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestCompleteBookingReleasesFundsOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBooking(t, domain.StatusConfirmed, ptr.Ptr("escrow-1"))

	got, err := f.svc.CompleteBooking(ctx, providerID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), got.Status)
	assert.Equal(t, []string{"escrow-1"}, f.payment.releaseCalls)

	// терминальный статус: второй вызов не доходит до платёжного сервиса
	_, err = f.svc.CompleteBooking(ctx, providerID, b.ID)
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
	assert.Equal(t, []string{"escrow-1"}, f.payment.releaseCalls)
}

func TestCompleteBookingFromPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBooking(t, domain.StatusPending, nil)

	_, err := f.svc.CompleteBooking(ctx, providerID, b.ID)
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestCompleteBookingPaymentFailureCompensates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.payment.failRelease = true
	b := f.seedBooking(t, domain.StatusConfirmed, ptr.Ptr("escrow-1"))

	_, err := f.svc.CompleteBooking(ctx, providerID, b.ID)
	assert.ErrorIs(t, err, ErrPaymentServiceUnavailable)

	// переход откатился, бронирование можно завершить повторно
	got, err := f.bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)

	f.payment.failRelease = false
	result, err := f.svc.CompleteBooking(ctx, providerID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), result.Status)
	assert.Equal(t, []string{"escrow-1", "escrow-1"}, f.payment.releaseCalls)
}

func TestCompleteBookingWithoutEscrow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBooking(t, domain.StatusConfirmed, nil)

	got, err := f.svc.CompleteBooking(ctx, providerID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), got.Status)
	assert.Empty(t, f.payment.releaseCalls)
}

func TestCancelBookingReleasesSlot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBooking(t, domain.StatusPending, ptr.Ptr("escrow-1"))

	got, err := f.svc.CancelBooking(ctx, clientID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), got.Status)
	assert.Equal(t, []string{"escrow-1"}, f.payment.refundCalls)

	available, err := f.slots.Get(ctx, f.service.ID, slotTime)
	require.NoError(t, err)
	assert.True(t, available)
}

func TestCancelBookingByProviderAndAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBooking(t, domain.StatusConfirmed, nil)

	_, err := f.svc.CancelBooking(ctx, strangerID, b.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.CancelBooking(ctx, providerID, b.ID)
	require.NoError(t, err)
}

func TestCancelBookingTerminal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBooking(t, domain.StatusCompleted, nil)

	_, err := f.svc.CancelBooking(ctx, clientID, b.ID)
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestCancelBookingRefundFailureCompensates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.payment.failRefund = true
	b := f.seedBooking(t, domain.StatusConfirmed, ptr.Ptr("escrow-1"))

	_, err := f.svc.CancelBooking(ctx, clientID, b.ID)
	assert.ErrorIs(t, err, ErrPaymentServiceUnavailable)

	// статус и слот возвращены в исходное состояние
	got, err := f.bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)

	available, err := f.slots.Get(ctx, f.service.ID, slotTime)
	require.NoError(t, err)
	assert.False(t, available)
}

func TestGetClientBookings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedBooking(t, domain.StatusPending, nil)

	_, err := f.svc.GetClientBookings(ctx, strangerID, clientID, domain.Page{Limit: 10})
	assert.ErrorIs(t, err, ErrAccessDenied)

	page, err := f.svc.GetClientBookings(ctx, clientID, clientID, domain.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalCount)

	// оператору доступны чужие списки
	page, err = f.svc.GetClientBookings(ctx, adminID, clientID, domain.Page{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Bookings, 1)
}

func TestGetProviderBookings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedBooking(t, domain.StatusPending, nil)

	_, err := f.svc.GetProviderBookings(ctx, clientID, providerID, domain.Page{Limit: 10})
	assert.ErrorIs(t, err, ErrAccessDenied)

	page, err := f.svc.GetProviderBookings(ctx, providerID, providerID, domain.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalCount)
}

func TestGetServiceBookings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedBooking(t, domain.StatusPending, nil)

	_, err := f.svc.GetServiceBookings(ctx, clientID, f.service.ID, domain.Page{Limit: 10})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = f.svc.GetServiceBookings(ctx, providerID, 999, domain.Page{Limit: 10})
	assert.ErrorIs(t, err, ErrServiceNotFound)

	page, err := f.svc.GetServiceBookings(ctx, providerID, f.service.ID, domain.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalCount)
}

// confirmingTxManager перед первым Do подтверждает бронирование напрямую
// в репозитории, воспроизводя гонку отмены с подтверждением
type confirmingTxManager struct {
	inner     *memory.TxManager
	bookings  *memory.BookingRepository
	bookingID int64
	flipped   bool
}

func (m *confirmingTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if !m.flipped {
		m.flipped = true
		if err := m.bookings.UpdateStatus(ctx, m.bookingID, domain.StatusPending, domain.StatusConfirmed); err != nil {
			return err
		}
	}
	return m.inner.Do(ctx, fn)
}

func TestCancelBookingAfterConcurrentConfirm(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.seedBooking(t, domain.StatusPending, nil)

	// Провайдер подтверждает между чтением статуса и транзакцией отмены;
	// отмена Confirmed легальна и должна исходить из актуального статуса
	txMgr := &confirmingTxManager{
		inner:     memory.NewTxManager(f.store),
		bookings:  f.bookings,
		bookingID: b.ID,
	}
	svc := NewService(
		f.bookings,
		f.services,
		f.slots,
		txMgr,
		f.payment,
		nil,
		access.NewPolicy([]int64{adminID}),
		nil,
		nopLogger{},
	)

	cancelled, err := svc.CancelBooking(ctx, clientID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), cancelled.Status)

	available, err := f.slots.Get(ctx, f.service.ID, slotTime)
	require.NoError(t, err)
	assert.True(t, available)
}
