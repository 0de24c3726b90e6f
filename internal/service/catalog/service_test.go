package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceService/internal/access"
	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	"github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-MarketplaceService/internal/service/catalog/models"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fakeCategoryClient struct {
	active map[int64]bool
}

func (c *fakeCategoryClient) IsCategoryActive(_ context.Context, categoryID int64) (bool, error) {
	return c.active[categoryID], nil
}

func newCatalog(t *testing.T, opts Options, admins ...int64) *Service {
	t.Helper()
	store := memory.NewStore()
	return NewService(
		memory.NewServiceRepository(store),
		&fakeCategoryClient{active: map[int64]bool{1: true}},
		access.NewPolicy(admins),
		opts,
		nopLogger{},
	)
}

func createRequest(callerID int64) *models.CreateServiceRequest {
	return &models.CreateServiceRequest{
		CallerID:        callerID,
		Title:           "мойка кузова",
		Description:     "бесконтактная",
		CategoryID:      1,
		PriceMin:        500,
		PriceMax:        1500,
		DurationMinutes: 30,
	}
}

func TestCreateService(t *testing.T) {
	ctx := context.Background()
	svc := newCatalog(t, Options{})

	created, err := svc.CreateService(ctx, createRequest(10))
	require.NoError(t, err)

	assert.Equal(t, int64(10), created.ProviderID)
	assert.Equal(t, "active", created.Status)
	assert.NotZero(t, created.ID)
}

func TestCreateServiceZeroDuration(t *testing.T) {
	ctx := context.Background()
	svc := newCatalog(t, Options{})

	req := createRequest(10)
	req.DurationMinutes = 0

	_, err := svc.CreateService(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateServiceInvertedPricesAcceptedByDefault(t *testing.T) {
	ctx := context.Background()
	svc := newCatalog(t, Options{})

	req := createRequest(10)
	req.PriceMin = 2000
	req.PriceMax = 100

	created, err := svc.CreateService(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), created.PriceMin)
	assert.Equal(t, uint64(100), created.PriceMax)
}

func TestCreateServiceEnforcePriceRange(t *testing.T) {
	ctx := context.Background()
	svc := newCatalog(t, Options{EnforcePriceRange: true})

	req := createRequest(10)
	req.PriceMin = 2000
	req.PriceMax = 100

	_, err := svc.CreateService(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateServiceValidateCategories(t *testing.T) {
	ctx := context.Background()
	svc := newCatalog(t, Options{ValidateCategories: true})

	req := createRequest(10)
	req.CategoryID = 99

	_, err := svc.CreateService(ctx, req)
	assert.ErrorIs(t, err, ErrCategoryInactive)

	req.CategoryID = 1
	_, err = svc.CreateService(ctx, req)
	assert.NoError(t, err)
}

func TestUpdateServiceOwnerOnly(t *testing.T) {
	ctx := context.Background()
	svc := newCatalog(t, Options{}, 777)

	created, err := svc.CreateService(ctx, createRequest(10))
	require.NoError(t, err)

	upd := &models.UpdateServiceRequest{
		CallerID:        20,
		Title:           "другое",
		CategoryID:      1,
		PriceMin:        1,
		PriceMax:        2,
		DurationMinutes: 15,
	}

	_, err = svc.UpdateService(ctx, created.ID, upd)
	assert.ErrorIs(t, err, ErrAccessDenied)

	// владелец может
	upd.CallerID = 10
	updated, err := svc.UpdateService(ctx, created.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, "другое", updated.Title)

	// оператор платформы тоже может
	upd.CallerID = 777
	upd.Title = "от оператора"
	updated, err = svc.UpdateService(ctx, created.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, "от оператора", updated.Title)
}

func TestUpdateServiceNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newCatalog(t, Options{})

	_, err := svc.UpdateService(ctx, 42, &models.UpdateServiceRequest{
		CallerID:        10,
		DurationMinutes: 15,
	})
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestSetServiceStatus(t *testing.T) {
	ctx := context.Background()
	svc := newCatalog(t, Options{})

	created, err := svc.CreateService(ctx, createRequest(10))
	require.NoError(t, err)

	err = svc.SetServiceStatus(ctx, created.ID, &models.SetStatusRequest{CallerID: 10, Status: "paused"})
	require.NoError(t, err)

	got, err := svc.GetService(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "paused", got.Status)

	err = svc.SetServiceStatus(ctx, created.ID, &models.SetStatusRequest{CallerID: 10, Status: "bogus"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = svc.SetServiceStatus(ctx, created.ID, &models.SetStatusRequest{CallerID: 20, Status: "inactive"})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetServicesByCategoryPagination(t *testing.T) {
	ctx := context.Background()
	svc := newCatalog(t, Options{})

	for i := 0; i < 5; i++ {
		_, err := svc.CreateService(ctx, createRequest(10))
		require.NoError(t, err)
	}

	page, err := svc.GetServicesByCategory(ctx, 1, domain.Page{Offset: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.TotalCount)
	assert.Len(t, page.Services, 2)

	empty, err := svc.GetServicesByCategory(ctx, 1, domain.Page{Offset: 10, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), empty.TotalCount)
	assert.Empty(t, empty.Services)
}

func TestGetServicesByProvider(t *testing.T) {
	ctx := context.Background()
	svc := newCatalog(t, Options{})

	_, err := svc.CreateService(ctx, createRequest(10))
	require.NoError(t, err)
	_, err = svc.CreateService(ctx, createRequest(20))
	require.NoError(t, err)

	page, err := svc.GetServicesByProvider(ctx, 10, domain.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalCount)
	require.Len(t, page.Services, 1)
	assert.Equal(t, int64(10), page.Services[0].ProviderID)
}
