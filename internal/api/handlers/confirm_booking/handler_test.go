package confirm_booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceService/internal/api/middleware"
	"github.com/m04kA/SMC-MarketplaceService/internal/service/bookings"
	"github.com/m04kA/SMC-MarketplaceService/internal/service/bookings/models"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeService struct {
	err    error
	result *models.BookingResponse

	gotCallerID  int64
	gotBookingID int64
}

func (f *fakeService) ConfirmBooking(_ context.Context, callerID, bookingID int64) (*models.BookingResponse, error) {
	f.gotCallerID = callerID
	f.gotBookingID = bookingID
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newRouter(svc *fakeService) *mux.Router {
	h := NewHandler(svc, nopLogger{})
	router := mux.NewRouter()
	protected := router.PathPrefix("/api/v1").Subrouter()
	protected.Use(middleware.Auth)
	protected.HandleFunc("/bookings/{bookingId}/confirm", h.Handle).Methods(http.MethodPatch)
	return router
}

func doRequest(t *testing.T, router *mux.Router, path, userID string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPatch, path, nil)
	if userID != "" {
		r.Header.Set(middleware.HeaderUserID, userID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestHandle_Success(t *testing.T) {
	svc := &fakeService{result: &models.BookingResponse{ID: 5, ClientID: 20, ProviderID: 10, Status: "confirmed"}}
	router := newRouter(svc)

	w := doRequest(t, router, "/api/v1/bookings/5/confirm", "10")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(10), svc.gotCallerID)
	assert.Equal(t, int64(5), svc.gotBookingID)

	var resp models.BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(5), resp.ID)
	assert.Equal(t, "confirmed", resp.Status)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "not found", err: bookings.ErrBookingNotFound, wantStatus: http.StatusNotFound},
		{name: "access denied", err: bookings.ErrAccessDenied, wantStatus: http.StatusForbidden},
		{name: "invalid transition", err: bookings.ErrInvalidStateTransition, wantStatus: http.StatusConflict},
		{name: "internal", err: bookings.ErrInternal, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(&fakeService{err: tt.err})

			w := doRequest(t, router, "/api/v1/bookings/5/confirm", "10")

			assert.Equal(t, tt.wantStatus, w.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["message"])
		})
	}
}

func TestHandle_InvalidBookingID(t *testing.T) {
	svc := &fakeService{}
	router := newRouter(svc)

	w := doRequest(t, router, "/api/v1/bookings/abc/confirm", "10")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, svc.gotBookingID)
}

func TestHandle_Unauthenticated(t *testing.T) {
	svc := &fakeService{}
	router := newRouter(svc)

	w := doRequest(t, router, "/api/v1/bookings/5/confirm", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, svc.gotBookingID)
}
