package check_availability

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-MarketplaceService/internal/api/handlers"
)

const (
	msgInvalidServiceID = "некорректный ID услуги"
	msgInvalidStartTime = "некорректная метка времени слота"
)

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	ServiceID int64 `json:"serviceId"`
	StartTime int64 `json:"startTime"`
	Available bool  `json:"available"`
}

type Handler struct {
	service AvailabilityService
	logger  Logger
}

func NewHandler(service AvailabilityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/services/{serviceId}/availability/{startTime}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	serviceID, err := strconv.ParseInt(vars["serviceId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /services/{id}/availability/{startTime} - Invalid service ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidServiceID)
		return
	}

	startTime, err := strconv.ParseInt(vars["startTime"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /services/{id}/availability/{startTime} - Invalid start time: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStartTime)
		return
	}

	available, err := h.service.CheckAvailability(r.Context(), serviceID, startTime)
	if err != nil {
		h.logger.Error("GET /services/{id}/availability/{startTime} - Failed to check slot (%d,%d): %v",
			serviceID, startTime, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, AvailabilityResponse{
		ServiceID: serviceID,
		StartTime: startTime,
		Available: available,
	})
}
