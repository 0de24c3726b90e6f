package get_category_services

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-MarketplaceService/internal/api/handlers"
)

const (
	msgInvalidCategoryID = "некорректный ID категории"
	msgInvalidPage       = "некорректные параметры пагинации"
)

type Handler struct {
	service CatalogService
	logger  Logger
}

func NewHandler(service CatalogService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/categories/{categoryId}/services
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	categoryID, err := strconv.ParseInt(vars["categoryId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /categories/{id}/services - Invalid category ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidCategoryID)
		return
	}

	page, err := handlers.ParsePage(r)
	if err != nil {
		h.logger.Warn("GET /categories/{id}/services - Invalid pagination: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPage)
		return
	}

	result, err := h.service.GetServicesByCategory(r.Context(), categoryID, page)
	if err != nil {
		h.logger.Error("GET /categories/{id}/services - Failed to list services: category_id=%d, error=%v",
			categoryID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /categories/{id}/services - Services retrieved: category_id=%d, total=%d, returned=%d",
		categoryID, result.TotalCount, len(result.Services))
	handlers.RespondJSON(w, http.StatusOK, result)
}
