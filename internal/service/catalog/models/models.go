package models

import (
	"time"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
)

// Request модели

// CreateServiceRequest запрос на создание услуги
type CreateServiceRequest struct {
	CallerID        int64
	Title           string
	Description     string
	CategoryID      int64
	PriceMin        uint64
	PriceMax        uint64
	DurationMinutes uint32
}

// UpdateServiceRequest запрос на изменение услуги
// Все изменяемые поля перезаписываются целиком
type UpdateServiceRequest struct {
	CallerID        int64
	Title           string
	Description     string
	CategoryID      int64
	PriceMin        uint64
	PriceMax        uint64
	DurationMinutes uint32
}

// SetStatusRequest запрос на смену статуса услуги
type SetStatusRequest struct {
	CallerID int64
	Status   string
}

// Response модели

// ServiceResponse ответ с данными услуги
type ServiceResponse struct {
	ID              int64     `json:"id"`
	ProviderID      int64     `json:"providerId"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	CategoryID      int64     `json:"categoryId"`
	PriceMin        uint64    `json:"priceMin"`
	PriceMax        uint64    `json:"priceMax"`
	DurationMinutes uint32    `json:"durationMinutes"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ServiceListResponse страница списка услуг
// TotalCount общее число записей индекса, Services окно [offset, offset+limit)
type ServiceListResponse struct {
	TotalCount int64             `json:"totalCount"`
	Services   []ServiceResponse `json:"services"`
}

// Методы конвертации

// FromDomainService конвертирует domain модель в DTO
func FromDomainService(svc *domain.Service) *ServiceResponse {
	if svc == nil {
		return nil
	}

	return &ServiceResponse{
		ID:              svc.ID,
		ProviderID:      svc.ProviderID,
		Title:           svc.Title,
		Description:     svc.Description,
		CategoryID:      svc.CategoryID,
		PriceMin:        svc.PriceMin,
		PriceMax:        svc.PriceMax,
		DurationMinutes: svc.DurationMinutes,
		Status:          string(svc.Status),
		CreatedAt:       svc.CreatedAt,
		UpdatedAt:       svc.UpdatedAt,
	}
}

// FromDomainServiceList конвертирует страницу услуг в DTO
func FromDomainServiceList(total int64, services []*domain.Service) *ServiceListResponse {
	resp := &ServiceListResponse{
		TotalCount: total,
		Services:   make([]ServiceResponse, 0, len(services)),
	}

	for _, svc := range services {
		if dto := FromDomainService(svc); dto != nil {
			resp.Services = append(resp.Services, *dto)
		}
	}

	return resp
}
