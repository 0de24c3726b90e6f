package update_service

import "github.com/m04kA/SMC-MarketplaceService/internal/service/catalog/models"

// UpdateServiceRequest HTTP request model
// Все изменяемые поля перезаписываются целиком
type UpdateServiceRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	CategoryID      int64  `json:"categoryId"`
	PriceMin        uint64 `json:"priceMin"`
	PriceMax        uint64 `json:"priceMax"`
	DurationMinutes uint32 `json:"durationMinutes"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpdateServiceRequest) ToServiceRequest(callerID int64) *models.UpdateServiceRequest {
	return &models.UpdateServiceRequest{
		CallerID:        callerID,
		Title:           r.Title,
		Description:     r.Description,
		CategoryID:      r.CategoryID,
		PriceMin:        r.PriceMin,
		PriceMax:        r.PriceMax,
		DurationMinutes: r.DurationMinutes,
	}
}
