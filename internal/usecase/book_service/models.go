package book_service

import (
	"time"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
)

// Request модель запроса на бронирование услуги
type Request struct {
	ClientID  int64 // ID клиента (из заголовка аутентификации)
	ServiceID int64 // ID услуги
	StartTime int64 // Метка времени начала слота (непрозрачное целое)
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID         int64  `json:"id"`
	ServiceID  int64  `json:"serviceId"`
	ClientID   int64  `json:"clientId"`
	ProviderID int64  `json:"providerId"`
	StartTime  int64  `json:"startTime"`
	EndTime    int64  `json:"endTime"`
	PriceMin   uint64 `json:"priceMin"`
	PriceMax   uint64 `json:"priceMax"`

	// PaymentReference заполняется, только если эскроу создан до ответа
	PaymentReference *string `json:"paymentReference,omitempty"`

	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// toResponse конвертирует domain модель в ответ usecase
func toResponse(b *domain.Booking) *Response {
	return &Response{
		ID:               b.ID,
		ServiceID:        b.ServiceID,
		ClientID:         b.ClientID,
		ProviderID:       b.ProviderID,
		StartTime:        b.StartTime,
		EndTime:          b.EndTime,
		PriceMin:         b.PriceMin,
		PriceMax:         b.PriceMax,
		PaymentReference: b.PaymentReference,
		Status:           string(b.Status),
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}
