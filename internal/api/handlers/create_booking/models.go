package create_booking

import (
	bookService "github.com/m04kA/SMC-MarketplaceService/internal/usecase/book_service"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ServiceID int64 `json:"serviceId"`
	StartTime int64 `json:"startTime"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(clientID int64) *bookService.Request {
	return &bookService.Request{
		ClientID:  clientID,
		ServiceID: r.ServiceID,
		StartTime: r.StartTime,
	}
}
