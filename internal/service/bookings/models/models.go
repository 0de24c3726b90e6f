package models

import (
	"time"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
)

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID               int64     `json:"id"`
	ServiceID        int64     `json:"serviceId"`
	ClientID         int64     `json:"clientId"`
	ProviderID       int64     `json:"providerId"`
	StartTime        int64     `json:"startTime"`
	EndTime          int64     `json:"endTime"`
	PriceMin         uint64    `json:"priceMin"`
	PriceMax         uint64    `json:"priceMax"`
	PaymentReference *string   `json:"paymentReference,omitempty"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// BookingListResponse страница списка бронирований
// TotalCount общее число записей индекса, Bookings окно [offset, offset+limit)
type BookingListResponse struct {
	TotalCount int64             `json:"totalCount"`
	Bookings   []BookingResponse `json:"bookings"`
}

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	return &BookingResponse{
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

// FromDomainBookingList конвертирует страницу бронирований в DTO
func FromDomainBookingList(total int64, items []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		TotalCount: total,
		Bookings:   make([]BookingResponse, 0, len(items)),
	}

	for _, b := range items {
		if dto := FromDomainBooking(b); dto != nil {
			resp.Bookings = append(resp.Bookings, *dto)
		}
	}

	return resp
}
