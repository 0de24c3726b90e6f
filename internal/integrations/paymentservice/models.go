package paymentservice

// EstablishEscrowRequest запрос на создание эскроу под бронирование
type EstablishEscrowRequest struct {
	BookingID int64  `json:"bookingId"`
	PriceMin  uint64 `json:"priceMin"`
	PriceMax  uint64 `json:"priceMax"`
}

// EscrowResponse ответ платёжного сервиса с ссылкой на эскроу
type EscrowResponse struct {
	PaymentReference string `json:"paymentReference"`
}

// ErrorResponse модель ошибки от PaymentService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
