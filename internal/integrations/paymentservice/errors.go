package paymentservice

import "errors"

var (
	// ErrEscrowNotFound возвращается, когда эскроу по ссылке не найден
	ErrEscrowNotFound = errors.New("paymentservice client: escrow not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("paymentservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("paymentservice client: invalid response")

	// ErrServiceUnavailable возвращается, когда платёжный сервис недоступен
	// Ошибка отличима от ошибок валидации: вызывающий может понять,
	// что отказал внешний сервис, а не его запрос
	ErrServiceUnavailable = errors.New("paymentservice unavailable")
)
