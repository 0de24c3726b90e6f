package book_service

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("book_service: service not found")

	// ErrServiceNotActive возвращается, когда услуга не принимает бронирования
	ErrServiceNotActive = errors.New("book_service: service is not active")

	// ErrSlotNotAvailable возвращается, когда слот закрыт, занят или не открывался
	ErrSlotNotAvailable = errors.New("book_service: slot is not available")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("book_service: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("book_service: internal error")
)
