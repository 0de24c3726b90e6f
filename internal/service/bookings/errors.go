package bookings

import "errors"

var (
	ErrBookingNotFound           = errors.New("service/bookings: booking not found")
	ErrServiceNotFound           = errors.New("service/bookings: service not found")
	ErrAccessDenied              = errors.New("service/bookings: access denied")
	ErrInvalidStateTransition    = errors.New("service/bookings: invalid state transition")
	ErrPaymentServiceUnavailable = errors.New("service/bookings: payment service unavailable")
	ErrInternal                  = errors.New("service/bookings: internal error")
)
