package set_availability

import "context"

type AvailabilityService interface {
	SetAvailability(ctx context.Context, callerID, serviceID, startTime int64, available bool) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
