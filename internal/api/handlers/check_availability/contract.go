package check_availability

import "context"

type AvailabilityService interface {
	CheckAvailability(ctx context.Context, serviceID, startTime int64) (bool, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
