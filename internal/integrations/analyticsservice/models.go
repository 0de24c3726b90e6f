package analyticsservice

// Типы событий движка бронирований
const (
	MetricBookingCreated   = "booking_created"
	MetricBookingConfirmed = "booking_confirmed"
	MetricBookingCompleted = "booking_completed"
	MetricBookingCancelled = "booking_cancelled"
)

// Transaction событие для AnalyticsService
type Transaction struct {
	MetricType string            `json:"metricType"`
	AccountID  int64             `json:"accountId"`
	Amount     uint64            `json:"amount"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}
