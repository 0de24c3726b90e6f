package domain

import "time"

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
	// StatusDisputed терминальный статус; ни одна публичная операция в него
	// не переводит, статус зарезервирован под внешний модуль споров
	StatusDisputed BookingStatus = "disputed"
)

// Booking represents a booking of a catalog service for a time slot
//
// ProviderID, PriceMin/PriceMax и EndTime фиксируются в момент создания
// и далее не меняются: последующие правки услуги не затрагивают
// существующие бронирования
type Booking struct {
	ID         int64
	ServiceID  int64
	ClientID   int64
	ProviderID int64

	// Слот задаётся непрозрачной целочисленной меткой времени;
	// EndTime = StartTime + DurationMinutes услуги на момент создания
	StartTime int64
	EndTime   int64

	PriceMin uint64
	PriceMax uint64

	// PaymentReference ссылка на эскроу во внешнем платёжном сервисе;
	// nil, пока эскроу не создан
	PaymentReference *string

	Status BookingStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLive returns true if the booking holds its slot (Pending or Confirmed)
func (b *Booking) IsLive() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// IsTerminal returns true if no further transition is legal
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCompleted || b.Status == StatusCancelled || b.Status == StatusDisputed
}

// CanBeCancelled returns true if the booking can be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

// CanTransition проверяет допустимость перехода статусов машины состояний:
// Pending -> Confirmed -> Completed, отмена из Pending и Confirmed.
// Терминальные статусы (Completed, Cancelled, Disputed) переходов не имеют
func CanTransition(from, to BookingStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCompleted || to == StatusCancelled
	default:
		return false
	}
}

// LiveStatuses статусы бронирований, удерживающих слот
var LiveStatuses = []BookingStatus{
	StatusPending,
	StatusConfirmed,
}
