package domain

import "time"

// ServiceStatus represents the status of a catalog service
type ServiceStatus string

const (
	ServiceStatusActive   ServiceStatus = "active"
	ServiceStatusPaused   ServiceStatus = "paused"
	ServiceStatusInactive ServiceStatus = "inactive"
)

// Service represents a bookable service in the marketplace catalog
type Service struct {
	ID          int64
	ProviderID  int64
	Title       string
	Description string
	CategoryID  int64
	// Цены фиксируются как диапазон; соотношение min <= max по умолчанию
	// не проверяется (см. enforce_price_range в конфигурации)
	PriceMin        uint64
	PriceMax        uint64
	DurationMinutes uint32
	Status          ServiceStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsBookable returns true if the service accepts new bookings
func (s *Service) IsBookable() bool {
	return s.Status == ServiceStatusActive
}

// OwnedBy returns true if the given account owns the service
func (s *Service) OwnedBy(accountID int64) bool {
	return s.ProviderID == accountID
}

// ServiceUpdate набор изменяемых полей услуги
// Применяется целиком: все поля перезаписываются значениями из запроса
type ServiceUpdate struct {
	Title           string
	Description     string
	CategoryID      int64
	PriceMin        uint64
	PriceMax        uint64
	DurationMinutes uint32
}

// ValidServiceStatus проверяет, что строка является допустимым статусом услуги
func ValidServiceStatus(s ServiceStatus) bool {
	switch s {
	case ServiceStatusActive, ServiceStatusPaused, ServiceStatusInactive:
		return true
	default:
		return false
	}
}
