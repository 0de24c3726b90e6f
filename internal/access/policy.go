// Package access содержит объект-полномочие для проверок доступа.
// Роли платформы задаются при создании и внедряются в сервисы явно,
// без глобального состояния.
package access

import (
	"errors"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
)

var (
	// ErrAccessDenied возвращается, когда вызывающий не проходит проверку прав
	ErrAccessDenied = errors.New("access: access denied")
)

// Policy правила доступа движка бронирований
type Policy struct {
	admins map[int64]struct{}
}

// NewPolicy создает политику доступа с заданным списком операторов платформы
func NewPolicy(adminIDs []int64) *Policy {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &Policy{admins: admins}
}

// IsAdmin проверяет, является ли аккаунт оператором платформы
func (p *Policy) IsAdmin(accountID int64) bool {
	_, ok := p.admins[accountID]
	return ok
}

// CanManageService проверяет право изменять услугу: владелец либо оператор
func (p *Policy) CanManageService(svc *domain.Service, caller int64) error {
	if svc.OwnedBy(caller) || p.IsAdmin(caller) {
		return nil
	}
	return ErrAccessDenied
}

// CanConfirmBooking подтверждать бронирование может только провайдер
func (p *Policy) CanConfirmBooking(b *domain.Booking, caller int64) error {
	if b.ProviderID == caller {
		return nil
	}
	return ErrAccessDenied
}

// CanCompleteBooking завершать бронирование может только провайдер
func (p *Policy) CanCompleteBooking(b *domain.Booking, caller int64) error {
	if b.ProviderID == caller {
		return nil
	}
	return ErrAccessDenied
}

// CanCancelBooking отменять бронирование может клиент, провайдер
// либо оператор платформы
func (p *Policy) CanCancelBooking(b *domain.Booking, caller int64) error {
	if b.ClientID == caller || b.ProviderID == caller || p.IsAdmin(caller) {
		return nil
	}
	return ErrAccessDenied
}

// CanViewBooking просматривать бронирование могут его участники и оператор
func (p *Policy) CanViewBooking(b *domain.Booking, caller int64) error {
	if b.ClientID == caller || b.ProviderID == caller || p.IsAdmin(caller) {
		return nil
	}
	return ErrAccessDenied
}
