package availability

import (
	"context"
	"errors"
	"fmt"

	serviceRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/service"
)

// Service сервис реестра доступности слотов
type Service struct {
	serviceRepo      ServiceRepository
	availabilityRepo AvailabilityRepository
	policy           AccessPolicy
	logger           Logger
}

// NewService создает новый экземпляр сервиса доступности
func NewService(
	serviceRepo ServiceRepository,
	availabilityRepo AvailabilityRepository,
	policy AccessPolicy,
	logger Logger,
) *Service {
	return &Service{
		serviceRepo:      serviceRepo,
		availabilityRepo: availabilityRepo,
		policy:           policy,
		logger:           logger,
	}
}

// SetAvailability идемпотентно открывает или закрывает слот услуги
// Доступно только владельцу услуги; метка времени непрозрачна для движка:
// любое целое значение допустимо, привязки к будущему или сетке нет
func (s *Service) SetAvailability(ctx context.Context, callerID, serviceID, startTime int64, available bool) error {
	s.logger.Info("SetAvailability: service=%d, start_time=%d, available=%v, caller=%d",
		serviceID, startTime, available, callerID)

	svc, err := s.serviceRepo.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			s.logger.Warn("SetAvailability: service id=%d not found", serviceID)
			return ErrServiceNotFound
		}
		s.logger.Error("SetAvailability: repository error for service id=%d: %v", serviceID, err)
		return fmt.Errorf("%w: SetAvailability - repository error: %v", ErrInternal, err)
	}

	if err := s.policy.CanManageService(svc, callerID); err != nil {
		s.logger.Warn("SetAvailability: access denied for caller=%d to service=%d", callerID, serviceID)
		return ErrAccessDenied
	}

	if err := s.availabilityRepo.Set(ctx, serviceID, startTime, available); err != nil {
		s.logger.Error("SetAvailability: repository error for slot (%d,%d): %v", serviceID, startTime, err)
		return fmt.Errorf("%w: SetAvailability - repository error: %v", ErrInternal, err)
	}

	return nil
}

// CheckAvailability возвращает доступность слота; незаданный ключ недоступен
// Чистое чтение без проверок доступа
func (s *Service) CheckAvailability(ctx context.Context, serviceID, startTime int64) (bool, error) {
	available, err := s.availabilityRepo.Get(ctx, serviceID, startTime)
	if err != nil {
		s.logger.Error("CheckAvailability: repository error for slot (%d,%d): %v", serviceID, startTime, err)
		return false, fmt.Errorf("%w: CheckAvailability - repository error: %v", ErrInternal, err)
	}

	return available, nil
}
