package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	serviceRepo "github.com/m04kA/SMC-MarketplaceService/internal/infra/storage/service"
	"github.com/m04kA/SMC-MarketplaceService/internal/service/catalog/models"
)

// Options строгие режимы валидации каталога
// По умолчанию оба выключены: контракт источника разрешительный
// (category_id принимается любым, price_min <= price_max не проверяется)
type Options struct {
	ValidateCategories bool
	EnforcePriceRange  bool
}

// Service сервис каталога услуг
type Service struct {
	serviceRepo    ServiceRepository
	categoryClient CategoryServiceClient
	policy         AccessPolicy
	opts           Options
	logger         Logger
}

// NewService создает новый экземпляр сервиса каталога
func NewService(
	serviceRepo ServiceRepository,
	categoryClient CategoryServiceClient,
	policy AccessPolicy,
	opts Options,
	logger Logger,
) *Service {
	return &Service{
		serviceRepo:    serviceRepo,
		categoryClient: categoryClient,
		policy:         policy,
		opts:           opts,
		logger:         logger,
	}
}

// CreateService создает услугу со статусом Active
// Услуга попадает в индексы категории и провайдера в том же атомарном
// блоке, что и первичная запись
func (s *Service) CreateService(ctx context.Context, req *models.CreateServiceRequest) (*models.ServiceResponse, error) {
	s.logger.Info("CreateService: provider=%d, category=%d, duration=%d",
		req.CallerID, req.CategoryID, req.DurationMinutes)

	if req.DurationMinutes == 0 {
		s.logger.Warn("CreateService: zero duration from provider=%d", req.CallerID)
		return nil, fmt.Errorf("%w: durationMinutes must be positive", ErrInvalidInput)
	}

	if err := s.validateStrictModes(ctx, req.CategoryID, req.PriceMin, req.PriceMax); err != nil {
		return nil, err
	}

	svc := &domain.Service{
		ProviderID:      req.CallerID,
		Title:           req.Title,
		Description:     req.Description,
		CategoryID:      req.CategoryID,
		PriceMin:        req.PriceMin,
		PriceMax:        req.PriceMax,
		DurationMinutes: req.DurationMinutes,
		Status:          domain.ServiceStatusActive,
	}

	created, err := s.serviceRepo.Create(ctx, svc)
	if err != nil {
		s.logger.Error("CreateService: repository error for provider=%d: %v", req.CallerID, err)
		return nil, fmt.Errorf("%w: CreateService - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("CreateService: successfully created service id=%d for provider=%d", created.ID, req.CallerID)
	return models.FromDomainService(created), nil
}

// UpdateService перезаписывает изменяемые поля услуги
// Доступно только владельцу; смена категории не переносит услугу между
// индексами категорий (индекс фиксируется при создании)
func (s *Service) UpdateService(ctx context.Context, serviceID int64, req *models.UpdateServiceRequest) (*models.ServiceResponse, error) {
	s.logger.Info("UpdateService: service=%d, caller=%d", serviceID, req.CallerID)

	if req.DurationMinutes == 0 {
		s.logger.Warn("UpdateService: zero duration for service=%d", serviceID)
		return nil, fmt.Errorf("%w: durationMinutes must be positive", ErrInvalidInput)
	}

	svc, err := s.getService(ctx, serviceID, "UpdateService")
	if err != nil {
		return nil, err
	}

	if err := s.policy.CanManageService(svc, req.CallerID); err != nil {
		s.logger.Warn("UpdateService: access denied for caller=%d to service=%d", req.CallerID, serviceID)
		return nil, ErrAccessDenied
	}

	if err := s.validateStrictModes(ctx, req.CategoryID, req.PriceMin, req.PriceMax); err != nil {
		return nil, err
	}

	upd := domain.ServiceUpdate{
		Title:           req.Title,
		Description:     req.Description,
		CategoryID:      req.CategoryID,
		PriceMin:        req.PriceMin,
		PriceMax:        req.PriceMax,
		DurationMinutes: req.DurationMinutes,
	}

	if err := s.serviceRepo.Update(ctx, serviceID, upd); err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			return nil, ErrServiceNotFound
		}
		s.logger.Error("UpdateService: repository error for service=%d: %v", serviceID, err)
		return nil, fmt.Errorf("%w: UpdateService - repository error: %v", ErrInternal, err)
	}

	updated, err := s.getService(ctx, serviceID, "UpdateService")
	if err != nil {
		return nil, err
	}

	s.logger.Info("UpdateService: successfully updated service id=%d", serviceID)
	return models.FromDomainService(updated), nil
}

// SetServiceStatus меняет статус услуги (active / paused / inactive)
// Смена статуса не каскадирует: живые бронирования по услуге остаются
// действительными и завершаемыми
func (s *Service) SetServiceStatus(ctx context.Context, serviceID int64, req *models.SetStatusRequest) error {
	s.logger.Info("SetServiceStatus: service=%d, status=%s, caller=%d", serviceID, req.Status, req.CallerID)

	status := domain.ServiceStatus(req.Status)
	if !domain.ValidServiceStatus(status) {
		s.logger.Warn("SetServiceStatus: invalid status=%s for service=%d", req.Status, serviceID)
		return fmt.Errorf("%w: invalid service status", ErrInvalidInput)
	}

	svc, err := s.getService(ctx, serviceID, "SetServiceStatus")
	if err != nil {
		return err
	}

	if err := s.policy.CanManageService(svc, req.CallerID); err != nil {
		s.logger.Warn("SetServiceStatus: access denied for caller=%d to service=%d", req.CallerID, serviceID)
		return ErrAccessDenied
	}

	if err := s.serviceRepo.UpdateStatus(ctx, serviceID, status); err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			return ErrServiceNotFound
		}
		s.logger.Error("SetServiceStatus: repository error for service=%d: %v", serviceID, err)
		return fmt.Errorf("%w: SetServiceStatus - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("SetServiceStatus: service id=%d now %s", serviceID, status)
	return nil
}

// GetService получает услугу по ID
func (s *Service) GetService(ctx context.Context, serviceID int64) (*models.ServiceResponse, error) {
	svc, err := s.getService(ctx, serviceID, "GetService")
	if err != nil {
		return nil, err
	}
	return models.FromDomainService(svc), nil
}

// GetServicesByCategory получает страницу услуг категории
// Индекс append-only: услуга числится в категории, назначенной при создании
func (s *Service) GetServicesByCategory(ctx context.Context, categoryID int64, page domain.Page) (*models.ServiceListResponse, error) {
	total, services, err := s.serviceRepo.ListByCategory(ctx, categoryID, page)
	if err != nil {
		s.logger.Error("GetServicesByCategory: repository error for category=%d: %v", categoryID, err)
		return nil, fmt.Errorf("%w: GetServicesByCategory - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainServiceList(total, services), nil
}

// GetServicesByProvider получает страницу услуг провайдера
func (s *Service) GetServicesByProvider(ctx context.Context, providerID int64, page domain.Page) (*models.ServiceListResponse, error) {
	total, services, err := s.serviceRepo.ListByProvider(ctx, providerID, page)
	if err != nil {
		s.logger.Error("GetServicesByProvider: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: GetServicesByProvider - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainServiceList(total, services), nil
}

// Вспомогательные методы

func (s *Service) getService(ctx context.Context, serviceID int64, op string) (*domain.Service, error) {
	svc, err := s.serviceRepo.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrServiceNotFound) {
			s.logger.Warn("%s: service id=%d not found", op, serviceID)
			return nil, ErrServiceNotFound
		}
		s.logger.Error("%s: repository error for service id=%d: %v", op, serviceID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return svc, nil
}

// validateStrictModes применяет опциональные строгие проверки
// При выключенных режимах ядро принимает любые значения (контракт источника)
func (s *Service) validateStrictModes(ctx context.Context, categoryID int64, priceMin, priceMax uint64) error {
	if s.opts.EnforcePriceRange && priceMin > priceMax {
		return fmt.Errorf("%w: priceMin must not exceed priceMax", ErrInvalidInput)
	}

	if s.opts.ValidateCategories && s.categoryClient != nil {
		active, err := s.categoryClient.IsCategoryActive(ctx, categoryID)
		if err != nil {
			s.logger.Error("validateStrictModes: category check failed for category=%d: %v", categoryID, err)
			return fmt.Errorf("%w: category check failed: %v", ErrInternal, err)
		}
		if !active {
			return ErrCategoryInactive
		}
	}

	return nil
}
