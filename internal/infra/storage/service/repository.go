package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-MarketplaceService/internal/domain"
	"github.com/m04kA/SMC-MarketplaceService/pkg/dbmetrics"
	"github.com/m04kA/SMC-MarketplaceService/pkg/psqlbuilder"
)

// serviceColumns колонки услуги в порядке сканирования
var serviceColumns = []string{
	"id",
	"provider_id",
	"title",
	"description",
	"category_id",
	"price_min",
	"price_max",
	"duration_minutes",
	"status",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с услугами каталога
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория услуг
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую услугу
// ID выделяется общей последовательностью entity_ids (строго возрастающие
// идентификаторы, единые для услуг и бронирований)
// indexed_category_id фиксирует категорию на момент создания: индекс
// категории append-only и при смене категории не переносится
func (r *Repository) Create(ctx context.Context, svc *domain.Service) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("services").
		Columns(
			"provider_id",
			"title",
			"description",
			"category_id",
			"indexed_category_id",
			"price_min",
			"price_max",
			"duration_minutes",
			"status",
		).
		Values(
			svc.ProviderID,
			svc.Title,
			svc.Description,
			svc.CategoryID,
			svc.CategoryID,
			svc.PriceMin,
			svc.PriceMax,
			svc.DurationMinutes,
			svc.Status,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&svc.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	svc.CreatedAt = createdAt.Time
	svc.UpdatedAt = updatedAt.Time

	return svc, nil
}

// GetByID получает услугу по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(serviceColumns...).
		From("services").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	svc, err := scanService(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan service: %w", ErrScanRow, err)
	}

	return svc, nil
}

// Update перезаписывает изменяемые поля услуги и обновляет updated_at
// indexed_category_id намеренно не трогается: индекс категории фиксируется
// на момент создания услуги
func (r *Repository) Update(ctx context.Context, id int64, upd domain.ServiceUpdate) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("services").
		Set("title", upd.Title).
		Set("description", upd.Description).
		Set("category_id", upd.CategoryID).
		Set("price_min", upd.PriceMin).
		Set("price_max", upd.PriceMax).
		Set("duration_minutes", upd.DurationMinutes).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrServiceNotFound
	}

	return nil
}

// UpdateStatus обновляет статус услуги
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.ServiceStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("services").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrServiceNotFound
	}

	return nil
}

// ListByProvider получает страницу услуг провайдера в порядке создания
// Возвращает общее количество записей индекса и окно [offset, offset+limit)
func (r *Repository) ListByProvider(ctx context.Context, providerID int64, page domain.Page) (int64, []*domain.Service, error) {
	return r.list(ctx, squirrel.Eq{"provider_id": providerID}, page)
}

// ListByCategory получает страницу услуг категории в порядке создания
// Фильтрует по indexed_category_id: услуга остаётся в индексе категории,
// назначенной при создании, даже после смены category_id
func (r *Repository) ListByCategory(ctx context.Context, categoryID int64, page domain.Page) (int64, []*domain.Service, error) {
	return r.list(ctx, squirrel.Eq{"indexed_category_id": categoryID}, page)
}

func (r *Repository) list(ctx context.Context, where squirrel.Eq, page domain.Page) (int64, []*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	countQuery, countArgs, err := psqlbuilder.Select("COUNT(*)").
		From("services").
		Where(where).
		ToSql()
	if err != nil {
		return 0, nil, fmt.Errorf("%w: list - build count query: %v", ErrBuildQuery, err)
	}

	var total int64
	if err := executor.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return 0, nil, fmt.Errorf("%w: list - scan count: %w", ErrScanRow, err)
	}

	if page.Offset >= total || page.Limit <= 0 {
		return total, []*domain.Service{}, nil
	}

	query, args, err := psqlbuilder.Select(serviceColumns...).
		From("services").
		Where(where).
		OrderBy("id ASC").
		Offset(uint64(page.Offset)).
		Limit(uint64(page.Limit)).
		ToSql()
	if err != nil {
		return 0, nil, fmt.Errorf("%w: list - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: list - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	services := make([]*domain.Service, 0)
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return 0, nil, fmt.Errorf("%w: list - scan row: %w", ErrScanRow, err)
		}
		services = append(services, svc)
	}

	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("%w: list - rows error: %w", ErrScanRow, err)
	}

	return total, services, nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanService(row rowScanner) (*domain.Service, error) {
	var svc domain.Service
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&svc.ID,
		&svc.ProviderID,
		&svc.Title,
		&svc.Description,
		&svc.CategoryID,
		&svc.PriceMin,
		&svc.PriceMax,
		&svc.DurationMinutes,
		&svc.Status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	svc.CreatedAt = createdAt.Time
	svc.UpdatedAt = updatedAt.Time

	return &svc, nil
}
