package availability

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-MarketplaceService/pkg/dbmetrics"
	"github.com/m04kA/SMC-MarketplaceService/pkg/psqlbuilder"
)

// Repository репозиторий реестра доступности слотов
// Ключ (service_id, start_time); отсутствие строки эквивалентно
// available = false: слот нельзя забронировать, пока провайдер его не открыл
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория доступности
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Set идемпотентно выставляет флаг доступности слота (upsert)
func (r *Repository) Set(ctx context.Context, serviceID, startTime int64, available bool) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("availability_slots").
		Columns("service_id", "start_time", "available").
		Values(serviceID, startTime, available).
		Suffix("ON CONFLICT (service_id, start_time) DO UPDATE SET available = EXCLUDED.available").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Set - build upsert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Set - execute upsert: %w", ErrExecQuery, err)
	}

	return nil
}

// Get возвращает флаг доступности слота; для незаданного ключа false
func (r *Repository) Get(ctx context.Context, serviceID, startTime int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("available").
		From("availability_slots").
		Where(squirrel.Eq{"service_id": serviceID, "start_time": startTime}).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	var available bool
	err = executor.QueryRowContext(ctx, query, args...).Scan(&available)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: Get - scan availability: %w", ErrScanRow, err)
	}

	return available, nil
}

// Claim атомарно захватывает слот: compare-and-swap available true -> false
// Ровно один из конкурирующих вызовов получает nil, остальные
// ErrSlotNotAvailable; незаданный ключ также недоступен для захвата
func (r *Repository) Claim(ctx context.Context, serviceID, startTime int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("availability_slots").
		Set("available", false).
		Where(squirrel.Eq{
			"service_id": serviceID,
			"start_time": startTime,
			"available":  true,
		}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Claim - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Claim - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Claim - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrSlotNotAvailable
	}

	return nil
}

// Release возвращает слот в доступное состояние (отмена бронирования)
func (r *Repository) Release(ctx context.Context, serviceID, startTime int64) error {
	return r.Set(ctx, serviceID, startTime, true)
}
