package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmwangi/casetrack/internal/model"
)

// ForecastRepo provides CRUD for the date-keyed forecast items that
// feed the calendar view. Forecasts are plain per-user rows with no
// custom attributes.
type ForecastRepo struct {
	db *sql.DB
}

// NewForecastRepo constructs a ForecastRepo with the given DB handle.
func NewForecastRepo(db *sql.DB) *ForecastRepo {
	return &ForecastRepo{db: db}
}

// Create inserts a forecast. An empty title fails with ErrValidation.
func (r *ForecastRepo) Create(ctx context.Context, ownerID uint64, title, description string, date time.Time) (*model.Forecast, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrValidation
	}
	const q = `INSERT INTO forecasts (user_id, title, description, forecast_date) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, ownerID, title, description, date.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID retrieves one forecast.
func (r *ForecastRepo) GetByID(ctx context.Context, id uint64) (*model.Forecast, error) {
	const q = `SELECT id, user_id, title, description, forecast_date, created_at, updated_at
	           FROM forecasts WHERE id = ?`
	var f model.Forecast
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&f.ID, &f.OwnerID, &f.Title, &f.Description, &f.ForecastDate, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrForecastNotFound
		}
		return nil, err
	}
	return &f, nil
}

// ListByOwnerBetween returns an owner's forecasts whose date falls in
// [from, to], ordered by date. The calendar requests one month at a
// time.
func (r *ForecastRepo) ListByOwnerBetween(ctx context.Context, ownerID uint64, from, to time.Time) ([]model.Forecast, error) {
	const q = `SELECT id, user_id, title, description, forecast_date, created_at, updated_at
	           FROM forecasts
	           WHERE user_id = ? AND forecast_date BETWEEN ? AND ?
	           ORDER BY forecast_date, id`
	rows, err := r.db.QueryContext(ctx, q, ownerID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	forecasts := make([]model.Forecast, 0)
	for rows.Next() {
		var f model.Forecast
		if err := rows.Scan(&f.ID, &f.OwnerID, &f.Title, &f.Description, &f.ForecastDate, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		forecasts = append(forecasts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return forecasts, nil
}

// UpdateByIDAndOwner updates title, description and date while
// enforcing ownership. Returns ErrForecastNotFound when no row matches.
func (r *ForecastRepo) UpdateByIDAndOwner(ctx context.Context, id, ownerID uint64, title, description string, date time.Time) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrValidation
	}
	const q = `UPDATE forecasts
	           SET title = ?, description = ?, forecast_date = ?, updated_at = UTC_TIMESTAMP()
	           WHERE id = ? AND user_id = ?`
	res, err := r.db.ExecContext(ctx, q, title, description, date.Format("2006-01-02"), id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrForecastNotFound
	}
	return nil
}

// UpdateByID updates a forecast regardless of owner. Admin-only.
func (r *ForecastRepo) UpdateByID(ctx context.Context, id uint64, title, description string, date time.Time) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrValidation
	}
	const q = `UPDATE forecasts
	           SET title = ?, description = ?, forecast_date = ?, updated_at = UTC_TIMESTAMP()
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, title, description, date.Format("2006-01-02"), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrForecastNotFound
	}
	return nil
}

// DeleteByID deletes a forecast regardless of owner. Admin-only.
func (r *ForecastRepo) DeleteByID(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM forecasts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrForecastNotFound
	}
	return nil
}

// DeleteByIDAndOwner deletes a forecast while enforcing ownership.
func (r *ForecastRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM forecasts WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrForecastNotFound
	}
	return nil
}
