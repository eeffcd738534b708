package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/holiday"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/database"
)

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) holiday.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

const holidayColumns = `id, date, name, scope, NULLIF(state, ''), NULLIF(city, ''), active, source, created_at, updated_at`

// state and city are stored as ” when absent so the natural key stays unique.
func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func scanHoliday(row pgx.Row) (holiday.Holiday, error) {
	var h holiday.Holiday
	err := row.Scan(
		&h.ID,
		&h.Date,
		&h.Name,
		&h.Scope,
		&h.State,
		&h.City,
		&h.Active,
		&h.Source,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return holiday.Holiday{}, holiday.ErrHolidayNotFound
		}
		return holiday.Holiday{}, err
	}
	return h, nil
}

// Create implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) Create(ctx context.Context, h holiday.Holiday) (holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO holidays (date, name, scope, state, city, active, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + holidayColumns

	// unique violations surface unwrapped so the service can map them
	return scanHoliday(q.QueryRow(ctx, query,
		h.Date,
		h.Name,
		h.Scope,
		orEmpty(h.State),
		orEmpty(h.City),
		h.Active,
		h.Source,
	))
}

// Upsert implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) Upsert(ctx context.Context, h holiday.Holiday) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO holidays (date, name, scope, state, city, active, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (date, scope, state, city) DO UPDATE
		SET name = EXCLUDED.name, active = EXCLUDED.active, source = EXCLUDED.source, updated_at = NOW()
	`
	_, err := q.Exec(ctx, query,
		h.Date,
		h.Name,
		h.Scope,
		orEmpty(h.State),
		orEmpty(h.City),
		h.Active,
		h.Source,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert holiday: %w", err)
	}
	return nil
}

// GetByID implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) GetByID(ctx context.Context, id string) (holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + holidayColumns + ` FROM holidays WHERE id = $1`
	return scanHoliday(q.QueryRow(ctx, query, id))
}

// List implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) List(ctx context.Context, filter holiday.HolidayFilter) ([]holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	where := "TRUE"
	args := []interface{}{}
	argIdx := 1

	if filter.Year != nil {
		where += fmt.Sprintf(" AND EXTRACT(YEAR FROM date) = $%d", argIdx)
		args = append(args, *filter.Year)
		argIdx++
	}
	if filter.Scope != nil && *filter.Scope != "" {
		where += fmt.Sprintf(" AND scope = $%d", argIdx)
		args = append(args, *filter.Scope)
		argIdx++
	}
	if filter.State != nil && *filter.State != "" {
		where += fmt.Sprintf(" AND UPPER(state) = UPPER($%d)", argIdx)
		args = append(args, *filter.State)
		argIdx++
	}
	if filter.City != nil && *filter.City != "" {
		where += fmt.Sprintf(" AND LOWER(city) = LOWER($%d)", argIdx)
		args = append(args, *filter.City)
		argIdx++
	}

	query := `SELECT ` + holidayColumns + ` FROM holidays WHERE ` + where + ` ORDER BY date, scope`
	return r.query(ctx, q, query, args...)
}

// ListBetween returns the active holidays of every scope in [start, end].
func (r *holidayRepositoryImpl) ListBetween(ctx context.Context, start, end time.Time) ([]holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + holidayColumns + `
		FROM holidays
		WHERE date BETWEEN $1 AND $2 AND active = TRUE
		ORDER BY date
	`
	return r.query(ctx, q, query, start, end)
}

func (r *holidayRepositoryImpl) query(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]holiday.Holiday, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []holiday.Holiday
	for rows.Next() {
		h, err := scanHoliday(rows)
		if err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// Delete implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM holidays WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return holiday.ErrHolidayNotFound
	}
	return nil
}
