package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/period"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/database"
)

type lockRepositoryImpl struct {
	db *database.DB
}

func NewLockRepository(db *database.DB) period.LockRepository {
	return &lockRepositoryImpl{db: db}
}

// HoldUser implements period.LockRepository.
func (r *lockRepositoryImpl) HoldUser(ctx context.Context, userID string) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('period:' || $1::text))`, userID)
	if err != nil {
		return fmt.Errorf("failed to hold user periods: %w", err)
	}
	return nil
}

// Lock implements period.LockRepository.
func (r *lockRepositoryImpl) Lock(ctx context.Context, lock period.Lock) (period.Lock, error) {
	if err := r.HoldUser(ctx, lock.UserID); err != nil {
		return period.Lock{}, err
	}

	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO period_locks (id, user_id, start_date, end_date, request_id, locked_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, start_date, end_date, request_id, locked_at
	`
	var created period.Lock
	err := q.QueryRow(ctx, query,
		lock.ID,
		lock.UserID,
		lock.Start,
		lock.End,
		lock.RequestID,
		lock.LockedAt,
	).Scan(
		&created.ID,
		&created.UserID,
		&created.Start,
		&created.End,
		&created.RequestID,
		&created.LockedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return period.Lock{}, database.ErrConcurrentModification
		}
		return period.Lock{}, fmt.Errorf("failed to lock period: %w", err)
	}
	return created, nil
}

// ReopenDay implements period.LockRepository.
func (r *lockRepositoryImpl) ReopenDay(ctx context.Context, day period.ReopenedDay) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO reopened_days (user_id, date, request_id, reopened_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
	`
	_, err := q.Exec(ctx, query, day.UserID, day.Date, day.RequestID, day.ReopenedAt)
	if err != nil {
		return fmt.Errorf("failed to reopen day: %w", err)
	}
	return nil
}

// LockedDays implements period.LockRepository.
func (r *lockRepositoryImpl) LockedDays(ctx context.Context, userID string, start, end time.Time) ([]time.Time, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT DISTINCT d::date
		FROM period_locks l
		CROSS JOIN LATERAL generate_series(
			GREATEST(l.start_date, $2::date),
			LEAST(l.end_date, $3::date),
			INTERVAL '1 day'
		) AS d
		WHERE l.user_id = $1
		  AND l.start_date <= $3 AND l.end_date >= $2
		  AND NOT EXISTS (
			SELECT 1 FROM reopened_days rd
			WHERE rd.user_id = l.user_id AND rd.date = d::date
		  )
		ORDER BY 1
	`
	rows, err := q.Query(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list locked days: %w", err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

// FindCovering implements period.LockRepository.
func (r *lockRepositoryImpl) FindCovering(ctx context.Context, userID string, start, end time.Time) (*period.Lock, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, user_id, start_date, end_date, request_id, locked_at
		FROM period_locks
		WHERE user_id = $1 AND start_date <= $2 AND end_date >= $3
		ORDER BY locked_at DESC
		LIMIT 1
	`
	var lock period.Lock
	err := q.QueryRow(ctx, query, userID, start, end).Scan(
		&lock.ID,
		&lock.UserID,
		&lock.Start,
		&lock.End,
		&lock.RequestID,
		&lock.LockedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find covering lock: %w", err)
	}
	return &lock, nil
}
