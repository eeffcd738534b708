package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/timerecord"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/database"
)

type timeRecordRepositoryImpl struct {
	db *database.DB
}

func NewTimeRecordRepository(db *database.DB) timerecord.RecordRepository {
	return &timeRecordRepositoryImpl{db: db}
}

const timeRecordColumns = `id, user_id, date, first_in, first_out, second_in, second_out, break_minutes,
	work_mode, manual, flexible_exempt, request_id, observation, superseded, superseded_by, created_at, updated_at`

func scanTimeRecord(row pgx.Row) (timerecord.Record, error) {
	var rec timerecord.Record
	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Date,
		&rec.FirstIn,
		&rec.FirstOut,
		&rec.SecondIn,
		&rec.SecondOut,
		&rec.BreakMinutes,
		&rec.WorkMode,
		&rec.Manual,
		&rec.FlexibleExempt,
		&rec.RequestID,
		&rec.Observation,
		&rec.Superseded,
		&rec.SupersededBy,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	return rec, err
}

// Create implements timerecord.RecordRepository. A second active record for the
// same day violates uq_time_records_active; callers map that to a retry.
func (r *timeRecordRepositoryImpl) Create(ctx context.Context, rec timerecord.Record) (timerecord.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO time_records (
			id, user_id, date, first_in, first_out, second_in, second_out, break_minutes,
			work_mode, manual, flexible_exempt, request_id, observation
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + timeRecordColumns

	created, err := scanTimeRecord(q.QueryRow(ctx, query,
		rec.ID,
		rec.UserID,
		rec.Date,
		rec.FirstIn,
		rec.FirstOut,
		rec.SecondIn,
		rec.SecondOut,
		rec.BreakMinutes,
		rec.WorkMode,
		rec.Manual,
		rec.FlexibleExempt,
		rec.RequestID,
		rec.Observation,
	))
	if err != nil {
		return timerecord.Record{}, err
	}
	return created, nil
}

// GetActive implements timerecord.RecordRepository. The row is locked for the
// rest of the surrounding transaction.
func (r *timeRecordRepositoryImpl) GetActive(ctx context.Context, userID string, date time.Time) (*timerecord.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + timeRecordColumns + `
		FROM time_records
		WHERE user_id = $1 AND date = $2 AND superseded = FALSE
		FOR UPDATE
	`
	rec, err := scanTimeRecord(q.QueryRow(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get time record: %w", err)
	}
	return &rec, nil
}

// UpdateClock writes the clock slots if the row has not changed since it was read.
func (r *timeRecordRepositoryImpl) UpdateClock(ctx context.Context, rec timerecord.Record) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE time_records
		SET first_in = $1, first_out = $2, second_in = $3, second_out = $4,
			break_minutes = $5, updated_at = NOW()
		WHERE id = $6 AND superseded = FALSE AND updated_at = $7
	`
	commandTag, err := q.Exec(ctx, query,
		rec.FirstIn,
		rec.FirstOut,
		rec.SecondIn,
		rec.SecondOut,
		rec.BreakMinutes,
		rec.ID,
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update time record: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return database.ErrConcurrentModification
	}
	return nil
}

// Supersede implements timerecord.RecordRepository.
func (r *timeRecordRepositoryImpl) Supersede(ctx context.Context, id string, supersededBy string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE time_records
		SET superseded = TRUE, superseded_by = $1, updated_at = NOW()
		WHERE id = $2 AND superseded = FALSE
	`
	commandTag, err := q.Exec(ctx, query, supersededBy, id)
	if err != nil {
		return fmt.Errorf("failed to supersede time record: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return database.ErrConcurrentModification
	}
	return nil
}

// ListBetween implements timerecord.RecordRepository.
func (r *timeRecordRepositoryImpl) ListBetween(ctx context.Context, userID string, start, end time.Time) ([]timerecord.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + timeRecordColumns + `
		FROM time_records
		WHERE user_id = $1 AND date BETWEEN $2 AND $3 AND superseded = FALSE
		ORDER BY date
	`
	rows, err := q.Query(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list time records: %w", err)
	}
	defer rows.Close()

	var records []timerecord.Record
	for rows.Next() {
		rec, err := scanTimeRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
