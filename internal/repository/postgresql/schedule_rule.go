package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/schedule"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/database"
)

type ruleRepositoryImpl struct {
	db *database.DB
}

func NewRuleRepository(db *database.DB) schedule.RuleRepository {
	return &ruleRepositoryImpl{db: db}
}

const ruleColumns = `id, name, type, user_id, sector_id, daily_hours::float8, weekly_hours::float8,
	allowed_days, start_minute, end_minute, tolerance_minutes, work_mode, active, created_at, updated_at`

// allowed_days is stored as SMALLINT[] with Sunday = 0.
func weekdaysToInts(days []time.Weekday) []int16 {
	out := make([]int16, len(days))
	for i, d := range days {
		out[i] = int16(d)
	}
	return out
}

func scanRule(row pgx.Row) (schedule.Rule, error) {
	var rule schedule.Rule
	var days []int16
	err := row.Scan(
		&rule.ID,
		&rule.Name,
		&rule.Type,
		&rule.UserID,
		&rule.SectorID,
		&rule.DailyHours,
		&rule.WeeklyHours,
		&days,
		&rule.StartMinute,
		&rule.EndMinute,
		&rule.ToleranceMinutes,
		&rule.WorkMode,
		&rule.Active,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.Rule{}, schedule.ErrScheduleRuleNotFound
		}
		return schedule.Rule{}, err
	}
	rule.AllowedDays = make([]time.Weekday, len(days))
	for i, d := range days {
		rule.AllowedDays[i] = time.Weekday(d)
	}
	return rule, nil
}

// Create implements schedule.RuleRepository.
func (r *ruleRepositoryImpl) Create(ctx context.Context, rule schedule.Rule) (schedule.Rule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO schedule_rules (
			name, type, user_id, sector_id, daily_hours, weekly_hours, allowed_days,
			start_minute, end_minute, tolerance_minutes, work_mode, active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + ruleColumns

	created, err := scanRule(q.QueryRow(ctx, query,
		rule.Name,
		rule.Type,
		rule.UserID,
		rule.SectorID,
		rule.DailyHours,
		rule.WeeklyHours,
		weekdaysToInts(rule.AllowedDays),
		rule.StartMinute,
		rule.EndMinute,
		rule.ToleranceMinutes,
		rule.WorkMode,
		rule.Active,
	))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return schedule.Rule{}, schedule.ErrScheduleOwnerExists
		}
		return schedule.Rule{}, fmt.Errorf("failed to create schedule rule: %w", err)
	}
	return created, nil
}

// GetByID implements schedule.RuleRepository.
func (r *ruleRepositoryImpl) GetByID(ctx context.Context, id string) (schedule.Rule, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + ruleColumns + ` FROM schedule_rules WHERE id = $1`
	return scanRule(q.QueryRow(ctx, query, id))
}

// GetActiveByUserID returns nil when the user has no rule of their own.
func (r *ruleRepositoryImpl) GetActiveByUserID(ctx context.Context, userID string) (*schedule.Rule, error) {
	return r.getActive(ctx, "user_id", userID)
}

// GetActiveBySectorID returns nil when the sector has no rule of its own.
func (r *ruleRepositoryImpl) GetActiveBySectorID(ctx context.Context, sectorID string) (*schedule.Rule, error) {
	return r.getActive(ctx, "sector_id", sectorID)
}

func (r *ruleRepositoryImpl) getActive(ctx context.Context, column, ownerID string) (*schedule.Rule, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + ruleColumns + ` FROM schedule_rules WHERE ` + column + ` = $1 AND active = TRUE LIMIT 1`
	rule, err := scanRule(q.QueryRow(ctx, query, ownerID))
	if err != nil {
		if errors.Is(err, schedule.ErrScheduleRuleNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// List implements schedule.RuleRepository.
func (r *ruleRepositoryImpl) List(ctx context.Context, filter schedule.RuleFilter) ([]schedule.Rule, error) {
	q := GetQuerier(ctx, r.db)

	where := "TRUE"
	args := []interface{}{}
	argIdx := 1

	if filter.UserID != nil && *filter.UserID != "" {
		where += fmt.Sprintf(" AND user_id = $%d", argIdx)
		args = append(args, *filter.UserID)
		argIdx++
	}
	if filter.SectorID != nil && *filter.SectorID != "" {
		where += fmt.Sprintf(" AND sector_id = $%d", argIdx)
		args = append(args, *filter.SectorID)
		argIdx++
	}
	if filter.Type != nil && *filter.Type != "" {
		where += fmt.Sprintf(" AND type = $%d", argIdx)
		args = append(args, *filter.Type)
		argIdx++
	}

	query := `SELECT ` + ruleColumns + ` FROM schedule_rules WHERE ` + where + ` ORDER BY name`
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule rules: %w", err)
	}
	defer rows.Close()

	var rules []schedule.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// Update implements schedule.RuleRepository.
func (r *ruleRepositoryImpl) Update(ctx context.Context, rule schedule.Rule) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE schedule_rules
		SET name = $1, type = $2, daily_hours = $3, weekly_hours = $4, allowed_days = $5,
			start_minute = $6, end_minute = $7, tolerance_minutes = $8, work_mode = $9,
			active = $10, updated_at = NOW()
		WHERE id = $11
	`
	commandTag, err := q.Exec(ctx, query,
		rule.Name,
		rule.Type,
		rule.DailyHours,
		rule.WeeklyHours,
		weekdaysToInts(rule.AllowedDays),
		rule.StartMinute,
		rule.EndMinute,
		rule.ToleranceMinutes,
		rule.WorkMode,
		rule.Active,
		rule.ID,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return schedule.ErrScheduleOwnerExists
		}
		return fmt.Errorf("failed to update schedule rule: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return schedule.ErrScheduleRuleNotFound
	}
	return nil
}

// Delete implements schedule.RuleRepository.
func (r *ruleRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM schedule_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete schedule rule: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return schedule.ErrScheduleRuleNotFound
	}
	return nil
}
