package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/request"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/database"
)

type requestRepositoryImpl struct {
	db *database.DB
}

func NewRequestRepository(db *database.DB) request.RequestRepository {
	return &requestRepositoryImpl{db: db}
}

const requestColumns = `id, requester_id, submitted_by, type, subject_start, subject_end,
	adjustment, justification, notes, priority, status, chain, version, withdrawn_at, created_at, updated_at`

func scanRequest(row pgx.Row) (request.Request, error) {
	var (
		r                           request.Request
		adjustmentJSON, justifyJSON []byte
		chainJSON                   []byte
	)
	err := row.Scan(
		&r.ID,
		&r.RequesterID,
		&r.SubmittedBy,
		&r.Type,
		&r.SubjectStart,
		&r.SubjectEnd,
		&adjustmentJSON,
		&justifyJSON,
		&r.Notes,
		&r.Priority,
		&r.Status,
		&chainJSON,
		&r.Version,
		&r.WithdrawnAt,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return request.Request{}, request.ErrRequestNotFound
		}
		return request.Request{}, err
	}

	if len(adjustmentJSON) > 0 {
		r.Adjustment = &request.AdjustmentPayload{}
		if err := json.Unmarshal(adjustmentJSON, r.Adjustment); err != nil {
			return request.Request{}, fmt.Errorf("failed to decode adjustment of request %s: %w", r.ID, err)
		}
	}
	if len(justifyJSON) > 0 {
		r.Justification = &request.JustificationPayload{}
		if err := json.Unmarshal(justifyJSON, r.Justification); err != nil {
			return request.Request{}, fmt.Errorf("failed to decode justification of request %s: %w", r.ID, err)
		}
	}
	if err := json.Unmarshal(chainJSON, &r.Chain); err != nil {
		return request.Request{}, fmt.Errorf("failed to decode approval chain of request %s: %w", r.ID, err)
	}
	return r, nil
}

// marshalOptional returns nil for a nil payload so the column stays NULL.
func marshalOptional[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func nullableID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

// Create implements request.RequestRepository.
func (r *requestRepositoryImpl) Create(ctx context.Context, req request.Request) (request.Request, error) {
	q := GetQuerier(ctx, r.db)

	adjustmentJSON, err := marshalOptional(req.Adjustment)
	if err != nil {
		return request.Request{}, fmt.Errorf("failed to encode adjustment: %w", err)
	}
	justifyJSON, err := marshalOptional(req.Justification)
	if err != nil {
		return request.Request{}, fmt.Errorf("failed to encode justification: %w", err)
	}
	chainJSON, err := json.Marshal(req.Chain)
	if err != nil {
		return request.Request{}, fmt.Errorf("failed to encode approval chain: %w", err)
	}

	query := `
		INSERT INTO requests (
			id, requester_id, submitted_by, type, subject_start, subject_end,
			adjustment, justification, notes, priority, status, chain, next_approver_id,
			version, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)
		RETURNING ` + requestColumns

	createdAt := req.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	created, err := scanRequest(q.QueryRow(ctx, query,
		req.ID,
		req.RequesterID,
		req.SubmittedBy,
		req.Type,
		req.SubjectStart,
		req.SubjectEnd,
		adjustmentJSON,
		justifyJSON,
		req.Notes,
		req.Priority,
		req.Status,
		chainJSON,
		nullableID(req.NextApproverID()),
		req.Version,
		createdAt,
	))
	if err != nil {
		return request.Request{}, err
	}
	return created, nil
}

// GetByID implements request.RequestRepository.
func (r *requestRepositoryImpl) GetByID(ctx context.Context, id string) (request.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1`
	req, err := scanRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		return request.Request{}, err
	}

	steps, err := r.stepsFor(ctx, q, []string{req.ID})
	if err != nil {
		return request.Request{}, err
	}
	req.Steps = steps[req.ID]
	return req, nil
}

// FindOpenDuplicate implements request.RequestRepository.
func (r *requestRepositoryImpl) FindOpenDuplicate(ctx context.Context, requesterID string, t request.Type, start, end time.Time) (*request.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + requestColumns + `
		FROM requests
		WHERE requester_id = $1 AND type = $2 AND subject_start = $3 AND subject_end = $4
		  AND status IN ('pending', 'in_review')
		LIMIT 1
	`
	req, err := scanRequest(q.QueryRow(ctx, query, requesterID, t, start, end))
	if err != nil {
		if errors.Is(err, request.ErrRequestNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up duplicate request: %w", err)
	}
	return &req, nil
}

// UpdateState implements request.RequestRepository.
func (r *requestRepositoryImpl) UpdateState(ctx context.Context, req request.Request, expectedVersion int) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE requests
		SET status = $1, next_approver_id = $2, withdrawn_at = $3, updated_at = $4, version = version + 1
		WHERE id = $5 AND version = $6
	`
	updatedAt := req.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	commandTag, err := q.Exec(ctx, query,
		req.Status,
		nullableID(req.NextApproverID()),
		req.WithdrawnAt,
		updatedAt,
		req.ID,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update request: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		var exists bool
		if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM requests WHERE id = $1)`, req.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return request.ErrRequestNotFound
		}
		return database.ErrConcurrentModification
	}
	return nil
}

// AppendStep implements request.RequestRepository.
func (r *requestRepositoryImpl) AppendStep(ctx context.Context, step request.ApprovalStep) (request.ApprovalStep, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO approval_steps (id, request_id, seq, approver_id, role, decision, observation, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, request_id, seq, approver_id, role, decision, observation, decided_at
	`
	saved, err := scanStep(q.QueryRow(ctx, query,
		step.ID,
		step.RequestID,
		step.Seq,
		step.ApproverID,
		step.Role,
		step.Decision,
		step.Observation,
		step.DecidedAt,
	))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return request.ApprovalStep{}, database.ErrConcurrentModification
		}
		return request.ApprovalStep{}, fmt.Errorf("failed to append approval step: %w", err)
	}
	return saved, nil
}

// List implements request.RequestRepository.
func (r *requestRepositoryImpl) List(ctx context.Context, filter request.RequestFilter) ([]request.Request, error) {
	q := GetQuerier(ctx, r.db)

	where := "TRUE"
	args := []interface{}{}
	argIdx := 1

	if filter.RequesterID != nil && *filter.RequesterID != "" {
		where += fmt.Sprintf(" AND requester_id = $%d", argIdx)
		args = append(args, *filter.RequesterID)
		argIdx++
	}
	if filter.Type != nil && *filter.Type != "" {
		where += fmt.Sprintf(" AND type = $%d", argIdx)
		args = append(args, *filter.Type)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	query := `SELECT ` + requestColumns + ` FROM requests WHERE ` + where + ` ORDER BY created_at DESC`
	return r.listWithSteps(ctx, q, query, args...)
}

// ListPendingFor implements request.RequestRepository.
func (r *requestRepositoryImpl) ListPendingFor(ctx context.Context, approverID string) ([]request.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + requestColumns + `
		FROM requests
		WHERE next_approver_id = $1 AND status IN ('pending', 'in_review')
		ORDER BY created_at
	`
	return r.listWithSteps(ctx, q, query, approverID)
}

// ListApproved implements request.RequestRepository.
func (r *requestRepositoryImpl) ListApproved(ctx context.Context, userID string, t request.Type, start, end time.Time) ([]request.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + requestColumns + `
		FROM requests
		WHERE requester_id = $1 AND type = $2 AND status IN ('approved', 'completed')
		  AND subject_start <= $4 AND subject_end >= $3
		ORDER BY subject_start
	`
	return r.listWithSteps(ctx, q, query, userID, t, start, end)
}

func (r *requestRepositoryImpl) listWithSteps(ctx context.Context, q database.Querier, query string, args ...interface{}) ([]request.Request, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}

	var requests []request.Request
	var ids []string
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		requests = append(requests, req)
		ids = append(ids, req.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return requests, nil
	}

	steps, err := r.stepsFor(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	for i := range requests {
		requests[i].Steps = steps[requests[i].ID]
	}
	return requests, nil
}

func (r *requestRepositoryImpl) stepsFor(ctx context.Context, q database.Querier, requestIDs []string) (map[string][]request.ApprovalStep, error) {
	query := `
		SELECT id, request_id, seq, approver_id, role, decision, observation, decided_at
		FROM approval_steps
		WHERE request_id = ANY($1)
		ORDER BY request_id, seq
	`
	rows, err := q.Query(ctx, query, requestIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load approval steps: %w", err)
	}
	defer rows.Close()

	steps := make(map[string][]request.ApprovalStep, len(requestIDs))
	for rows.Next() {
		step, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		steps[step.RequestID] = append(steps[step.RequestID], step)
	}
	return steps, rows.Err()
}

func scanStep(row pgx.Row) (request.ApprovalStep, error) {
	var step request.ApprovalStep
	err := row.Scan(
		&step.ID,
		&step.RequestID,
		&step.Seq,
		&step.ApproverID,
		&step.Role,
		&step.Decision,
		&step.Observation,
		&step.DecidedAt,
	)
	return step, err
}
