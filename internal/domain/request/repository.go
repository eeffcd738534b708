package request

import (
	"context"
	"time"
)

type RequestRepository interface {
	Create(ctx context.Context, r Request) (Request, error)
	// GetByID loads the request with its steps ordered by seq.
	GetByID(ctx context.Context, id string) (Request, error)
	FindOpenDuplicate(ctx context.Context, requesterID string, t Type, start, end time.Time) (*Request, error)
	// UpdateState persists status and bumps the version. It fails with
	// database.ErrConcurrentModification when expectedVersion is stale.
	UpdateState(ctx context.Context, r Request, expectedVersion int) error
	// AppendStep fails with database.ErrConcurrentModification when the seq is taken.
	AppendStep(ctx context.Context, step ApprovalStep) (ApprovalStep, error)
	List(ctx context.Context, filter RequestFilter) ([]Request, error)
	ListPendingFor(ctx context.Context, approverID string) ([]Request, error)
	// ListApproved returns approved requests of the given type overlapping [start, end].
	ListApproved(ctx context.Context, userID string, t Type, start, end time.Time) ([]Request, error)
}
