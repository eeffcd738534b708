package request

import "context"

type WorkflowService interface {
	Submit(ctx context.Context, req SubmitRequest) (Request, error)
	Decide(ctx context.Context, req DecideRequest) (Request, error)
	Withdraw(ctx context.Context, requestID, userID string) (Request, error)
	Get(ctx context.Context, requestID string) (Request, error)
	ListMine(ctx context.Context, userID string, filter RequestFilter) ([]Request, error)
	ListPendingFor(ctx context.Context, approverID string) ([]Request, error)
}
