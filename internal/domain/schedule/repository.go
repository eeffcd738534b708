package schedule

import "context"

type RuleRepository interface {
	Create(ctx context.Context, rule Rule) (Rule, error)
	GetByID(ctx context.Context, id string) (Rule, error)
	GetActiveByUserID(ctx context.Context, userID string) (*Rule, error)
	GetActiveBySectorID(ctx context.Context, sectorID string) (*Rule, error)
	List(ctx context.Context, filter RuleFilter) ([]Rule, error)
	Update(ctx context.Context, rule Rule) error
	Delete(ctx context.Context, id string) error
}
