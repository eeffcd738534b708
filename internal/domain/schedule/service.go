package schedule

import "context"

type ScheduleService interface {
	Create(ctx context.Context, req CreateRuleRequest) (RuleResponse, error)
	Get(ctx context.Context, id string) (RuleResponse, error)
	List(ctx context.Context, filter RuleFilter) ([]RuleResponse, error)
	Update(ctx context.Context, req UpdateRuleRequest) (RuleResponse, error)
	Delete(ctx context.Context, id string) error
}
