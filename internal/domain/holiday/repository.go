package holiday

import (
	"context"
	"time"
)

type HolidayRepository interface {
	Create(ctx context.Context, h Holiday) (Holiday, error)
	// Upsert inserts or refreshes a holiday keyed by (date, scope, state, city).
	Upsert(ctx context.Context, h Holiday) error
	GetByID(ctx context.Context, id string) (Holiday, error)
	List(ctx context.Context, filter HolidayFilter) ([]Holiday, error)
	ListBetween(ctx context.Context, start, end time.Time) ([]Holiday, error)
	Delete(ctx context.Context, id string) error
}
