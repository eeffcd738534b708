package period

import (
	"context"
	"time"
)

type Service interface {
	// ComputePeriod classifies each day in [start, min(end, asOf)]. A nil asOf means end.
	ComputePeriod(ctx context.Context, userID string, start, end time.Time, asOf *time.Time) (Period, error)
}

// CacheInvalidator drops cached periods after their inputs change.
type CacheInvalidator interface {
	InvalidateUser(userID string)
	InvalidateAll()
}
