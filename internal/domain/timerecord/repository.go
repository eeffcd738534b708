package timerecord

import (
	"context"
	"time"
)

type RecordRepository interface {
	Create(ctx context.Context, record Record) (Record, error)
	// GetActive returns the non-superseded record of the day, or nil.
	GetActive(ctx context.Context, userID string, date time.Time) (*Record, error)
	UpdateClock(ctx context.Context, record Record) error
	Supersede(ctx context.Context, id string, supersededBy string) error
	// ListBetween returns active records with start <= date <= end ordered by date.
	ListBetween(ctx context.Context, userID string, start, end time.Time) ([]Record, error)
}
