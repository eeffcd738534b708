package timerecord

import (
	"context"
	"time"

	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/schedule"
)

// RuleSource supplies the schedule rule that applies to a user.
type RuleSource interface {
	RuleFor(ctx context.Context, userID string) (schedule.Rule, error)
}

type Service interface {
	RecordClock(ctx context.Context, userID string, ts time.Time, direction Direction) (Record, error)
	RecordManualEntry(ctx context.Context, req ManualEntryRequest) (Record, error)
	ApplyAdjustment(ctx context.Context, adj Adjustment) (Record, error)
	ListRecords(ctx context.Context, userID string, start, end time.Time) ([]Record, error)
}

// Adjustment carries the new times of an approved adjustment request.
// Nil times keep the value of the superseded record.
type Adjustment struct {
	RequestID    string
	UserID       string
	Date         time.Time
	FirstIn      *time.Time
	FirstOut     *time.Time
	SecondIn     *time.Time
	SecondOut    *time.Time
	BreakMinutes *int
	Reason       string
}
