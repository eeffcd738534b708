package period

import (
	"context"
	"time"
)

type LockRepository interface {
	// HoldUser serializes lock changes and time record writes of one user
	// until the surrounding transaction ends.
	HoldUser(ctx context.Context, userID string) error
	// Lock fails with database.ErrConcurrentModification if the same range is already locked.
	Lock(ctx context.Context, lock Lock) (Lock, error)
	ReopenDay(ctx context.Context, day ReopenedDay) error
	// LockedDays returns the dates in [start, end] covered by a lock and not reopened.
	LockedDays(ctx context.Context, userID string, start, end time.Time) ([]time.Time, error)
	// FindCovering returns a lock containing the whole range, or nil.
	FindCovering(ctx context.Context, userID string, start, end time.Time) (*Lock, error)
}
