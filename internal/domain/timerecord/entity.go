package timerecord

import (
	"time"

	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/schedule"
)

type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Record holds the clock events of one user on one calendar day, up to two shifts.
// Date is a calendar date at UTC midnight; the clock instants carry their own zone.
type Record struct {
	ID             string
	UserID         string
	Date           time.Time
	FirstIn        *time.Time
	FirstOut       *time.Time
	SecondIn       *time.Time
	SecondOut      *time.Time
	BreakMinutes   int
	WorkMode       schedule.WorkMode
	Manual         bool
	FlexibleExempt bool
	RequestID      *string
	Observation    *string
	Superseded     bool
	SupersededBy   *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TotalMinutes sums complete shifts minus the recorded break, floored at zero.
func (r Record) TotalMinutes() int {
	total := 0
	if r.FirstIn != nil && r.FirstOut != nil {
		total += int(r.FirstOut.Sub(*r.FirstIn).Minutes())
	}
	if r.SecondIn != nil && r.SecondOut != nil {
		total += int(r.SecondOut.Sub(*r.SecondIn).Minutes())
	}
	total -= r.BreakMinutes
	if total < 0 {
		return 0
	}
	return total
}

func (r Record) HasOpenShift() bool {
	return (r.FirstIn != nil && r.FirstOut == nil) || (r.SecondIn != nil && r.SecondOut == nil)
}

// ApplyClock records a clock event in the next free slot.
func (r *Record) ApplyClock(ts time.Time, direction Direction) error {
	switch direction {
	case DirectionIn:
		switch {
		case r.FirstIn == nil:
			r.FirstIn = &ts
		case r.FirstOut == nil:
			return ErrDuplicateClock
		case r.SecondIn == nil:
			if ts.Before(*r.FirstOut) {
				return ErrInvalidClockSequence
			}
			r.SecondIn = &ts
		case r.SecondOut == nil:
			return ErrDuplicateClock
		default:
			return ErrMaxShiftsReached
		}
	case DirectionOut:
		switch {
		case r.FirstIn == nil:
			return ErrNoOpenCheckIn
		case r.FirstOut == nil:
			if !ts.After(*r.FirstIn) {
				return ErrInvalidClockSequence
			}
			r.FirstOut = &ts
		case r.SecondIn == nil:
			return ErrNoOpenCheckIn
		case r.SecondOut == nil:
			if !ts.After(*r.SecondIn) {
				return ErrInvalidClockSequence
			}
			r.SecondOut = &ts
		default:
			return ErrNoOpenCheckIn
		}
	default:
		return ErrInvalidDirection
	}
	return nil
}

// CheckSequence verifies that present timestamps are strictly increasing
// and that no check-out exists without its check-in.
func (r Record) CheckSequence() error {
	if (r.FirstIn == nil && r.FirstOut != nil) || (r.SecondIn == nil && r.SecondOut != nil) {
		return ErrNoOpenCheckIn
	}
	if r.SecondIn != nil && r.FirstOut == nil {
		return ErrInvalidClockSequence
	}
	var prev *time.Time
	for _, ts := range []*time.Time{r.FirstIn, r.FirstOut, r.SecondIn, r.SecondOut} {
		if ts == nil {
			continue
		}
		if prev != nil && !ts.After(*prev) {
			return ErrInvalidClockSequence
		}
		prev = ts
	}
	return nil
}

// DateOf returns the calendar date of ts in loc, at UTC midnight.
func DateOf(ts time.Time, loc *time.Location) time.Time {
	y, m, d := ts.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AtClock returns the instant at minutes after midnight of the calendar date in loc.
func AtClock(date time.Time, minutes int, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).Add(time.Duration(minutes) * time.Minute)
}
