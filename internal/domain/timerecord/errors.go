package timerecord

import "errors"

var (
	ErrRecordNotFound            = errors.New("time record not found")
	ErrDuplicateClock            = errors.New("a check-in is already open for this day")
	ErrNoOpenCheckIn             = errors.New("no open check-in for this day")
	ErrMaxShiftsReached          = errors.New("maximum of two shifts per day reached")
	ErrInvalidClockSequence      = errors.New("clock events must be in chronological order")
	ErrInvalidDirection          = errors.New("direction must be in or out")
	ErrApprovedReferenceRequired = errors.New("manual entry requires an approved justification or adjustment covering the date")
	ErrRecordExists              = errors.New("a time record already exists for this day")
)
