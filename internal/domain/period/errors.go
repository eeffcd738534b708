package period

import "errors"

var (
	ErrPeriodLocked  = errors.New("period is locked by an approved attestation; submit an adjustment request instead")
	ErrInvalidRange  = errors.New("period end must not be before start")
	ErrRangeTooLarge = errors.New("period must not exceed 366 days")
)
