package schedule

import "errors"

var (
	ErrScheduleRuleNotFound = errors.New("schedule rule not found")
	ErrInvalidScheduleRule  = errors.New("invalid schedule rule")
	ErrScheduleOwnerExists  = errors.New("an active schedule rule already exists for this owner")
)
