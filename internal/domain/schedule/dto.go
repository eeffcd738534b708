package schedule

import (
	"time"

	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/validator"
)

type RuleFilter struct {
	UserID   *string
	SectorID *string
	Type     *string
}

type RuleResponse struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Type             string   `json:"type"`
	UserID           *string  `json:"user_id,omitempty"`
	SectorID         *string  `json:"sector_id,omitempty"`
	DailyHours       float64  `json:"daily_hours"`
	WeeklyHours      float64  `json:"weekly_hours"`
	AllowedDays      []string `json:"allowed_days"`
	StartTime        string   `json:"start_time"`
	EndTime          string   `json:"end_time"`
	ToleranceMinutes int      `json:"tolerance_minutes"`
	WorkMode         string   `json:"work_mode"`
	Active           bool     `json:"active"`
}

func ToResponse(r Rule) RuleResponse {
	days := make([]string, 0, len(r.AllowedDays))
	for _, d := range r.AllowedDays {
		days = append(days, weekdayNames[d])
	}
	return RuleResponse{
		ID:               r.ID,
		Name:             r.Name,
		Type:             string(r.Type),
		UserID:           r.UserID,
		SectorID:         r.SectorID,
		DailyHours:       r.DailyHours,
		WeeklyHours:      r.WeeklyHours,
		AllowedDays:      days,
		StartTime:        FormatClock(r.StartMinute),
		EndTime:          FormatClock(r.EndMinute),
		ToleranceMinutes: r.ToleranceMinutes,
		WorkMode:         string(r.WorkMode),
		Active:           r.Active,
	}
}

var weekdayNames = map[time.Weekday]string{
	time.Sunday:    "sunday",
	time.Monday:    "monday",
	time.Tuesday:   "tuesday",
	time.Wednesday: "wednesday",
	time.Thursday:  "thursday",
	time.Friday:    "friday",
	time.Saturday:  "saturday",
}

// ParseWeekdays converts weekday names into time.Weekday, rejecting unknown or repeated names.
func ParseWeekdays(names []string) ([]time.Weekday, error) {
	byName := make(map[string]time.Weekday, len(weekdayNames))
	for d, n := range weekdayNames {
		byName[n] = d
	}
	seen := make(map[time.Weekday]bool)
	days := make([]time.Weekday, 0, len(names))
	for _, n := range names {
		d, ok := byName[n]
		if !ok || seen[d] {
			return nil, validator.ValidationErrors{{Field: "allowed_days", Message: "invalid or repeated weekday: " + n}}
		}
		seen[d] = true
		days = append(days, d)
	}
	return days, nil
}

type CreateRuleRequest struct {
	Name             string   `json:"name" validate:"required,max=100"`
	Type             string   `json:"type" validate:"required,oneof=standard flexible intern special"`
	UserID           *string  `json:"user_id,omitempty"`
	SectorID         *string  `json:"sector_id,omitempty"`
	DailyHours       float64  `json:"daily_hours" validate:"gt=0,lte=24"`
	WeeklyHours      float64  `json:"weekly_hours" validate:"gt=0,lte=168"`
	AllowedDays      []string `json:"allowed_days" validate:"required,min=1,max=7"`
	StartTime        string   `json:"start_time" validate:"required,clock"`
	EndTime          string   `json:"end_time" validate:"required,clock"`
	ToleranceMinutes int      `json:"tolerance_minutes" validate:"gte=0,lte=120"`
	WorkMode         string   `json:"work_mode" validate:"required,oneof=on_site home_office hybrid"`
}

func (r *CreateRuleRequest) Validate() error {
	var errs validator.ValidationErrors

	if (r.UserID == nil) == (r.SectorID == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "owner",
			Message: "exactly one of user_id or sector_id is required",
		})
	}

	if len(errs) > 0 {
		return validator.Merge(validator.Struct(r), errs)
	}
	return validator.Struct(r)
}

// ToRule converts a validated request into a rule entity.
func (r *CreateRuleRequest) ToRule() (Rule, error) {
	days, err := ParseWeekdays(r.AllowedDays)
	if err != nil {
		return Rule{}, err
	}
	start, err := ParseClock(r.StartTime)
	if err != nil {
		return Rule{}, err
	}
	end, err := ParseClock(r.EndTime)
	if err != nil {
		return Rule{}, err
	}
	return Rule{
		Name:             r.Name,
		Type:             RuleType(r.Type),
		UserID:           r.UserID,
		SectorID:         r.SectorID,
		DailyHours:       r.DailyHours,
		WeeklyHours:      r.WeeklyHours,
		AllowedDays:      days,
		StartMinute:      start,
		EndMinute:        end,
		ToleranceMinutes: r.ToleranceMinutes,
		WorkMode:         WorkMode(r.WorkMode),
		Active:           true,
	}, nil
}

type UpdateRuleRequest struct {
	ID               string   `json:"-"`
	Name             *string  `json:"name,omitempty" validate:"omitempty,max=100"`
	Type             *string  `json:"type,omitempty" validate:"omitempty,oneof=standard flexible intern special"`
	DailyHours       *float64 `json:"daily_hours,omitempty" validate:"omitempty,gt=0,lte=24"`
	WeeklyHours      *float64 `json:"weekly_hours,omitempty" validate:"omitempty,gt=0,lte=168"`
	AllowedDays      []string `json:"allowed_days,omitempty" validate:"omitempty,min=1,max=7"`
	StartTime        *string  `json:"start_time,omitempty" validate:"omitempty,clock"`
	EndTime          *string  `json:"end_time,omitempty" validate:"omitempty,clock"`
	ToleranceMinutes *int     `json:"tolerance_minutes,omitempty" validate:"omitempty,gte=0,lte=120"`
	WorkMode         *string  `json:"work_mode,omitempty" validate:"omitempty,oneof=on_site home_office hybrid"`
	Active           *bool    `json:"active,omitempty"`
}

func (r *UpdateRuleRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if len(errs) > 0 {
		return validator.Merge(validator.Struct(r), errs)
	}
	return validator.Struct(r)
}

// Apply merges the update into an existing rule.
func (r *UpdateRuleRequest) Apply(rule Rule) (Rule, error) {
	if r.Name != nil {
		rule.Name = *r.Name
	}
	if r.Type != nil {
		rule.Type = RuleType(*r.Type)
	}
	if r.DailyHours != nil {
		rule.DailyHours = *r.DailyHours
	}
	if r.WeeklyHours != nil {
		rule.WeeklyHours = *r.WeeklyHours
	}
	if r.AllowedDays != nil {
		days, err := ParseWeekdays(r.AllowedDays)
		if err != nil {
			return Rule{}, err
		}
		rule.AllowedDays = days
	}
	if r.StartTime != nil {
		m, err := ParseClock(*r.StartTime)
		if err != nil {
			return Rule{}, err
		}
		rule.StartMinute = m
	}
	if r.EndTime != nil {
		m, err := ParseClock(*r.EndTime)
		if err != nil {
			return Rule{}, err
		}
		rule.EndMinute = m
	}
	if r.ToleranceMinutes != nil {
		rule.ToleranceMinutes = *r.ToleranceMinutes
	}
	if r.WorkMode != nil {
		rule.WorkMode = WorkMode(*r.WorkMode)
	}
	if r.Active != nil {
		rule.Active = *r.Active
	}
	return rule, nil
}
