package schedule

import (
	"fmt"
	"time"
)

type RuleType string

const (
	RuleTypeStandard RuleType = "standard"
	RuleTypeFlexible RuleType = "flexible"
	RuleTypeIntern   RuleType = "intern"
	RuleTypeSpecial  RuleType = "special"
)

var RuleTypeValues = []string{
	string(RuleTypeStandard),
	string(RuleTypeFlexible),
	string(RuleTypeIntern),
	string(RuleTypeSpecial),
}

type WorkMode string

const (
	WorkModeOnSite     WorkMode = "on_site"
	WorkModeHomeOffice WorkMode = "home_office"
	WorkModeHybrid     WorkMode = "hybrid"
)

var WorkModeValues = []string{
	string(WorkModeOnSite),
	string(WorkModeHomeOffice),
	string(WorkModeHybrid),
}

// Rule is a work-time policy owned by either a user or a sector.
// Times of day are minutes after midnight in the business timezone.
type Rule struct {
	ID               string
	Name             string
	Type             RuleType
	UserID           *string
	SectorID         *string
	DailyHours       float64
	WeeklyHours      float64
	AllowedDays      []time.Weekday
	StartMinute      int
	EndMinute        int
	ToleranceMinutes int
	WorkMode         WorkMode
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DefaultRule applies when neither the user nor any enclosing sector has a rule.
func DefaultRule() Rule {
	return Rule{
		Name:             "Expediente padrão",
		Type:             RuleTypeStandard,
		DailyHours:       8,
		WeeklyHours:      40,
		AllowedDays:      []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday},
		StartMinute:      8 * 60,
		EndMinute:        18 * 60,
		ToleranceMinutes: 10,
		WorkMode:         WorkModeOnSite,
		Active:           true,
	}
}

// CheckInvariants enforces the window and weekly cap constraints.
func (r Rule) CheckInvariants() error {
	if r.EndMinute <= r.StartMinute {
		return fmt.Errorf("%w: end time must be after start time", ErrInvalidScheduleRule)
	}
	window := float64(r.EndMinute-r.StartMinute) / 60
	if r.DailyHours > window {
		return fmt.Errorf("%w: daily hours %.2f exceed allowed window of %.2f hours", ErrInvalidScheduleRule, r.DailyHours, window)
	}
	if len(r.AllowedDays) == 0 {
		return fmt.Errorf("%w: at least one allowed day is required", ErrInvalidScheduleRule)
	}
	if maxWeekly := r.DailyHours * float64(len(r.AllowedDays)); r.WeeklyHours > maxWeekly {
		return fmt.Errorf("%w: weekly hours %.2f exceed %.2f (daily hours x allowed days)", ErrInvalidScheduleRule, r.WeeklyHours, maxWeekly)
	}
	if r.ToleranceMinutes < 0 {
		return fmt.Errorf("%w: tolerance must not be negative", ErrInvalidScheduleRule)
	}
	return nil
}

func (r Rule) IsAllowedDay(day time.Weekday) bool {
	for _, d := range r.AllowedDays {
		if d == day {
			return true
		}
	}
	return false
}

// EnforcesLateness is false for rules whose start time is not binding.
func (r Rule) EnforcesLateness() bool {
	return r.Type != RuleTypeFlexible
}

func (r Rule) ExpectedDailyMinutes() int {
	return int(r.DailyHours * 60)
}

// FormatClock renders minutes after midnight as HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseClock parses HH:MM into minutes after midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}
