package policy

import (
	"context"
	"fmt"
	"time"

	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/holiday"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/schedule"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/sector"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/user"
)

// Provider composes schedule rules and holidays into per-user working calendars.
type Provider interface {
	RuleFor(ctx context.Context, userID string) (schedule.Rule, error)
	IsWorkingDay(ctx context.Context, userID string, date time.Time) (bool, error)
	ToleranceFor(ctx context.Context, userID string) (int, error)
	CalendarFor(ctx context.Context, userID string, start, end time.Time) (Calendar, error)
}

// Calendar is the policy snapshot of one user over a date range.
// Holidays is keyed by calendar date (YYYY-MM-DD).
type Calendar struct {
	Rule     schedule.Rule
	Location sector.Location
	Holidays map[string]holiday.Holiday
}

// HolidayOn returns the holiday observed on date, if any.
func (c Calendar) HolidayOn(date time.Time) (holiday.Holiday, bool) {
	h, ok := c.Holidays[date.Format("2006-01-02")]
	return h, ok
}

// IsWorkingDay gives holidays precedence over the rule's allowed days.
func (c Calendar) IsWorkingDay(date time.Time) bool {
	if _, ok := c.HolidayOn(date); ok {
		return false
	}
	return c.Rule.IsAllowedDay(date.Weekday())
}

type providerImpl struct {
	userRepo     user.UserRepository
	ruleRepo     schedule.RuleRepository
	holidayRepo  holiday.HolidayRepository
	sectorLookup sector.Resolver
}

func NewProvider(userRepo user.UserRepository, ruleRepo schedule.RuleRepository, holidayRepo holiday.HolidayRepository, resolver sector.Resolver) Provider {
	return &providerImpl{
		userRepo:     userRepo,
		ruleRepo:     ruleRepo,
		holidayRepo:  holidayRepo,
		sectorLookup: resolver,
	}
}

// RuleFor implements Provider. A user rule wins over sector rules, and the
// nearest sector wins over its ancestors.
func (p *providerImpl) RuleFor(ctx context.Context, userID string) (schedule.Rule, error) {
	u, err := p.userRepo.GetByID(ctx, userID)
	if err != nil {
		return schedule.Rule{}, err
	}
	return p.ruleFor(ctx, u)
}

func (p *providerImpl) ruleFor(ctx context.Context, u user.User) (schedule.Rule, error) {
	own, err := p.ruleRepo.GetActiveByUserID(ctx, u.ID)
	if err != nil {
		return schedule.Rule{}, fmt.Errorf("load schedule rule of user %s: %w", u.ID, err)
	}
	if own != nil {
		return *own, nil
	}

	if u.SectorID != nil {
		ancestors, err := p.sectorLookup.Ancestors(ctx, *u.SectorID)
		if err != nil {
			return schedule.Rule{}, err
		}
		for _, s := range ancestors {
			rule, err := p.ruleRepo.GetActiveBySectorID(ctx, s.ID)
			if err != nil {
				return schedule.Rule{}, fmt.Errorf("load schedule rule of sector %s: %w", s.ID, err)
			}
			if rule != nil {
				return *rule, nil
			}
		}
	}

	return schedule.DefaultRule(), nil
}

// IsWorkingDay implements Provider.
func (p *providerImpl) IsWorkingDay(ctx context.Context, userID string, date time.Time) (bool, error) {
	cal, err := p.CalendarFor(ctx, userID, date, date)
	if err != nil {
		return false, err
	}
	return cal.IsWorkingDay(date), nil
}

// ToleranceFor implements Provider.
func (p *providerImpl) ToleranceFor(ctx context.Context, userID string) (int, error) {
	rule, err := p.RuleFor(ctx, userID)
	if err != nil {
		return 0, err
	}
	return rule.ToleranceMinutes, nil
}

// CalendarFor implements Provider.
func (p *providerImpl) CalendarFor(ctx context.Context, userID string, start, end time.Time) (Calendar, error) {
	u, err := p.userRepo.GetByID(ctx, userID)
	if err != nil {
		return Calendar{}, err
	}

	rule, err := p.ruleFor(ctx, u)
	if err != nil {
		return Calendar{}, err
	}

	var loc sector.Location
	if u.SectorID != nil {
		loc, err = p.sectorLookup.SectorLocation(ctx, *u.SectorID)
		if err != nil {
			return Calendar{}, err
		}
	}

	holidays, err := p.holidayRepo.ListBetween(ctx, start, end)
	if err != nil {
		return Calendar{}, fmt.Errorf("list holidays: %w", err)
	}

	observed := make(map[string]holiday.Holiday)
	for _, h := range holidays {
		if h.AppliesTo(loc.State, loc.City) {
			observed[h.Date.Format("2006-01-02")] = h
		}
	}

	return Calendar{Rule: rule, Location: loc, Holidays: observed}, nil
}
