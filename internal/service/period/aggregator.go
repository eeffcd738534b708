package period

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/period"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/request"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/timerecord"
	"github.com/sefaz-ponto/ponto-backend-go/internal/service/policy"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const maxPeriodDays = 366

// Aggregator computes period summaries and caches them until the inputs of a
// user change. It implements both period.Service and period.CacheInvalidator.
type Aggregator struct {
	policy      policy.Provider
	recordRepo  timerecord.RecordRepository
	requestRepo request.RequestRepository
	lockRepo    period.LockRepository
	loc         *time.Location

	cache *periodCache
	group singleflight.Group
}

func NewAggregator(
	provider policy.Provider,
	recordRepo timerecord.RecordRepository,
	requestRepo request.RequestRepository,
	lockRepo period.LockRepository,
	loc *time.Location,
) *Aggregator {
	return &Aggregator{
		policy:      provider,
		recordRepo:  recordRepo,
		requestRepo: requestRepo,
		lockRepo:    lockRepo,
		loc:         loc,
		cache:       newPeriodCache(),
	}
}

// ComputePeriod implements period.Service.
func (a *Aggregator) ComputePeriod(ctx context.Context, userID string, start, end time.Time, asOf *time.Time) (period.Period, error) {
	start, end = truncateDay(start), truncateDay(end)
	if end.Before(start) {
		return period.Period{}, period.ErrInvalidRange
	}
	if int(end.Sub(start).Hours()/24)+1 > maxPeriodDays {
		return period.Period{}, period.ErrRangeTooLarge
	}

	effective := end
	if asOf != nil && truncateDay(*asOf).Before(end) {
		effective = truncateDay(*asOf)
	}

	key := cacheKey(userID, start, end, effective)
	if p, ok := a.cache.get(userID, key); ok {
		return p, nil
	}

	// A flight started before an invalidation must not be joined by later callers.
	gen := a.cache.generation(userID)
	flightKey := key + "|" + strconv.FormatUint(gen, 10)
	shared := context.WithoutCancel(ctx)
	v, err, _ := a.group.Do(flightKey, func() (interface{}, error) {
		return a.compute(shared, userID, start, end, effective)
	})
	if err != nil {
		return period.Period{}, err
	}

	p := v.(period.Period)
	a.cache.put(userID, key, gen, p)
	return p, nil
}

// InvalidateUser implements period.CacheInvalidator.
func (a *Aggregator) InvalidateUser(userID string) {
	a.cache.invalidateUser(userID)
}

// InvalidateAll implements period.CacheInvalidator.
func (a *Aggregator) InvalidateAll() {
	a.cache.invalidateAll()
	slog.Debug("period cache cleared")
}

func (a *Aggregator) compute(ctx context.Context, userID string, start, end, effective time.Time) (period.Period, error) {
	var (
		cal            policy.Calendar
		records        []timerecord.Record
		justifications []request.Request
		lock           *period.Lock
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cal, err = a.policy.CalendarFor(gctx, userID, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = a.recordRepo.ListBetween(gctx, userID, start, end)
		if err != nil {
			return fmt.Errorf("list time records: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		justifications, err = a.requestRepo.ListApproved(gctx, userID, request.TypeJustification, start, end)
		if err != nil {
			return fmt.Errorf("list approved justifications: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		lock, err = a.lockRepo.FindCovering(gctx, userID, start, end)
		if err != nil {
			return fmt.Errorf("find period lock: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return period.Period{}, err
	}

	p := Summarize(Inputs{
		UserID:         userID,
		Start:          start,
		End:            end,
		AsOf:           effective,
		Calendar:       cal,
		Records:        records,
		Justifications: justifications,
		Location:       a.loc,
	})
	p.Locked = lock != nil
	return p, nil
}

// Inputs is everything a period summary depends on.
type Inputs struct {
	UserID         string
	Start          time.Time
	End            time.Time
	AsOf           time.Time
	Calendar       policy.Calendar
	Records        []timerecord.Record
	Justifications []request.Request
	Location       *time.Location
}

// Summarize classifies every day in [Start, AsOf] into exactly one category
// and totals the period. It is a pure function of its inputs.
func Summarize(in Inputs) period.Period {
	byDate := make(map[string]timerecord.Record, len(in.Records))
	for _, r := range in.Records {
		byDate[r.Date.Format("2006-01-02")] = r
	}

	p := period.Period{
		UserID: in.UserID,
		Start:  in.Start,
		End:    in.End,
		AsOf:   in.AsOf,
	}

	rule := in.Calendar.Rule
	for d := in.Start; !d.After(in.AsOf); d = d.AddDate(0, 0, 1) {
		day := period.Day{Date: d}
		rec, hasRecord := byDate[d.Format("2006-01-02")]
		if hasRecord {
			day.WorkedMinutes = rec.TotalMinutes()
			day.FirstCheckIn = rec.FirstIn
		}

		h, isHoliday := in.Calendar.HolidayOn(d)
		switch {
		case isHoliday:
			day.Classification = period.ClassHoliday
			name := h.Name
			day.HolidayName = &name
			p.DaysHoliday++
		case !rule.IsAllowedDay(d.Weekday()):
			day.Classification = period.ClassNonWorking
			p.DaysNonWorking++
		case hasRecord && attended(rec):
			p.ExpectedMinutes += rule.ExpectedDailyMinutes()
			day.Classification = period.ClassPresent
			if rule.EnforcesLateness() && !rec.FlexibleExempt && rec.FirstIn != nil {
				limit := timerecord.AtClock(d, rule.StartMinute+rule.ToleranceMinutes, in.Location)
				if rec.FirstIn.After(limit) {
					day.Classification = period.ClassLate
					scheduled := timerecord.AtClock(d, rule.StartMinute, in.Location)
					day.LateMinutes = int(rec.FirstIn.Sub(scheduled).Minutes())
					p.DaysLate++
				}
			}
			p.DaysWorked++
		default:
			p.ExpectedMinutes += rule.ExpectedDailyMinutes()
			day.Classification = period.ClassAbsence
			day.Justified = justified(in.Justifications, d)
			if day.Justified {
				p.DaysJustified++
			}
			p.DaysAbsent++
		}

		p.TotalWorkedMinutes += day.WorkedMinutes
		p.Days = append(p.Days, day)
	}

	p.BalanceMinutes = p.TotalWorkedMinutes - p.ExpectedMinutes
	return p
}

// attended treats a record with worked time, or a shift still open, as presence.
func attended(r timerecord.Record) bool {
	return r.TotalMinutes() > 0 || r.HasOpenShift()
}

func justified(requests []request.Request, date time.Time) bool {
	for _, r := range requests {
		if r.Covers(date) {
			return true
		}
	}
	return false
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func cacheKey(userID string, start, end, asOf time.Time) string {
	return userID + "|" + start.Format("2006-01-02") + "|" + end.Format("2006-01-02") + "|" + asOf.Format("2006-01-02")
}
