package cron

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/holiday"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/period"
)

const (
	JobRefreshHolidays  = "refresh_holidays"
	JobEvictPeriodCache = "evict_period_cache"
)

type HolidayJobs struct {
	holidayService holiday.HolidayService
	cache          period.CacheInvalidator
	loc            *time.Location
	now            func() time.Time
}

func NewHolidayJobs(holidayService holiday.HolidayService, cache period.CacheInvalidator, loc *time.Location) *HolidayJobs {
	return &HolidayJobs{
		holidayService: holidayService,
		cache:          cache,
		loc:            loc,
		now:            time.Now,
	}
}

func (j *HolidayJobs) RegisterJobs(scheduler *Scheduler, refreshInterval time.Duration) {
	scheduler.AddJob(JobRefreshHolidays, refreshInterval, j.RefreshHolidays)
	scheduler.AddJob(JobEvictPeriodCache, time.Hour, j.EvictPeriodCache)
}

// RefreshHolidays imports the national holidays of the current and next year.
// A failed year does not stop the other.
func (j *HolidayJobs) RefreshHolidays(ctx context.Context) error {
	year := j.now().In(j.loc).Year()

	var errs []error
	for _, y := range []int{year, year + 1} {
		result, err := j.holidayService.Import(ctx, y)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		slog.Info("holidays refreshed", "year", result.Year, "imported", result.Imported)
	}
	return errors.Join(errs...)
}

// EvictPeriodCache clears cached periods once a day, right after midnight,
// so partial views computed for yesterday are not kept.
func (j *HolidayJobs) EvictPeriodCache(ctx context.Context) error {
	if j.now().In(j.loc).Hour() != 0 {
		return nil
	}
	j.cache.InvalidateAll()
	return nil
}
