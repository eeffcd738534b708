package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/holiday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsImmediatelyAndStops(t *testing.T) {
	s := NewScheduler()
	var runs atomic.Int32
	s.AddJob("tick", time.Hour, func(context.Context) error {
		runs.Add(1)
		return nil
	})

	s.Start()
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	s.Stop()
	assert.Equal(t, int32(1), runs.Load())
}

func TestScheduler_RunJob(t *testing.T) {
	s := NewScheduler()
	boom := errors.New("boom")
	s.AddJob("fails", time.Hour, func(context.Context) error { return boom })

	assert.ErrorIs(t, s.RunJob(context.Background(), "fails"), boom)
	assert.Error(t, s.RunJob(context.Background(), "missing"))
}

type mockHolidayService struct {
	mock.Mock
	holiday.HolidayService
}

func (m *mockHolidayService) Import(ctx context.Context, year int) (holiday.ImportResult, error) {
	args := m.Called(ctx, year)
	return holiday.ImportResult{Year: year, Imported: args.Int(0)}, args.Error(1)
}

type countingCache struct{ all int }

func (c *countingCache) InvalidateUser(string) {}
func (c *countingCache) InvalidateAll()        { c.all++ }

func TestRefreshHolidays_ImportsCurrentAndNextYear(t *testing.T) {
	svc := &mockHolidayService{}
	svc.On("Import", mock.Anything, 2024).Return(12, nil).Once()
	svc.On("Import", mock.Anything, 2025).Return(0, holiday.ErrSourceUnavailable).Once()

	jobs := NewHolidayJobs(svc, &countingCache{}, time.UTC)
	jobs.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }

	err := jobs.RefreshHolidays(context.Background())
	assert.ErrorIs(t, err, holiday.ErrSourceUnavailable)
	svc.AssertExpectations(t)
}

func TestEvictPeriodCache_OnlyAtMidnight(t *testing.T) {
	cache := &countingCache{}
	jobs := NewHolidayJobs(&mockHolidayService{}, cache, time.UTC)

	jobs.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	require.NoError(t, jobs.EvictPeriodCache(context.Background()))
	assert.Equal(t, 0, cache.all)

	jobs.now = func() time.Time { return time.Date(2024, 6, 2, 0, 30, 0, 0, time.UTC) }
	require.NoError(t, jobs.EvictPeriodCache(context.Background()))
	assert.Equal(t, 1, cache.all)
}
