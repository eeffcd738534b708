package holiday

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/holiday"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/notification"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockFetcher struct{ mock.Mock }

func (m *mockFetcher) FetchNational(ctx context.Context, year int) ([]holiday.Holiday, error) {
	args := m.Called(ctx, year)
	h, _ := args.Get(0).([]holiday.Holiday)
	return h, args.Error(1)
}

type mockNotifier struct {
	mock.Mock
	notification.Service
}

func (m *mockNotifier) QueueBulkNotification(ctx context.Context, reqs []notification.CreateNotificationRequest) error {
	return m.Called(ctx, reqs).Error(0)
}

type memHolidays struct {
	byKey map[string]holiday.Holiday
}

func key(h holiday.Holiday) string {
	k := h.Date.Format("2006-01-02") + "|" + string(h.Scope)
	if h.State != nil {
		k += "|" + *h.State
	}
	if h.City != nil {
		k += "|" + *h.City
	}
	return k
}

func (m *memHolidays) Create(_ context.Context, h holiday.Holiday) (holiday.Holiday, error) {
	m.byKey[key(h)] = h
	return h, nil
}
func (m *memHolidays) Upsert(_ context.Context, h holiday.Holiday) error {
	m.byKey[key(h)] = h
	return nil
}
func (m *memHolidays) GetByID(context.Context, string) (holiday.Holiday, error) {
	return holiday.Holiday{}, holiday.ErrHolidayNotFound
}
func (m *memHolidays) List(context.Context, holiday.HolidayFilter) ([]holiday.Holiday, error) {
	var out []holiday.Holiday
	for _, h := range m.byKey {
		out = append(out, h)
	}
	return out, nil
}
func (m *memHolidays) ListBetween(ctx context.Context, _, _ time.Time) ([]holiday.Holiday, error) {
	return m.List(ctx, holiday.HolidayFilter{})
}
func (m *memHolidays) Delete(context.Context, string) error { return nil }

type inlineTx struct{}

func (inlineTx) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type nopCache struct{ all int }

func (c *nopCache) InvalidateUser(string) {}
func (c *nopCache) InvalidateAll()        { c.all++ }

type adminUsers struct{}

func (adminUsers) GetByEmail(context.Context, string) (user.User, error) {
	return user.User{}, user.ErrUserNotFound
}
func (adminUsers) GetByID(context.Context, string) (user.User, error) {
	return user.User{}, user.ErrUserNotFound
}
func (adminUsers) ListByRoles(context.Context, []user.Role) ([]user.User, error) {
	return []user.User{{ID: "admin-1", Role: user.RoleAdmin}}, nil
}

func newHoliday(m time.Month, d int, name string) holiday.Holiday {
	return holiday.Holiday{
		Date:   time.Date(2024, m, d, 0, 0, 0, 0, time.UTC),
		Name:   name,
		Scope:  holiday.ScopeNational,
		Active: true,
		Source: holiday.SourceAPI,
	}
}

func TestHolidayService_Import(t *testing.T) {
	ctx := context.Background()

	t.Run("upserts fetched holidays idempotently", func(t *testing.T) {
		fetcher := &mockFetcher{}
		fetcher.On("FetchNational", mock.Anything, 2024).Return([]holiday.Holiday{
			newHoliday(time.January, 1, "Confraternização mundial"),
			newHoliday(time.April, 21, "Tiradentes"),
		}, nil)
		repo := &memHolidays{byKey: map[string]holiday.Holiday{}}
		cache := &nopCache{}
		svc := NewHolidayService(repo, fetcher, inlineTx{}, cache, adminUsers{}, &mockNotifier{})

		res, err := svc.Import(ctx, 2024)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Imported)

		_, err = svc.Import(ctx, 2024)
		require.NoError(t, err)
		assert.Len(t, repo.byKey, 2)
		assert.Equal(t, 2, cache.all)
		fetcher.AssertNumberOfCalls(t, "FetchNational", 2)
	})

	t.Run("source failure keeps prior data and alerts admins", func(t *testing.T) {
		fetcher := &mockFetcher{}
		fetcher.On("FetchNational", mock.Anything, 2025).Return(nil, errors.New("connection reset"))
		notifier := &mockNotifier{}
		notifier.On("QueueBulkNotification", mock.Anything, mock.MatchedBy(func(reqs []notification.CreateNotificationRequest) bool {
			return len(reqs) == 1 && reqs[0].RecipientID == "admin-1" && reqs[0].Type == notification.TypeHolidayImportFailed
		})).Return(nil)

		prior := newHoliday(time.January, 1, "Confraternização mundial")
		repo := &memHolidays{byKey: map[string]holiday.Holiday{key(prior): prior}}
		svc := NewHolidayService(repo, fetcher, inlineTx{}, &nopCache{}, adminUsers{}, notifier)

		_, err := svc.Import(ctx, 2025)
		assert.ErrorIs(t, err, holiday.ErrSourceUnavailable)
		assert.Len(t, repo.byKey, 1)
		notifier.AssertExpectations(t)
	})

	t.Run("year out of range", func(t *testing.T) {
		svc := NewHolidayService(&memHolidays{byKey: map[string]holiday.Holiday{}}, &mockFetcher{}, inlineTx{}, &nopCache{}, adminUsers{}, &mockNotifier{})
		_, err := svc.Import(ctx, 1800)
		assert.ErrorIs(t, err, holiday.ErrInvalidImportYear)
	})
}

func TestHolidayService_Create(t *testing.T) {
	repo := &memHolidays{byKey: map[string]holiday.Holiday{}}
	cache := &nopCache{}
	svc := NewHolidayService(repo, &mockFetcher{}, inlineTx{}, cache, adminUsers{}, &mockNotifier{})

	city := "Recife"
	state := "PE"
	resp, err := svc.Create(context.Background(), holiday.CreateHolidayRequest{
		Date: "2024-07-16", Name: "Nossa Senhora do Carmo", Scope: "municipal", State: &state, City: &city,
	})
	require.NoError(t, err)
	assert.Equal(t, "municipal", resp.Scope)
	assert.Equal(t, "manual", resp.Source)
	assert.Equal(t, 1, cache.all)

	_, err = svc.Create(context.Background(), holiday.CreateHolidayRequest{Date: "16/07/2024", Name: "x", Scope: "national"})
	assert.Error(t, err)
}

func (adminUsers) ListBySectorID(context.Context, string) ([]user.User, error) {
	return nil, nil
}
