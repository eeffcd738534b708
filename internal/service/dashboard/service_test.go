package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/period"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/request"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/sector"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSectors struct {
	sector.SectorRepository
	s sector.Sector
}

func (s stubSectors) GetByID(_ context.Context, id string) (sector.Sector, error) {
	if id != s.s.ID {
		return sector.Sector{}, sector.ErrSectorNotFound
	}
	return s.s, nil
}

type stubUsers struct {
	user.UserRepository
	members []user.User
}

func (s stubUsers) ListBySectorID(context.Context, string) ([]user.User, error) {
	return s.members, nil
}

type stubRequests struct {
	request.RequestRepository
	pending []request.Request
}

func (s stubRequests) ListPendingFor(context.Context, string) ([]request.Request, error) {
	return s.pending, nil
}

type stubPeriods struct {
	byUser map[string]period.Period
}

func (s stubPeriods) ComputePeriod(_ context.Context, userID string, _, _ time.Time, _ *time.Time) (period.Period, error) {
	return s.byUser[userID], nil
}

func TestGetSectorSummary(t *testing.T) {
	head := "ana"
	svc := NewDashboardService(
		stubSectors{s: sector.Sector{ID: "nucleo", Name: "Núcleo de Arrecadação", ResponsibleID: &head}},
		stubUsers{members: []user.User{{ID: "maria", Name: "Maria"}, {ID: "carlos", Name: "Carlos"}}},
		stubRequests{pending: []request.Request{{RequesterID: "maria"}, {RequesterID: "outsider"}}},
		stubPeriods{byUser: map[string]period.Period{
			"maria":  {DaysWorked: 20, DaysAbsent: 2, DaysJustified: 1, TotalWorkedMinutes: 9600, BalanceMinutes: -960, Locked: true},
			"carlos": {DaysWorked: 22, DaysLate: 3, TotalWorkedMinutes: 10560},
		}},
	)

	start, end := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	resp, err := svc.GetSectorSummary(context.Background(), "nucleo", start, end, nil)
	require.NoError(t, err)

	assert.Equal(t, "Núcleo de Arrecadação", resp.SectorName)
	require.Len(t, resp.Members, 2)
	assert.Equal(t, "Carlos", resp.Members[0].Name)
	assert.Equal(t, 2, resp.Totals.Members)
	assert.Equal(t, 42, resp.Totals.DaysWorked)
	assert.Equal(t, 2, resp.Totals.DaysAbsent)
	assert.Equal(t, 3, resp.Totals.DaysLate)
	assert.Equal(t, 1, resp.Totals.LockedPeriods)
	assert.Equal(t, 336.0, resp.Totals.WorkedHours)
	assert.Equal(t, -16.0, resp.Totals.BalanceHours)
	assert.Equal(t, 1, resp.PendingRequests)
}

func TestGetSectorSummary_UnknownSector(t *testing.T) {
	svc := NewDashboardService(stubSectors{s: sector.Sector{ID: "nucleo"}}, stubUsers{}, stubRequests{}, stubPeriods{})
	_, err := svc.GetSectorSummary(context.Background(), "x", time.Now(), time.Now(), nil)
	assert.ErrorIs(t, err, sector.ErrSectorNotFound)
}
