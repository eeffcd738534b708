package dashboard

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/dashboard"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/period"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/request"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/sector"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/user"
	"golang.org/x/sync/errgroup"
)

// maxParallelPeriods bounds the per-member period computations in flight.
const maxParallelPeriods = 8

type DashboardServiceImpl struct {
	sectorRepo  sector.SectorRepository
	userRepo    user.UserRepository
	requestRepo request.RequestRepository
	periods     period.Service
}

func NewDashboardService(sectorRepo sector.SectorRepository, userRepo user.UserRepository, requestRepo request.RequestRepository, periods period.Service) dashboard.DashboardService {
	return &DashboardServiceImpl{
		sectorRepo:  sectorRepo,
		userRepo:    userRepo,
		requestRepo: requestRepo,
		periods:     periods,
	}
}

// GetSectorSummary computes every member's period in parallel and totals them.
func (s *DashboardServiceImpl) GetSectorSummary(ctx context.Context, sectorID string, start, end time.Time, asOf *time.Time) (*dashboard.SectorSummaryResponse, error) {
	sec, err := s.sectorRepo.GetByID(ctx, sectorID)
	if err != nil {
		return nil, err
	}

	members, err := s.userRepo.ListBySectorID(ctx, sectorID)
	if err != nil {
		return nil, err
	}

	summaries := make([]dashboard.MemberSummary, len(members))
	var pending int

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelPeriods)

	g.Go(func() error {
		if sec.ResponsibleID == nil {
			return nil
		}
		reqs, err := s.requestRepo.ListPendingFor(gCtx, *sec.ResponsibleID)
		if err != nil {
			return err
		}
		for _, r := range reqs {
			for _, m := range members {
				if r.RequesterID == m.ID {
					pending++
					break
				}
			}
		}
		return nil
	})

	for i, m := range members {
		g.Go(func() error {
			p, err := s.periods.ComputePeriod(gCtx, m.ID, start, end, asOf)
			if err != nil {
				return err
			}
			summaries[i] = dashboard.MemberSummary{
				UserID:        m.ID,
				Name:          m.Name,
				DaysWorked:    p.DaysWorked,
				DaysAbsent:    p.DaysAbsent,
				DaysLate:      p.DaysLate,
				DaysJustified: p.DaysJustified,
				WorkedHours:   period.MinutesToHours(p.TotalWorkedMinutes),
				BalanceHours:  period.MinutesToHours(p.BalanceMinutes),
				Locked:        p.Locked,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })

	totals := dashboard.SectorTotals{Members: len(summaries)}
	var workedHours, balanceHours float64
	for _, m := range summaries {
		totals.DaysWorked += m.DaysWorked
		totals.DaysAbsent += m.DaysAbsent
		totals.DaysLate += m.DaysLate
		totals.DaysJustified += m.DaysJustified
		workedHours += m.WorkedHours
		balanceHours += m.BalanceHours
		if m.Locked {
			totals.LockedPeriods++
		}
	}
	totals.WorkedHours = roundHours(workedHours)
	totals.BalanceHours = roundHours(balanceHours)

	return &dashboard.SectorSummaryResponse{
		SectorID:        sec.ID,
		SectorName:      sec.Name,
		Start:           start.Format("2006-01-02"),
		End:             end.Format("2006-01-02"),
		Members:         summaries,
		Totals:          totals,
		PendingRequests: pending,
	}, nil
}

func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}
