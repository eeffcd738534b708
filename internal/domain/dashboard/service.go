package dashboard

import (
	"context"
	"time"
)

// DashboardService summarizes the attendance of a sector's team for its head.
type DashboardService interface {
	GetSectorSummary(ctx context.Context, sectorID string, start, end time.Time, asOf *time.Time) (*SectorSummaryResponse, error)
}
