package dashboard

import (
	"time"

	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/validator"
)

type SectorSummaryQuery struct {
	SectorID string
	Start    string `json:"start" validate:"required,date"`
	End      string `json:"end" validate:"required,date"`
	AsOf     string `json:"as_of" validate:"omitempty,date"`
}

func (q *SectorSummaryQuery) Validate() error {
	return validator.Struct(q)
}

// Dates returns the parsed range. Call after Validate.
func (q *SectorSummaryQuery) Dates() (start, end time.Time, asOf *time.Time) {
	start, _ = validator.IsValidDate(q.Start)
	end, _ = validator.IsValidDate(q.End)
	if d, ok := validator.IsValidDate(q.AsOf); ok {
		asOf = &d
	}
	return start, end, asOf
}

type MemberSummary struct {
	UserID        string  `json:"user_id"`
	Name          string  `json:"name"`
	DaysWorked    int     `json:"days_worked"`
	DaysAbsent    int     `json:"days_absent"`
	DaysLate      int     `json:"days_late"`
	DaysJustified int     `json:"days_justified"`
	WorkedHours   float64 `json:"worked_hours"`
	BalanceHours  float64 `json:"balance_hours"`
	Locked        bool    `json:"locked"`
}

type SectorTotals struct {
	Members       int     `json:"members"`
	DaysWorked    int     `json:"days_worked"`
	DaysAbsent    int     `json:"days_absent"`
	DaysLate      int     `json:"days_late"`
	DaysJustified int     `json:"days_justified"`
	WorkedHours   float64 `json:"worked_hours"`
	BalanceHours  float64 `json:"balance_hours"`
	LockedPeriods int     `json:"locked_periods"`
}

type SectorSummaryResponse struct {
	SectorID        string          `json:"sector_id"`
	SectorName      string          `json:"sector_name"`
	Start           string          `json:"start"`
	End             string          `json:"end"`
	Members         []MemberSummary `json:"members"`
	Totals          SectorTotals    `json:"totals"`
	PendingRequests int             `json:"pending_requests"`
}
