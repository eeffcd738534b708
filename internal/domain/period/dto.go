package period

import (
	"math"
	"time"
)

type DayResponse struct {
	Date           string     `json:"date"`
	Weekday        string     `json:"weekday"`
	Classification string     `json:"classification"`
	WorkedHours    float64    `json:"worked_hours"`
	FirstCheckIn   *time.Time `json:"first_check_in,omitempty"`
	LateMinutes    int        `json:"late_minutes,omitempty"`
	HolidayName    *string    `json:"holiday_name,omitempty"`
	Justified      bool       `json:"justified,omitempty"`
}

type PeriodResponse struct {
	UserID           string        `json:"user_id"`
	Start            string        `json:"start"`
	End              string        `json:"end"`
	AsOf             string        `json:"as_of"`
	DaysWorked       int           `json:"days_worked"`
	DaysAbsent       int           `json:"days_absent"`
	DaysLate         int           `json:"days_late"`
	DaysNonWorking   int           `json:"days_non_working"`
	DaysHoliday      int           `json:"days_holiday"`
	DaysJustified    int           `json:"days_justified"`
	TotalWorkedHours float64       `json:"total_worked_hours"`
	ExpectedHours    float64       `json:"expected_hours"`
	BalanceHours     float64       `json:"balance_hours"`
	Locked           bool          `json:"locked"`
	Days             []DayResponse `json:"days"`
}

func ToResponse(p Period) PeriodResponse {
	days := make([]DayResponse, 0, len(p.Days))
	for _, d := range p.Days {
		days = append(days, DayResponse{
			Date:           d.Date.Format("2006-01-02"),
			Weekday:        d.Date.Weekday().String(),
			Classification: string(d.Classification),
			WorkedHours:    MinutesToHours(d.WorkedMinutes),
			FirstCheckIn:   d.FirstCheckIn,
			LateMinutes:    d.LateMinutes,
			HolidayName:    d.HolidayName,
			Justified:      d.Justified,
		})
	}
	return PeriodResponse{
		UserID:           p.UserID,
		Start:            p.Start.Format("2006-01-02"),
		End:              p.End.Format("2006-01-02"),
		AsOf:             p.AsOf.Format("2006-01-02"),
		DaysWorked:       p.DaysWorked,
		DaysAbsent:       p.DaysAbsent,
		DaysLate:         p.DaysLate,
		DaysNonWorking:   p.DaysNonWorking,
		DaysHoliday:      p.DaysHoliday,
		DaysJustified:    p.DaysJustified,
		TotalWorkedHours: MinutesToHours(p.TotalWorkedMinutes),
		ExpectedHours:    MinutesToHours(p.ExpectedMinutes),
		BalanceHours:     MinutesToHours(p.BalanceMinutes),
		Locked:           p.Locked,
		Days:             days,
	}
}

// MinutesToHours converts minutes to hours rounded to two decimals.
func MinutesToHours(m int) float64 {
	return math.Round(float64(m)/60*100) / 100
}
