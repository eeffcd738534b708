package period

import "time"

// Classification is the single category assigned to each calendar day.
type Classification string

const (
	ClassHoliday    Classification = "holiday"
	ClassNonWorking Classification = "non_working"
	ClassLate       Classification = "late"
	ClassPresent    Classification = "present"
	ClassAbsence    Classification = "absence"
)

type Day struct {
	Date           time.Time
	Classification Classification
	WorkedMinutes  int
	FirstCheckIn   *time.Time
	LateMinutes    int
	HolidayName    *string
	// Justified marks an absence covered by an approved justification.
	Justified bool
}

// Period summarizes the days from Start to AsOf for one user. AsOf equals End
// unless the caller asked for a partial view of a period still in progress.
type Period struct {
	UserID             string
	Start              time.Time
	End                time.Time
	AsOf               time.Time
	Days               []Day
	DaysWorked         int
	DaysAbsent         int
	DaysLate           int
	DaysNonWorking     int
	DaysHoliday        int
	DaysJustified      int
	TotalWorkedMinutes int
	ExpectedMinutes    int
	BalanceMinutes     int
	Locked             bool
}

// Lock marks a period as attested. Records inside it are immutable except for
// days reopened by an approved adjustment.
type Lock struct {
	ID        string
	UserID    string
	Start     time.Time
	End       time.Time
	RequestID string
	LockedAt  time.Time
}

func (l Lock) Covers(date time.Time) bool {
	return !date.Before(l.Start) && !date.After(l.End)
}

type ReopenedDay struct {
	UserID     string
	Date       time.Time
	RequestID  string
	ReopenedAt time.Time
}
