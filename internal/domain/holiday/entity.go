package holiday

import "time"

type Scope string

const (
	ScopeNational  Scope = "national"
	ScopeState     Scope = "state"
	ScopeMunicipal Scope = "municipal"
)

var ScopeValues = []string{
	string(ScopeNational),
	string(ScopeState),
	string(ScopeMunicipal),
}

type Source string

const (
	SourceManual Source = "manual"
	SourceAPI    Source = "api"
)

// Holiday is a non-working calendar entry. State is set for state scope,
// State and City for municipal scope.
type Holiday struct {
	ID        string
	Date      time.Time
	Name      string
	Scope     Scope
	State     *string
	City      *string
	Active    bool
	Source    Source
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AppliesTo reports whether the holiday is observed at the given state/city.
func (h Holiday) AppliesTo(state, city string) bool {
	if !h.Active {
		return false
	}
	switch h.Scope {
	case ScopeNational:
		return true
	case ScopeState:
		return h.State != nil && state != "" && equalFold(*h.State, state)
	case ScopeMunicipal:
		return h.City != nil && city != "" && equalFold(*h.City, city) &&
			(h.State == nil || state == "" || equalFold(*h.State, state))
	default:
		return false
	}
}
