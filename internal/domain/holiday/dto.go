package holiday

import (
	"time"

	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/validator"
)

type HolidayFilter struct {
	Year  *int
	Scope *string
	State *string
	City  *string
}

type HolidayResponse struct {
	ID     string  `json:"id"`
	Date   string  `json:"date"`
	Name   string  `json:"name"`
	Scope  string  `json:"scope"`
	State  *string `json:"state,omitempty"`
	City   *string `json:"city,omitempty"`
	Active bool    `json:"active"`
	Source string  `json:"source"`
}

func ToResponse(h Holiday) HolidayResponse {
	return HolidayResponse{
		ID:     h.ID,
		Date:   h.Date.Format("2006-01-02"),
		Name:   h.Name,
		Scope:  string(h.Scope),
		State:  h.State,
		City:   h.City,
		Active: h.Active,
		Source: string(h.Source),
	}
}

type CreateHolidayRequest struct {
	Date  string  `json:"date" validate:"required,date"`
	Name  string  `json:"name" validate:"required,max=150"`
	Scope string  `json:"scope" validate:"required,oneof=national state municipal"`
	State *string `json:"state,omitempty" validate:"omitempty,len=2"`
	City  *string `json:"city,omitempty" validate:"omitempty,max=100"`
}

func (r *CreateHolidayRequest) Validate() error {
	var errs validator.ValidationErrors

	switch Scope(r.Scope) {
	case ScopeState:
		if r.State == nil {
			errs = append(errs, validator.ValidationError{Field: "state", Message: "state is required for state holidays"})
		}
	case ScopeMunicipal:
		if r.City == nil || validator.IsEmpty(*r.City) {
			errs = append(errs, validator.ValidationError{Field: "city", Message: "city is required for municipal holidays"})
		}
	}

	if len(errs) > 0 {
		return validator.Merge(validator.Struct(r), errs)
	}
	return validator.Struct(r)
}

// ToHoliday converts a validated request. National holidays drop state/city.
func (r *CreateHolidayRequest) ToHoliday() Holiday {
	date, _ := time.Parse("2006-01-02", r.Date)
	h := Holiday{
		Date:   date,
		Name:   r.Name,
		Scope:  Scope(r.Scope),
		Active: true,
		Source: SourceManual,
	}
	switch h.Scope {
	case ScopeState:
		h.State = r.State
	case ScopeMunicipal:
		h.State = r.State
		h.City = r.City
	}
	return h
}

type ImportResult struct {
	Year     int `json:"year"`
	Imported int `json:"imported"`
}
