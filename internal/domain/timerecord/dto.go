package timerecord

import (
	"time"

	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/validator"
)

type ClockRequest struct {
	Direction string `json:"direction" validate:"required,oneof=in out"`
}

func (r *ClockRequest) Validate() error {
	return validator.Struct(r)
}

type ManualEntryRequest struct {
	UserID         string  `json:"user_id" validate:"required"`
	Date           string  `json:"date" validate:"required,date"`
	CheckIn        string  `json:"check_in" validate:"required,clock"`
	CheckOut       string  `json:"check_out" validate:"required,clock"`
	SecondCheckIn  *string `json:"second_check_in,omitempty" validate:"omitempty,clock"`
	SecondCheckOut *string `json:"second_check_out,omitempty" validate:"omitempty,clock"`
	BreakMinutes   int     `json:"break_minutes" validate:"gte=0,lte=480"`
	WorkMode       string  `json:"work_mode" validate:"omitempty,oneof=on_site home_office hybrid"`
	RequestID      string  `json:"request_id" validate:"required"`
	Observation    *string `json:"observation,omitempty" validate:"omitempty,max=500"`
}

func (r *ManualEntryRequest) Validate() error {
	var errs validator.ValidationErrors

	if (r.SecondCheckIn == nil) != (r.SecondCheckOut == nil) {
		errs = append(errs, validator.ValidationError{
			Field:   "second_check_in",
			Message: "second shift requires both check-in and check-out",
		})
	}

	if len(errs) > 0 {
		return validator.Merge(validator.Struct(r), errs)
	}
	return validator.Struct(r)
}

type RecordResponse struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	Date           string     `json:"date"`
	FirstIn        *time.Time `json:"first_check_in,omitempty"`
	FirstOut       *time.Time `json:"first_check_out,omitempty"`
	SecondIn       *time.Time `json:"second_check_in,omitempty"`
	SecondOut      *time.Time `json:"second_check_out,omitempty"`
	BreakMinutes   int        `json:"break_minutes"`
	TotalMinutes   int        `json:"total_minutes"`
	WorkMode       string     `json:"work_mode"`
	Manual         bool       `json:"manual"`
	FlexibleExempt bool       `json:"flexible_exempt"`
	RequestID      *string    `json:"request_id,omitempty"`
	Observation    *string    `json:"observation,omitempty"`
}

func ToResponse(r Record) RecordResponse {
	return RecordResponse{
		ID:             r.ID,
		UserID:         r.UserID,
		Date:           r.Date.Format("2006-01-02"),
		FirstIn:        r.FirstIn,
		FirstOut:       r.FirstOut,
		SecondIn:       r.SecondIn,
		SecondOut:      r.SecondOut,
		BreakMinutes:   r.BreakMinutes,
		TotalMinutes:   r.TotalMinutes(),
		WorkMode:       string(r.WorkMode),
		Manual:         r.Manual,
		FlexibleExempt: r.FlexibleExempt,
		RequestID:      r.RequestID,
		Observation:    r.Observation,
	}
}
