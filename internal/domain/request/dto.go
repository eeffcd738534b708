package request

import (
	"strings"
	"time"

	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/validator"
)

type RequestFilter struct {
	RequesterID *string
	Type        *string
	Status      *string
}

var (
	filterTypes    = []string{string(TypeAttestation), string(TypeAdjustment), string(TypeJustification)}
	filterStatuses = []string{
		string(StatusPending), string(StatusInReview), string(StatusApproved),
		string(StatusCompleted), string(StatusRejected), string(StatusWithdrawn),
	}
)

func (f RequestFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.Type != nil && !validator.IsInSlice(*f.Type, filterTypes) {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "type must be one of: " + strings.Join(filterTypes, " ")})
	}
	if f.Status != nil && !validator.IsInSlice(*f.Status, filterStatuses) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of: " + strings.Join(filterStatuses, " ")})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SubmitRequest struct {
	RequesterID  string   `json:"user_id,omitempty"`
	SubmittedBy  string   `json:"-"`
	Type         string   `json:"type" validate:"required,oneof=attestation adjustment justification"`
	StartDate    string   `json:"start_date,omitempty" validate:"omitempty,date"`
	EndDate      string   `json:"end_date,omitempty" validate:"omitempty,date"`
	Date         string   `json:"date,omitempty" validate:"omitempty,date"`
	NewFirstIn   *string  `json:"new_first_in,omitempty" validate:"omitempty,clock"`
	NewFirstOut  *string  `json:"new_first_out,omitempty" validate:"omitempty,clock"`
	NewSecondIn  *string  `json:"new_second_in,omitempty" validate:"omitempty,clock"`
	NewSecondOut *string  `json:"new_second_out,omitempty" validate:"omitempty,clock"`
	BreakMinutes *int     `json:"break_minutes,omitempty" validate:"omitempty,gte=0,lte=480"`
	Reason       string   `json:"reason,omitempty" validate:"max=2000"`
	Category     string   `json:"category,omitempty" validate:"omitempty,oneof=medical training external_service personal other"`
	Attachments  []string `json:"attachments,omitempty" validate:"omitempty,max=5,dive,url"`
	Priority     string   `json:"priority,omitempty" validate:"omitempty,oneof=low normal high urgent"`
	Notes        *string  `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

func (r *SubmitRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RequesterID) {
		errs = append(errs, validator.ValidationError{Field: "user_id", Message: "user_id is required"})
	}

	switch Type(r.Type) {
	case TypeAttestation, TypeJustification:
		start, okStart := validator.IsValidDate(r.StartDate)
		end, okEnd := validator.IsValidDate(r.EndDate)
		if !okStart {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date is required"})
		}
		if !okEnd {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date is required"})
		}
		if okStart && okEnd && end.Before(start) {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must not be before start_date"})
		}
		if okStart && okEnd && end.Sub(start) > 366*24*time.Hour {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "range must not exceed 366 days"})
		}
		if Type(r.Type) == TypeJustification && validator.IsEmpty(r.Reason) {
			errs = append(errs, validator.ValidationError{Field: "reason", Message: "reason is required"})
		}
	case TypeAdjustment:
		if _, ok := validator.IsValidDate(r.Date); !ok {
			errs = append(errs, validator.ValidationError{Field: "date", Message: "date is required"})
		}
		if r.NewFirstIn == nil && r.NewFirstOut == nil && r.NewSecondIn == nil && r.NewSecondOut == nil {
			errs = append(errs, validator.ValidationError{Field: "new_first_in", Message: "at least one new time is required"})
		}
		if validator.IsEmpty(r.Reason) {
			errs = append(errs, validator.ValidationError{Field: "reason", Message: "reason is required"})
		}
	}

	if len(errs) > 0 {
		return validator.Merge(validator.Struct(r), errs)
	}
	return validator.Struct(r)
}

// Subject returns the calendar dates the request covers. Call after Validate.
func (r *SubmitRequest) Subject() (time.Time, time.Time) {
	if Type(r.Type) == TypeAdjustment {
		d, _ := validator.IsValidDate(r.Date)
		return d, d
	}
	start, _ := validator.IsValidDate(r.StartDate)
	end, _ := validator.IsValidDate(r.EndDate)
	return start, end
}

type DecideRequest struct {
	RequestID   string  `json:"-"`
	ApproverID  string  `json:"-"`
	Decision    string  `json:"decision" validate:"required,oneof=approved rejected"`
	Observation *string `json:"observation,omitempty" validate:"omitempty,max=1000"`
}

func (r *DecideRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RequestID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id is required"})
	}
	if validator.IsEmpty(r.ApproverID) {
		errs = append(errs, validator.ValidationError{Field: "approver_id", Message: "approver_id is required"})
	}

	if len(errs) > 0 {
		return validator.Merge(validator.Struct(r), errs)
	}
	return validator.Struct(r)
}

type StepResponse struct {
	Seq         int       `json:"seq"`
	ApproverID  string    `json:"approver_id"`
	Role        string    `json:"role"`
	Decision    string    `json:"decision"`
	Observation *string   `json:"observation,omitempty"`
	DecidedAt   time.Time `json:"decided_at"`
}

type ChainLinkResponse struct {
	Role       string `json:"role"`
	ApproverID string `json:"approver_id"`
}

type RequestResponse struct {
	ID             string                `json:"id"`
	RequesterID    string                `json:"requester_id"`
	SubmittedBy    string                `json:"submitted_by"`
	Type           string                `json:"type"`
	StartDate      string                `json:"start_date"`
	EndDate        string                `json:"end_date"`
	Priority       string                `json:"priority"`
	Status         string                `json:"status"`
	Adjustment     *AdjustmentPayload    `json:"adjustment,omitempty"`
	Justification  *JustificationPayload `json:"justification,omitempty"`
	Notes          *string               `json:"notes,omitempty"`
	Chain          []ChainLinkResponse   `json:"chain"`
	Steps          []StepResponse        `json:"steps"`
	NextApproverID *string               `json:"next_approver_id,omitempty"`
	NextRole       *string               `json:"next_role,omitempty"`
	Version        int                   `json:"version"`
	WithdrawnAt    *time.Time            `json:"withdrawn_at,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

func ToResponse(r Request) RequestResponse {
	chain := make([]ChainLinkResponse, 0, len(r.Chain))
	for _, l := range r.Chain {
		chain = append(chain, ChainLinkResponse{Role: string(l.Role), ApproverID: l.ApproverID})
	}
	steps := make([]StepResponse, 0, len(r.Steps))
	for _, s := range r.Steps {
		steps = append(steps, StepResponse{
			Seq:         s.Seq,
			ApproverID:  s.ApproverID,
			Role:        string(s.Role),
			Decision:    string(s.Decision),
			Observation: s.Observation,
			DecidedAt:   s.DecidedAt,
		})
	}
	resp := RequestResponse{
		ID:            r.ID,
		RequesterID:   r.RequesterID,
		SubmittedBy:   r.SubmittedBy,
		Type:          string(r.Type),
		StartDate:     r.SubjectStart.Format("2006-01-02"),
		EndDate:       r.SubjectEnd.Format("2006-01-02"),
		Priority:      string(r.Priority),
		Status:        string(r.Status),
		Adjustment:    r.Adjustment,
		Justification: r.Justification,
		Notes:         r.Notes,
		Chain:         chain,
		Steps:         steps,
		Version:       r.Version,
		WithdrawnAt:   r.WithdrawnAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if next, ok := r.NextRequired(); ok {
		id, role := next.ApproverID, string(next.Role)
		resp.NextApproverID = &id
		resp.NextRole = &role
	}
	return resp
}

func ToResponses(rs []Request) []RequestResponse {
	out := make([]RequestResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, ToResponse(r))
	}
	return out
}
