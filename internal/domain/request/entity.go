package request

import (
	"fmt"
	"time"

	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/sector"
)

type Type string

const (
	TypeAttestation   Type = "attestation"
	TypeAdjustment    Type = "adjustment"
	TypeJustification Type = "justification"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusInReview  Status = "in_review"
	StatusApproved  Status = "approved"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
	StatusWithdrawn Status = "withdrawn"
)

// IsTerminal reports whether no further steps may be appended.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusCompleted, StatusRejected, StatusWithdrawn:
		return true
	default:
		return false
	}
}

var OpenStatuses = []Status{StatusPending, StatusInReview}

type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

type JustificationCategory string

const (
	CategoryMedical         JustificationCategory = "medical"
	CategoryTraining        JustificationCategory = "training"
	CategoryExternalService JustificationCategory = "external_service"
	CategoryPersonal        JustificationCategory = "personal"
	CategoryOther           JustificationCategory = "other"
)

// AdjustmentPayload keeps the times being replaced next to the requested ones.
type AdjustmentPayload struct {
	OriginalFirstIn   *time.Time `json:"original_first_in,omitempty"`
	OriginalFirstOut  *time.Time `json:"original_first_out,omitempty"`
	OriginalSecondIn  *time.Time `json:"original_second_in,omitempty"`
	OriginalSecondOut *time.Time `json:"original_second_out,omitempty"`
	NewFirstIn        *time.Time `json:"new_first_in,omitempty"`
	NewFirstOut       *time.Time `json:"new_first_out,omitempty"`
	NewSecondIn       *time.Time `json:"new_second_in,omitempty"`
	NewSecondOut      *time.Time `json:"new_second_out,omitempty"`
	BreakMinutes      *int       `json:"break_minutes,omitempty"`
	Reason            string     `json:"reason"`
}

type JustificationPayload struct {
	Category    JustificationCategory `json:"category"`
	Reason      string                `json:"reason"`
	Attachments []string              `json:"attachments,omitempty"`
}

// Request is a unit of work that needs sign-off along an approval chain.
// SubjectStart and SubjectEnd are calendar dates; for adjustments both hold the adjusted day.
type Request struct {
	ID            string
	RequesterID   string
	SubmittedBy   string
	Type          Type
	SubjectStart  time.Time
	SubjectEnd    time.Time
	Adjustment    *AdjustmentPayload
	Justification *JustificationPayload
	Notes         *string
	Priority      Priority
	Status        Status
	Chain         []sector.ChainLink
	Steps         []ApprovalStep
	Version       int
	WithdrawnAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type ApprovalStep struct {
	ID          string
	RequestID   string
	Seq         int
	ApproverID  string
	Role        sector.ApprovalRole
	Decision    Decision
	Observation *string
	DecidedAt   time.Time
}

// NextRequired returns the chain link whose decision is awaited.
func (r Request) NextRequired() (sector.ChainLink, bool) {
	if r.Status.IsTerminal() || len(r.Steps) >= len(r.Chain) {
		return sector.ChainLink{}, false
	}
	return r.Chain[len(r.Steps)], true
}

// NextApproverID is empty when no decision is pending.
func (r Request) NextApproverID() string {
	link, ok := r.NextRequired()
	if !ok {
		return ""
	}
	return link.ApproverID
}

// Covers reports whether date falls inside the request subject.
func (r Request) Covers(date time.Time) bool {
	return !date.Before(r.SubjectStart) && !date.After(r.SubjectEnd)
}

func (r Request) finalStatus() Status {
	if r.Type == TypeAttestation {
		return StatusCompleted
	}
	return StatusApproved
}

// Decide evaluates a decision against the stored chain and returns the step to
// append and the resulting status. Override lets hr/admin users decide out of
// turn; such a step is recorded with the admin role and ends the workflow.
func (r Request) Decide(approverID string, override bool, decision Decision, observation *string, now time.Time) (ApprovalStep, Status, error) {
	if r.Status.IsTerminal() {
		return ApprovalStep{}, r.Status, fmt.Errorf("%w: request %s is %s", ErrAlreadyTerminal, r.ID, r.Status)
	}
	if decision != DecisionApproved && decision != DecisionRejected {
		return ApprovalStep{}, r.Status, fmt.Errorf("%w: unknown decision %q", ErrInvalidRequest, decision)
	}
	if approverID == r.RequesterID {
		return ApprovalStep{}, r.Status, fmt.Errorf("%w: requester cannot decide request %s", ErrNotAuthorized, r.ID)
	}

	next, ok := r.NextRequired()
	if !ok {
		return ApprovalStep{}, r.Status, fmt.Errorf("%w: request %s has no pending approval", ErrAlreadyTerminal, r.ID)
	}

	step := ApprovalStep{
		RequestID:   r.ID,
		Seq:         len(r.Steps) + 1,
		ApproverID:  approverID,
		Decision:    decision,
		Observation: observation,
		DecidedAt:   now,
	}

	switch {
	case next.ApproverID == approverID:
		step.Role = next.Role
	case override:
		step.Role = sector.ApprovalRoleAdmin
	default:
		return ApprovalStep{}, r.Status, fmt.Errorf("%w: request %s requires %s %s", ErrNotAuthorized, r.ID, next.Role, next.ApproverID)
	}

	if decision == DecisionRejected {
		return step, StatusRejected, nil
	}
	if step.Role == sector.ApprovalRoleAdmin || step.Seq == len(r.Chain) {
		return step, r.finalStatus(), nil
	}
	return step, StatusInReview, nil
}

// CanWithdraw enforces that only the requester withdraws, before any decision.
func (r Request) CanWithdraw(userID string) error {
	if r.Status.IsTerminal() {
		return fmt.Errorf("%w: request %s is %s", ErrAlreadyTerminal, r.ID, r.Status)
	}
	if userID != r.RequesterID {
		return fmt.Errorf("%w: only the requester may withdraw request %s", ErrCannotWithdraw, r.ID)
	}
	if len(r.Steps) > 0 {
		return fmt.Errorf("%w: request %s already has %d decision(s), ask an approver to reject it", ErrCannotWithdraw, r.ID, len(r.Steps))
	}
	return nil
}
