package request

import (
	"testing"
	"time"

	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/sector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

func twoStepRequest(t Type) Request {
	return Request{
		ID:          "req-1",
		RequesterID: "maria",
		Type:        t,
		Status:      StatusPending,
		Chain: []sector.ChainLink{
			{Role: sector.ApprovalRoleImmediateSuperior, ApproverID: "ana"},
			{Role: sector.ApprovalRoleMediateSuperior, ApproverID: "bruno"},
		},
	}
}

func TestRequest_Decide(t *testing.T) {
	t.Run("mediate superior before immediate", func(t *testing.T) {
		r := twoStepRequest(TypeAttestation)
		_, status, err := r.Decide("bruno", false, DecisionApproved, nil, now)
		require.ErrorIs(t, err, ErrNotAuthorized)
		assert.Contains(t, err.Error(), "immediate_superior")
		assert.Equal(t, StatusPending, status)
	})

	t.Run("full chain completes attestation", func(t *testing.T) {
		r := twoStepRequest(TypeAttestation)

		step, status, err := r.Decide("ana", false, DecisionApproved, nil, now)
		require.NoError(t, err)
		assert.Equal(t, StatusInReview, status)
		assert.Equal(t, 1, step.Seq)
		assert.Equal(t, sector.ApprovalRoleImmediateSuperior, step.Role)

		r.Steps = append(r.Steps, step)
		r.Status = status

		step, status, err = r.Decide("bruno", false, DecisionApproved, nil, now)
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, status)
		assert.Equal(t, 2, step.Seq)
		assert.Equal(t, sector.ApprovalRoleMediateSuperior, step.Role)
	})

	t.Run("non attestation ends approved", func(t *testing.T) {
		r := twoStepRequest(TypeJustification)
		r.Steps = []ApprovalStep{{Seq: 1, ApproverID: "ana", Decision: DecisionApproved}}
		r.Status = StatusInReview
		_, status, err := r.Decide("bruno", false, DecisionApproved, nil, now)
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, status)
	})

	t.Run("rejection is terminal", func(t *testing.T) {
		r := twoStepRequest(TypeAdjustment)
		obs := "horário não confere"
		step, status, err := r.Decide("ana", false, DecisionRejected, &obs, now)
		require.NoError(t, err)
		assert.Equal(t, StatusRejected, status)
		assert.Equal(t, DecisionRejected, step.Decision)
	})

	t.Run("admin override short-circuits", func(t *testing.T) {
		r := twoStepRequest(TypeAttestation)
		step, status, err := r.Decide("rh-1", true, DecisionApproved, nil, now)
		require.NoError(t, err)
		assert.Equal(t, sector.ApprovalRoleAdmin, step.Role)
		assert.Equal(t, StatusCompleted, status)
	})

	t.Run("override user in chain keeps chain role", func(t *testing.T) {
		r := twoStepRequest(TypeAttestation)
		step, status, err := r.Decide("ana", true, DecisionApproved, nil, now)
		require.NoError(t, err)
		assert.Equal(t, sector.ApprovalRoleImmediateSuperior, step.Role)
		assert.Equal(t, StatusInReview, status)
	})

	t.Run("requester cannot decide own request", func(t *testing.T) {
		r := twoStepRequest(TypeAttestation)
		_, _, err := r.Decide("maria", true, DecisionApproved, nil, now)
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("terminal statuses absorb every decision", func(t *testing.T) {
		for _, s := range []Status{StatusApproved, StatusCompleted, StatusRejected, StatusWithdrawn} {
			r := twoStepRequest(TypeAttestation)
			r.Status = s
			for _, approver := range []string{"ana", "bruno", "rh-1"} {
				for _, d := range []Decision{DecisionApproved, DecisionRejected} {
					_, status, err := r.Decide(approver, true, d, nil, now)
					assert.ErrorIs(t, err, ErrAlreadyTerminal)
					assert.Equal(t, s, status)
				}
			}
		}
	})
}

func TestRequest_CanWithdraw(t *testing.T) {
	r := twoStepRequest(TypeJustification)
	assert.NoError(t, r.CanWithdraw("maria"))
	assert.ErrorIs(t, r.CanWithdraw("ana"), ErrCannotWithdraw)

	r.Steps = []ApprovalStep{{Seq: 1, ApproverID: "ana", Decision: DecisionApproved}}
	r.Status = StatusInReview
	assert.ErrorIs(t, r.CanWithdraw("maria"), ErrCannotWithdraw)

	r.Status = StatusRejected
	assert.ErrorIs(t, r.CanWithdraw("maria"), ErrAlreadyTerminal)
}

func TestRequest_NextRequired(t *testing.T) {
	r := twoStepRequest(TypeAttestation)
	assert.Equal(t, "ana", r.NextApproverID())

	r.Steps = []ApprovalStep{{Seq: 1}}
	assert.Equal(t, "bruno", r.NextApproverID())

	r.Status = StatusCompleted
	assert.Empty(t, r.NextApproverID())
}

func TestSubmitRequest_Validate(t *testing.T) {
	t.Run("attestation needs range", func(t *testing.T) {
		req := SubmitRequest{RequesterID: "maria", Type: "attestation", StartDate: "2024-01-31", EndDate: "2024-01-01"}
		assert.Error(t, req.Validate())

		req.StartDate, req.EndDate = "2024-01-01", "2024-01-31"
		require.NoError(t, req.Validate())
		start, end := req.Subject()
		assert.Equal(t, 1, start.Day())
		assert.Equal(t, 31, end.Day())
	})

	t.Run("justification needs reason", func(t *testing.T) {
		req := SubmitRequest{RequesterID: "maria", Type: "justification", StartDate: "2024-01-10", EndDate: "2024-01-10"}
		assert.Error(t, req.Validate())
		req.Reason = "Consulta médica"
		assert.NoError(t, req.Validate())
	})

	t.Run("adjustment needs a new time", func(t *testing.T) {
		in := "08:00"
		req := SubmitRequest{RequesterID: "maria", Type: "adjustment", Date: "2024-01-10", Reason: "Esqueci de bater"}
		assert.Error(t, req.Validate())
		req.NewFirstIn = &in
		require.NoError(t, req.Validate())
		start, end := req.Subject()
		assert.Equal(t, start, end)
	})

	t.Run("unknown type", func(t *testing.T) {
		req := SubmitRequest{RequesterID: "maria", Type: "vacation"}
		assert.Error(t, req.Validate())
	})
}
