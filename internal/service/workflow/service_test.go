package workflow

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/notification"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/period"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/request"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/sector"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/timerecord"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/user"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var brt = time.FixedZone("BRT", -3*60*60)

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

type fixture struct {
	svc         request.WorkflowService
	requests    *memRequests
	locks       *mockLocks
	timeRecords *mockTimeRecords
	notifier    *recordingNotifier
}

func sectorID(id string) *string { return &id }

func newFixture(t *testing.T, resolver stubResolver) *fixture {
	t.Helper()
	f := &fixture{
		requests:    newMemRequests(),
		locks:       &mockLocks{},
		timeRecords: &mockTimeRecords{},
		notifier:    &recordingNotifier{},
	}
	users := stubUsers{users: map[string]user.User{
		"maria": {ID: "maria", Role: user.RoleServidor, SectorID: sectorID("nucleo")},
		"ana":   {ID: "ana", Role: user.RoleChefia, SectorID: sectorID("nucleo")},
		"bruno": {ID: "bruno", Role: user.RoleChefia, SectorID: sectorID("diretoria")},
		"rita":  {ID: "rita", Role: user.RoleRH, SectorID: sectorID("rh")},
		"root":  {ID: "root", Role: user.RoleAdmin},
	}}
	svc := NewWorkflowService(
		f.requests,
		stubRecords{},
		f.locks,
		users,
		resolver,
		f.timeRecords,
		f.notifier,
		nopCache{},
		inlineTx{},
		brt,
	)
	svc.(*workflowServiceImpl).now = func() time.Time {
		return time.Date(2024, 2, 1, 10, 0, 0, 0, brt)
	}
	f.svc = svc
	return f
}

func mariaChain() stubResolver {
	return stubResolver{chains: map[string][]sector.ChainLink{
		"maria": {
			{Role: sector.ApprovalRoleImmediateSuperior, ApproverID: "ana"},
			{Role: sector.ApprovalRoleMediateSuperior, ApproverID: "bruno"},
		},
	}}
}

func attestation() request.SubmitRequest {
	return request.SubmitRequest{
		RequesterID: "maria",
		Type:        string(request.TypeAttestation),
		StartDate:   "2024-01-01",
		EndDate:     "2024-01-31",
	}
}

func adjustment(date string) request.SubmitRequest {
	in := "08:00"
	return request.SubmitRequest{
		RequesterID: "maria",
		Type:        string(request.TypeAdjustment),
		Date:        date,
		NewFirstIn:  &in,
		Reason:      "leitor biométrico indisponível",
	}
}

func decide(id, approver string, d request.Decision) request.DecideRequest {
	return request.DecideRequest{RequestID: id, ApproverID: approver, Decision: string(d)}
}

func TestSubmit_StoresChainAndNotifiesFirstApprover(t *testing.T) {
	f := newFixture(t, mariaChain())

	r, err := f.svc.Submit(context.Background(), attestation())
	require.NoError(t, err)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, request.StatusPending, r.Status)
	assert.Equal(t, request.PriorityNormal, r.Priority)
	assert.Equal(t, "maria", r.SubmittedBy)
	assert.Equal(t, day("2024-01-01"), r.SubjectStart)
	assert.Equal(t, day("2024-01-31"), r.SubjectEnd)
	assert.Len(t, r.Chain, 2)
	assert.Equal(t, "ana", r.NextApproverID())
	assert.Equal(t, []notification.NotificationType{notification.TypeRequestAwaiting}, f.notifier.typesFor("ana"))
	assert.Empty(t, f.notifier.typesFor("maria"))
}

func TestSubmit_Validation(t *testing.T) {
	f := newFixture(t, mariaChain())

	_, err := f.svc.Submit(context.Background(), request.SubmitRequest{
		RequesterID: "maria",
		Type:        string(request.TypeJustification),
		StartDate:   "2024-01-10",
		EndDate:     "2024-01-09",
	})
	var errs validator.ValidationErrors
	require.ErrorAs(t, err, &errs)
	fields := errs.ToMap()
	assert.Contains(t, fields, "reason")
	assert.Contains(t, fields, "end_date")
	assert.Empty(t, f.requests.requests)
}

func TestSubmit_Duplicate(t *testing.T) {
	f := newFixture(t, mariaChain())
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, attestation())
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, attestation())
	assert.ErrorIs(t, err, request.ErrDuplicateRequest)
}

func TestSubmit_AdjustmentInsideLockedPeriod(t *testing.T) {
	f := newFixture(t, mariaChain())
	f.locks.locked = []period.Lock{{UserID: "maria", Start: day("2024-01-01"), End: day("2024-01-31")}}
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, adjustment("2024-01-15"))
	assert.ErrorIs(t, err, period.ErrPeriodLocked)

	r, err := f.svc.Submit(ctx, adjustment("2024-02-05"))
	require.NoError(t, err)
	require.NotNil(t, r.Adjustment)
	require.NotNil(t, r.Adjustment.NewFirstIn)
	assert.Equal(t, time.Date(2024, 2, 5, 8, 0, 0, 0, brt), *r.Adjustment.NewFirstIn)
}

func TestSubmit_MissingResponsibleAlertsAdmins(t *testing.T) {
	f := newFixture(t, stubResolver{err: fmt.Errorf("%w: immediate_superior for sector nucleo", sector.ErrNoResponsibleFound)})

	_, err := f.svc.Submit(context.Background(), attestation())
	assert.ErrorIs(t, err, sector.ErrNoResponsibleFound)
	assert.Equal(t, []notification.NotificationType{notification.TypeApprovalChainMissing}, f.notifier.typesFor("root"))
	assert.Empty(t, f.requests.requests)
}

func TestSubmit_OnBehalfNotifiesRequester(t *testing.T) {
	f := newFixture(t, mariaChain())
	req := attestation()
	req.SubmittedBy = "rita"

	r, err := f.svc.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "rita", r.SubmittedBy)
	assert.Equal(t, "maria", r.RequesterID)
	assert.Equal(t, []notification.NotificationType{notification.TypeRequestSubmitted}, f.notifier.typesFor("maria"))
}

func TestDecide_MediateBeforeImmediateIsRejected(t *testing.T) {
	f := newFixture(t, mariaChain())
	ctx := context.Background()

	r, err := f.svc.Submit(ctx, attestation())
	require.NoError(t, err)

	_, err = f.svc.Decide(ctx, decide(r.ID, "bruno", request.DecisionApproved))
	assert.ErrorIs(t, err, request.ErrNotAuthorized)

	stored, err := f.svc.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Steps)
	assert.Equal(t, request.StatusPending, stored.Status)
}

func TestDecide_FullChainCompletesAttestationAndLocksOnce(t *testing.T) {
	f := newFixture(t, mariaChain())
	f.locks.On("Lock", mock.Anything, mock.MatchedBy(func(l period.Lock) bool {
		return l.UserID == "maria" && l.Start.Equal(day("2024-01-01")) && l.End.Equal(day("2024-01-31"))
	})).Return(nil).Once()
	ctx := context.Background()

	r, err := f.svc.Submit(ctx, attestation())
	require.NoError(t, err)

	r, err = f.svc.Decide(ctx, decide(r.ID, "ana", request.DecisionApproved))
	require.NoError(t, err)
	assert.Equal(t, request.StatusInReview, r.Status)
	assert.Equal(t, "bruno", r.NextApproverID())
	assert.Equal(t, 2, r.Version)
	f.locks.AssertNotCalled(t, "Lock", mock.Anything, mock.Anything)

	pending, err := f.svc.ListPendingFor(ctx, "bruno")
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	r, err = f.svc.Decide(ctx, decide(r.ID, "bruno", request.DecisionApproved))
	require.NoError(t, err)
	assert.Equal(t, request.StatusCompleted, r.Status)
	require.Len(t, r.Steps, 2)
	assert.Equal(t, sector.ApprovalRoleImmediateSuperior, r.Steps[0].Role)
	assert.Equal(t, sector.ApprovalRoleMediateSuperior, r.Steps[1].Role)

	_, err = f.svc.Decide(ctx, decide(r.ID, "bruno", request.DecisionRejected))
	assert.ErrorIs(t, err, request.ErrAlreadyTerminal)

	stored, err := f.svc.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, request.StatusCompleted, stored.Status)

	f.locks.AssertNumberOfCalls(t, "Lock", 1)
	f.locks.AssertExpectations(t)
	assert.Contains(t, f.notifier.typesFor("maria"), notification.TypeRequestCompleted)
}

func TestDecide_RejectionIsTerminal(t *testing.T) {
	f := newFixture(t, mariaChain())
	ctx := context.Background()

	r, err := f.svc.Submit(ctx, attestation())
	require.NoError(t, err)

	obs := "registros incompletos"
	req := decide(r.ID, "ana", request.DecisionRejected)
	req.Observation = &obs
	r, err = f.svc.Decide(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, request.StatusRejected, r.Status)
	assert.Empty(t, r.NextApproverID())

	_, err = f.svc.Decide(ctx, decide(r.ID, "bruno", request.DecisionApproved))
	assert.ErrorIs(t, err, request.ErrAlreadyTerminal)

	f.locks.AssertNotCalled(t, "Lock", mock.Anything, mock.Anything)
	assert.Contains(t, f.notifier.typesFor("maria"), notification.TypeRequestRejected)
}

func TestDecide_HROverrideEndsWorkflow(t *testing.T) {
	f := newFixture(t, mariaChain())
	f.locks.On("Lock", mock.Anything, mock.Anything).Return(nil).Once()
	ctx := context.Background()

	r, err := f.svc.Submit(ctx, attestation())
	require.NoError(t, err)

	r, err = f.svc.Decide(ctx, decide(r.ID, "rita", request.DecisionApproved))
	require.NoError(t, err)
	assert.Equal(t, request.StatusCompleted, r.Status)
	require.Len(t, r.Steps, 1)
	assert.Equal(t, sector.ApprovalRoleAdmin, r.Steps[0].Role)
	f.locks.AssertNumberOfCalls(t, "Lock", 1)
}

func TestDecide_RequesterCannotApproveOwnRequest(t *testing.T) {
	f := newFixture(t, mariaChain())
	ctx := context.Background()

	r, err := f.svc.Submit(ctx, attestation())
	require.NoError(t, err)

	_, err = f.svc.Decide(ctx, decide(r.ID, "maria", request.DecisionApproved))
	assert.ErrorIs(t, err, request.ErrNotAuthorized)
}

func TestDecide_ApprovedAdjustmentIsApplied(t *testing.T) {
	f := newFixture(t, mariaChain())
	f.timeRecords.On("ApplyAdjustment", mock.Anything, mock.MatchedBy(func(a timerecord.Adjustment) bool {
		return a.UserID == "maria" && a.Date.Equal(day("2024-02-05")) && a.FirstIn != nil
	})).Return(nil).Once()
	ctx := context.Background()

	r, err := f.svc.Submit(ctx, adjustment("2024-02-05"))
	require.NoError(t, err)

	r, err = f.svc.Decide(ctx, decide(r.ID, "ana", request.DecisionApproved))
	require.NoError(t, err)
	f.timeRecords.AssertNotCalled(t, "ApplyAdjustment", mock.Anything, mock.Anything)

	r, err = f.svc.Decide(ctx, decide(r.ID, "bruno", request.DecisionApproved))
	require.NoError(t, err)
	assert.Equal(t, request.StatusApproved, r.Status)
	f.timeRecords.AssertExpectations(t)
	f.locks.AssertNotCalled(t, "Lock", mock.Anything, mock.Anything)
}

func TestWithdraw(t *testing.T) {
	f := newFixture(t, mariaChain())
	ctx := context.Background()

	r, err := f.svc.Submit(ctx, attestation())
	require.NoError(t, err)

	_, err = f.svc.Withdraw(ctx, r.ID, "ana")
	assert.ErrorIs(t, err, request.ErrCannotWithdraw)

	w, err := f.svc.Withdraw(ctx, r.ID, "maria")
	require.NoError(t, err)
	assert.Equal(t, request.StatusWithdrawn, w.Status)
	assert.NotNil(t, w.WithdrawnAt)
	assert.Contains(t, f.notifier.typesFor("ana"), notification.TypeRequestWithdrawn)

	_, err = f.svc.Withdraw(ctx, r.ID, "maria")
	assert.ErrorIs(t, err, request.ErrAlreadyTerminal)

	// A withdrawn request no longer blocks a new submission.
	_, err = f.svc.Submit(ctx, attestation())
	assert.NoError(t, err)
}

func TestWithdraw_AfterDecision(t *testing.T) {
	f := newFixture(t, mariaChain())
	ctx := context.Background()

	r, err := f.svc.Submit(ctx, attestation())
	require.NoError(t, err)
	_, err = f.svc.Decide(ctx, decide(r.ID, "ana", request.DecisionApproved))
	require.NoError(t, err)

	_, err = f.svc.Withdraw(ctx, r.ID, "maria")
	assert.ErrorIs(t, err, request.ErrCannotWithdraw)
}

func TestListMine(t *testing.T) {
	f := newFixture(t, mariaChain())
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, attestation())
	require.NoError(t, err)

	mine, err := f.svc.ListMine(ctx, "maria", request.RequestFilter{})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	others, err := f.svc.ListMine(ctx, "ana", request.RequestFilter{})
	require.NoError(t, err)
	assert.Empty(t, others)
}
