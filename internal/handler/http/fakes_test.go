package http

import (
	"context"
	"time"

	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/auth"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/notification"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/period"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/request"
)

type fakeAuthService struct {
	tokens    auth.TokenResponse
	loginErr  error
	loggedOut string
}

func (f *fakeAuthService) Login(_ context.Context, _ auth.LoginRequest, _ auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	return f.tokens, f.loginErr
}

func (f *fakeAuthService) RefreshToken(_ context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	if req.RefreshToken != f.tokens.RefreshToken {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}
	return auth.AccessTokenResponse{AccessToken: "new-access", AccessTokenExpiresIn: 3600}, nil
}

func (f *fakeAuthService) Logout(_ context.Context, refreshToken string) error {
	f.loggedOut = refreshToken
	return nil
}

type fakeWorkflow struct {
	stored      request.Request
	decideErrs  []error
	decideCalls int
	lastDecide  request.DecideRequest
	submitted   *request.SubmitRequest
}

func (f *fakeWorkflow) Submit(_ context.Context, req request.SubmitRequest) (request.Request, error) {
	f.submitted = &req
	return request.Request{
		ID:          requestID,
		RequesterID: req.RequesterID,
		SubmittedBy: req.SubmittedBy,
		Type:        request.Type(req.Type),
		Status:      request.StatusPending,
	}, nil
}

func (f *fakeWorkflow) Decide(_ context.Context, req request.DecideRequest) (request.Request, error) {
	f.decideCalls++
	f.lastDecide = req
	if len(f.decideErrs) > 0 {
		err := f.decideErrs[0]
		f.decideErrs = f.decideErrs[1:]
		if err != nil {
			return request.Request{}, err
		}
	}
	decided := f.stored
	decided.Status = request.StatusInReview
	return decided, nil
}

func (f *fakeWorkflow) Withdraw(_ context.Context, requestID, userID string) (request.Request, error) {
	if err := f.stored.CanWithdraw(userID); err != nil {
		return request.Request{}, err
	}
	withdrawn := f.stored
	withdrawn.Status = request.StatusWithdrawn
	return withdrawn, nil
}

func (f *fakeWorkflow) Get(_ context.Context, requestID string) (request.Request, error) {
	if requestID != f.stored.ID {
		return request.Request{}, request.ErrRequestNotFound
	}
	return f.stored, nil
}

func (f *fakeWorkflow) ListMine(_ context.Context, userID string, _ request.RequestFilter) ([]request.Request, error) {
	if f.stored.RequesterID == userID {
		return []request.Request{f.stored}, nil
	}
	return nil, nil
}

func (f *fakeWorkflow) ListPendingFor(_ context.Context, approverID string) ([]request.Request, error) {
	if f.stored.NextApproverID() == approverID {
		return []request.Request{f.stored}, nil
	}
	return nil, nil
}

type fakePeriods struct {
	userID string
}

func (f *fakePeriods) ComputePeriod(_ context.Context, userID string, start, end time.Time, asOf *time.Time) (period.Period, error) {
	f.userID = userID
	p := period.Period{UserID: userID, Start: start, End: end, AsOf: end}
	if asOf != nil {
		p.AsOf = *asOf
	}
	return p, nil
}

type fakeNotifications struct {
	notification.Service
	list   notification.NotificationListResponse
	marked []string
}

func (f *fakeNotifications) GetNotifications(_ context.Context, _ string, page, pageSize int, _ bool) (*notification.NotificationListResponse, error) {
	list := f.list
	list.Page, list.PageSize = page, pageSize
	return &list, nil
}

func (f *fakeNotifications) MarkAsRead(_ context.Context, _ string, req notification.MarkAsReadRequest) error {
	f.marked = append(f.marked, req.NotificationIDs...)
	return nil
}
