package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/notification"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/period"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/request"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/sector"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/timerecord"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/user"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/database"
	"github.com/stretchr/testify/mock"
)

type memRequests struct {
	mu       sync.Mutex
	requests map[string]request.Request
}

func newMemRequests() *memRequests {
	return &memRequests{requests: make(map[string]request.Request)}
}

func (m *memRequests) Create(_ context.Context, r request.Request) (request.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[r.ID] = r
	return r, nil
}

func (m *memRequests) GetByID(_ context.Context, id string) (request.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return request.Request{}, request.ErrRequestNotFound
	}
	r.Steps = append([]request.ApprovalStep(nil), r.Steps...)
	return r, nil
}

func (m *memRequests) FindOpenDuplicate(_ context.Context, requesterID string, t request.Type, start, end time.Time) (*request.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.requests {
		if r.RequesterID == requesterID && r.Type == t && r.SubjectStart.Equal(start) && r.SubjectEnd.Equal(end) && !r.Status.IsTerminal() {
			dup := r
			return &dup, nil
		}
	}
	return nil, nil
}

func (m *memRequests) UpdateState(_ context.Context, r request.Request, expectedVersion int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.requests[r.ID]
	if !ok {
		return request.ErrRequestNotFound
	}
	if cur.Version != expectedVersion {
		return database.ErrConcurrentModification
	}
	cur.Status = r.Status
	cur.WithdrawnAt = r.WithdrawnAt
	cur.UpdatedAt = r.UpdatedAt
	cur.Version = expectedVersion + 1
	m.requests[r.ID] = cur
	return nil
}

func (m *memRequests) AppendStep(_ context.Context, step request.ApprovalStep) (request.ApprovalStep, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur := m.requests[step.RequestID]
	if len(cur.Steps)+1 != step.Seq {
		return request.ApprovalStep{}, database.ErrConcurrentModification
	}
	cur.Steps = append(cur.Steps, step)
	m.requests[step.RequestID] = cur
	return step, nil
}

func (m *memRequests) List(_ context.Context, filter request.RequestFilter) ([]request.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []request.Request
	for _, r := range m.requests {
		if filter.RequesterID != nil && r.RequesterID != *filter.RequesterID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memRequests) ListPendingFor(_ context.Context, approverID string) ([]request.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []request.Request
	for _, r := range m.requests {
		if r.NextApproverID() == approverID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRequests) ListApproved(context.Context, string, request.Type, time.Time, time.Time) ([]request.Request, error) {
	return nil, nil
}

type stubRecords struct {
	timerecord.RecordRepository
	active *timerecord.Record
}

func (s stubRecords) GetActive(context.Context, string, time.Time) (*timerecord.Record, error) {
	return s.active, nil
}

type mockLocks struct {
	mock.Mock
	locked []period.Lock
}

func (m *mockLocks) Lock(ctx context.Context, l period.Lock) (period.Lock, error) {
	args := m.Called(ctx, l)
	return l, args.Error(0)
}

func (m *mockLocks) HoldUser(context.Context, string) error { return nil }

func (m *mockLocks) ReopenDay(context.Context, period.ReopenedDay) error { return nil }

func (m *mockLocks) LockedDays(_ context.Context, userID string, start, end time.Time) ([]time.Time, error) {
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		for _, l := range m.locked {
			if l.UserID == userID && l.Covers(d) {
				out = append(out, d)
				break
			}
		}
	}
	return out, nil
}

func (m *mockLocks) FindCovering(context.Context, string, time.Time, time.Time) (*period.Lock, error) {
	return nil, nil
}

type mockTimeRecords struct {
	mock.Mock
	timerecord.Service
}

func (m *mockTimeRecords) ApplyAdjustment(ctx context.Context, adj timerecord.Adjustment) (timerecord.Record, error) {
	args := m.Called(ctx, adj)
	return timerecord.Record{}, args.Error(0)
}

type stubResolver struct {
	sector.Resolver
	chains map[string][]sector.ChainLink
	err    error
}

func (s stubResolver) ResolveApprovalChain(_ context.Context, userID string) ([]sector.ChainLink, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.chains[userID], nil
}

type stubUsers struct {
	users map[string]user.User
}

func (s stubUsers) GetByEmail(context.Context, string) (user.User, error) {
	return user.User{}, user.ErrUserNotFound
}

func (s stubUsers) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (s stubUsers) ListByRoles(_ context.Context, roles []user.Role) ([]user.User, error) {
	var out []user.User
	for _, u := range s.users {
		for _, r := range roles {
			if u.Role == r {
				out = append(out, u)
			}
		}
	}
	return out, nil
}

type recordingNotifier struct {
	notification.Service
	mu   sync.Mutex
	sent []notification.CreateNotificationRequest
}

func (n *recordingNotifier) QueueNotification(_ context.Context, req notification.CreateNotificationRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, req)
	return nil
}

func (n *recordingNotifier) QueueBulkNotification(_ context.Context, reqs []notification.CreateNotificationRequest) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, reqs...)
	return nil
}

func (n *recordingNotifier) typesFor(recipient string) []notification.NotificationType {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notification.NotificationType
	for _, s := range n.sent {
		if s.RecipientID == recipient {
			out = append(out, s.Type)
		}
	}
	return out
}

type inlineTx struct{}

func (inlineTx) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type nopCache struct{}

func (nopCache) InvalidateUser(string) {}
func (nopCache) InvalidateAll()        {}

func (s stubUsers) ListBySectorID(_ context.Context, sectorID string) ([]user.User, error) {
	var out []user.User
	for _, u := range s.users {
		if u.SectorID != nil && *u.SectorID == sectorID {
			out = append(out, u)
		}
	}
	return out, nil
}
