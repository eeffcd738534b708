package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/notification"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/period"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/request"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/schedule"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/sector"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/timerecord"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/user"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/database"
	timerecordsvc "github.com/sefaz-ponto/ponto-backend-go/internal/service/timerecord"
)

type workflowServiceImpl struct {
	requestRepo   request.RequestRepository
	recordRepo    timerecord.RecordRepository
	lockRepo      period.LockRepository
	userRepo      user.UserRepository
	resolver      sector.Resolver
	timeRecords   timerecord.Service
	notifications notification.Service
	cache         period.CacheInvalidator
	txManager     database.TxManager
	loc           *time.Location
	now           func() time.Time
}

func NewWorkflowService(
	requestRepo request.RequestRepository,
	recordRepo timerecord.RecordRepository,
	lockRepo period.LockRepository,
	userRepo user.UserRepository,
	resolver sector.Resolver,
	timeRecords timerecord.Service,
	notifications notification.Service,
	cache period.CacheInvalidator,
	txManager database.TxManager,
	loc *time.Location,
) request.WorkflowService {
	return &workflowServiceImpl{
		requestRepo:   requestRepo,
		recordRepo:    recordRepo,
		lockRepo:      lockRepo,
		userRepo:      userRepo,
		resolver:      resolver,
		timeRecords:   timeRecords,
		notifications: notifications,
		cache:         cache,
		txManager:     txManager,
		loc:           loc,
		now:           time.Now,
	}
}

// Submit implements request.WorkflowService.
func (s *workflowServiceImpl) Submit(ctx context.Context, req request.SubmitRequest) (request.Request, error) {
	if err := req.Validate(); err != nil {
		return request.Request{}, err
	}
	if req.SubmittedBy == "" {
		req.SubmittedBy = req.RequesterID
	}

	t := request.Type(req.Type)
	start, end := req.Subject()

	locked, err := s.lockRepo.LockedDays(ctx, req.RequesterID, start, end)
	if err != nil {
		return request.Request{}, fmt.Errorf("check period lock: %w", err)
	}
	if len(locked) > 0 {
		return request.Request{}, fmt.Errorf("%w: %s", period.ErrPeriodLocked, locked[0].Format("2006-01-02"))
	}

	dup, err := s.requestRepo.FindOpenDuplicate(ctx, req.RequesterID, t, start, end)
	if err != nil {
		return request.Request{}, fmt.Errorf("find duplicate request: %w", err)
	}
	if dup != nil {
		return request.Request{}, fmt.Errorf("%w: request %s", request.ErrDuplicateRequest, dup.ID)
	}

	chain, err := s.resolver.ResolveApprovalChain(ctx, req.RequesterID)
	if err != nil {
		if errors.Is(err, sector.ErrNoResponsibleFound) {
			s.alertAdmins(ctx, req.RequesterID, err)
		}
		return request.Request{}, err
	}

	now := s.now()
	r := request.Request{
		ID:           newID(),
		RequesterID:  req.RequesterID,
		SubmittedBy:  req.SubmittedBy,
		Type:         t,
		SubjectStart: start,
		SubjectEnd:   end,
		Notes:        req.Notes,
		Priority:     request.Priority(req.Priority),
		Status:       request.StatusPending,
		Chain:        chain,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if r.Priority == "" {
		r.Priority = request.PriorityNormal
	}

	switch t {
	case request.TypeAdjustment:
		payload, err := s.adjustmentPayload(ctx, req, start)
		if err != nil {
			return request.Request{}, err
		}
		r.Adjustment = payload
	case request.TypeJustification:
		category := request.JustificationCategory(req.Category)
		if category == "" {
			category = request.CategoryOther
		}
		r.Justification = &request.JustificationPayload{
			Category:    category,
			Reason:      req.Reason,
			Attachments: req.Attachments,
		}
	}

	created, err := s.requestRepo.Create(ctx, r)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return request.Request{}, fmt.Errorf("%w: %s %s", request.ErrDuplicateRequest, t, start.Format("2006-01-02"))
		}
		return request.Request{}, fmt.Errorf("create request: %w", err)
	}

	slog.Info("request submitted",
		"request_id", created.ID,
		"type", created.Type,
		"requester_id", created.RequesterID,
		"submitted_by", created.SubmittedBy,
		"next_approver_id", created.NextApproverID(),
	)

	s.notifySubmitted(ctx, created)
	return created, nil
}

// adjustmentPayload snapshots the times being replaced so approvers see both
// versions, and rejects requests whose merged times would be out of order.
func (s *workflowServiceImpl) adjustmentPayload(ctx context.Context, req request.SubmitRequest, date time.Time) (*request.AdjustmentPayload, error) {
	payload := &request.AdjustmentPayload{
		NewFirstIn:   s.at(date, req.NewFirstIn),
		NewFirstOut:  s.at(date, req.NewFirstOut),
		NewSecondIn:  s.at(date, req.NewSecondIn),
		NewSecondOut: s.at(date, req.NewSecondOut),
		BreakMinutes: req.BreakMinutes,
		Reason:       req.Reason,
	}

	existing, err := s.recordRepo.GetActive(ctx, req.RequesterID, date)
	if err != nil {
		return nil, fmt.Errorf("load time record: %w", err)
	}
	if existing != nil {
		payload.OriginalFirstIn = existing.FirstIn
		payload.OriginalFirstOut = existing.FirstOut
		payload.OriginalSecondIn = existing.SecondIn
		payload.OriginalSecondOut = existing.SecondOut
	}

	merged := timerecordsvc.MergeAdjustment(existing, adjustmentOf(request.Request{
		RequesterID:  req.RequesterID,
		SubjectStart: date,
		Adjustment:   payload,
	}))
	if err := merged.CheckSequence(); err != nil {
		return nil, fmt.Errorf("%w: %v", request.ErrInvalidRequest, err)
	}
	return payload, nil
}

// Decide implements request.WorkflowService.
func (s *workflowServiceImpl) Decide(ctx context.Context, req request.DecideRequest) (request.Request, error) {
	if err := req.Validate(); err != nil {
		return request.Request{}, err
	}

	approver, err := s.userRepo.GetByID(ctx, req.ApproverID)
	if err != nil {
		return request.Request{}, err
	}

	var decided request.Request
	err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		r, err := s.requestRepo.GetByID(txCtx, req.RequestID)
		if err != nil {
			return err
		}

		step, status, err := r.Decide(approver.ID, approver.IsAdministrative(), request.Decision(req.Decision), req.Observation, s.now())
		if err != nil {
			return err
		}
		step.ID = newID()

		saved, err := s.requestRepo.AppendStep(txCtx, step)
		if err != nil {
			return err
		}

		expected := r.Version
		r.Steps = append(r.Steps, saved)
		r.Status = status
		r.UpdatedAt = step.DecidedAt
		if err := s.requestRepo.UpdateState(txCtx, r, expected); err != nil {
			return err
		}
		r.Version = expected + 1

		if err := s.finalize(txCtx, r); err != nil {
			return err
		}

		decided = r
		return nil
	})
	if err != nil {
		return request.Request{}, err
	}

	slog.Info("request decided",
		"request_id", decided.ID,
		"approver_id", approver.ID,
		"decision", req.Decision,
		"status", decided.Status,
	)

	s.cache.InvalidateUser(decided.RequesterID)
	s.notifyDecided(ctx, decided)
	return decided, nil
}

// finalize runs the side effects of a completed workflow inside the decision
// transaction, so a failed lock or adjustment rolls the decision back.
func (s *workflowServiceImpl) finalize(ctx context.Context, r request.Request) error {
	switch {
	case r.Status == request.StatusCompleted && r.Type == request.TypeAttestation:
		_, err := s.lockRepo.Lock(ctx, period.Lock{
			ID:        newID(),
			UserID:    r.RequesterID,
			Start:     r.SubjectStart,
			End:       r.SubjectEnd,
			RequestID: r.ID,
			LockedAt:  r.UpdatedAt,
		})
		if err != nil {
			return fmt.Errorf("lock period: %w", err)
		}
		slog.Info("period locked",
			"user_id", r.RequesterID,
			"start", r.SubjectStart.Format("2006-01-02"),
			"end", r.SubjectEnd.Format("2006-01-02"),
			"request_id", r.ID,
		)
	case r.Status == request.StatusApproved && r.Type == request.TypeAdjustment:
		if _, err := s.timeRecords.ApplyAdjustment(ctx, adjustmentOf(r)); err != nil {
			return fmt.Errorf("apply adjustment: %w", err)
		}
	}
	return nil
}

func adjustmentOf(r request.Request) timerecord.Adjustment {
	adj := timerecord.Adjustment{
		RequestID: r.ID,
		UserID:    r.RequesterID,
		Date:      r.SubjectStart,
	}
	if p := r.Adjustment; p != nil {
		adj.FirstIn = p.NewFirstIn
		adj.FirstOut = p.NewFirstOut
		adj.SecondIn = p.NewSecondIn
		adj.SecondOut = p.NewSecondOut
		adj.BreakMinutes = p.BreakMinutes
		adj.Reason = p.Reason
	}
	return adj
}

// Withdraw implements request.WorkflowService.
func (s *workflowServiceImpl) Withdraw(ctx context.Context, requestID, userID string) (request.Request, error) {
	r, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return request.Request{}, err
	}
	if err := r.CanWithdraw(userID); err != nil {
		return request.Request{}, err
	}

	notify := r.NextApproverID()

	now := s.now()
	expected := r.Version
	r.Status = request.StatusWithdrawn
	r.WithdrawnAt = &now
	r.UpdatedAt = now
	if err := s.requestRepo.UpdateState(ctx, r, expected); err != nil {
		return request.Request{}, err
	}
	r.Version = expected + 1

	slog.Info("request withdrawn", "request_id", r.ID, "requester_id", userID)

	if notify != "" {
		s.queue(ctx, notification.CreateNotificationRequest{
			RecipientID: notify,
			SenderID:    &userID,
			Type:        notification.TypeRequestWithdrawn,
			Title:       "Solicitação cancelada",
			Message:     fmt.Sprintf("A solicitação de %s foi cancelada pelo solicitante.", typeLabel(r.Type)),
			Data:        requestData(r),
		})
	}
	return r, nil
}

// Get implements request.WorkflowService.
func (s *workflowServiceImpl) Get(ctx context.Context, requestID string) (request.Request, error) {
	return s.requestRepo.GetByID(ctx, requestID)
}

// ListMine implements request.WorkflowService.
func (s *workflowServiceImpl) ListMine(ctx context.Context, userID string, filter request.RequestFilter) ([]request.Request, error) {
	filter.RequesterID = &userID
	return s.requestRepo.List(ctx, filter)
}

// ListPendingFor implements request.WorkflowService.
func (s *workflowServiceImpl) ListPendingFor(ctx context.Context, approverID string) ([]request.Request, error) {
	return s.requestRepo.ListPendingFor(ctx, approverID)
}

func (s *workflowServiceImpl) at(date time.Time, clock *string) *time.Time {
	if clock == nil {
		return nil
	}
	minutes, err := schedule.ParseClock(*clock)
	if err != nil {
		return nil
	}
	t := timerecord.AtClock(date, minutes, s.loc)
	return &t
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
