package timerecord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/period"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/request"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/schedule"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/timerecord"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/database"
)

type timeRecordServiceImpl struct {
	recordRepo  timerecord.RecordRepository
	lockRepo    period.LockRepository
	requestRepo request.RequestRepository
	rules       timerecord.RuleSource
	cache       period.CacheInvalidator
	txManager   database.TxManager
	loc         *time.Location
}

func NewTimeRecordService(
	recordRepo timerecord.RecordRepository,
	lockRepo period.LockRepository,
	requestRepo request.RequestRepository,
	rules timerecord.RuleSource,
	cache period.CacheInvalidator,
	txManager database.TxManager,
	loc *time.Location,
) timerecord.Service {
	return &timeRecordServiceImpl{
		recordRepo:  recordRepo,
		lockRepo:    lockRepo,
		requestRepo: requestRepo,
		rules:       rules,
		cache:       cache,
		txManager:   txManager,
		loc:         loc,
	}
}

// RecordClock implements timerecord.Service.
func (s *timeRecordServiceImpl) RecordClock(ctx context.Context, userID string, ts time.Time, direction timerecord.Direction) (timerecord.Record, error) {
	date := timerecord.DateOf(ts, s.loc)
	rule, err := s.rules.RuleFor(ctx, userID)
	if err != nil {
		return timerecord.Record{}, err
	}

	var saved timerecord.Record
	err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.ensureOpen(txCtx, userID, date); err != nil {
			return err
		}

		existing, err := s.recordRepo.GetActive(txCtx, userID, date)
		if err != nil {
			return fmt.Errorf("load time record: %w", err)
		}

		if existing == nil {
			rec := timerecord.Record{
				ID:             newID(),
				UserID:         userID,
				Date:           date,
				WorkMode:       rule.WorkMode,
				FlexibleExempt: rule.Type == schedule.RuleTypeFlexible,
			}
			if err := rec.ApplyClock(ts, direction); err != nil {
				return err
			}
			saved, err = s.recordRepo.Create(txCtx, rec)
			return err
		}

		rec := *existing
		if err := rec.ApplyClock(ts, direction); err != nil {
			return err
		}
		if err := s.recordRepo.UpdateClock(txCtx, rec); err != nil {
			return err
		}
		saved = rec
		return nil
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return timerecord.Record{}, database.ErrConcurrentModification
		}
		return timerecord.Record{}, err
	}

	s.cache.InvalidateUser(userID)
	slog.Debug("clock recorded", "user_id", userID, "date", date.Format("2006-01-02"), "direction", direction)
	return saved, nil
}

// RecordManualEntry implements timerecord.Service.
func (s *timeRecordServiceImpl) RecordManualEntry(ctx context.Context, req timerecord.ManualEntryRequest) (timerecord.Record, error) {
	if err := req.Validate(); err != nil {
		return timerecord.Record{}, err
	}

	date, _ := time.Parse("2006-01-02", req.Date)
	if err := s.checkReference(ctx, req.RequestID, req.UserID, date); err != nil {
		return timerecord.Record{}, err
	}

	rec := timerecord.Record{
		ID:           newID(),
		UserID:       req.UserID,
		Date:         date,
		FirstIn:      s.at(date, req.CheckIn),
		FirstOut:     s.at(date, req.CheckOut),
		BreakMinutes: req.BreakMinutes,
		WorkMode:     schedule.WorkMode(req.WorkMode),
		Manual:       true,
		RequestID:    &req.RequestID,
		Observation:  req.Observation,
	}
	if rec.WorkMode == "" {
		rec.WorkMode = schedule.WorkModeOnSite
	}
	if req.SecondCheckIn != nil {
		rec.SecondIn = s.at(date, *req.SecondCheckIn)
		rec.SecondOut = s.at(date, *req.SecondCheckOut)
	}
	if err := rec.CheckSequence(); err != nil {
		return timerecord.Record{}, err
	}

	saved, err := s.replace(ctx, rec)
	if err != nil {
		return timerecord.Record{}, err
	}

	slog.Info("manual time record saved", "user_id", req.UserID, "date", req.Date, "request_id", req.RequestID)
	return saved, nil
}

// checkReference requires an approved justification or adjustment of the
// same user whose subject covers the date.
func (s *timeRecordServiceImpl) checkReference(ctx context.Context, requestID, userID string, date time.Time) error {
	ref, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, request.ErrRequestNotFound) {
			return fmt.Errorf("%w: request %s not found", timerecord.ErrApprovedReferenceRequired, requestID)
		}
		return err
	}

	switch {
	case ref.RequesterID != userID:
		return fmt.Errorf("%w: request %s belongs to another user", timerecord.ErrApprovedReferenceRequired, requestID)
	case ref.Type != request.TypeJustification && ref.Type != request.TypeAdjustment:
		return fmt.Errorf("%w: request %s is an %s", timerecord.ErrApprovedReferenceRequired, requestID, ref.Type)
	case ref.Status != request.StatusApproved:
		return fmt.Errorf("%w: request %s is %s", timerecord.ErrApprovedReferenceRequired, requestID, ref.Status)
	case !ref.Covers(date):
		return fmt.Errorf("%w: request %s does not cover %s", timerecord.ErrApprovedReferenceRequired, requestID, date.Format("2006-01-02"))
	}
	return nil
}

// ApplyAdjustment implements timerecord.Service. A locked day is reopened for
// this request only; the rest of the period stays locked.
func (s *timeRecordServiceImpl) ApplyAdjustment(ctx context.Context, adj timerecord.Adjustment) (timerecord.Record, error) {
	var saved timerecord.Record
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.lockRepo.HoldUser(txCtx, adj.UserID); err != nil {
			return err
		}
		locked, err := s.lockRepo.LockedDays(txCtx, adj.UserID, adj.Date, adj.Date)
		if err != nil {
			return fmt.Errorf("check period lock: %w", err)
		}
		if len(locked) > 0 {
			if err := s.lockRepo.ReopenDay(txCtx, period.ReopenedDay{
				UserID:     adj.UserID,
				Date:       adj.Date,
				RequestID:  adj.RequestID,
				ReopenedAt: time.Now(),
			}); err != nil {
				return fmt.Errorf("reopen day: %w", err)
			}
			slog.Info("locked day reopened by adjustment", "user_id", adj.UserID, "date", adj.Date.Format("2006-01-02"), "request_id", adj.RequestID)
		}

		existing, err := s.recordRepo.GetActive(txCtx, adj.UserID, adj.Date)
		if err != nil {
			return fmt.Errorf("load time record: %w", err)
		}

		rec := MergeAdjustment(existing, adj)
		rec.ID = newID()
		if err := rec.CheckSequence(); err != nil {
			return err
		}

		if existing != nil {
			if err := s.recordRepo.Supersede(txCtx, existing.ID, rec.ID); err != nil {
				return fmt.Errorf("supersede time record: %w", err)
			}
		}
		saved, err = s.recordRepo.Create(txCtx, rec)
		return err
	})
	if err != nil {
		return timerecord.Record{}, err
	}

	s.cache.InvalidateUser(adj.UserID)
	return saved, nil
}

// MergeAdjustment builds the record that replaces existing, keeping the times
// the adjustment does not change.
func MergeAdjustment(existing *timerecord.Record, adj timerecord.Adjustment) timerecord.Record {
	rec := timerecord.Record{
		UserID:   adj.UserID,
		Date:     adj.Date,
		WorkMode: schedule.WorkModeOnSite,
	}
	if existing != nil {
		rec.FirstIn, rec.FirstOut = existing.FirstIn, existing.FirstOut
		rec.SecondIn, rec.SecondOut = existing.SecondIn, existing.SecondOut
		rec.BreakMinutes = existing.BreakMinutes
		rec.WorkMode = existing.WorkMode
		rec.FlexibleExempt = existing.FlexibleExempt
	}
	if adj.FirstIn != nil {
		rec.FirstIn = adj.FirstIn
	}
	if adj.FirstOut != nil {
		rec.FirstOut = adj.FirstOut
	}
	if adj.SecondIn != nil {
		rec.SecondIn = adj.SecondIn
	}
	if adj.SecondOut != nil {
		rec.SecondOut = adj.SecondOut
	}
	if adj.BreakMinutes != nil {
		rec.BreakMinutes = *adj.BreakMinutes
	}
	rec.Manual = true
	requestID := adj.RequestID
	rec.RequestID = &requestID
	if adj.Reason != "" {
		reason := adj.Reason
		rec.Observation = &reason
	}
	return rec
}

// ListRecords implements timerecord.Service.
func (s *timeRecordServiceImpl) ListRecords(ctx context.Context, userID string, start, end time.Time) ([]timerecord.Record, error) {
	if end.Before(start) {
		return nil, period.ErrInvalidRange
	}
	records, err := s.recordRepo.ListBetween(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list time records: %w", err)
	}
	return records, nil
}

// replace supersedes the active record of the day, if any, with rec.
func (s *timeRecordServiceImpl) replace(ctx context.Context, rec timerecord.Record) (timerecord.Record, error) {
	var saved timerecord.Record
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.ensureOpen(txCtx, rec.UserID, rec.Date); err != nil {
			return err
		}

		existing, err := s.recordRepo.GetActive(txCtx, rec.UserID, rec.Date)
		if err != nil {
			return fmt.Errorf("load time record: %w", err)
		}
		if existing != nil {
			if err := s.recordRepo.Supersede(txCtx, existing.ID, rec.ID); err != nil {
				return fmt.Errorf("supersede time record: %w", err)
			}
		}
		saved, err = s.recordRepo.Create(txCtx, rec)
		return err
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return timerecord.Record{}, database.ErrConcurrentModification
		}
		return timerecord.Record{}, err
	}
	s.cache.InvalidateUser(rec.UserID)
	return saved, nil
}

// ensureOpen must run inside the transaction that writes the record.
func (s *timeRecordServiceImpl) ensureOpen(ctx context.Context, userID string, date time.Time) error {
	if err := s.lockRepo.HoldUser(ctx, userID); err != nil {
		return err
	}
	locked, err := s.lockRepo.LockedDays(ctx, userID, date, date)
	if err != nil {
		return fmt.Errorf("check period lock: %w", err)
	}
	if len(locked) > 0 {
		return fmt.Errorf("%w: %s", period.ErrPeriodLocked, date.Format("2006-01-02"))
	}
	return nil
}

func (s *timeRecordServiceImpl) at(date time.Time, clock string) *time.Time {
	minutes, err := schedule.ParseClock(clock)
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
