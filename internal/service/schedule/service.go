package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/period"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/schedule"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/sector"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/user"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/validator"
)

type scheduleServiceImpl struct {
	ruleRepo   schedule.RuleRepository
	userRepo   user.UserRepository
	sectorRepo sector.SectorRepository
	cache      period.CacheInvalidator
}

func NewScheduleService(ruleRepo schedule.RuleRepository, userRepo user.UserRepository, sectorRepo sector.SectorRepository, cache period.CacheInvalidator) schedule.ScheduleService {
	return &scheduleServiceImpl{
		ruleRepo:   ruleRepo,
		userRepo:   userRepo,
		sectorRepo: sectorRepo,
		cache:      cache,
	}
}

// Create implements schedule.ScheduleService.
func (s *scheduleServiceImpl) Create(ctx context.Context, req schedule.CreateRuleRequest) (schedule.RuleResponse, error) {
	if err := req.Validate(); err != nil {
		return schedule.RuleResponse{}, err
	}

	rule, err := req.ToRule()
	if err != nil {
		return schedule.RuleResponse{}, err
	}
	if err := rule.CheckInvariants(); err != nil {
		return schedule.RuleResponse{}, err
	}

	if err := s.checkOwner(ctx, rule, ""); err != nil {
		return schedule.RuleResponse{}, err
	}

	created, err := s.ruleRepo.Create(ctx, rule)
	if err != nil {
		return schedule.RuleResponse{}, fmt.Errorf("create schedule rule: %w", err)
	}

	s.cache.InvalidateAll()
	slog.Info("schedule rule created", "rule_id", created.ID, "type", created.Type)
	return schedule.ToResponse(created), nil
}

// checkOwner verifies the owner exists and has no other active rule.
func (s *scheduleServiceImpl) checkOwner(ctx context.Context, rule schedule.Rule, selfID string) error {
	var existing *schedule.Rule
	var err error
	switch {
	case rule.UserID != nil:
		if _, err := s.userRepo.GetByID(ctx, *rule.UserID); err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return validator.ValidationErrors{{Field: "user_id", Message: "user_id does not reference an existing user"}}
			}
			return err
		}
		existing, err = s.ruleRepo.GetActiveByUserID(ctx, *rule.UserID)
	case rule.SectorID != nil:
		if _, err := s.sectorRepo.GetByID(ctx, *rule.SectorID); err != nil {
			if errors.Is(err, sector.ErrSectorNotFound) {
				return validator.ValidationErrors{{Field: "sector_id", Message: "sector_id does not reference an existing sector"}}
			}
			return err
		}
		existing, err = s.ruleRepo.GetActiveBySectorID(ctx, *rule.SectorID)
	}
	if err != nil {
		return fmt.Errorf("load active schedule rule: %w", err)
	}
	if rule.Active && existing != nil && existing.ID != selfID {
		return fmt.Errorf("%w: rule %s", schedule.ErrScheduleOwnerExists, existing.ID)
	}
	return nil
}

// Get implements schedule.ScheduleService.
func (s *scheduleServiceImpl) Get(ctx context.Context, id string) (schedule.RuleResponse, error) {
	rule, err := s.ruleRepo.GetByID(ctx, id)
	if err != nil {
		return schedule.RuleResponse{}, err
	}
	return schedule.ToResponse(rule), nil
}

// List implements schedule.ScheduleService.
func (s *scheduleServiceImpl) List(ctx context.Context, filter schedule.RuleFilter) ([]schedule.RuleResponse, error) {
	rules, err := s.ruleRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list schedule rules: %w", err)
	}
	resp := make([]schedule.RuleResponse, 0, len(rules))
	for _, r := range rules {
		resp = append(resp, schedule.ToResponse(r))
	}
	return resp, nil
}

// Update implements schedule.ScheduleService.
func (s *scheduleServiceImpl) Update(ctx context.Context, req schedule.UpdateRuleRequest) (schedule.RuleResponse, error) {
	if err := req.Validate(); err != nil {
		return schedule.RuleResponse{}, err
	}

	rule, err := s.ruleRepo.GetByID(ctx, req.ID)
	if err != nil {
		return schedule.RuleResponse{}, err
	}

	rule, err = req.Apply(rule)
	if err != nil {
		return schedule.RuleResponse{}, err
	}
	if err := rule.CheckInvariants(); err != nil {
		return schedule.RuleResponse{}, err
	}
	if err := s.checkOwner(ctx, rule, rule.ID); err != nil {
		return schedule.RuleResponse{}, err
	}

	if err := s.ruleRepo.Update(ctx, rule); err != nil {
		return schedule.RuleResponse{}, fmt.Errorf("update schedule rule %s: %w", rule.ID, err)
	}

	s.cache.InvalidateAll()
	return schedule.ToResponse(rule), nil
}

// Delete implements schedule.ScheduleService.
func (s *scheduleServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.ruleRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidateAll()
	return nil
}
