package holiday

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/holiday"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/notification"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/period"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/user"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/database"
)

const (
	minImportYear = 1900
	maxImportYear = 2199
)

type holidayServiceImpl struct {
	holidayRepo         holiday.HolidayRepository
	fetcher             holiday.Fetcher
	txManager           database.TxManager
	cache               period.CacheInvalidator
	userRepo            user.UserRepository
	notificationService notification.Service
}

func NewHolidayService(
	holidayRepo holiday.HolidayRepository,
	fetcher holiday.Fetcher,
	txManager database.TxManager,
	cache period.CacheInvalidator,
	userRepo user.UserRepository,
	notificationService notification.Service,
) holiday.HolidayService {
	return &holidayServiceImpl{
		holidayRepo:         holidayRepo,
		fetcher:             fetcher,
		txManager:           txManager,
		cache:               cache,
		userRepo:            userRepo,
		notificationService: notificationService,
	}
}

// Create implements holiday.HolidayService.
func (s *holidayServiceImpl) Create(ctx context.Context, req holiday.CreateHolidayRequest) (holiday.HolidayResponse, error) {
	if err := req.Validate(); err != nil {
		return holiday.HolidayResponse{}, err
	}

	created, err := s.holidayRepo.Create(ctx, req.ToHoliday())
	if err != nil {
		if database.IsUniqueViolation(err) {
			return holiday.HolidayResponse{}, fmt.Errorf("%w: %s", holiday.ErrHolidayExists, req.Date)
		}
		return holiday.HolidayResponse{}, fmt.Errorf("create holiday: %w", err)
	}

	s.cache.InvalidateAll()
	return holiday.ToResponse(created), nil
}

// List implements holiday.HolidayService.
func (s *holidayServiceImpl) List(ctx context.Context, filter holiday.HolidayFilter) ([]holiday.HolidayResponse, error) {
	holidays, err := s.holidayRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	resp := make([]holiday.HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		resp = append(resp, holiday.ToResponse(h))
	}
	return resp, nil
}

// Delete implements holiday.HolidayService.
func (s *holidayServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.holidayRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidateAll()
	return nil
}

// Import implements holiday.HolidayService. A failing source leaves stored
// holidays untouched; the upsert makes repeated or concurrent runs safe.
func (s *holidayServiceImpl) Import(ctx context.Context, year int) (holiday.ImportResult, error) {
	if year < minImportYear || year > maxImportYear {
		return holiday.ImportResult{}, fmt.Errorf("%w: %d (allowed %d-%d)", holiday.ErrInvalidImportYear, year, minImportYear, maxImportYear)
	}

	start := time.Now()
	fetched, err := s.fetcher.FetchNational(ctx, year)
	if err != nil {
		slog.Warn("holiday import skipped, keeping stored holidays", "year", year, "error", err)
		s.alertAdmins(ctx, year, err)
		if !errors.Is(err, holiday.ErrSourceUnavailable) {
			err = fmt.Errorf("%w: %v", holiday.ErrSourceUnavailable, err)
		}
		return holiday.ImportResult{}, err
	}

	err = s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		for _, h := range fetched {
			if err := s.holidayRepo.Upsert(txCtx, h); err != nil {
				return fmt.Errorf("upsert holiday %s: %w", h.Date.Format("2006-01-02"), err)
			}
		}
		return nil
	})
	if err != nil {
		return holiday.ImportResult{}, err
	}

	s.cache.InvalidateAll()
	slog.Info("holidays imported", "year", year, "count", len(fetched), "duration", time.Since(start))
	return holiday.ImportResult{Year: year, Imported: len(fetched)}, nil
}

func (s *holidayServiceImpl) alertAdmins(ctx context.Context, year int, cause error) {
	admins, err := s.userRepo.ListByRoles(ctx, []user.Role{user.RoleAdmin})
	if err != nil {
		slog.Error("failed to list administrators for holiday alert", "error", err)
		return
	}
	reqs := make([]notification.CreateNotificationRequest, 0, len(admins))
	for _, a := range admins {
		reqs = append(reqs, notification.CreateNotificationRequest{
			RecipientID: a.ID,
			Type:        notification.TypeHolidayImportFailed,
			Title:       "Falha na importação de feriados",
			Message:     fmt.Sprintf("Não foi possível importar os feriados de %d. Os feriados cadastrados foram mantidos.", year),
			Data:        map[string]interface{}{"year": year, "error": cause.Error()},
		})
	}
	if err := s.notificationService.QueueBulkNotification(ctx, reqs); err != nil {
		slog.Error("failed to queue holiday alert", "error", err)
	}
}
