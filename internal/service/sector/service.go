package sector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/sector"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/user"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/validator"
)

type sectorServiceImpl struct {
	sectorRepo sector.SectorRepository
	userRepo   user.UserRepository
	resolver   sector.Resolver
}

func NewSectorService(sectorRepo sector.SectorRepository, userRepo user.UserRepository, resolver sector.Resolver) sector.SectorService {
	return &sectorServiceImpl{
		sectorRepo: sectorRepo,
		userRepo:   userRepo,
		resolver:   resolver,
	}
}

// Create implements sector.SectorService.
func (s *sectorServiceImpl) Create(ctx context.Context, req sector.CreateSectorRequest) (sector.SectorResponse, error) {
	if err := req.Validate(); err != nil {
		return sector.SectorResponse{}, err
	}

	exists, err := s.sectorRepo.ExistsByCode(ctx, req.Code, nil)
	if err != nil {
		return sector.SectorResponse{}, fmt.Errorf("check sector code: %w", err)
	}
	if exists {
		return sector.SectorResponse{}, sector.ErrSectorCodeExists
	}

	if req.ParentID != nil {
		if _, err := s.sectorRepo.GetByID(ctx, *req.ParentID); err != nil {
			return sector.SectorResponse{}, s.referenceError("parent_id", err)
		}
	}
	if req.ResponsibleID != nil {
		if _, err := s.userRepo.GetByID(ctx, *req.ResponsibleID); err != nil {
			return sector.SectorResponse{}, s.referenceError("responsible_id", err)
		}
	}

	created, err := s.sectorRepo.Create(ctx, sector.Sector{
		Name:          req.Name,
		Code:          req.Code,
		ParentID:      req.ParentID,
		ResponsibleID: req.ResponsibleID,
		Active:        true,
		Address:       req.Address,
		City:          req.City,
		State:         req.State,
		Phone:         req.Phone,
		Email:         req.Email,
	})
	if err != nil {
		return sector.SectorResponse{}, fmt.Errorf("create sector: %w", err)
	}

	slog.Info("sector created", "sector_id", created.ID, "code", created.Code)
	return sector.ToResponse(created), nil
}

// Get implements sector.SectorService.
func (s *sectorServiceImpl) Get(ctx context.Context, id string) (sector.SectorResponse, error) {
	sec, err := s.sectorRepo.GetByID(ctx, id)
	if err != nil {
		return sector.SectorResponse{}, err
	}
	return sector.ToResponse(sec), nil
}

// List implements sector.SectorService.
func (s *sectorServiceImpl) List(ctx context.Context, filter sector.SectorFilter) ([]sector.SectorResponse, error) {
	sectors, err := s.sectorRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list sectors: %w", err)
	}
	resp := make([]sector.SectorResponse, 0, len(sectors))
	for _, sec := range sectors {
		resp = append(resp, sector.ToResponse(sec))
	}
	return resp, nil
}

// Update implements sector.SectorService.
func (s *sectorServiceImpl) Update(ctx context.Context, req sector.UpdateSectorRequest) (sector.SectorResponse, error) {
	if err := req.Validate(); err != nil {
		return sector.SectorResponse{}, err
	}

	sec, err := s.sectorRepo.GetByID(ctx, req.ID)
	if err != nil {
		return sector.SectorResponse{}, err
	}

	if req.Code != nil && *req.Code != sec.Code {
		exists, err := s.sectorRepo.ExistsByCode(ctx, *req.Code, &sec.ID)
		if err != nil {
			return sector.SectorResponse{}, fmt.Errorf("check sector code: %w", err)
		}
		if exists {
			return sector.SectorResponse{}, sector.ErrSectorCodeExists
		}
		sec.Code = *req.Code
	}

	if req.ParentID != nil {
		if err := s.checkNoCycle(ctx, sec.ID, *req.ParentID); err != nil {
			return sector.SectorResponse{}, err
		}
		sec.ParentID = req.ParentID
	}
	if req.ClearParent {
		sec.ParentID = nil
	}

	if req.ResponsibleID != nil {
		if _, err := s.userRepo.GetByID(ctx, *req.ResponsibleID); err != nil {
			return sector.SectorResponse{}, s.referenceError("responsible_id", err)
		}
		sec.ResponsibleID = req.ResponsibleID
	}

	if req.Name != nil {
		sec.Name = *req.Name
	}
	if req.Active != nil {
		sec.Active = *req.Active
	}
	if req.Address != nil {
		sec.Address = req.Address
	}
	if req.City != nil {
		sec.City = req.City
	}
	if req.State != nil {
		sec.State = req.State
	}
	if req.Phone != nil {
		sec.Phone = req.Phone
	}
	if req.Email != nil {
		sec.Email = req.Email
	}

	if err := s.sectorRepo.Update(ctx, sec); err != nil {
		return sector.SectorResponse{}, fmt.Errorf("update sector %s: %w", sec.ID, err)
	}
	return sector.ToResponse(sec), nil
}

// checkNoCycle rejects a parent that is the sector itself or one of its descendants.
func (s *sectorServiceImpl) checkNoCycle(ctx context.Context, sectorID, newParentID string) error {
	ancestors, err := s.resolver.Ancestors(ctx, newParentID)
	if err != nil {
		if errors.Is(err, sector.ErrSectorNotFound) {
			return s.referenceError("parent_id", err)
		}
		return err
	}
	for _, a := range ancestors {
		if a.ID == sectorID {
			return fmt.Errorf("%w: %s is a descendant of %s", sector.ErrSectorCycle, newParentID, sectorID)
		}
	}
	return nil
}

// Delete implements sector.SectorService.
func (s *sectorServiceImpl) Delete(ctx context.Context, id string) error {
	if _, err := s.sectorRepo.GetByID(ctx, id); err != nil {
		return err
	}
	children, err := s.sectorRepo.CountChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("count child sectors: %w", err)
	}
	if children > 0 {
		return fmt.Errorf("%w: %d child sector(s), deactivate it instead", sector.ErrSectorHasChildren, children)
	}
	return s.sectorRepo.Delete(ctx, id)
}

func (s *sectorServiceImpl) referenceError(field string, err error) error {
	if errors.Is(err, sector.ErrSectorNotFound) || errors.Is(err, user.ErrUserNotFound) {
		return validator.ValidationErrors{{Field: field, Message: field + " does not reference an existing record"}}
	}
	return err
}
