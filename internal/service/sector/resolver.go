package sector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/sector"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/user"
)

// maxDepth bounds ancestor walks in case stored data contains a cycle.
const maxDepth = 64

type resolverImpl struct {
	sectorRepo sector.SectorRepository
	userRepo   user.UserRepository
}

func NewResolver(sectorRepo sector.SectorRepository, userRepo user.UserRepository) sector.Resolver {
	return &resolverImpl{
		sectorRepo: sectorRepo,
		userRepo:   userRepo,
	}
}

// ResolveApprovalChain implements sector.Resolver.
func (r *resolverImpl) ResolveApprovalChain(ctx context.Context, userID string) ([]sector.ChainLink, error) {
	u, err := r.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.SectorID == nil {
		return nil, r.missing(userID, sector.ApprovalRoleImmediateSuperior, "", "user has no sector")
	}

	own, err := r.sectorRepo.GetByID(ctx, *u.SectorID)
	if err != nil {
		return nil, fmt.Errorf("load sector of user %s: %w", userID, err)
	}

	// A responsible never approves their own requests, so escalate past
	// every sector the requester heads.
	immediate, err := r.climbPast(ctx, own, userID, sector.ApprovalRoleImmediateSuperior)
	if err != nil {
		return nil, err
	}

	if immediate.ParentID == nil {
		return nil, r.missing(userID, sector.ApprovalRoleMediateSuperior, immediate.ID, "sector has no parent")
	}
	parent, err := r.sectorRepo.GetByID(ctx, *immediate.ParentID)
	if err != nil {
		return nil, fmt.Errorf("load parent of sector %s: %w", immediate.ID, err)
	}
	mediate, err := r.climbPast(ctx, parent, userID, sector.ApprovalRoleMediateSuperior, *immediate.ResponsibleID)
	if err != nil {
		return nil, err
	}

	return []sector.ChainLink{
		{Role: sector.ApprovalRoleImmediateSuperior, ApproverID: *immediate.ResponsibleID},
		{Role: sector.ApprovalRoleMediateSuperior, ApproverID: *mediate.ResponsibleID},
	}, nil
}

// climbPast walks up from start to the first sector whose responsible is set
// and is not one of skip. A sector without a responsible stops the walk.
func (r *resolverImpl) climbPast(ctx context.Context, start sector.Sector, userID string, role sector.ApprovalRole, skip ...string) (sector.Sector, error) {
	skip = append(skip, userID)
	cur := start
	for depth := 0; depth < maxDepth; depth++ {
		if cur.ResponsibleID == nil {
			return sector.Sector{}, r.missing(userID, role, cur.ID, "sector has no responsible")
		}
		if !contains(skip, *cur.ResponsibleID) {
			return cur, nil
		}
		if cur.ParentID == nil {
			return sector.Sector{}, r.missing(userID, role, cur.ID, "no higher sector to escalate to")
		}
		next, err := r.sectorRepo.GetByID(ctx, *cur.ParentID)
		if err != nil {
			return sector.Sector{}, fmt.Errorf("load parent of sector %s: %w", cur.ID, err)
		}
		cur = next
	}
	return sector.Sector{}, fmt.Errorf("%w: sector %s exceeds maximum depth", sector.ErrSectorCycle, start.ID)
}

func (r *resolverImpl) missing(userID string, role sector.ApprovalRole, sectorID, reason string) error {
	slog.Error("approval chain incomplete, configure a sector responsible",
		"user_id", userID,
		"role", role,
		"sector_id", sectorID,
		"reason", reason,
	)
	return fmt.Errorf("%w: %s for user %s (%s)", sector.ErrNoResponsibleFound, role, userID, reason)
}

// SectorLocation implements sector.Resolver.
func (r *resolverImpl) SectorLocation(ctx context.Context, sectorID string) (sector.Location, error) {
	chain, err := r.Ancestors(ctx, sectorID)
	if err != nil {
		return sector.Location{}, err
	}
	var loc sector.Location
	for _, s := range chain {
		if loc.State == "" && s.State != nil {
			loc.State = *s.State
		}
		if loc.City == "" && s.City != nil {
			loc.City = *s.City
		}
		if loc.State != "" && loc.City != "" {
			break
		}
	}
	return loc, nil
}

// Ancestors implements sector.Resolver. The sector itself comes first.
func (r *resolverImpl) Ancestors(ctx context.Context, sectorID string) ([]sector.Sector, error) {
	var chain []sector.Sector
	id := sectorID
	for depth := 0; depth < maxDepth; depth++ {
		s, err := r.sectorRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		chain = append(chain, s)
		if s.ParentID == nil {
			return chain, nil
		}
		id = *s.ParentID
	}
	return nil, fmt.Errorf("%w: sector %s exceeds maximum depth", sector.ErrSectorCycle, sectorID)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
