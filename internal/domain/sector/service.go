package sector

import "context"

// Resolver computes approval chains and sector locations from the sector tree.
type Resolver interface {
	ResolveApprovalChain(ctx context.Context, userID string) ([]ChainLink, error)
	SectorLocation(ctx context.Context, sectorID string) (Location, error)
	Ancestors(ctx context.Context, sectorID string) ([]Sector, error)
}

type SectorService interface {
	Create(ctx context.Context, req CreateSectorRequest) (SectorResponse, error)
	Get(ctx context.Context, id string) (SectorResponse, error)
	List(ctx context.Context, filter SectorFilter) ([]SectorResponse, error)
	Update(ctx context.Context, req UpdateSectorRequest) (SectorResponse, error)
	Delete(ctx context.Context, id string) error
}
