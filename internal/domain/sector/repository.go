package sector

import "context"

type SectorRepository interface {
	Create(ctx context.Context, sector Sector) (Sector, error)
	GetByID(ctx context.Context, id string) (Sector, error)
	List(ctx context.Context, filter SectorFilter) ([]Sector, error)
	Update(ctx context.Context, sector Sector) error
	Delete(ctx context.Context, id string) error
	CountChildren(ctx context.Context, id string) (int, error)
	ExistsByCode(ctx context.Context, code string, excludeID *string) (bool, error)
}
