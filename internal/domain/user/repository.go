package user

import (
	"context"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	ListByRoles(ctx context.Context, roles []Role) ([]User, error)
	// ListBySectorID returns the active users assigned to the sector.
	ListBySectorID(ctx context.Context, sectorID string) ([]User, error)
}
