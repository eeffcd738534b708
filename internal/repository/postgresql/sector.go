package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/sefaz-ponto/ponto-backend-go/internal/domain/sector"
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/database"
)

type sectorRepositoryImpl struct {
	db *database.DB
}

func NewSectorRepository(db *database.DB) sector.SectorRepository {
	return &sectorRepositoryImpl{db: db}
}

const sectorColumns = `id, name, code, parent_id, responsible_id, active,
	address, city, state, phone, email, created_at, updated_at`

func scanSector(row pgx.Row) (sector.Sector, error) {
	var s sector.Sector
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Code,
		&s.ParentID,
		&s.ResponsibleID,
		&s.Active,
		&s.Address,
		&s.City,
		&s.State,
		&s.Phone,
		&s.Email,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sector.Sector{}, sector.ErrSectorNotFound
		}
		return sector.Sector{}, err
	}
	return s, nil
}

// Create implements sector.SectorRepository.
func (r *sectorRepositoryImpl) Create(ctx context.Context, s sector.Sector) (sector.Sector, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO sectors (name, code, parent_id, responsible_id, active, address, city, state, phone, email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + sectorColumns

	created, err := scanSector(q.QueryRow(ctx, query,
		s.Name,
		s.Code,
		s.ParentID,
		s.ResponsibleID,
		s.Active,
		s.Address,
		s.City,
		s.State,
		s.Phone,
		s.Email,
	))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return sector.Sector{}, fmt.Errorf("%w: %s", sector.ErrSectorCodeExists, s.Code)
		}
		return sector.Sector{}, fmt.Errorf("failed to create sector: %w", err)
	}
	return created, nil
}

// GetByID implements sector.SectorRepository.
func (r *sectorRepositoryImpl) GetByID(ctx context.Context, id string) (sector.Sector, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + sectorColumns + ` FROM sectors WHERE id = $1`
	return scanSector(q.QueryRow(ctx, query, id))
}

// List implements sector.SectorRepository.
func (r *sectorRepositoryImpl) List(ctx context.Context, filter sector.SectorFilter) ([]sector.Sector, error) {
	q := GetQuerier(ctx, r.db)

	where := "TRUE"
	args := []interface{}{}
	argIdx := 1

	if filter.ParentID != nil && *filter.ParentID != "" {
		where += fmt.Sprintf(" AND parent_id = $%d", argIdx)
		args = append(args, *filter.ParentID)
		argIdx++
	}

	if filter.ActiveOnly {
		where += " AND active = TRUE"
	}

	if filter.Search != nil && *filter.Search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR code ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+*filter.Search+"%")
		argIdx++
	}

	query := `SELECT ` + sectorColumns + ` FROM sectors WHERE ` + where + ` ORDER BY name`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sectors: %w", err)
	}
	defer rows.Close()

	var sectors []sector.Sector
	for rows.Next() {
		s, err := scanSector(rows)
		if err != nil {
			return nil, err
		}
		sectors = append(sectors, s)
	}
	return sectors, rows.Err()
}

// Update implements sector.SectorRepository.
func (r *sectorRepositoryImpl) Update(ctx context.Context, s sector.Sector) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE sectors
		SET name = $1, code = $2, parent_id = $3, responsible_id = $4, active = $5,
			address = $6, city = $7, state = $8, phone = $9, email = $10, updated_at = NOW()
		WHERE id = $11
	`
	commandTag, err := q.Exec(ctx, query,
		s.Name,
		s.Code,
		s.ParentID,
		s.ResponsibleID,
		s.Active,
		s.Address,
		s.City,
		s.State,
		s.Phone,
		s.Email,
		s.ID,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", sector.ErrSectorCodeExists, s.Code)
		}
		return fmt.Errorf("failed to update sector: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return sector.ErrSectorNotFound
	}
	return nil
}

// Delete implements sector.SectorRepository.
func (r *sectorRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	commandTag, err := q.Exec(ctx, `DELETE FROM sectors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sector: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return sector.ErrSectorNotFound
	}
	return nil
}

// CountChildren implements sector.SectorRepository.
func (r *sectorRepositoryImpl) CountChildren(ctx context.Context, id string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM sectors WHERE parent_id = $1`, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count child sectors: %w", err)
	}
	return count, nil
}

// ExistsByCode implements sector.SectorRepository.
func (r *sectorRepositoryImpl) ExistsByCode(ctx context.Context, code string, excludeID *string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT EXISTS(SELECT 1 FROM sectors WHERE UPPER(code) = UPPER($1) AND ($2::uuid IS NULL OR id <> $2))`

	var exists bool
	if err := q.QueryRow(ctx, query, code, excludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
