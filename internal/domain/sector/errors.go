package sector

import "errors"

var (
	ErrSectorNotFound     = errors.New("sector not found")
	ErrSectorCodeExists   = errors.New("sector with this code already exists")
	ErrSectorCycle        = errors.New("sector parent would create a cycle")
	ErrSectorHasChildren  = errors.New("sector has child sectors")
	ErrNoResponsibleFound = errors.New("no responsible found for required approval role")
)
