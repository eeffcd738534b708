package sector

import (
	"github.com/sefaz-ponto/ponto-backend-go/internal/pkg/validator"
)

type SectorResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Code          string  `json:"code"`
	ParentID      *string `json:"parent_id,omitempty"`
	ResponsibleID *string `json:"responsible_id,omitempty"`
	Active        bool    `json:"active"`
	Address       *string `json:"address,omitempty"`
	City          *string `json:"city,omitempty"`
	State         *string `json:"state,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Email         *string `json:"email,omitempty"`
}

func ToResponse(s Sector) SectorResponse {
	return SectorResponse{
		ID:            s.ID,
		Name:          s.Name,
		Code:          s.Code,
		ParentID:      s.ParentID,
		ResponsibleID: s.ResponsibleID,
		Active:        s.Active,
		Address:       s.Address,
		City:          s.City,
		State:         s.State,
		Phone:         s.Phone,
		Email:         s.Email,
	}
}

type SectorFilter struct {
	ParentID   *string
	ActiveOnly bool
	Search     *string
}

type CreateSectorRequest struct {
	Name          string  `json:"name" validate:"required,max=150"`
	Code          string  `json:"code" validate:"required,max=30"`
	ParentID      *string `json:"parent_id,omitempty"`
	ResponsibleID *string `json:"responsible_id,omitempty"`
	Address       *string `json:"address,omitempty"`
	City          *string `json:"city,omitempty" validate:"omitempty,max=100"`
	State         *string `json:"state,omitempty" validate:"omitempty,len=2"`
	Phone         *string `json:"phone,omitempty"`
	Email         *string `json:"email,omitempty" validate:"omitempty,email"`
}

func (r *CreateSectorRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.ParentID != nil && validator.IsEmpty(*r.ParentID) {
		errs = append(errs, validator.ValidationError{
			Field:   "parent_id",
			Message: "parent_id must not be empty if provided",
		})
	}

	if len(errs) > 0 {
		return validator.Merge(validator.Struct(r), errs)
	}
	return validator.Struct(r)
}

type UpdateSectorRequest struct {
	ID            string  `json:"-"`
	Name          *string `json:"name,omitempty" validate:"omitempty,max=150"`
	Code          *string `json:"code,omitempty" validate:"omitempty,max=30"`
	ParentID      *string `json:"parent_id,omitempty"`
	ClearParent   bool    `json:"clear_parent,omitempty"`
	ResponsibleID *string `json:"responsible_id,omitempty"`
	Active        *bool   `json:"active,omitempty"`
	Address       *string `json:"address,omitempty"`
	City          *string `json:"city,omitempty" validate:"omitempty,max=100"`
	State         *string `json:"state,omitempty" validate:"omitempty,len=2"`
	Phone         *string `json:"phone,omitempty"`
	Email         *string `json:"email,omitempty" validate:"omitempty,email"`
}

func (r *UpdateSectorRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not be empty",
		})
	}
	if r.ParentID != nil && r.ClearParent {
		errs = append(errs, validator.ValidationError{
			Field:   "parent_id",
			Message: "parent_id and clear_parent are mutually exclusive",
		})
	}
	if r.ParentID != nil && *r.ParentID == r.ID {
		errs = append(errs, validator.ValidationError{
			Field:   "parent_id",
			Message: "a sector cannot be its own parent",
		})
	}

	if len(errs) > 0 {
		return validator.Merge(validator.Struct(r), errs)
	}
	return validator.Struct(r)
}

type ChainLinkResponse struct {
	Role       string `json:"role"`
	ApproverID string `json:"approver_id"`
}

type ApprovalChainResponse struct {
	UserID string              `json:"user_id"`
	Chain  []ChainLinkResponse `json:"chain"`
}
