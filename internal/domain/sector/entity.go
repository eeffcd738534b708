package sector

import "time"

// Sector is one organizational unit. Sectors form a forest through ParentID.
type Sector struct {
	ID            string
	Name          string
	Code          string
	ParentID      *string
	ResponsibleID *string
	Active        bool

	// Address / contact metadata
	Address *string
	City    *string
	State   *string // UF, e.g. "PE"
	Phone   *string
	Email   *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ApprovalRole is the position an approver holds in a request's chain.
type ApprovalRole string

const (
	ApprovalRoleImmediateSuperior ApprovalRole = "immediate_superior"
	ApprovalRoleMediateSuperior   ApprovalRole = "mediate_superior"
	ApprovalRoleHR                ApprovalRole = "hr"
	ApprovalRoleAdmin             ApprovalRole = "admin"
)

// ChainLink is one required approval in order.
type ChainLink struct {
	Role       ApprovalRole `json:"role"`
	ApproverID string       `json:"approver_id"`
}

// Location is the state/city a sector is physically bound to.
type Location struct {
	State string
	City  string
}
