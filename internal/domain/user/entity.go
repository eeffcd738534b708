package user

import "time"

type Role string

const (
	RoleServidor Role = "servidor" // Regular public servant
	RoleChefia   Role = "chefia"   // Sector head, approves subordinates
	RoleRH       Role = "rh"       // Human resources
	RoleAdmin    Role = "admin"    // System administrator
)

var RoleValues = []string{
	string(RoleServidor),
	string(RoleChefia),
	string(RoleRH),
	string(RoleAdmin),
}

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash *string
	Role         Role
	SectorID     *string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdministrative reports whether the user may override an approval chain.
func (u *User) IsAdministrative() bool {
	return u.Role == RoleRH || u.Role == RoleAdmin
}

// CanApprove checks if user can decide on requests of others
func (u *User) CanApprove() bool {
	return u.Role == RoleChefia || u.IsAdministrative()
}
