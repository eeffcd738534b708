package user

// UserResponse represents user data in API responses
type UserResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Role     string  `json:"role"`
	SectorID *string `json:"sector_id,omitempty"`
}

func ToResponse(u User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Role:     string(u.Role),
		SectorID: u.SectorID,
	}
}
