package auth

import (
	"github.com/angelmondragon/streetlink-backend/internal/users"
)

// RegisterRequest is the payload accepted by POST /api/auth/register. Identity
// (firebase uid + email) comes from the verified token, never the body.
type RegisterRequest struct {
	FirstName   string  `json:"first_name" validate:"required,max=100"`
	LastName    string  `json:"last_name" validate:"required,max=100"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Role        string  `json:"role" validate:"required,oneof=street_vendor distributor delivery_agent"`
	CompanyName *string `json:"company_name,omitempty" validate:"omitempty,max=200"`
}

// UpdateProfileRequest carries the mutable profile fields for PUT /api/auth/profile.
type UpdateProfileRequest struct {
	FirstName   *string `json:"first_name,omitempty" validate:"omitempty,min=1,max=100"`
	LastName    *string `json:"last_name,omitempty" validate:"omitempty,min=1,max=100"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	CompanyName *string `json:"company_name,omitempty" validate:"omitempty,max=200"`
}

// SessionResponse wraps the user returned by register, login and me.
type SessionResponse struct {
	User *users.UserDTO `json:"user"`
}
