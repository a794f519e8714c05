package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/streetlink-backend/pkg/db/models"
	"github.com/angelmondragon/streetlink-backend/pkg/enums"
)

// UserDTO is the transport shape returned by auth and profile endpoints.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	Phone       *string        `json:"phone,omitempty"`
	Role        enums.UserRole `json:"role"`
	CompanyName *string        `json:"company_name,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// DistributorList wraps paginated distributor profiles for vendor browsing.
type DistributorList struct {
	Distributors []UserDTO `json:"distributors"`
	NextCursor   string    `json:"next_cursor,omitempty"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	FirebaseUID string
	Email       string
	FirstName   string
	LastName    string
	Phone       *string
	Role        enums.UserRole
	CompanyName *string
}

// UpdateProfileDTO carries the mutable profile fields. Nil means leave as-is.
type UpdateProfileDTO struct {
	FirstName   *string
	LastName    *string
	Phone       *string
	CompanyName *string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Phone:       u.Phone,
		Role:        u.Role,
		CompanyName: u.CompanyName,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		FirebaseUID: c.FirebaseUID,
		Email:       c.Email,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Phone:       c.Phone,
		Role:        c.Role,
		CompanyName: c.CompanyName,
	}
}
