package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/streetlink-backend/pkg/enums"
)

// User represents any marketplace participant; the role field decides which
// surface they operate.
type User struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FirebaseUID string         `gorm:"column:firebase_uid;not null;uniqueIndex"`
	Email       string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	FirstName   string         `gorm:"column:first_name;not null"`
	LastName    string         `gorm:"column:last_name;not null"`
	Phone       *string        `gorm:"column:phone"`
	Role        enums.UserRole `gorm:"column:role;type:text;not null"`
	CompanyName *string        `gorm:"column:company_name"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
