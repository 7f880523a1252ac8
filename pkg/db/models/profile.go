package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the minimal cross-role profile row. It reuses the identity id as
// its primary key, so there can never be more than one per identity.
type Profile struct {
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey;column:user_id"`
	Email       string    `gorm:"type:text;not null"`
	FullName    string    `gorm:"column:full_name;not null"`
	PhoneNumber *string   `gorm:"column:phone_number"`
	Pending     bool      `gorm:"column:pending;not null;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Profile) TableName() string { return "profiles" }
