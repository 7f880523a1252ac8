package models

import (
	"time"

	"github.com/google/uuid"
)

// StaffProfile holds the staff-specific registration fields.
type StaffProfile struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID `gorm:"type:uuid;column:user_id;not null;uniqueIndex"`
	FullName     string    `gorm:"column:full_name;not null"`
	Email        string    `gorm:"type:text;not null"`
	PhoneNumber  *string   `gorm:"column:phone_number"`
	Department   string    `gorm:"column:department;not null"`
	AcademicYear string    `gorm:"column:academic_year;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (StaffProfile) TableName() string { return "staff_profiles" }
