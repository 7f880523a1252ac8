package models

import (
	"time"

	"github.com/google/uuid"
)

// Assignment is a piece of work posted by staff to a department/year cohort.
type Assignment struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title        string     `gorm:"type:text;not null"`
	Description  string     `gorm:"type:text;not null"`
	Subject      string     `gorm:"type:text;not null"`
	Department   string     `gorm:"column:department;not null"`
	AcademicYear string     `gorm:"column:academic_year;not null"`
	DueDate      *time.Time `gorm:"column:due_date"`
	PostedBy     uuid.UUID  `gorm:"type:uuid;column:posted_by;not null"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Assignment) TableName() string { return "assignments" }
