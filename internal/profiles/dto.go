package profiles

import (
	"time"

	"github.com/google/uuid"

	"github.com/RemyAthisayaa17/mceverse/pkg/db/models"
)

// BaseProfileDTO holds the data required by the repo to persist a base profile row.
type BaseProfileDTO struct {
	UserID      uuid.UUID
	Email       string
	FullName    string
	PhoneNumber *string
	Pending     bool
}

// StudentProfileDTO holds the data required to persist a student role profile.
type StudentProfileDTO struct {
	UserID         uuid.UUID
	FullName       string
	Email          string
	PhoneNumber    *string
	Department     string
	AcademicYear   string
	RegisterNumber string
}

// StaffProfileDTO holds the data required to persist a staff role profile.
type StaffProfileDTO struct {
	UserID       uuid.UUID
	FullName     string
	Email        string
	PhoneNumber  *string
	Department   string
	AcademicYear string
}

// ProfileDTO is the transport shape returned by profile reads.
type ProfileDTO struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	PhoneNumber *string   `json:"phone_number,omitempty"`
	Pending     bool      `json:"pending"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func FromModel(p *models.Profile) *ProfileDTO {
	if p == nil {
		return nil
	}
	return &ProfileDTO{
		UserID:      p.UserID,
		Email:       p.Email,
		FullName:    p.FullName,
		PhoneNumber: p.PhoneNumber,
		Pending:     p.Pending,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (d BaseProfileDTO) ToModel() *models.Profile {
	return &models.Profile{
		UserID:      d.UserID,
		Email:       d.Email,
		FullName:    d.FullName,
		PhoneNumber: d.PhoneNumber,
		Pending:     d.Pending,
	}
}

func (d StudentProfileDTO) ToModel() *models.StudentProfile {
	return &models.StudentProfile{
		UserID:         d.UserID,
		FullName:       d.FullName,
		Email:          d.Email,
		PhoneNumber:    d.PhoneNumber,
		Department:     d.Department,
		AcademicYear:   d.AcademicYear,
		RegisterNumber: d.RegisterNumber,
	}
}

func (d StaffProfileDTO) ToModel() *models.StaffProfile {
	return &models.StaffProfile{
		UserID:       d.UserID,
		FullName:     d.FullName,
		Email:        d.Email,
		PhoneNumber:  d.PhoneNumber,
		Department:   d.Department,
		AcademicYear: d.AcademicYear,
	}
}
