package assignments

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RemyAthisayaa17/mceverse/pkg/db/models"
	"github.com/RemyAthisayaa17/mceverse/pkg/enums"
	pkgerrors "github.com/RemyAthisayaa17/mceverse/pkg/errors"
)

const maxTitleLength = 200

// CreateAssignmentRequest is the staff-facing payload for posting an assignment
// to a department/year cohort.
type CreateAssignmentRequest struct {
	Title        string     `json:"title" validate:"required,max=200"`
	Description  string     `json:"description" validate:"required"`
	Subject      string     `json:"subject" validate:"required"`
	Department   string     `json:"department" validate:"required"`
	AcademicYear string     `json:"academic_year" validate:"required"`
	DueDate      *time.Time `json:"due_date,omitempty"`
}

func (r *CreateAssignmentRequest) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Subject = strings.TrimSpace(r.Subject)
	r.Department = strings.TrimSpace(r.Department)
	r.AcademicYear = strings.TrimSpace(r.AcademicYear)
}

func (r *CreateAssignmentRequest) validate() error {
	if r.Title == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if len(r.Title) > maxTitleLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "title too long")
	}
	if r.Description == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "description required")
	}
	if r.Subject == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "subject required")
	}
	if !enums.Department(r.Department).IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown department")
	}
	if !enums.AcademicYear(r.AcademicYear).IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown academic year")
	}
	return nil
}

func (r *CreateAssignmentRequest) toModel(postedBy uuid.UUID) *models.Assignment {
	return &models.Assignment{
		Title:        r.Title,
		Description:  r.Description,
		Subject:      r.Subject,
		Department:   r.Department,
		AcademicYear: r.AcademicYear,
		DueDate:      r.DueDate,
		PostedBy:     postedBy,
	}
}

// AssignmentDTO is the transport shape for a posted assignment.
type AssignmentDTO struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Subject      string     `json:"subject"`
	Department   string     `json:"department"`
	AcademicYear string     `json:"academic_year"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	PostedBy     uuid.UUID  `json:"posted_by"`
	CreatedAt    time.Time  `json:"created_at"`
}

// FromModel converts a persistence row into the transport shape.
func FromModel(a *models.Assignment) *AssignmentDTO {
	if a == nil {
		return nil
	}
	return &AssignmentDTO{
		ID:           a.ID,
		Title:        a.Title,
		Description:  a.Description,
		Subject:      a.Subject,
		Department:   a.Department,
		AcademicYear: a.AcademicYear,
		DueDate:      a.DueDate,
		PostedBy:     a.PostedBy,
		CreatedAt:    a.CreatedAt,
	}
}

// CreateResult reports the posted assignment plus how the notification fan-out
// went. NotificationsFailed is informational; a non-zero value never fails the post.
type CreateResult struct {
	Assignment          *AssignmentDTO `json:"assignment"`
	NotificationsSent   int            `json:"notifications_sent"`
	NotificationsFailed int            `json:"notifications_failed,omitempty"`
}
