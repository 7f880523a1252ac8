package visibility

import (
	"strings"

	"github.com/RemyAthisayaa17/mceverse/pkg/db/models"
	pkgerrors "github.com/RemyAthisayaa17/mceverse/pkg/errors"
)

// AssignmentVisibilityInput drives the shared visibility checks for student-facing queries.
type AssignmentVisibilityInput struct {
	Assignment *models.Assignment
	Student    *models.StudentProfile
}

// EnsureAssignmentVisible enforces cohort rules so assignments never leak outside
// their target department and academic year.
func EnsureAssignmentVisible(input AssignmentVisibilityInput) error {
	if input.Student == nil {
		return pkgerrors.New(pkgerrors.CodeForbidden, "student profile required")
	}
	if input.Assignment == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
	}

	studentDept := normalize(input.Student.Department)
	if studentDept == "" {
		return pkgerrors.New(pkgerrors.CodeForbidden, "student department unavailable")
	}
	if normalize(input.Assignment.Department) != studentDept {
		return pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
	}

	studentYear := normalize(input.Student.AcademicYear)
	if studentYear == "" {
		return pkgerrors.New(pkgerrors.CodeForbidden, "student academic year unavailable")
	}
	if normalize(input.Assignment.AcademicYear) != studentYear {
		return pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
	}

	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
