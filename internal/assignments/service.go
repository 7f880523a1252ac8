package assignments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/RemyAthisayaa17/mceverse/pkg/db/models"
	"github.com/RemyAthisayaa17/mceverse/pkg/enums"
	pkgerrors "github.com/RemyAthisayaa17/mceverse/pkg/errors"
	"github.com/RemyAthisayaa17/mceverse/pkg/logger"
	"github.com/RemyAthisayaa17/mceverse/pkg/metrics"
	"github.com/RemyAthisayaa17/mceverse/pkg/visibility"
)

// Service covers staff assignment posting and the student-facing reads.
type Service interface {
	Create(ctx context.Context, postedBy uuid.UUID, req CreateAssignmentRequest) (*CreateResult, error)
	ListForStaff(ctx context.Context, staffID uuid.UUID) ([]AssignmentDTO, error)
	ListForStudent(ctx context.Context, studentUserID uuid.UUID) ([]AssignmentDTO, error)
	GetForStudent(ctx context.Context, studentUserID, assignmentID uuid.UUID) (*AssignmentDTO, error)
}

type assignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error)
	ListByPoster(ctx context.Context, postedBy uuid.UUID) ([]models.Assignment, error)
	ListByCohort(ctx context.Context, department, academicYear string) ([]models.Assignment, error)
}

type cohortReader interface {
	ListStudentsByCohort(ctx context.Context, department, academicYear string) ([]models.StudentProfile, error)
	FindStudentByUserID(ctx context.Context, userID uuid.UUID) (*models.StudentProfile, error)
}

type notificationWriter interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// ServiceParams bundles the dependencies required to build an assignments service.
type ServiceParams struct {
	Repo          assignmentRepository
	ProfileRepo   cohortReader
	Notifications notificationWriter
	Metrics       *metrics.ProvisioningMetrics
	Logger        *logger.Logger
}

type service struct {
	repo          assignmentRepository
	profiles      cohortReader
	notifications notificationWriter
	metrics       *metrics.ProvisioningMetrics
	logg          *logger.Logger
}

// NewService constructs an assignments service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "assignments repository required")
	}
	if params.ProfileRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "profiles repository required")
	}
	if params.Notifications == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "notifications repository required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &service{
		repo:          params.Repo,
		profiles:      params.ProfileRepo,
		notifications: params.Notifications,
		metrics:       params.Metrics,
		logg:          params.Logger,
	}, nil
}

// Create inserts the assignment, then fans a notification out to every student
// in the target cohort. Fan-out failures are logged and counted; the posted
// assignment is never rolled back because of them.
func (s *service) Create(ctx context.Context, postedBy uuid.UUID, req CreateAssignmentRequest) (*CreateResult, error) {
	if postedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authenticated staff account required")
	}
	req.normalize()
	if err := req.validate(); err != nil {
		return nil, err
	}

	assignment := req.toModel(postedBy)
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create assignment")
	}

	sent, failed := s.fanOut(ctx, assignment)
	return &CreateResult{
		Assignment:          FromModel(assignment),
		NotificationsSent:   sent,
		NotificationsFailed: failed,
	}, nil
}

func (s *service) fanOut(ctx context.Context, assignment *models.Assignment) (sent, failed int) {
	students, err := s.profiles.ListStudentsByCohort(ctx, assignment.Department, assignment.AcademicYear)
	if err != nil {
		s.metrics.IncFanoutFailure()
		s.logg.Error(ctx, "list cohort for assignment fan-out", err)
		return 0, 0
	}

	relatedID := assignment.ID
	var combined error
	for _, student := range students {
		notification := &models.Notification{
			StudentID: student.UserID,
			Type:      enums.NotificationTypeAssignment,
			Title:     "New Assignment",
			Message:   fmt.Sprintf("%s (%s) has been posted for %s %s", assignment.Title, assignment.Subject, assignment.Department, assignment.AcademicYear),
			RelatedID: &relatedID,
		}
		if err := s.notifications.Create(ctx, notification); err != nil {
			failed++
			s.metrics.IncFanoutFailure()
			combined = multierr.Append(combined, fmt.Errorf("student %s: %w", student.UserID, err))
			continue
		}
		sent++
	}

	if combined != nil {
		s.logg.Error(ctx, "assignment notification fan-out incomplete", combined)
	}
	return sent, failed
}

func (s *service) ListForStaff(ctx context.Context, staffID uuid.UUID) ([]AssignmentDTO, error) {
	if staffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authenticated staff account required")
	}
	rows, err := s.repo.ListByPoster(ctx, staffID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assignments")
	}
	return toDTOs(rows), nil
}

func (s *service) ListForStudent(ctx context.Context, studentUserID uuid.UUID) ([]AssignmentDTO, error) {
	student, err := s.loadStudent(ctx, studentUserID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByCohort(ctx, student.Department, student.AcademicYear)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assignments")
	}
	return toDTOs(rows), nil
}

func (s *service) GetForStudent(ctx context.Context, studentUserID, assignmentID uuid.UUID) (*AssignmentDTO, error) {
	student, err := s.loadStudent(ctx, studentUserID)
	if err != nil {
		return nil, err
	}

	assignment, err := s.repo.FindByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
	}

	if err := visibility.EnsureAssignmentVisible(visibility.AssignmentVisibilityInput{
		Assignment: assignment,
		Student:    student,
	}); err != nil {
		return nil, err
	}
	return FromModel(assignment), nil
}

func (s *service) loadStudent(ctx context.Context, userID uuid.UUID) (*models.StudentProfile, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authenticated student account required")
	}
	student, err := s.profiles.FindStudentByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "student profile required")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load student profile")
	}
	return student, nil
}

func toDTOs(rows []models.Assignment) []AssignmentDTO {
	out := make([]AssignmentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
