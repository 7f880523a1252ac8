package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/RemyAthisayaa17/mceverse/api/middleware"
	"github.com/RemyAthisayaa17/mceverse/internal/assignments"
	pkgerrors "github.com/RemyAthisayaa17/mceverse/pkg/errors"
)

type stubAssignmentsService struct {
	createFn  func(ctx context.Context, postedBy uuid.UUID, req assignments.CreateAssignmentRequest) (*assignments.CreateResult, error)
	staffFn   func(ctx context.Context, staffID uuid.UUID) ([]assignments.AssignmentDTO, error)
	studentFn func(ctx context.Context, studentUserID uuid.UUID) ([]assignments.AssignmentDTO, error)
	getFn     func(ctx context.Context, studentUserID, assignmentID uuid.UUID) (*assignments.AssignmentDTO, error)
}

func (s *stubAssignmentsService) Create(ctx context.Context, postedBy uuid.UUID, req assignments.CreateAssignmentRequest) (*assignments.CreateResult, error) {
	if s.createFn != nil {
		return s.createFn(ctx, postedBy, req)
	}
	return nil, nil
}

func (s *stubAssignmentsService) ListForStaff(ctx context.Context, staffID uuid.UUID) ([]assignments.AssignmentDTO, error) {
	if s.staffFn != nil {
		return s.staffFn(ctx, staffID)
	}
	return nil, nil
}

func (s *stubAssignmentsService) ListForStudent(ctx context.Context, studentUserID uuid.UUID) ([]assignments.AssignmentDTO, error) {
	if s.studentFn != nil {
		return s.studentFn(ctx, studentUserID)
	}
	return nil, nil
}

func (s *stubAssignmentsService) GetForStudent(ctx context.Context, studentUserID, assignmentID uuid.UUID) (*assignments.AssignmentDTO, error) {
	if s.getFn != nil {
		return s.getFn(ctx, studentUserID, assignmentID)
	}
	return nil, nil
}

func TestStaffCreateAssignment(t *testing.T) {
	staffID := uuid.New()
	svc := &stubAssignmentsService{
		createFn: func(ctx context.Context, postedBy uuid.UUID, req assignments.CreateAssignmentRequest) (*assignments.CreateResult, error) {
			if postedBy != staffID {
				t.Fatalf("unexpected poster %s", postedBy)
			}
			return &assignments.CreateResult{
				Assignment:        &assignments.AssignmentDTO{ID: uuid.New(), Title: req.Title},
				NotificationsSent: 3,
			}, nil
		},
	}

	body := `{"title":"Lab Report 3","description":"Submit the report.","subject":"Physics","department":"Computer Science","academic_year":"2nd Year"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/staff/assignments", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithUserID(req.Context(), staffID.String()))
	rec := httptest.NewRecorder()
	StaffCreateAssignment(svc, nil)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data assignments.CreateResult `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.NotificationsSent != 3 {
		t.Fatalf("expected 3 notifications sent, got %d", envelope.Data.NotificationsSent)
	}
}

func TestStaffCreateAssignmentWithoutSession(t *testing.T) {
	body := `{"title":"Lab Report 3","description":"d","subject":"s","department":"Computer Science","academic_year":"2nd Year"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/staff/assignments", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	StaffCreateAssignment(&stubAssignmentsService{}, nil)(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestStudentListAssignments(t *testing.T) {
	studentID := uuid.New()
	svc := &stubAssignmentsService{
		studentFn: func(ctx context.Context, studentUserID uuid.UUID) ([]assignments.AssignmentDTO, error) {
			if studentUserID != studentID {
				t.Fatalf("unexpected student %s", studentUserID)
			}
			return []assignments.AssignmentDTO{{ID: uuid.New(), Title: "Quiz"}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/student/assignments", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), studentID.String()))
	rec := httptest.NewRecorder()
	StudentListAssignments(svc, nil)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var envelope struct {
		Data map[string][]assignments.AssignmentDTO `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data["assignments"]) != 1 {
		t.Fatalf("expected 1 assignment, got %d", len(envelope.Data["assignments"]))
	}
}

func TestStudentGetAssignmentNotFound(t *testing.T) {
	svc := &stubAssignmentsService{
		getFn: func(ctx context.Context, studentUserID, assignmentID uuid.UUID) (*assignments.AssignmentDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
		},
	}

	assignmentID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/student/assignments/"+assignmentID.String(), nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.New().String()))
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("assignmentID", assignmentID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	rec := httptest.NewRecorder()
	StudentGetAssignment(svc, nil)(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestStudentGetAssignmentInvalidID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/student/assignments/not-a-uuid", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.New().String()))
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("assignmentID", "not-a-uuid")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	rec := httptest.NewRecorder()
	StudentGetAssignment(&stubAssignmentsService{}, nil)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
