package accounts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/RemyAthisayaa17/mceverse/internal/identities"
	"github.com/RemyAthisayaa17/mceverse/internal/profiles"
	"github.com/RemyAthisayaa17/mceverse/pkg/db/models"
)

type stubIdentityRepo struct {
	byEmail map[string]*models.Identity
	byID    map[uuid.UUID]*models.Identity

	createErr      error
	findByIDMisses int

	createCalls   int
	findByIDCalls int
	lastLoginAt   *time.Time
}

func newStubIdentityRepo() *stubIdentityRepo {
	return &stubIdentityRepo{
		byEmail: map[string]*models.Identity{},
		byID:    map[uuid.UUID]*models.Identity{},
	}
}

func (s *stubIdentityRepo) Create(ctx context.Context, dto identities.CreateIdentityDTO) (*models.Identity, error) {
	s.createCalls++
	if s.createErr != nil {
		return nil, s.createErr
	}
	if _, exists := s.byEmail[dto.Email]; exists {
		return nil, errDuplicateEmail
	}
	identity := dto.ToModel()
	identity.ID = uuid.New()
	s.byEmail[dto.Email] = identity
	s.byID[identity.ID] = identity
	return identity, nil
}

func (s *stubIdentityRepo) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	if identity, ok := s.byEmail[email]; ok {
		return identity, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubIdentityRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	s.findByIDCalls++
	if s.findByIDMisses > 0 {
		s.findByIDMisses--
		return nil, gorm.ErrRecordNotFound
	}
	if identity, ok := s.byID[id]; ok {
		return identity, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubIdentityRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.lastLoginAt = &at
	if identity, ok := s.byID[id]; ok {
		identity.LastLoginAt = &at
	}
	return nil
}

// errDuplicateEmail mimics the message shape the postgres driver produces for
// the identities email constraint.
var errDuplicateEmail = duplicateErr("duplicate key value violates unique constraint \"idx_auth_identities_email\"")

type duplicateErr string

func (e duplicateErr) Error() string { return string(e) }

type stubProfileRepo struct {
	base     map[uuid.UUID]*models.Profile
	students map[uuid.UUID]*models.StudentProfile
	staff    map[uuid.UUID]*models.StaffProfile

	insertBaseFailures int
	upsertBaseErr      error
	ensureStudentErr   error
	ensureStaffErr     error
	findBaseErr        error

	insertBaseCalls    int
	upsertBaseCalls    int
	ensureStudentCalls int
	ensureStaffCalls   int
}

func newStubProfileRepo() *stubProfileRepo {
	return &stubProfileRepo{
		base:     map[uuid.UUID]*models.Profile{},
		students: map[uuid.UUID]*models.StudentProfile{},
		staff:    map[uuid.UUID]*models.StaffProfile{},
	}
}

func (s *stubProfileRepo) InsertBase(ctx context.Context, dto profiles.BaseProfileDTO) (*models.Profile, error) {
	s.insertBaseCalls++
	if s.insertBaseFailures > 0 {
		s.insertBaseFailures--
		return nil, duplicateErr("connection reset")
	}
	if _, exists := s.base[dto.UserID]; exists {
		return nil, duplicateErr("UNIQUE constraint failed: profiles.user_id")
	}
	profile := dto.ToModel()
	s.base[dto.UserID] = profile
	return profile, nil
}

func (s *stubProfileRepo) UpsertBase(ctx context.Context, dto profiles.BaseProfileDTO) (*models.Profile, error) {
	s.upsertBaseCalls++
	if s.upsertBaseErr != nil {
		return nil, s.upsertBaseErr
	}
	profile := dto.ToModel()
	s.base[dto.UserID] = profile
	return profile, nil
}

func (s *stubProfileRepo) EnsureBase(ctx context.Context, dto profiles.BaseProfileDTO) (bool, error) {
	if _, exists := s.base[dto.UserID]; exists {
		return false, nil
	}
	s.base[dto.UserID] = dto.ToModel()
	return true, nil
}

func (s *stubProfileRepo) FindBase(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	if s.findBaseErr != nil {
		return nil, s.findBaseErr
	}
	if profile, ok := s.base[userID]; ok {
		return profile, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProfileRepo) EnsureStudent(ctx context.Context, dto profiles.StudentProfileDTO) (bool, error) {
	s.ensureStudentCalls++
	if s.ensureStudentErr != nil {
		return false, s.ensureStudentErr
	}
	if _, exists := s.students[dto.UserID]; exists {
		return false, nil
	}
	s.students[dto.UserID] = dto.ToModel()
	return true, nil
}

func (s *stubProfileRepo) FindStudentByUserID(ctx context.Context, userID uuid.UUID) (*models.StudentProfile, error) {
	if student, ok := s.students[userID]; ok {
		return student, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProfileRepo) FindStaffByUserID(ctx context.Context, userID uuid.UUID) (*models.StaffProfile, error) {
	if staff, ok := s.staff[userID]; ok {
		return staff, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProfileRepo) EnsureStaff(ctx context.Context, dto profiles.StaffProfileDTO) (bool, error) {
	s.ensureStaffCalls++
	if s.ensureStaffErr != nil {
		return false, s.ensureStaffErr
	}
	if _, exists := s.staff[dto.UserID]; exists {
		return false, nil
	}
	s.staff[dto.UserID] = dto.ToModel()
	return true, nil
}

type stubSessionManager struct {
	refreshToken string
	err          error
	generated    []string
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.generated = append(s.generated, accessID)
	return s.refreshToken, nil
}
