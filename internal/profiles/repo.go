package profiles

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/RemyAthisayaa17/mceverse/pkg/db"
	"github.com/RemyAthisayaa17/mceverse/pkg/db/models"
)

// Repository exposes profile persistence operations for the base row and the
// role-specific rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a profiles repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// InsertBase inserts a base profile row and fails on duplicates.
func (r *Repository) InsertBase(ctx context.Context, dto BaseProfileDTO) (*models.Profile, error) {
	profile := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// UpsertBase inserts the base profile or overwrites the existing row for the
// same user id. Used by the elevated repair path where the latest payload wins.
func (r *Repository) UpsertBase(ctx context.Context, dto BaseProfileDTO) (*models.Profile, error) {
	profile := dto.ToModel()
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "full_name", "phone_number", "pending", "updated_at"}),
		}).
		Create(profile).Error
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// EnsureBase inserts the base profile if absent and treats a duplicate row as
// success, returning whether a new row was created.
func (r *Repository) EnsureBase(ctx context.Context, dto BaseProfileDTO) (bool, error) {
	err := r.db.WithContext(ctx).Create(dto.ToModel()).Error
	if err == nil {
		return true, nil
	}
	if db.IsUniqueViolation(err, "") {
		return false, nil
	}
	return false, err
}

// FindBase retrieves the base profile for the given user id.
func (r *Repository) FindBase(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// InsertStudent inserts a student role profile and fails on duplicates.
func (r *Repository) InsertStudent(ctx context.Context, dto StudentProfileDTO) (*models.StudentProfile, error) {
	profile := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// EnsureStudent inserts the student profile if absent, ignoring duplicates on user_id.
func (r *Repository) EnsureStudent(ctx context.Context, dto StudentProfileDTO) (bool, error) {
	err := r.db.WithContext(ctx).Create(dto.ToModel()).Error
	if err == nil {
		return true, nil
	}
	if db.IsUniqueViolation(err, "user_id") {
		return false, nil
	}
	return false, err
}

// FindStudentByUserID retrieves the student profile linked to the identity.
func (r *Repository) FindStudentByUserID(ctx context.Context, userID uuid.UUID) (*models.StudentProfile, error) {
	var profile models.StudentProfile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// InsertStaff inserts a staff role profile and fails on duplicates.
func (r *Repository) InsertStaff(ctx context.Context, dto StaffProfileDTO) (*models.StaffProfile, error) {
	profile := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// EnsureStaff inserts the staff profile if absent, ignoring duplicates on user_id.
func (r *Repository) EnsureStaff(ctx context.Context, dto StaffProfileDTO) (bool, error) {
	err := r.db.WithContext(ctx).Create(dto.ToModel()).Error
	if err == nil {
		return true, nil
	}
	if db.IsUniqueViolation(err, "user_id") {
		return false, nil
	}
	return false, err
}

// FindStaffByUserID retrieves the staff profile linked to the identity.
func (r *Repository) FindStaffByUserID(ctx context.Context, userID uuid.UUID) (*models.StaffProfile, error) {
	var profile models.StaffProfile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListStudentsByCohort returns the student profiles in a department/year cohort.
func (r *Repository) ListStudentsByCohort(ctx context.Context, department, academicYear string) ([]models.StudentProfile, error) {
	var students []models.StudentProfile
	err := r.db.WithContext(ctx).
		Where("department = ? AND academic_year = ?", department, academicYear).
		Find(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}
