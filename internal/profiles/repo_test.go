package profiles

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupProfilesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	profilesTable := `
CREATE TABLE IF NOT EXISTS profiles (
  user_id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  full_name TEXT NOT NULL,
  phone_number TEXT,
  pending INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	studentProfiles := `
CREATE TABLE IF NOT EXISTS student_profiles (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  user_id TEXT NOT NULL UNIQUE,
  full_name TEXT NOT NULL,
  email TEXT NOT NULL,
  phone_number TEXT,
  department TEXT NOT NULL,
  academic_year TEXT NOT NULL,
  register_number TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	staffProfiles := `
CREATE TABLE IF NOT EXISTS staff_profiles (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(16)))),
  user_id TEXT NOT NULL UNIQUE,
  full_name TEXT NOT NULL,
  email TEXT NOT NULL,
  phone_number TEXT,
  department TEXT NOT NULL,
  academic_year TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`

	for _, stmt := range []string{profilesTable, studentProfiles, staffProfiles} {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func TestRepositoryBaseProfileLifecycle(t *testing.T) {
	conn := setupProfilesTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	userID := uuid.New()
	dto := BaseProfileDTO{
		UserID:   userID,
		Email:    "student@college.edu",
		FullName: "First Student",
	}

	created, err := repo.InsertBase(ctx, dto)
	require.NoError(t, err)
	assert.Equal(t, userID, created.UserID)

	fetched, err := repo.FindBase(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "First Student", fetched.FullName)

	// duplicate inserts surface as errors, EnsureBase swallows them
	_, err = repo.InsertBase(ctx, dto)
	require.Error(t, err)

	inserted, err := repo.EnsureBase(ctx, dto)
	require.NoError(t, err)
	assert.False(t, inserted)

	inserted, err = repo.EnsureBase(ctx, BaseProfileDTO{
		UserID:   uuid.New(),
		Email:    "other@college.edu",
		FullName: "Other Student",
	})
	require.NoError(t, err)
	assert.True(t, inserted)
}

func TestRepositoryUpsertBaseOverwrites(t *testing.T) {
	conn := setupProfilesTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	userID := uuid.New()
	_, err := repo.InsertBase(ctx, BaseProfileDTO{
		UserID:   userID,
		Email:    "student@college.edu",
		FullName: "PENDING",
		Pending:  true,
	})
	require.NoError(t, err)

	phone := "+911234567890"
	_, err = repo.UpsertBase(ctx, BaseProfileDTO{
		UserID:      userID,
		Email:       "student@college.edu",
		FullName:    "Repaired Name",
		PhoneNumber: &phone,
	})
	require.NoError(t, err)

	fetched, err := repo.FindBase(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Repaired Name", fetched.FullName)
	assert.False(t, fetched.Pending)
	require.NotNil(t, fetched.PhoneNumber)
	assert.Equal(t, phone, *fetched.PhoneNumber)
}

func TestRepositoryStudentProfileUniqueness(t *testing.T) {
	conn := setupProfilesTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	userID := uuid.New()
	dto := StudentProfileDTO{
		UserID:         userID,
		FullName:       "Student One",
		Email:          "one@college.edu",
		Department:     "Computer Science",
		AcademicYear:   "2nd Year",
		RegisterNumber: "CS2023001",
	}

	inserted, err := repo.EnsureStudent(ctx, dto)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.EnsureStudent(ctx, dto)
	require.NoError(t, err)
	assert.False(t, inserted)

	_, err = repo.InsertStudent(ctx, dto)
	require.Error(t, err)

	fetched, err := repo.FindStudentByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "CS2023001", fetched.RegisterNumber)
}

func TestRepositoryStaffProfileUniqueness(t *testing.T) {
	conn := setupProfilesTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	userID := uuid.New()
	dto := StaffProfileDTO{
		UserID:       userID,
		FullName:     "Staff One",
		Email:        "staff@college.edu",
		Department:   "Mathematics",
		AcademicYear: "1st Year",
	}

	inserted, err := repo.EnsureStaff(ctx, dto)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.EnsureStaff(ctx, dto)
	require.NoError(t, err)
	assert.False(t, inserted)

	fetched, err := repo.FindStaffByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", fetched.Department)
}

func TestRepositoryListStudentsByCohort(t *testing.T) {
	conn := setupProfilesTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	for i, year := range []string{"2nd Year", "2nd Year", "3rd Year"} {
		_, err := repo.InsertStudent(ctx, StudentProfileDTO{
			UserID:         uuid.New(),
			FullName:       "Student",
			Email:          "cohort@college.edu",
			Department:     "Computer Science",
			AcademicYear:   year,
			RegisterNumber: uuid.NewString()[:8],
		})
		require.NoError(t, err, "insert %d", i)
	}

	students, err := repo.ListStudentsByCohort(ctx, "Computer Science", "2nd Year")
	require.NoError(t, err)
	assert.Len(t, students, 2)

	students, err = repo.ListStudentsByCohort(ctx, "Physics", "2nd Year")
	require.NoError(t, err)
	assert.Empty(t, students)
}
