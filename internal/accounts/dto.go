package accounts

import (
	"strings"

	"github.com/google/uuid"

	"github.com/RemyAthisayaa17/mceverse/internal/identities"
	"github.com/RemyAthisayaa17/mceverse/internal/profiles"
	"github.com/RemyAthisayaa17/mceverse/pkg/db/models"
	"github.com/RemyAthisayaa17/mceverse/pkg/enums"
	pkgerrors "github.com/RemyAthisayaa17/mceverse/pkg/errors"
)

// ProvisionStatus describes how far account provisioning got.
type ProvisionStatus string

const (
	// StatusComplete means the identity and every profile row exist.
	StatusComplete ProvisionStatus = "complete"
	// StatusProfileIncomplete means the identity exists but a profile row
	// could not be written. Login self-heal picks the remainder up.
	StatusProfileIncomplete ProvisionStatus = "profile_incomplete"
	// StatusPendingVerification means the identity exists but may not sign in
	// until the email is confirmed.
	StatusPendingVerification ProvisionStatus = "pending_verification"
)

// RegistrationRequest captures the signup payload for both roles.
type RegistrationRequest struct {
	Email          string     `json:"email" validate:"required,email"`
	Password       string     `json:"password" validate:"required"`
	FullName       string     `json:"full_name" validate:"required,max=120"`
	PhoneNumber    *string    `json:"phone_number,omitempty"`
	Role           enums.Role `json:"role" validate:"required"`
	Department     string     `json:"department" validate:"required"`
	AcademicYear   string     `json:"academic_year" validate:"required"`
	RegisterNumber string     `json:"register_number,omitempty"`
}

// ProvisionResult reports the outcome of a signup or registration run.
type ProvisionResult struct {
	UserID       uuid.UUID               `json:"user_id"`
	Status       ProvisionStatus         `json:"status"`
	AccessToken  string                  `json:"access_token,omitempty"`
	RefreshToken string                  `json:"refresh_token,omitempty"`
	Identity     *identities.IdentityDTO `json:"identity,omitempty"`
}

// LoginRequest captures the credentials sent to the login endpoint. Role
// names the portal the user is signing in through; when set, accounts
// registered under a different role are rejected.
type LoginRequest struct {
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required"`
	Role     enums.Role `json:"role,omitempty"`
}

// LoginResponse contains the tokens and profile produced by a successful login.
type LoginResponse struct {
	AccessToken  string                  `json:"access_token"`
	RefreshToken string                  `json:"refresh_token"`
	Identity     *identities.IdentityDTO `json:"identity"`
	Profile      *profiles.ProfileDTO    `json:"profile"`
	SelfHealed   bool                    `json:"self_healed,omitempty"`
}

// RepairRequest carries the fields a signed-in user may rewrite on their own
// base profile.
type RepairRequest struct {
	UserID      uuid.UUID `json:"user_id" validate:"required"`
	Email       string    `json:"email" validate:"required,email"`
	FullName    string    `json:"full_name" validate:"required,max=120"`
	PhoneNumber *string   `json:"phone_number,omitempty"`
}

func (r *RegistrationRequest) normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.FullName = strings.TrimSpace(r.FullName)
	r.Department = strings.TrimSpace(r.Department)
	r.AcademicYear = strings.TrimSpace(r.AcademicYear)
	r.RegisterNumber = strings.TrimSpace(r.RegisterNumber)
}

// validate applies role-aware checks the JSON tags cannot express.
func (r *RegistrationRequest) validate(minPasswordLength int) error {
	if r.Email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if len(r.Password) < minPasswordLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "password is too short")
	}
	if r.FullName == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "full_name is required")
	}
	if !r.Role.IsValid() || r.Role == enums.RoleAdmin {
		return pkgerrors.New(pkgerrors.CodeValidation, "role must be student or staff")
	}
	if !enums.Department(r.Department).IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown department")
	}
	if !enums.AcademicYear(r.AcademicYear).IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown academic year")
	}
	if r.Role == enums.RoleStudent && r.RegisterNumber == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "register_number is required for students")
	}
	return nil
}

func (r RegistrationRequest) metadata() models.IdentityMetadata {
	return models.IdentityMetadata{
		FullName:       r.FullName,
		PhoneNumber:    r.PhoneNumber,
		Department:     r.Department,
		AcademicYear:   r.AcademicYear,
		RegisterNumber: r.RegisterNumber,
		Role:           r.Role,
	}
}

func (r RegistrationRequest) baseProfile(userID uuid.UUID) profiles.BaseProfileDTO {
	return profiles.BaseProfileDTO{
		UserID:      userID,
		Email:       r.Email,
		FullName:    r.FullName,
		PhoneNumber: r.PhoneNumber,
	}
}

func (r RegistrationRequest) studentProfile(userID uuid.UUID) profiles.StudentProfileDTO {
	return profiles.StudentProfileDTO{
		UserID:         userID,
		FullName:       r.FullName,
		Email:          r.Email,
		PhoneNumber:    r.PhoneNumber,
		Department:     r.Department,
		AcademicYear:   r.AcademicYear,
		RegisterNumber: r.RegisterNumber,
	}
}

func (r RegistrationRequest) staffProfile(userID uuid.UUID) profiles.StaffProfileDTO {
	return profiles.StaffProfileDTO{
		UserID:       userID,
		FullName:     r.FullName,
		Email:        r.Email,
		PhoneNumber:  r.PhoneNumber,
		Department:   r.Department,
		AcademicYear: r.AcademicYear,
	}
}
