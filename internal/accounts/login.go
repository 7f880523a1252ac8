package accounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/RemyAthisayaa17/mceverse/internal/identities"
	"github.com/RemyAthisayaa17/mceverse/internal/profiles"
	pkgAuth "github.com/RemyAthisayaa17/mceverse/pkg/auth"
	"github.com/RemyAthisayaa17/mceverse/pkg/auth/session"
	"github.com/RemyAthisayaa17/mceverse/pkg/config"
	"github.com/RemyAthisayaa17/mceverse/pkg/db/models"
	"github.com/RemyAthisayaa17/mceverse/pkg/enums"
	pkgerrors "github.com/RemyAthisayaa17/mceverse/pkg/errors"
	"github.com/RemyAthisayaa17/mceverse/pkg/logger"
	"github.com/RemyAthisayaa17/mceverse/pkg/metrics"
	"github.com/RemyAthisayaa17/mceverse/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Sentinel values written when a student logs in with thin metadata. The base
// row is marked pending so later repairs know it holds placeholders, not data.
const (
	placeholderPending = "PENDING"
	placeholderNotSet  = "Not Set"
)

// LoginService authenticates portal users and finishes provisioning for
// accounts whose profile rows never landed.
type LoginService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
}

type loginIdentityRepo interface {
	FindByEmail(ctx context.Context, email string) (*models.Identity, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type loginProfileRepo interface {
	profiles.Writer
	FindBase(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	FindStudentByUserID(ctx context.Context, userID uuid.UUID) (*models.StudentProfile, error)
	FindStaffByUserID(ctx context.Context, userID uuid.UUID) (*models.StaffProfile, error)
}

// LoginServiceParams bundles the dependencies required to build a login service.
type LoginServiceParams struct {
	IdentityRepo   loginIdentityRepo
	ProfileRepo    loginProfileRepo
	SessionManager sessionGenerator
	JWTConfig      config.JWTConfig
	Provisioning   config.ProvisioningConfig
	Metrics        *metrics.ProvisioningMetrics
	Logger         *logger.Logger
}

type loginService struct {
	identities loginIdentityRepo
	profiles   loginProfileRepo
	session    sessionGenerator
	jwtCfg     config.JWTConfig
	cfg        config.ProvisioningConfig
	metrics    *metrics.ProvisioningMetrics
	logg       *logger.Logger
}

// NewLoginService constructs a login service with the provided dependencies.
func NewLoginService(params LoginServiceParams) (LoginService, error) {
	if params.IdentityRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "identity repository required")
	}
	if params.ProfileRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "profile repository required")
	}
	if params.SessionManager == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session manager required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &loginService{
		identities: params.IdentityRepo,
		profiles:   params.ProfileRepo,
		session:    params.SessionManager,
		jwtCfg:     params.JWTConfig,
		cfg:        params.Provisioning,
		metrics:    params.Metrics,
		logg:       params.Logger,
	}, nil
}

func (s *loginService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	identity, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	role := identity.Metadata.Role
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if err := checkPortal(req.Role, role); err != nil {
		return nil, err
	}

	profile, healed, err := s.loadOrHealProfile(ctx, identity, role)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.identities.UpdateLastLogin(ctx, identity.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	identity.LastLoginAt = &now

	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID: identity.ID,
		Email:  identity.Email,
		Role:   role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Identity:     identities.FromModel(identity),
		Profile:      profiles.FromModel(profile),
		SelfHealed:   healed,
	}, nil
}

func (s *loginService) authenticate(ctx context.Context, email, password string) (*models.Identity, error) {
	input := strings.ToLower(strings.TrimSpace(email))
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	identity, err := s.identities.FindByEmail(ctx, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup identity")
	}

	valid, err := security.VerifyPassword(password, identity.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if s.cfg.RequireEmailVerification && !identity.EmailConfirmed() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "email not confirmed")
	}
	return identity, nil
}

// checkPortal rejects credentials presented to the wrong portal. Admin
// accounts may sign in through the staff portal.
func checkPortal(requested, actual enums.Role) error {
	if requested == "" || requested == actual {
		return nil
	}
	if requested == enums.RoleStaff && actual == enums.RoleAdmin {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "this account is not registered as "+requested.String())
}

// loadOrHealProfile returns the base profile, reconstructing whichever rows
// are missing from identity metadata. The base row and the role row can go
// missing independently, so both are checked. Students always get a session,
// with sentinel placeholders when the metadata is thin. Staff accounts with
// unusable metadata are rejected outright so a half-provisioned staff account
// never reaches the portal.
func (s *loginService) loadOrHealProfile(ctx context.Context, identity *models.Identity, role enums.Role) (*models.Profile, bool, error) {
	profile, err := s.profiles.FindBase(ctx, identity.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
		}
		profile = nil
	}

	hasRole, err := s.hasRoleRow(ctx, identity.ID, role)
	if err != nil {
		return nil, false, err
	}
	if profile != nil && hasRole {
		return profile, false, nil
	}

	meta := identity.Metadata
	var healed *models.Profile
	switch role {
	case enums.RoleStaff, enums.RoleAdmin:
		if meta.FullName == "" || meta.Department == "" || meta.AcademicYear == "" {
			s.metrics.IncSelfHeal(role.String(), "rejected")
			s.logg.Warn(ctx, "staff login with incomplete provisioning and unusable metadata, rejecting")
			return nil, false, pkgerrors.New(pkgerrors.CodeForbidden, "profile unavailable, contact an administrator")
		}
		healed, err = s.healStaff(ctx, identity, meta)
	default:
		healed, err = s.healStudent(ctx, identity, meta)
	}
	if err != nil {
		s.metrics.IncSelfHeal(role.String(), "failure")
		return nil, false, err
	}
	s.metrics.IncSelfHeal(role.String(), "healed")

	// An already-present base row wins over the reconstruction.
	if profile != nil {
		return profile, true, nil
	}
	return healed, true, nil
}

func (s *loginService) hasRoleRow(ctx context.Context, userID uuid.UUID, role enums.Role) (bool, error) {
	var err error
	switch role {
	case enums.RoleStaff, enums.RoleAdmin:
		_, err = s.profiles.FindStaffByUserID(ctx, userID)
	default:
		_, err = s.profiles.FindStudentByUserID(ctx, userID)
	}
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load role profile")
}

func (s *loginService) healStudent(ctx context.Context, identity *models.Identity, meta models.IdentityMetadata) (*models.Profile, error) {
	fullName := meta.FullName
	pending := false
	if fullName == "" {
		fullName = placeholderPending
		pending = true
	}
	phone := meta.PhoneNumber
	if phone == nil {
		sentinel := placeholderNotSet
		phone = &sentinel
		pending = true
	}

	writer := profiles.WriteAs(s.profiles, identity.ID)
	dto := profiles.BaseProfileDTO{
		UserID:      identity.ID,
		Email:       identity.Email,
		FullName:    fullName,
		PhoneNumber: phone,
		Pending:     pending,
	}
	if _, err := writer.EnsureBase(ctx, dto); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "heal base profile")
	}

	// Sentinel values fill whatever the metadata cannot. The student completes
	// them from the dashboard later.
	student := profiles.StudentProfileDTO{
		UserID:         identity.ID,
		FullName:       fullName,
		Email:          identity.Email,
		PhoneNumber:    meta.PhoneNumber,
		Department:     meta.Department,
		AcademicYear:   meta.AcademicYear,
		RegisterNumber: meta.RegisterNumber,
	}
	if student.Department == "" {
		student.Department = placeholderNotSet
	}
	if student.AcademicYear == "" {
		student.AcademicYear = placeholderNotSet
	}
	if student.RegisterNumber == "" {
		student.RegisterNumber = placeholderPending
	}
	if _, err := writer.EnsureStudent(ctx, student); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "profile setup required")
	}

	return dto.ToModel(), nil
}

func (s *loginService) healStaff(ctx context.Context, identity *models.Identity, meta models.IdentityMetadata) (*models.Profile, error) {
	writer := profiles.WriteAs(s.profiles, identity.ID)
	dto := profiles.BaseProfileDTO{
		UserID:      identity.ID,
		Email:       identity.Email,
		FullName:    meta.FullName,
		PhoneNumber: meta.PhoneNumber,
	}
	if _, err := writer.EnsureBase(ctx, dto); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "heal base profile")
	}
	if _, err := writer.EnsureStaff(ctx, profiles.StaffProfileDTO{
		UserID:       identity.ID,
		FullName:     meta.FullName,
		Email:        identity.Email,
		PhoneNumber:  meta.PhoneNumber,
		Department:   meta.Department,
		AcademicYear: meta.AcademicYear,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "heal staff profile")
	}
	return dto.ToModel(), nil
}
