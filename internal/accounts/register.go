package accounts

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/RemyAthisayaa17/mceverse/internal/identities"
	"github.com/RemyAthisayaa17/mceverse/internal/profiles"
	"github.com/RemyAthisayaa17/mceverse/pkg/config"
	"github.com/RemyAthisayaa17/mceverse/pkg/db"
	"github.com/RemyAthisayaa17/mceverse/pkg/db/models"
	"github.com/RemyAthisayaa17/mceverse/pkg/enums"
	pkgerrors "github.com/RemyAthisayaa17/mceverse/pkg/errors"
	"github.com/RemyAthisayaa17/mceverse/pkg/metrics"
	"github.com/RemyAthisayaa17/mceverse/pkg/security"
)

// RegisterService handles delegated onboarding, where a signed-in admin
// provisions an account for someone else. The identity is created
// pre-confirmed and both profile rows are written in one transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegistrationRequest) (*ProvisionResult, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type registerIdentityRepository interface {
	Create(ctx context.Context, dto identities.CreateIdentityDTO) (*models.Identity, error)
}

type registerProfileRepository interface {
	UpsertBase(ctx context.Context, dto profiles.BaseProfileDTO) (*models.Profile, error)
	EnsureStudent(ctx context.Context, dto profiles.StudentProfileDTO) (bool, error)
	EnsureStaff(ctx context.Context, dto profiles.StaffProfileDTO) (bool, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
// The repo factories default to the real repositories bound to the tx.
type RegisterServiceParams struct {
	TxRunner            txRunner
	IdentityRepoFactory func(tx *gorm.DB) registerIdentityRepository
	ProfileRepoFactory  func(tx *gorm.DB) registerProfileRepository
	PasswordConfig      config.PasswordConfig
	Metrics             *metrics.ProvisioningMetrics
}

type registerService struct {
	tx           txRunner
	identityRepo func(tx *gorm.DB) registerIdentityRepository
	profileRepo  func(tx *gorm.DB) registerProfileRepository
	passwordCfg  config.PasswordConfig
	metrics      *metrics.ProvisioningMetrics
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	identityFactory := params.IdentityRepoFactory
	if identityFactory == nil {
		identityFactory = func(tx *gorm.DB) registerIdentityRepository {
			return identities.NewRepository(tx)
		}
	}
	profileFactory := params.ProfileRepoFactory
	if profileFactory == nil {
		profileFactory = func(tx *gorm.DB) registerProfileRepository {
			return profiles.NewRepository(tx)
		}
	}
	return &registerService{
		tx:           params.TxRunner,
		identityRepo: identityFactory,
		profileRepo:  profileFactory,
		passwordCfg:  params.PasswordConfig,
		metrics:      params.Metrics,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegistrationRequest) (*ProvisionResult, error) {
	req.normalize()
	if err := req.validate(s.passwordCfg.MinLength); err != nil {
		s.metrics.IncAttempt("register", "invalid")
		return nil, err
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	started := time.Now()
	var result *ProvisionResult
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		identityRepo := s.identityRepo(tx)
		profileRepo := s.profileRepo(tx)

		now := time.Now().UTC()
		identity, err := identityRepo.Create(ctx, identities.CreateIdentityDTO{
			Email:            req.Email,
			PasswordHash:     passwordHash,
			Metadata:         req.metadata(),
			EmailConfirmedAt: &now,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "email") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create identity")
		}

		if _, err := profileRepo.UpsertBase(ctx, req.baseProfile(identity.ID)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write base profile")
		}

		switch req.Role {
		case enums.RoleStudent:
			if _, err := profileRepo.EnsureStudent(ctx, req.studentProfile(identity.ID)); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write student profile")
			}
		case enums.RoleStaff:
			if _, err := profileRepo.EnsureStaff(ctx, req.staffProfile(identity.ID)); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write staff profile")
			}
		}

		result = &ProvisionResult{
			UserID:   identity.ID,
			Status:   StatusComplete,
			Identity: identities.FromModel(identity),
		}
		return nil
	})
	if txErr != nil {
		s.metrics.IncAttempt("register", "failure")
		return nil, txErr
	}

	s.metrics.IncAttempt("register", "success")
	s.metrics.ObserveDuration("register", time.Since(started))
	return result, nil
}
