package accounts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/RemyAthisayaa17/mceverse/internal/identities"
	"github.com/RemyAthisayaa17/mceverse/internal/profiles"
	pkgAuth "github.com/RemyAthisayaa17/mceverse/pkg/auth"
	"github.com/RemyAthisayaa17/mceverse/pkg/auth/session"
	"github.com/RemyAthisayaa17/mceverse/pkg/config"
	"github.com/RemyAthisayaa17/mceverse/pkg/db"
	"github.com/RemyAthisayaa17/mceverse/pkg/db/models"
	"github.com/RemyAthisayaa17/mceverse/pkg/enums"
	pkgerrors "github.com/RemyAthisayaa17/mceverse/pkg/errors"
	"github.com/RemyAthisayaa17/mceverse/pkg/logger"
	"github.com/RemyAthisayaa17/mceverse/pkg/metrics"
	"github.com/RemyAthisayaa17/mceverse/pkg/security"
)

// Provisioner handles self-service signup. The identity and the profile rows
// are written independently rather than in one transaction: a profile insert
// that keeps failing must never roll back the credential record, because the
// repair and login self-heal paths can finish provisioning later.
type Provisioner interface {
	SignUp(ctx context.Context, req RegistrationRequest) (*ProvisionResult, error)
}

type identityCreator interface {
	Create(ctx context.Context, dto identities.CreateIdentityDTO) (*models.Identity, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Identity, error)
}

type profileProvisionWriter interface {
	profiles.Writer
	UpsertBase(ctx context.Context, dto profiles.BaseProfileDTO) (*models.Profile, error)
}

type sessionGenerator interface {
	Generate(ctx context.Context, accessID string) (string, error)
}

// ProvisionerParams bundles the dependencies for the direct-insert signup flow.
type ProvisionerParams struct {
	IdentityRepo   identityCreator
	ProfileRepo    profileProvisionWriter
	SessionManager sessionGenerator
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	Provisioning   config.ProvisioningConfig
	Metrics        *metrics.ProvisioningMetrics
	Logger         *logger.Logger
}

type provisioner struct {
	identities  identityCreator
	profiles    profileProvisionWriter
	session     sessionGenerator
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	cfg         config.ProvisioningConfig
	metrics     *metrics.ProvisioningMetrics
	logg        *logger.Logger
}

// NewProvisioner builds the signup provisioner with the provided dependencies.
func NewProvisioner(params ProvisionerParams) (Provisioner, error) {
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
	return &provisioner{
		identities:  params.IdentityRepo,
		profiles:    params.ProfileRepo,
		session:     params.SessionManager,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		cfg:         params.Provisioning,
		metrics:     params.Metrics,
		logg:        params.Logger,
	}, nil
}

func (p *provisioner) SignUp(ctx context.Context, req RegistrationRequest) (*ProvisionResult, error) {
	req.normalize()
	if err := req.validate(p.passwordCfg.MinLength); err != nil {
		p.metrics.IncAttempt("signup", "invalid")
		return nil, err
	}

	passwordHash, err := security.HashPassword(req.Password, p.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	started := time.Now()
	var confirmedAt *time.Time
	if !p.cfg.RequireEmailVerification {
		now := time.Now().UTC()
		confirmedAt = &now
	}

	identity, err := p.identities.Create(ctx, identities.CreateIdentityDTO{
		Email:            req.Email,
		PasswordHash:     passwordHash,
		Metadata:         req.metadata(),
		EmailConfirmedAt: confirmedAt,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "email") {
			p.metrics.IncAttempt("signup", "conflict")
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		p.metrics.IncAttempt("signup", "failure")
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create identity")
	}

	// Unverified identities stop here. The metadata bag holds everything the
	// later login self-heal needs to finish provisioning.
	if p.cfg.RequireEmailVerification {
		p.metrics.IncAttempt("signup", "pending_verification")
		return &ProvisionResult{
			UserID:   identity.ID,
			Status:   StatusPendingVerification,
			Identity: identities.FromModel(identity),
		}, nil
	}

	if err := p.waitForIdentity(ctx, identity.ID); err != nil {
		p.metrics.IncAttempt("signup", "failure")
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "identity not readable after create")
	}

	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(p.jwtCfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID: identity.ID,
		Email:  identity.Email,
		Role:   req.Role,
		JTI:    accessID,
	})
	if err != nil {
		p.metrics.IncAttempt("signup", "failure")
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := p.session.Generate(ctx, accessID)
	if err != nil {
		p.metrics.IncAttempt("signup", "failure")
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}

	// Profile rows are written as the user they belong to. Only the final
	// base-profile fallback escalates past the caller scope.
	writer := profiles.WriteAs(p.profiles, identity.ID)

	status := StatusComplete
	if !p.writeBaseProfile(ctx, writer, req, identity.ID) {
		status = StatusProfileIncomplete
	}
	if !p.writeRoleProfile(ctx, writer, req, identity.ID) {
		status = StatusProfileIncomplete
	}

	outcome := "success"
	if status != StatusComplete {
		outcome = "profile_incomplete"
	}
	p.metrics.IncAttempt("signup", outcome)
	p.metrics.ObserveDuration("signup", time.Since(started))

	return &ProvisionResult{
		UserID:       identity.ID,
		Status:       status,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Identity:     identities.FromModel(identity),
	}, nil
}

// waitForIdentity polls until the created row is readable, bounding the wait
// with the configured attempt budget.
func (p *provisioner) waitForIdentity(ctx context.Context, id uuid.UUID) error {
	attempts := p.cfg.SessionWaitAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.NewConstant(p.cfg.SessionWaitBackoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if _, err := p.identities.FindByID(ctx, id); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

// writeBaseProfile inserts the base row, retrying once and falling back to the
// elevated upsert before giving up. Returns whether the row exists afterwards.
func (p *provisioner) writeBaseProfile(ctx context.Context, writer *profiles.CallerWriter, req RegistrationRequest, userID uuid.UUID) bool {
	dto := req.baseProfile(userID)

	attempted := false
	backoff := retry.WithMaxRetries(1, retry.NewConstant(p.cfg.InsertRetryBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if attempted {
			p.metrics.IncInsertRetry("profiles")
		}
		attempted = true
		if _, err := writer.InsertBase(ctx, dto); err != nil {
			if db.IsUniqueViolation(err, "") {
				return nil
			}
			return retry.RetryableError(err)
		}
		return nil
	})
	if err == nil {
		return true
	}

	p.logg.Error(ctx, "base profile insert failed, attempting elevated repair", err)
	if _, repairErr := p.profiles.UpsertBase(ctx, dto); repairErr != nil {
		p.logg.Error(ctx, "elevated base profile repair failed", repairErr)
		p.metrics.IncRepair("failure")
		return false
	}
	p.metrics.IncRepair("success")
	return true
}

// writeRoleProfile inserts the role-specific row with one retry. Persistent
// failure is tolerated: signup already succeeded, login self-heal or a manual
// repair finishes the job.
func (p *provisioner) writeRoleProfile(ctx context.Context, writer *profiles.CallerWriter, req RegistrationRequest, userID uuid.UUID) bool {
	table := "student_profiles"
	insert := func(ctx context.Context) (bool, error) {
		return writer.EnsureStudent(ctx, req.studentProfile(userID))
	}
	if req.Role == enums.RoleStaff {
		table = "staff_profiles"
		insert = func(ctx context.Context) (bool, error) {
			return writer.EnsureStaff(ctx, req.staffProfile(userID))
		}
	}

	attempted := false
	backoff := retry.WithMaxRetries(1, retry.NewConstant(p.cfg.InsertRetryBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if attempted {
			p.metrics.IncInsertRetry(table)
		}
		attempted = true
		if _, err := insert(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		p.logg.Error(ctx, "role profile insert failed, leaving account incomplete", err)
		return false
	}
	return true
}
