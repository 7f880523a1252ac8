package accounts

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/RemyAthisayaa17/mceverse/internal/profiles"
	"github.com/RemyAthisayaa17/mceverse/pkg/db/models"
	pkgerrors "github.com/RemyAthisayaa17/mceverse/pkg/errors"
	"github.com/RemyAthisayaa17/mceverse/pkg/metrics"
)

const maxFullNameLength = 120

var phoneRe = regexp.MustCompile(`^\+?[0-9][0-9 \-]{5,18}$`)

// RepairService rewrites a caller's own base profile with elevated access.
// The write skips ownership checks at the storage layer, so the service must
// prove the target row belongs to the authenticated user before touching it.
type RepairService interface {
	Repair(ctx context.Context, actorID uuid.UUID, req RepairRequest) (*profiles.ProfileDTO, error)
}

type identityReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Identity, error)
}

type baseProfileUpserter interface {
	UpsertBase(ctx context.Context, dto profiles.BaseProfileDTO) (*models.Profile, error)
}

// RepairServiceParams bundles the dependencies for the repair flow.
type RepairServiceParams struct {
	IdentityRepo identityReader
	ProfileRepo  baseProfileUpserter
	Metrics      *metrics.ProvisioningMetrics
}

type repairService struct {
	identities identityReader
	profiles   baseProfileUpserter
	metrics    *metrics.ProvisioningMetrics
}

// NewRepairService builds a repair service with the provided dependencies.
func NewRepairService(params RepairServiceParams) (RepairService, error) {
	if params.IdentityRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "identity repository required")
	}
	if params.ProfileRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "profile repository required")
	}
	return &repairService{
		identities: params.IdentityRepo,
		profiles:   params.ProfileRepo,
		metrics:    params.Metrics,
	}, nil
}

func (s *repairService) Repair(ctx context.Context, actorID uuid.UUID, req RepairRequest) (*profiles.ProfileDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	if req.UserID != actorID {
		s.metrics.IncRepair("forbidden")
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cannot repair another account's profile")
	}

	identity, err := s.identities.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup account")
	}

	if err := validateRepair(identity, req); err != nil {
		s.metrics.IncRepair("invalid")
		return nil, err
	}

	profile, err := s.profiles.UpsertBase(ctx, profiles.BaseProfileDTO{
		UserID:      req.UserID,
		Email:       identity.Email,
		FullName:    strings.TrimSpace(req.FullName),
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		s.metrics.IncRepair("failure")
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write base profile")
	}

	s.metrics.IncRepair("success")
	return profiles.FromModel(profile), nil
}

// validateRepair re-checks the payload server-side. The client already ran
// form validation, but this path writes with elevated access and must not
// trust it.
func validateRepair(identity *models.Identity, req RepairRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if email != strings.ToLower(identity.Email) {
		return pkgerrors.New(pkgerrors.CodeValidation, "email does not match account")
	}
	name := strings.TrimSpace(req.FullName)
	if name == "" || len(name) > maxFullNameLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "full_name must be between 1 and 120 characters")
	}
	if req.PhoneNumber != nil {
		phone := strings.TrimSpace(*req.PhoneNumber)
		if phone != "" && !phoneRe.MatchString(phone) {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid phone_number")
		}
	}
	return nil
}
