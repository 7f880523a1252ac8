package identities

import (
	"time"

	"github.com/google/uuid"

	"github.com/RemyAthisayaa17/mceverse/pkg/db/models"
	"github.com/RemyAthisayaa17/mceverse/pkg/enums"
)

// IdentityDTO is the transport shape that omits sensitive credentials.
type IdentityDTO struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	EmailConfirmed bool       `json:"email_confirmed"`
	Role           enums.Role `json:"role"`
	FullName       string     `json:"full_name,omitempty"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// CreateIdentityDTO holds the data required by the repo to persist a new identity.
type CreateIdentityDTO struct {
	Email            string
	PasswordHash     string
	Metadata         models.IdentityMetadata
	EmailConfirmedAt *time.Time
}

func FromModel(i *models.Identity) *IdentityDTO {
	if i == nil {
		return nil
	}
	return &IdentityDTO{
		ID:             i.ID,
		Email:          i.Email,
		EmailConfirmed: i.EmailConfirmed(),
		Role:           i.Metadata.Role,
		FullName:       i.Metadata.FullName,
		LastLoginAt:    i.LastLoginAt,
		CreatedAt:      i.CreatedAt,
	}
}

func (c CreateIdentityDTO) ToModel() *models.Identity {
	return &models.Identity{
		Email:            c.Email,
		PasswordHash:     c.PasswordHash,
		Metadata:         c.Metadata,
		EmailConfirmedAt: c.EmailConfirmedAt,
	}
}
