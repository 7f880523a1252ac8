package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/RemyAthisayaa17/mceverse/pkg/enums"
)

// Identity is the credential record for a portal user. Profile rows hang off its
// ID; the metadata bag seeds them when direct creation failed and a later repair
// or login needs to reconstruct the registration intent.
type Identity struct {
	ID               uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email            string           `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash     string           `gorm:"column:password_hash;not null"`
	EmailConfirmedAt *time.Time       `gorm:"column:email_confirmed_at"`
	Metadata         IdentityMetadata `gorm:"column:metadata;serializer:json"`
	LastLoginAt      *time.Time       `gorm:"column:last_login_at"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (Identity) TableName() string { return "auth_identities" }

// IdentityMetadata carries the registration claims attached at signup time.
// Role-specific fields stay typed so the self-heal paths can extract them
// without duck-typing a free-form bag.
type IdentityMetadata struct {
	FullName       string     `json:"full_name,omitempty"`
	PhoneNumber    *string    `json:"phone_number,omitempty"`
	Department     string     `json:"department,omitempty"`
	AcademicYear   string     `json:"academic_year,omitempty"`
	RegisterNumber string     `json:"register_number,omitempty"`
	Role           enums.Role `json:"role,omitempty"`
}

// EmailConfirmed reports whether the identity may establish a session.
func (i *Identity) EmailConfirmed() bool {
	return i != nil && i.EmailConfirmedAt != nil
}
