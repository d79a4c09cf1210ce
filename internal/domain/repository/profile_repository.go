package repository

import (
	"context"

	"github.com/oksasatya/tahfidz-portal/internal/domain/entity"
)

// ProfileRepository defines the profile operations of the live backend.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	Update(ctx context.Context, p *entity.Profile) error
}

// OrganizationRepository defines the organization lookups of the live backend.
type OrganizationRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Organization, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Organization, error)
}

// IdentityRecord is an identity together with its bcrypt password hash.
type IdentityRecord struct {
	Identity     entity.Identity
	PasswordHash string
}

// IdentityRepository stores credentials for the live auth subsystem.
type IdentityRepository interface {
	GetByEmail(ctx context.Context, email string) (*IdentityRecord, error)
	GetByID(ctx context.Context, id string) (*entity.Identity, error)
}

// AccountRepository creates an identity and its profile in one
// transaction. p.ID is set to the new identity id.
type AccountRepository interface {
	CreateAccount(ctx context.Context, email, passwordHash string, p *entity.Profile) (*entity.Identity, error)
}

// ProfileIndexer keeps the member directory in step with profile writes.
type ProfileIndexer interface {
	IndexProfile(ctx context.Context, p *entity.Profile) error
}

// AuditRepository records authentication events.
type AuditRepository interface {
	Insert(ctx context.Context, entry AuditEntry) error
}

type AuditEntry struct {
	IdentityID string
	Email      string
	Action     string
	IP         string
	UserAgent  string
	Metadata   map[string]any
}
