package entity

import "time"

// Role is the portal a profile belongs to.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleTeacher    Role = "teacher"
	RoleStudent    Role = "student"
	RoleParent     Role = "parent"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleTeacher, RoleStudent, RoleParent:
		return true
	}
	return false
}

type ProfileStatus string

const (
	StatusActive    ProfileStatus = "active"
	StatusPending   ProfileStatus = "pending"
	StatusSuspended ProfileStatus = "suspended"
)

// Profile is the application-level user record, one-to-one with Identity.
// Deactivation is a status change, profiles are never removed.
type Profile struct {
	ID             string        `json:"id"`
	OrganizationID *string       `json:"organization_id"`
	FullName       string        `json:"full_name"`
	Role           Role          `json:"role"`
	Status         ProfileStatus `json:"status"`
	Email          string        `json:"email,omitempty"`
	Phone          string        `json:"phone,omitempty"`
	AvatarURL      string        `json:"avatar_url,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// HasOrganization reports whether the profile references an organization.
func (p *Profile) HasOrganization() bool {
	return p != nil && p.OrganizationID != nil && *p.OrganizationID != ""
}

// OrgID returns the organization reference or "".
func (p *Profile) OrgID() string {
	if !p.HasOrganization() {
		return ""
	}
	return *p.OrganizationID
}

// Clone returns a deep copy.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	if p.OrganizationID != nil {
		id := *p.OrganizationID
		c.OrganizationID = &id
	}
	return &c
}
