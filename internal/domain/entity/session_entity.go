package entity

// Session is a point-in-time view of who is logged in, in which
// organization, and whether resolution is still in flight.
type Session struct {
	Identity     *Identity     `json:"user"`
	Profile      *Profile      `json:"profile"`
	Organization *Organization `json:"organization"`
	Loading      bool          `json:"loading"`
}

// Authenticated reports whether an identity is present.
func (s Session) Authenticated() bool { return s.Identity != nil }

// OrganizationLess reports the valid "signed in without organization" state.
func (s Session) OrganizationLess() bool {
	return s.Identity != nil && s.Profile != nil && !s.Profile.HasOrganization()
}

// Consistent reports whether profile and organization agree.
func (s Session) Consistent() bool {
	if s.Profile == nil || s.Organization == nil {
		return true
	}
	return s.Profile.OrgID() == s.Organization.ID
}

// Empty reports whether no identity, profile or organization is held.
func (s Session) Empty() bool {
	return s.Identity == nil && s.Profile == nil && s.Organization == nil
}
