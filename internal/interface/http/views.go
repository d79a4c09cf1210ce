package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/tahfidz-portal/internal/domain/entity"
)

type sessionView struct {
	User             *entity.Identity     `json:"user"`
	Profile          *entity.Profile      `json:"profile"`
	Organization     *entity.Organization `json:"organization"`
	Loading          bool                 `json:"loading"`
	OrganizationLess bool                 `json:"organization_less"`
}

func viewOf(s entity.Session) sessionView {
	return sessionView{
		User:             s.Identity,
		Profile:          s.Profile,
		Organization:     s.Organization,
		Loading:          s.Loading,
		OrganizationLess: s.OrganizationLess(),
	}
}

func organizationView(o *entity.Organization) gin.H {
	return gin.H{"id": o.ID, "name": o.Name, "slug": o.Slug}
}
