package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"

	// RefreshPath scopes the refresh cookie to the auth routes.
	RefreshPath = "/api/auth"
)

// Manager writes the portal's token cookies. Both are HttpOnly and
// SameSite=Lax.
type Manager struct {
	Domain string
	Secure bool
}

func NewCookie(domain string, secure bool) *Manager {
	return &Manager{Domain: domain, Secure: secure}
}

func (m *Manager) SetPair(c *gin.Context, access string, aexp time.Time, refresh string, rexp time.Time) {
	m.set(c, AccessCookie, access, maxAgeFrom(aexp), "/")
	m.set(c, RefreshCookie, refresh, maxAgeFrom(rexp), RefreshPath)
}

// Clear expires both cookies on the paths they were set with.
func (m *Manager) Clear(c *gin.Context) {
	m.set(c, AccessCookie, "", -1, "/")
	m.set(c, RefreshCookie, "", -1, RefreshPath)
}

func (m *Manager) set(c *gin.Context, name, value string, maxAge int, path string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, path, m.Domain, m.Secure, true)
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}
