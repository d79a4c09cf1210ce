package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/tahfidz-portal/internal/application"
	"github.com/oksasatya/tahfidz-portal/pkg/helpers"
	"github.com/oksasatya/tahfidz-portal/pkg/response"
)

// Gin context keys set by Auth and Portal.
const (
	CtxClientID = "clientID"
	CtxUserID   = "userID"
	CtxPortal   = "portal"
)

// Auth requires a valid access token whose identity is the one signed in
// on the client's portal. It sets clientID, userID and portal.
func Auth(manager *application.PortalManager, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(helpers.AccessCookie)
		if err != nil || token == "" {
			response.Abort(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid access token", err.Error())
			return
		}

		p, created, err := manager.Acquire(c.Request.Context(), claims.SessionID)
		if err != nil {
			response.Abort(c, http.StatusServiceUnavailable, "session backend unavailable", nil)
			return
		}
		snap := p.Session()
		if snap.Identity == nil || snap.Identity.ID != claims.UserID {
			if created {
				manager.Release(p)
			}
			response.Abort(c, http.StatusUnauthorized, "session not found", nil)
			return
		}

		c.Set(CtxClientID, claims.SessionID)
		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxPortal, p)
		c.Next()
	}
}

// Portal attaches the client's portal when a valid access token is
// present and lets the request through either way.
func Portal(manager *application.PortalManager, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(helpers.AccessCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			c.Next()
			return
		}
		p, created, err := manager.Acquire(c.Request.Context(), claims.SessionID)
		if err != nil {
			c.Next()
			return
		}
		if created && manager.Release(p) {
			// token outlived its session
			c.Next()
			return
		}
		c.Set(CtxClientID, claims.SessionID)
		c.Set(CtxPortal, p)
		if snap := p.Session(); snap.Identity != nil && snap.Identity.ID == claims.UserID {
			c.Set(CtxUserID, claims.UserID)
		}
		c.Next()
	}
}

// PortalFrom returns the portal set by Auth or Portal.
func PortalFrom(c *gin.Context) (*application.Portal, bool) {
	v, ok := c.Get(CtxPortal)
	if !ok {
		return nil, false
	}
	p, ok := v.(*application.Portal)
	return p, ok
}
