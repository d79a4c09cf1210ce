package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/tahfidz-portal/internal/application"
	"github.com/oksasatya/tahfidz-portal/internal/container"
	handlers "github.com/oksasatya/tahfidz-portal/internal/interface/http"
	"github.com/oksasatya/tahfidz-portal/internal/interface/middleware"
	"github.com/oksasatya/tahfidz-portal/pkg/helpers"
)

// SessionModule serves the portal selection lookup and the session read.
type SessionModule struct {
	Handler *handlers.SessionHandler
	Portals *application.PortalManager
	JWT     *helpers.JWTManager
}

func NewSessionModule(h *handlers.SessionHandler, portals *application.PortalManager, jwt *helpers.JWTManager) *SessionModule {
	return &SessionModule{Handler: h, Portals: portals, JWT: jwt}
}

func (m *SessionModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), nil)

	rg.GET("/organizations/:slug", rl, m.Handler.Organization)
	rg.GET("/session", rl, middleware.Portal(m.Portals, m.JWT), m.Handler.Session)
}
