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

// ProfileModule: organization-scoped profile routes, all protected.
type ProfileModule struct {
	Handler *handlers.ProfileHandler
	Portals *application.PortalManager
	JWT     *helpers.JWTManager
}

func NewProfileModule(h *handlers.ProfileHandler, portals *application.PortalManager, jwt *helpers.JWTManager) *ProfileModule {
	return &ProfileModule{Handler: h, Portals: portals, JWT: jwt}
}

func (m *ProfileModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Portals, m.JWT))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PUT("/profile", m.Handler.UpdateProfile)
		auth.POST("/profile/avatar", m.Handler.UploadAvatar)
		auth.GET("/profiles/search", m.Handler.Search)
	}
}
