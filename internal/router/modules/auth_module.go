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

// AuthModule: public login, sign-up and refresh; logout requires a session.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Portals *application.PortalManager
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, portals *application.PortalManager, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, Portals: portals, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	signupLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	refreshLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), nil)

	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.POST("/auth/signup", signupLimiter, m.Handler.SignUp)
	rg.POST("/auth/refresh", refreshLimiter, m.Handler.Refresh)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Portals, m.JWT))
	{
		auth.POST("/auth/logout", m.Handler.Logout)
	}
}
