package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/tahfidz-portal/internal/container"
	"github.com/oksasatya/tahfidz-portal/internal/interface/middleware"
)

type DebugModule struct {
	TrustedNets []string
}

func NewDebugModule(trusted []string) *DebugModule { return &DebugModule{TrustedNets: trusted} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// expvar counters (auth_activity, portals_attached, rate_limited)
	rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP(m.TrustedNets...))
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
