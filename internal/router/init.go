package router

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/tahfidz-portal/internal/application"
	"github.com/oksasatya/tahfidz-portal/internal/container"
	"github.com/oksasatya/tahfidz-portal/internal/domain/repository"
	pginfra "github.com/oksasatya/tahfidz-portal/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/tahfidz-portal/internal/interface/http"
	"github.com/oksasatya/tahfidz-portal/internal/router/modules"
)

type PortalModuleDeps struct {
	Activity *application.ActivityRecorder
	Profiles *application.ProfileService
	Auth     *handlers.AuthHandler
	Session  *handlers.SessionHandler
	Profile  *handlers.ProfileHandler
}

func buildPortalDeps() PortalModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	var (
		audit    repository.AuditRepository
		profiles repository.ProfileRepository
		pub      application.Publisher
	)
	if pool := container.GetPGPool(); pool != nil {
		audit = pginfra.NewAuditRepository(pool)
		profiles = pginfra.NewProfileRepository(pool)
	}
	if rp := container.GetRabbitPub(); rp != nil && cfg.MailSendEnabled {
		pub = rp
	}

	activity := application.NewActivityRecorder(audit, pub, cfg.AppName, logger)
	profileSvc := application.NewProfileService(profiles, container.GetGCS(), cfg.GCSBucket, container.GetES(), cfg.ESProfilesIndex, logger)

	return PortalModuleDeps{
		Activity: activity,
		Profiles: profileSvc,
		Auth:     handlers.NewAuthHandler(container.GetPortals(), container.GetJWT(), activity, logger, cfg.CookieDomain, cfg.CookieSecure),
		Session:  handlers.NewSessionHandler(container.GetData()),
		Profile:  handlers.NewProfileHandler(profileSvc, logger),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	deps := buildPortalDeps()
	portals := container.GetPortals()
	jwt := container.GetJWT()

	r.Add(modules.NewAuthModule(deps.Auth, portals, jwt))
	r.Add(modules.NewSessionModule(deps.Session, portals, jwt))
	r.Add(modules.NewProfileModule(deps.Profile, portals, jwt))
	cfg := container.GetConfig()
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(cfg.TrustedNets()))
	}
	r.SetHealth(func() gin.H {
		return gin.H{"demo_mode": cfg.IsDemoMode(), "portals": portals.Len()}
	})
}
