package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/tahfidz-portal/pkg/response"
)

// HealthFunc reports liveness details served at /api/healthz.
type HealthFunc func() gin.H

type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
	health      HealthFunc
}

func NewRegistry(engine *gin.Engine) *Registry {
	api := engine.Group("/api")
	return &Registry{Engine: engine, API: api}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

// Add queues a module; nil modules (disabled features) are skipped.
func (r *Registry) Add(mod Module) {
	if mod == nil {
		return
	}
	r.modules = append(r.modules, mod)
}

func (r *Registry) SetHealth(fn HealthFunc) { r.health = fn }

func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	if r.health != nil {
		r.API.GET("/healthz", func(c *gin.Context) {
			response.Success(c, http.StatusOK, r.health(), "ok", nil)
		})
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
}
