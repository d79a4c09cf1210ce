package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/tahfidz-portal/internal/domain/entity"
	"github.com/oksasatya/tahfidz-portal/internal/domain/repository"
	"github.com/oksasatya/tahfidz-portal/internal/interface/middleware"
	"github.com/oksasatya/tahfidz-portal/pkg/response"
)

type SessionHandler struct {
	Data repository.DataClient
}

func NewSessionHandler(data repository.DataClient) *SessionHandler {
	return &SessionHandler{Data: data}
}

// Session GET /api/session. Anonymous clients get an empty session.
func (h *SessionHandler) Session(c *gin.Context) {
	snap := entity.Session{}
	if p, ok := middleware.PortalFrom(c); ok {
		snap = p.Session()
	}
	response.Success(c, http.StatusOK, viewOf(snap), "session", nil)
}

// Organization GET /api/organizations/:slug, the portal selection lookup.
func (h *SessionHandler) Organization(c *gin.Context) {
	org, err := h.Data.OrganizationBySlug(c.Request.Context(), c.Param("slug"))
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !org.Active) {
		response.Error[any](c, http.StatusNotFound, "organization not found", nil)
		return
	}
	if err != nil {
		response.Error[any](c, http.StatusBadGateway, "organization lookup failed", nil)
		return
	}
	response.Success(c, http.StatusOK, organizationView(org), "organization", nil)
}
