package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tahfidz-portal/internal/application"
	"github.com/oksasatya/tahfidz-portal/internal/interface/middleware"
	"github.com/oksasatya/tahfidz-portal/pkg/response"
	"github.com/oksasatya/tahfidz-portal/pkg/validation"
)

const maxAvatarBytes = 5 << 20

type ProfileHandler struct {
	Svc    *application.ProfileService
	Logger *logrus.Logger
}

func NewProfileHandler(svc *application.ProfileService, logger *logrus.Logger) *ProfileHandler {
	return &ProfileHandler{Svc: svc, Logger: logger}
}

type updateProfileRequest struct {
	FullName string `json:"full_name" binding:"omitempty,max=120"`
	Phone    string `json:"phone" binding:"omitempty,phone"`
}

func (h *ProfileHandler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, application.ErrProfileEditingUnavailable):
		response.Error[any](c, http.StatusNotImplemented, "profile editing is not available in demo mode", nil)
	case errors.Is(err, application.ErrNotAuthenticated):
		response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
	case errors.Is(err, application.ErrProfileNotFound):
		response.Error[any](c, http.StatusNotFound, "profile not found", nil)
	default:
		middleware.RequestLog(c, h.Logger).WithError(err).Error(msg)
		response.Error[any](c, http.StatusInternalServerError, msg, nil)
	}
}

// GetProfile GET /api/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	p, _ := middleware.PortalFrom(c)
	snap := p.Session()
	if snap.Profile == nil {
		response.Error[any](c, http.StatusNotFound, "profile not found", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"profile":      snap.Profile,
		"organization": snap.Organization,
	}, "profile", nil)
}

// UpdateProfile PUT /api/profile
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	p, _ := middleware.PortalFrom(c)
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), p, application.UpdateProfileInput{
		FullName: strings.TrimSpace(req.FullName),
		Phone:    req.Phone,
	})
	if err != nil {
		h.fail(c, err, "failed to update profile")
		return
	}
	response.Success(c, http.StatusOK, u, "profile updated", nil)
}

// UploadAvatar POST /api/profile/avatar (multipart, field "file")
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	p, _ := middleware.PortalFrom(c)
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "file is required", nil)
		return
	}
	if fh.Size > maxAvatarBytes {
		response.Error[any](c, http.StatusRequestEntityTooLarge, "file too large", nil)
		return
	}
	ct := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "image/") {
		response.Error[any](c, http.StatusUnsupportedMediaType, "only images are accepted", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	url, err := h.Svc.UploadAvatar(c.Request.Context(), p, f, fh.Filename, ct)
	if err != nil {
		h.fail(c, err, "failed to upload avatar")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"avatar_url": url}, "avatar updated", nil)
}

// Search GET /api/profiles/search?q=&size=
func (h *ProfileHandler) Search(c *gin.Context) {
	p, _ := middleware.PortalFrom(c)
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "q is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.SearchDirectory(c.Request.Context(), p, q, size)
	if err != nil {
		h.fail(c, err, "search failed")
		return
	}
	response.Success(c, http.StatusOK, hits, "profiles", map[string]any{"count": len(hits)})
}
