package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/tahfidz-portal/internal/application"
	"github.com/oksasatya/tahfidz-portal/internal/domain/entity"
	"github.com/oksasatya/tahfidz-portal/internal/domain/repository"
	"github.com/oksasatya/tahfidz-portal/internal/interface/middleware"
	"github.com/oksasatya/tahfidz-portal/pkg/helpers"
	"github.com/oksasatya/tahfidz-portal/pkg/response"
	"github.com/oksasatya/tahfidz-portal/pkg/validation"
)

type AuthHandler struct {
	Manager  *application.PortalManager
	JWT      *helpers.JWTManager
	Cookies  *helpers.Manager
	Activity *application.ActivityRecorder
	Logger   *logrus.Logger
}

func NewAuthHandler(manager *application.PortalManager, jwt *helpers.JWTManager, activity *application.ActivityRecorder, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		Manager:  manager,
		JWT:      jwt,
		Cookies:  helpers.NewCookie(cookieDomain, cookieSecure),
		Activity: activity,
		Logger:   logger,
	}
}

type loginRequest struct {
	Email            string `json:"email" binding:"required,email_trimmed"`
	Password         string `json:"password" binding:"required"`
	OrganizationSlug string `json:"organization_slug"`
}

type signUpRequest struct {
	Email            string `json:"email" binding:"required,email_trimmed"`
	Password         string `json:"password" binding:"required,pwd"`
	FullName         string `json:"full_name" binding:"required,max=120"`
	Role             string `json:"role" binding:"required,role"`
	Phone            string `json:"phone" binding:"omitempty,phone"`
	OrganizationSlug string `json:"organization_slug" binding:"required,slug"`
}

// clientID reuses the browser's portal client when its cookies still
// carry one, and starts a new client otherwise.
func (h *AuthHandler) clientID(c *gin.Context) string {
	if tok, err := c.Cookie(helpers.AccessCookie); err == nil && tok != "" {
		if claims, err := h.JWT.ParseAccessToken(tok); err == nil {
			return claims.SessionID
		}
	}
	if tok, err := c.Cookie(helpers.RefreshCookie); err == nil && tok != "" {
		if claims, err := h.JWT.ParseRefreshToken(tok); err == nil {
			return claims.SessionID
		}
	}
	return uuid.NewString()
}

func (h *AuthHandler) record(c *gin.Context, a application.AuthActivity) {
	if h.Activity == nil {
		return
	}
	a.IP = middleware.ClientIP(c)
	a.UserAgent = c.GetHeader("User-Agent")
	h.Activity.Record(c.Request.Context(), a)
}

func (h *AuthHandler) issue(c *gin.Context, userID, clientID string) (gin.H, bool) {
	access, aexp, err := h.JWT.GenerateAccessToken(userID, clientID)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "token generation failed", nil)
		return nil, false
	}
	refresh, rexp, err := h.JWT.GenerateRefreshToken(userID, clientID)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "token generation failed", nil)
		return nil, false
	}
	h.Cookies.SetPair(c, access, aexp, refresh, rexp)
	return gin.H{"access_expires_at": aexp, "refresh_expires_at": rexp}, true
}

// Login POST /api/auth/login {email, password, organization_slug?}
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	clientID := h.clientID(c)

	p, created, err := h.Manager.Acquire(c.Request.Context(), clientID)
	if err != nil {
		response.Error[any](c, http.StatusServiceUnavailable, "session backend unavailable", nil)
		return
	}
	// a portal built for this attempt must not outlive a failed login
	release := func() {
		if created {
			h.Manager.Release(p)
		}
	}

	snap, err := p.SignIn(c.Request.Context(), email, req.Password, req.OrganizationSlug)
	var mismatch *application.OrganizationMismatchError
	switch {
	case err == nil:
	case errors.Is(err, application.ErrInvalidCredentials):
		release()
		h.record(c, application.AuthActivity{Action: application.ActionLoginFailed, Email: email, ExpectedSlug: req.OrganizationSlug})
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	case errors.As(err, &mismatch):
		h.Manager.Detach(clientID)
		h.Cookies.Clear(c)
		h.record(c, application.AuthActivity{Action: application.ActionOrganizationMismatch, Email: email, ExpectedSlug: req.OrganizationSlug, Mismatch: mismatch})
		response.Error[any](c, http.StatusForbidden, "account does not belong to this organization", gin.H{
			"actual_organization": mismatch.ActualName,
			"organization_slug":   mismatch.ExpectedSlug,
		})
		return
	case errors.Is(err, application.ErrProfileNotFound):
		h.Manager.Detach(clientID)
		h.Cookies.Clear(c)
		response.Error[any](c, http.StatusForbidden, "account has no profile", nil)
		return
	case errors.Is(err, application.ErrOrganizationNotFound):
		h.Manager.Detach(clientID)
		h.Cookies.Clear(c)
		response.Error[any](c, http.StatusForbidden, "account has no organization", nil)
		return
	default:
		release()
		if req.OrganizationSlug != "" {
			h.Cookies.Clear(c)
		}
		middleware.RequestLog(c, h.Logger).WithError(err).WithField("client_id", clientID).Error("login failed")
		response.Error[any](c, http.StatusBadGateway, "session could not be resolved", nil)
		return
	}

	meta, ok := h.issue(c, snap.Identity.ID, clientID)
	if !ok {
		return
	}
	h.record(c, application.AuthActivity{Action: application.ActionLogin, Email: email, Session: snap, ExpectedSlug: req.OrganizationSlug})
	response.Success(c, http.StatusOK, viewOf(snap), "login successful", meta)
}

// SignUp POST /api/auth/signup
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	clientID := uuid.NewString()
	p, err := h.Manager.Attach(c.Request.Context(), clientID)
	if err != nil {
		response.Error[any](c, http.StatusServiceUnavailable, "session backend unavailable", nil)
		return
	}
	defer h.Manager.Detach(clientID)

	id, err := p.SignUp(c.Request.Context(), repository.SignUpInput{
		Email:            req.Email,
		Password:         req.Password,
		FullName:         strings.TrimSpace(req.FullName),
		Role:             entity.Role(req.Role),
		Phone:            req.Phone,
		OrganizationSlug: req.OrganizationSlug,
	})
	switch {
	case err == nil:
	case errors.Is(err, application.ErrSignUpUnavailable):
		response.Error[any](c, http.StatusNotImplemented, "sign-up is not available in demo mode", nil)
		return
	case errors.Is(err, repository.ErrNotFound):
		response.Error[any](c, http.StatusNotFound, "organization not found", nil)
		return
	case errors.Is(err, repository.ErrOrganizationInactive):
		response.Error[any](c, http.StatusForbidden, "organization is not accepting sign-ups", nil)
		return
	case errors.Is(err, repository.ErrEmailTaken):
		response.Error[any](c, http.StatusConflict, "email already registered", nil)
		return
	default:
		middleware.RequestLog(c, h.Logger).WithError(err).Error("sign-up failed")
		response.Error[any](c, http.StatusInternalServerError, "sign-up failed", nil)
		return
	}

	h.record(c, application.AuthActivity{
		Action:       application.ActionSignUp,
		Email:        id.Email,
		Session:      entity.Session{Identity: id},
		ExpectedSlug: req.OrganizationSlug,
	})
	response.Success(c, http.StatusCreated, gin.H{"user": id, "status": entity.StatusPending}, "account created, awaiting approval", nil)
}

// Refresh POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	tok, err := c.Cookie(helpers.RefreshCookie)
	if err != nil || tok == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	claims, err := h.JWT.ParseRefreshToken(tok)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}
	p, created, err := h.Manager.Acquire(c.Request.Context(), claims.SessionID)
	if err != nil {
		response.Error[any](c, http.StatusServiceUnavailable, "session backend unavailable", nil)
		return
	}
	snap, err := p.Refresh(c.Request.Context())
	if err != nil || snap.Identity == nil || snap.Identity.ID != claims.UserID {
		if created {
			h.Manager.Release(p)
		}
		h.Cookies.Clear(c)
		response.Error[any](c, http.StatusUnauthorized, "session expired", nil)
		return
	}
	meta, ok := h.issue(c, claims.UserID, claims.SessionID)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, viewOf(snap), "token refreshed", meta)
}

// Logout POST /api/auth/logout (auth required)
func (h *AuthHandler) Logout(c *gin.Context) {
	p, ok := middleware.PortalFrom(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	snap := p.Session()
	if err := p.SignOut(c.Request.Context()); err != nil {
		middleware.RequestLog(c, h.Logger).WithError(err).WithField("client_id", p.ClientID).Warn("backend sign-out failed")
	}
	h.Manager.Detach(p.ClientID)
	h.Cookies.Clear(c)

	email := ""
	if snap.Identity != nil {
		email = snap.Identity.Email
	}
	h.record(c, application.AuthActivity{Action: application.ActionLogout, Email: email, Session: snap})
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}
