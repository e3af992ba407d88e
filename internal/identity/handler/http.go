// Package handler exposes the session manager over REST and gRPC.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"promanage/backend/internal/audit"
	auditdomain "promanage/backend/internal/audit/domain"
	"promanage/backend/internal/identity/domain"
	"promanage/backend/internal/identity/service"
	"promanage/backend/internal/platform/apperr"
	"promanage/backend/internal/platform/httpx"
	"promanage/backend/internal/platform/rbac"
	telemetryotel "promanage/backend/internal/telemetry/otel"
)

// HTTP serves /api/auth. Metrics and audit are optional.
type HTTP struct {
	auth    *service.AuthService
	audit   audit.AuditLogger
	metrics *telemetryotel.AuthMetrics
}

// NewHTTP returns the auth REST handler.
func NewHTTP(auth *service.AuthService, auditLogger audit.AuditLogger, metrics *telemetryotel.AuthMetrics) *HTTP {
	if auditLogger == nil {
		auditLogger = audit.Discard{}
	}
	return &HTTP{auth: auth, audit: auditLogger, metrics: metrics}
}

// Routes mounts the public auth endpoints on r. authenticate guards logout
// and me; limit, when non-nil, wraps the credential endpoints.
func (h *HTTP) Routes(r chi.Router, authenticate, limit func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		if limit != nil {
			r.Use(limit)
		}
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
		r.Post("/revoke", h.Revoke)
	})
	r.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Post("/logout", h.Logout)
		r.Get("/me", h.Me)
	})
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type sessionResponse struct {
	User             domain.Summary `json:"user"`
	AccessToken      string         `json:"accessToken"`
	RefreshToken     string         `json:"refreshToken"`
	AccessExpiresAt  time.Time      `json:"accessExpiresAt"`
	RefreshExpiresAt time.Time      `json:"refreshExpiresAt"`
}

type refreshResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

func toSession(res *service.AuthResult) sessionResponse {
	return sessionResponse{
		User:             res.User,
		AccessToken:      res.AccessToken,
		RefreshToken:     res.RefreshToken,
		AccessExpiresAt:  res.AccessExpiresAt,
		RefreshExpiresAt: res.RefreshExpiresAt,
	}
}

// ErrRefreshTokenRequired is returned when refresh or revoke is called without a token.
var ErrRefreshTokenRequired = apperr.Invalid("Refresh token is required")

func (h *HTTP) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	res, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.metrics.Failure(r.Context(), "register")
		httpx.Error(w, r, err)
		return
	}
	h.metrics.Login(r.Context(), "register")
	h.audit.LogEvent(r.Context(), res.User.ID, auditdomain.ActionRegister, "user", res.User.ID, nil)
	httpx.SuccessMessage(w, http.StatusCreated, "User registered successfully", toSession(res))
}

func (h *HTTP) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.Failure(r.Context(), "login")
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.audit.LogEvent(r.Context(), "", auditdomain.ActionLoginFailure, "user", "", nil)
		}
		httpx.Error(w, r, err)
		return
	}
	h.metrics.Login(r.Context(), "password")
	h.audit.LogEvent(r.Context(), res.User.ID, auditdomain.ActionLogin, "user", res.User.ID, nil)
	httpx.SuccessMessage(w, http.StatusOK, "Login successful", toSession(res))
}

func (h *HTTP) Refresh(w http.ResponseWriter, r *http.Request) {
	token, err := decodeRefreshToken(w, r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	res, err := h.auth.Refresh(r.Context(), token)
	if err != nil {
		h.metrics.Failure(r.Context(), "refresh")
		httpx.Error(w, r, err)
		return
	}
	h.metrics.Refresh(r.Context())
	httpx.Success(w, http.StatusOK, refreshResponse{AccessToken: res.AccessToken, ExpiresAt: res.ExpiresAt})
}

// Revoke ends the session identified by the presented refresh token, but only
// while that token is still the current one.
func (h *HTTP) Revoke(w http.ResponseWriter, r *http.Request) {
	token, err := decodeRefreshToken(w, r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.auth.Revoke(r.Context(), token); err != nil {
		h.metrics.Failure(r.Context(), "revoke")
		httpx.Error(w, r, err)
		return
	}
	h.audit.LogEvent(r.Context(), "", auditdomain.ActionRevoke, "session", "", nil)
	httpx.SuccessMessage(w, http.StatusOK, "Session revoked", nil)
}

func (h *HTTP) Logout(w http.ResponseWriter, r *http.Request) {
	p, err := rbac.RequireAuthenticated(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.auth.Logout(r.Context(), p.ID); err != nil {
		httpx.Error(w, r, err)
		return
	}
	h.audit.LogEvent(r.Context(), p.ID, auditdomain.ActionLogout, "user", p.ID, nil)
	httpx.SuccessMessage(w, http.StatusOK, "Logged out successfully", nil)
}

func (h *HTTP) Me(w http.ResponseWriter, r *http.Request) {
	p, err := rbac.RequireAuthenticated(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	u, err := h.auth.Me(r.Context(), p.ID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Success(w, http.StatusOK, u)
}

// decodeRefreshToken maps an absent body or token to ErrRefreshTokenRequired.
// Malformed bodies stay validation failures.
func decodeRefreshToken(w http.ResponseWriter, r *http.Request) (string, error) {
	var req refreshRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		if httpx.IsEmptyBody(err) {
			return "", ErrRefreshTokenRequired
		}
		return "", err
	}
	if req.RefreshToken == "" {
		return "", ErrRefreshTokenRequired
	}
	return req.RefreshToken, nil
}
