// Package handler serves /api/workspaces.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"promanage/backend/internal/platform/httpx"
	"promanage/backend/internal/platform/rbac"
	"promanage/backend/internal/workspace/service"
)

type HTTP struct {
	svc *service.WorkspaceService
}

func NewHTTP(svc *service.WorkspaceService) *HTTP {
	return &HTTP{svc: svc}
}

// Routes mounts the workspace endpoints. Callers must already be authenticated.
func (h *HTTP) Routes(r chi.Router, authz *rbac.Authorizer) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.With(httpx.Authorize(authz, rbac.OpWorkspaceDelete)).Delete("/{id}", h.Delete)
}

type nameRequest struct {
	Name string `json:"name" validate:"required,min=2"`
}

func (h *HTTP) Create(w http.ResponseWriter, r *http.Request) {
	p, err := rbac.RequireAuthenticated(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req nameRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	ws, err := h.svc.Create(r.Context(), req.Name, p.ID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Success(w, http.StatusCreated, ws)
}

func (h *HTTP) List(w http.ResponseWriter, r *http.Request) {
	p, err := rbac.RequireAuthenticated(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	list, err := h.svc.List(r.Context(), p.ID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Success(w, http.StatusOK, list)
}

func (h *HTTP) Get(w http.ResponseWriter, r *http.Request) {
	p, err := rbac.RequireAuthenticated(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	ws, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"), p.ID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Success(w, http.StatusOK, ws)
}

func (h *HTTP) Update(w http.ResponseWriter, r *http.Request) {
	p, err := rbac.RequireAuthenticated(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req nameRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	ws, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), p.ID, req.Name)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Success(w, http.StatusOK, ws)
}

func (h *HTTP) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.SuccessMessage(w, http.StatusOK, "Workspace deleted successfully", nil)
}
