// Package handler serves /api/projects.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"promanage/backend/internal/notification"
	"promanage/backend/internal/platform/httpx"
	"promanage/backend/internal/platform/rbac"
	"promanage/backend/internal/project/domain"
	"promanage/backend/internal/project/service"
)

type HTTP struct {
	svc       *service.ProjectService
	publisher notification.Publisher
}

// NewHTTP returns the project handler. publisher may be nil.
func NewHTTP(svc *service.ProjectService, publisher notification.Publisher) *HTTP {
	return &HTTP{svc: svc, publisher: publisher}
}

// Routes mounts the project endpoints. Callers must already be authenticated.
func (h *HTTP) Routes(r chi.Router, authz *rbac.Authorizer) {
	r.With(httpx.Authorize(authz, rbac.OpProjectCreate)).Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.With(httpx.Authorize(authz, rbac.OpProjectUpdate)).Put("/{id}", h.Update)
	r.With(httpx.Authorize(authz, rbac.OpProjectDelete)).Delete("/{id}", h.Delete)
}

type createRequest struct {
	Name        string `json:"name" validate:"required,min=2"`
	Description string `json:"description"`
	WorkspaceID string `json:"workspaceId" validate:"required"`
}

func (h *HTTP) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	p, err := h.svc.Create(r.Context(), service.CreateInput{Name: req.Name, Description: req.Description, WorkspaceID: req.WorkspaceID})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Success(w, http.StatusCreated, p)
}

func (h *HTTP) List(w http.ResponseWriter, r *http.Request) {
	workspaceID := r.URL.Query().Get("workspaceId")
	if workspaceID == "" {
		httpx.Fail(w, http.StatusBadRequest, "workspaceId query param is required")
		return
	}
	list, err := h.svc.ListByWorkspace(r.Context(), workspaceID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Success(w, http.StatusOK, list)
}

func (h *HTTP) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Success(w, http.StatusOK, p)
}

func (h *HTTP) Update(w http.ResponseWriter, r *http.Request) {
	var patch domain.Patch
	if err := httpx.Decode(w, r, &patch); err != nil {
		httpx.Error(w, r, err)
		return
	}
	p, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Success(w, http.StatusOK, p)
}

func (h *HTTP) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := rbac.RequireAuthenticated(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	ev, err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), actor.Email)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	notification.PublishAsync(h.publisher, ev)
	httpx.SuccessMessage(w, http.StatusOK, "Project and all associated tasks deleted", nil)
}
