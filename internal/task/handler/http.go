// Package handler serves /api/tasks.
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"promanage/backend/internal/notification"
	"promanage/backend/internal/platform/httpx"
	"promanage/backend/internal/platform/rbac"
	"promanage/backend/internal/task/domain"
	"promanage/backend/internal/task/service"
)

type HTTP struct {
	svc       *service.TaskService
	publisher notification.Publisher
}

// NewHTTP returns the task handler. publisher may be nil.
func NewHTTP(svc *service.TaskService, publisher notification.Publisher) *HTTP {
	return &HTTP{svc: svc, publisher: publisher}
}

// Routes mounts the task endpoints. Callers must already be authenticated.
// PATCH is open to every role; the service enforces per-field scope.
func (h *HTTP) Routes(r chi.Router, authz *rbac.Authorizer) {
	r.With(httpx.Authorize(authz, rbac.OpTaskCreate)).Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/me", h.Mine)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.With(httpx.Authorize(authz, rbac.OpTaskDelete)).Delete("/{id}", h.Delete)
}

type createRequest struct {
	Title       string     `json:"title" validate:"required,min=2"`
	Description string     `json:"description"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	DueDate     *time.Time `json:"dueDate"`
	ProjectID   string     `json:"projectId" validate:"required"`
	AssigneeID  *string    `json:"assigneeId" validate:"omitempty,min=1"`
}

func (h *HTTP) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := rbac.RequireAuthenticated(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req createRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	t, events, err := h.svc.Create(r.Context(), actor, service.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.Priority(req.Priority),
		DueDate:     req.DueDate,
		ProjectID:   req.ProjectID,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	notification.PublishAsync(h.publisher, events...)
	httpx.Success(w, http.StatusCreated, t)
}

func (h *HTTP) List(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("projectId")
	if projectID == "" {
		httpx.Fail(w, http.StatusBadRequest, "projectId query param is required")
		return
	}
	list, err := h.svc.ListByProject(r.Context(), projectID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Success(w, http.StatusOK, list)
}

// Mine lists the caller's tasks across every workspace.
func (h *HTTP) Mine(w http.ResponseWriter, r *http.Request) {
	actor, err := rbac.RequireAuthenticated(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	list, err := h.svc.ListMine(r.Context(), actor.ID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Success(w, http.StatusOK, list)
}

func (h *HTTP) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Success(w, http.StatusOK, t)
}

func (h *HTTP) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := rbac.RequireAuthenticated(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var patch domain.Patch
	if err := httpx.Decode(w, r, &patch); err != nil {
		httpx.Error(w, r, err)
		return
	}
	t, events, err := h.svc.Update(r.Context(), actor, chi.URLParam(r, "id"), patch)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	notification.PublishAsync(h.publisher, events...)
	httpx.Success(w, http.StatusOK, t)
}

func (h *HTTP) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.SuccessMessage(w, http.StatusOK, "Task deleted successfully", nil)
}
