// Package httpx holds the REST plumbing shared by every feature handler:
// the response envelope, error mapping, payload validation and the
// authentication and authorization middleware.
package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"promanage/backend/internal/platform/apperr"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Status  string       `json:"status"`
	Data    any          `json:"data,omitempty"`
	Message string       `json:"message,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// JSON writes v as the response body with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("httpx: encode response", "error", err)
	}
}

// Success writes {"status":"success","data":data}.
func Success(w http.ResponseWriter, status int, data any) {
	JSON(w, status, Envelope{Status: "success", Data: data})
}

// SuccessMessage writes a success envelope with a message and optional data.
func SuccessMessage(w http.ResponseWriter, status int, message string, data any) {
	JSON(w, status, Envelope{Status: "success", Message: message, Data: data})
}

// Fail writes {"status":"error","message":message}.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Status: "error", Message: message})
}

// Error maps err to a response. Classified errors keep their message;
// anything else is logged with full detail and answered with a bare 500.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		JSON(w, http.StatusBadRequest, Envelope{Status: "error", Message: ValidationFailedMessage, Errors: verr.Fields})
		return
	}
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		slog.ErrorContext(r.Context(), "unhandled error",
			"method", r.Method, "path", r.URL.Path, "error", err)
	}
	Fail(w, apperr.HTTPStatus(kind), apperr.PublicMessage(err))
}

// NotFound answers unknown routes.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	Fail(w, http.StatusNotFound, "Route not found")
}
