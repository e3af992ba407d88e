package handler

import (
	"net/http"

	"promanage/backend/internal/health"
	"promanage/backend/internal/platform/httpx"
)

// HTTP serves GET /api/health: 200 when every check passes, 503 otherwise.
func HTTP(c *health.Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep := c.Check(r.Context())
		if !rep.Healthy() {
			httpx.JSON(w, http.StatusServiceUnavailable, httpx.Envelope{Status: "error", Message: "Service unavailable", Data: rep})
			return
		}
		httpx.Success(w, http.StatusOK, rep)
	}
}
