package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"promanage/backend/internal/health"
	healthhandler "promanage/backend/internal/health/handler"
	identityhandler "promanage/backend/internal/identity/handler"
	"promanage/backend/internal/platform/httpx"
	"promanage/backend/internal/platform/rbac"
	projecthandler "promanage/backend/internal/project/handler"
	"promanage/backend/internal/ratelimit"
	taskhandler "promanage/backend/internal/task/handler"
	"promanage/backend/internal/upload"
	workspacehandler "promanage/backend/internal/workspace/handler"
)

// RouterDeps holds the REST handlers and the middleware they share.
type RouterDeps struct {
	Identity   *identityhandler.HTTP
	Workspaces *workspacehandler.HTTP
	Projects   *projecthandler.HTTP
	Tasks      *taskhandler.HTTP
	Health     *health.Checker
	Uploads    *upload.Store

	Tokens     httpx.AccessVerifier
	Authorizer *rbac.Authorizer
	// Limiter guards the credential endpoints. Nil disables rate limiting.
	Limiter ratelimit.Limiter
	// TrustedProxies may set X-Forwarded-For and X-Real-IP.
	TrustedProxies httpx.TrustedProxies
	CORSOrigins    []string
}

// NewRouter builds the /api router.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(httpx.WithClientIP(deps.TrustedProxies))
	r.Use(tracing)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Filename", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := httpx.Authenticate(deps.Tokens)
	var limit func(http.Handler) http.Handler
	if deps.Limiter != nil {
		limit = ratelimit.Middleware(deps.Limiter)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthhandler.HTTP(deps.Health))

		r.Route("/auth", func(r chi.Router) {
			deps.Identity.Routes(r, authenticate, limit)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Route("/workspaces", func(r chi.Router) {
				deps.Workspaces.Routes(r, deps.Authorizer)
			})
			r.Route("/projects", func(r chi.Router) {
				deps.Projects.Routes(r, deps.Authorizer)
			})
			r.Route("/tasks", func(r chi.Router) {
				deps.Tasks.Routes(r, deps.Authorizer)
			})
			r.Post("/upload", upload.Handler(deps.Uploads))
		})
	})

	r.NotFound(httpx.NotFound)
	r.MethodNotAllowed(httpx.NotFound)
	return r
}
