package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/proxiserve/auth-service/internal/application"
	"github.com/proxiserve/auth-service/internal/domain"
)

// Handler is the HTTP adapter entrypoint for the credential security
// use-cases. Only the application service crosses the adapter boundary.
type Handler struct {
	service        *application.Service
	publicPrefixes []string
}

// NewHandler constructs an HTTP handler bound to the application service.
// publicPrefixes is the gate's allowlist of paths served without a security
// context.
func NewHandler(service *application.Service, publicPrefixes []string) *Handler {
	return &Handler{service: service, publicPrefixes: publicPrefixes}
}

// NewRouter registers the HTTP routes and middleware stack. The
// authentication gate runs globally; per-route enforcement is explicit
// through requireAuth/requireRole.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)
	r.Use(handler.authenticationGate)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", handler.signup)
		r.Post("/login", handler.login)
		r.Get("/validate-token", handler.validateToken)
		r.Post("/request-reset", handler.requestReset)
		r.Post("/reset", handler.reset)
		r.Get("/me", handler.requireAuth(handler.me))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/accounts/{email}/unlock", handler.requireRole(domain.RoleAdmin, handler.adminUnlock))
	})

	return r
}
