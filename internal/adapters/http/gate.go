package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/proxiserve/auth-service/internal/domain"
)

// SecurityContext is the request-scoped identity resolved by the gate.
type SecurityContext struct {
	Identity string
	Role     string
}

func securityFromContext(ctx context.Context) (SecurityContext, bool) {
	v := ctx.Value(ctxKeySecurity)
	sc, ok := v.(SecurityContext)
	return sc, ok
}

func contextWithSecurity(ctx context.Context, sc SecurityContext) context.Context {
	return context.WithValue(ctx, ctxKeySecurity, sc)
}

// authenticationGate resolves the bearer token into a security context for
// every request outside the public-path allowlist. The gate never aborts:
// an absent, malformed, or expired token just leaves the context unset and
// the request proceeds, so unauthenticated access fails uniformly at the
// requireAuth/requireRole boundary instead of leaking why.
func (h *Handler) authenticationGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, prefix := range h.publicPrefixes {
			if strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
		}

		ctx := r.Context()
		if _, ok := securityFromContext(ctx); ok {
			next.ServeHTTP(w, r)
			return
		}

		raw, err := bearerTokenFromHeader(r.Header.Get("Authorization"))
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := h.service.ValidateToken(ctx, raw)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx = contextWithSecurity(ctx, SecurityContext{
			Identity: claims.Identity,
			Role:     claims.Role,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAuth rejects requests that carry no security context.
func (h *Handler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := securityFromContext(r.Context()); !ok {
			writeMappedError(r.Context(), w, "require_auth", domain.ErrUnauthenticated)
			return
		}
		next(w, r)
	}
}

// requireRole rejects requests whose security context does not carry the
// exact role. Authorization is by exact match, no role hierarchy.
func (h *Handler) requireRole(role string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sc, ok := securityFromContext(r.Context())
		if !ok {
			writeMappedError(r.Context(), w, "require_role", domain.ErrUnauthenticated)
			return
		}
		if sc.Role != role {
			writeMappedError(r.Context(), w, "require_role", domain.ErrForbidden)
			return
		}
		next(w, r)
	}
}
