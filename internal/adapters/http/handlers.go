package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/proxiserve/auth-service/internal/application"
	"github.com/proxiserve/auth-service/internal/domain"
)

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}

func (h *Handler) readyz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ready")
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req application.SignupRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "signup", err)
		return
	}
	if req.IPAddress == "" {
		req.IPAddress = readIP(r)
	}

	res, err := h.service.Signup(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "signup", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req application.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "login", err)
		return
	}
	if req.IPAddress == "" {
		req.IPAddress = readIP(r)
	}

	res, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "login", err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

// validateToken is a public introspection endpoint: the caller supplies the
// bearer token and always receives a 200 verdict body, never a 401.
func (h *Handler) validateToken(w http.ResponseWriter, r *http.Request) {
	raw, err := bearerTokenFromHeader(r.Header.Get("Authorization"))
	if err != nil {
		writeSuccess(w, http.StatusOK, map[string]any{"valid": false})
		return
	}

	claims, err := h.service.ValidateToken(r.Context(), raw)
	if err != nil {
		writeSuccess(w, http.StatusOK, map[string]any{"valid": false})
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"valid": true,
		"email": claims.Identity,
		"role":  claims.Role,
	})
}

func (h *Handler) requestReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "request_reset", err)
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email, readIP(r)); err != nil {
		writeMappedError(r.Context(), w, "request_reset", err)
		return
	}
	// Identical acknowledgment whether or not the identity exists.
	writeMessage(w, http.StatusOK, "If the email exists, a password reset link has been sent")
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	var req application.ResetRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "reset_password", err)
		return
	}

	if err := h.service.ResetPassword(r.Context(), req); err != nil {
		writeMappedError(r.Context(), w, "reset_password", err)
		return
	}
	writeMessage(w, http.StatusOK, "Password reset successful. You can now login with your new password.")
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	sc, ok := securityFromContext(r.Context())
	if !ok {
		writeMappedError(r.Context(), w, "me", domain.ErrUnauthenticated)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"email": sc.Identity,
		"role":  sc.Role,
	})
}

func (h *Handler) adminUnlock(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if err := h.service.AdminUnlock(r.Context(), email); err != nil {
		writeMappedError(r.Context(), w, "admin_unlock", err)
		return
	}
	writeMessage(w, http.StatusOK, "Account unlocked")
}
