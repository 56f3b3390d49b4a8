package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"familytree/internal/domain"
	"familytree/internal/domain/models"
	"familytree/internal/domain/services"
	"familytree/internal/httputil"
)

// AuthHandler handles account requests
type AuthHandler struct {
	authService services.AuthService
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService services.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Signup registers an account
// POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SessionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}

	resp, err := h.authService.Signup(r.Context(), &req)
	if err != nil {
		handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}

// Signin checks credentials and returns the user with a session token
// POST /api/auth/signin
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req models.SessionRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}

	resp, err := h.authService.Signin(r.Context(), &req)
	if err != nil {
		handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}

// RequestReset emails a reset link; the response is the same whether or not the account exists
// POST /api/auth/request-reset
func (h *AuthHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ResetPassword consumes a reset token
// POST /api/auth/reset
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}

	if err := h.authService.ResetPassword(r.Context(), &req); err != nil {
		handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// UpdateUsername renames an account. An authenticated caller can only rename
// their own account; the body email may then be omitted.
// PATCH /api/auth/username
func (h *AuthHandler) UpdateUsername(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateUsernameRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}

	if caller := httputil.GetUserEmail(r); caller != "" {
		if email := strings.TrimSpace(req.Email); email != "" && !strings.EqualFold(email, caller) {
			handleError(w, r, fmt.Errorf("%w: cannot rename another account", domain.ErrForbidden))
			return
		}
		req.Email = caller
	}

	user, err := h.authService.UpdateUsername(r.Context(), &req)
	if err != nil {
		handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "user": user})
}
