package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"familytree/internal/auth"
	"familytree/internal/domain"
	"familytree/internal/httputil"
)

// RequireAuth rejects requests without a valid bearer token.
// The verified user ID and email are stored in the request context.
func RequireAuth(verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				httputil.RespondCode(w, http.StatusUnauthorized, domain.CodeAuthInvalid, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(strings.TrimSpace(token))
			if err != nil {
				logger.Debug("token rejected", "path", r.URL.Path, "error", err)
				httputil.RespondCode(w, http.StatusUnauthorized, domain.CodeAuthInvalid, "invalid or expired token")
				return
			}

			r = httputil.WithUserID(r, claims.GetUserID())
			r = httputil.WithUserEmail(r, claims.Email)
			next.ServeHTTP(w, r)
		})
	}
}

// Passthrough is used in place of RequireAuth when authentication is disabled
func Passthrough(next http.Handler) http.Handler {
	return next
}
