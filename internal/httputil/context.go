package httputil

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// Context key type to avoid collisions
type contextKey string

const (
	userIDKey contextKey = "userID"
	emailKey  contextKey = "email"
)

// WithUserID adds userID to the request context
func WithUserID(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	return r.WithContext(ctx)
}

// GetUserID retrieves userID from context, returns empty string if not found
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}

// WithUserEmail adds the authenticated email to the request context
func WithUserEmail(r *http.Request, email string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), emailKey, email))
}

// GetUserEmail retrieves the authenticated email, empty if absent
func GetUserEmail(r *http.Request) string {
	email, _ := r.Context().Value(emailKey).(string)
	return email
}

// ClientIP returns the first X-Forwarded-For hop, falling back to the remote address
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
