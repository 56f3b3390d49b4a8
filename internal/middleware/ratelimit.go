package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"familytree/internal/domain"
	"familytree/internal/httputil"
	"familytree/internal/ratelimit"
)

// RateLimit limits requests per client IP. Limiter failures let the request through.
func RateLimit(limiter ratelimit.Limiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := limiter.Allow(r.Context(), httputil.ClientIP(r))
			if err != nil {
				logger.Warn("rate limit check failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.Reset.Unix(), 10))

			if !res.Allowed {
				retry := int(time.Until(res.Reset).Seconds()) + 1
				w.Header().Set("Retry-After", strconv.Itoa(max(retry, 1)))
				httputil.RespondCode(w, http.StatusTooManyRequests, domain.CodeRateLimited, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
