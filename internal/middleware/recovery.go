package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"familytree/internal/domain"
	"familytree/internal/httputil"

	"github.com/getsentry/sentry-go"
)

// Recovery middleware recovers from panics, reports them to Sentry and returns a 500 error
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}

					logger.Error("panic recovered",
						"error", rec,
						"path", r.URL.Path,
						"method", r.Method,
						"stack", string(debug.Stack()),
					)

					sentry.WithScope(func(scope *sentry.Scope) {
						scope.SetTag("error_type", "panic")
						scope.SetExtra("path", r.URL.Path)
						scope.SetExtra("method", r.Method)
						sentry.CaptureException(fmt.Errorf("panic: %v", rec))
					})

					httputil.RespondCode(w, http.StatusInternalServerError, domain.CodeStorage, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
