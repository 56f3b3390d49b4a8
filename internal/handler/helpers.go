package handler

import (
	"log/slog"
	"net/http"

	"familytree/internal/domain"
	"familytree/internal/httputil"

	"github.com/getsentry/sentry-go"
)

// handleError converts domain errors to problem responses carrying the error code
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := domain.StatusOf(err)
	code := domain.CodeOf(err)

	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"error", err,
			"path", r.URL.Path,
			"method", r.Method,
		)
		sentry.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("error_code", code)
			scope.SetExtra("path", r.URL.Path)
			sentry.CaptureException(err)
		})
		httputil.RespondCode(w, status, code, "internal server error")
		return
	}

	httputil.RespondCode(w, status, code, err.Error())
}

// badRequest answers a body that could not be decoded
func badRequest(w http.ResponseWriter, err error) {
	httputil.RespondCode(w, http.StatusBadRequest, domain.CodeBadRequest, err.Error())
}
