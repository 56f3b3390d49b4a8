package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"familytree/internal/auth"
	"familytree/internal/domain/models"
	"familytree/internal/httputil"
	"familytree/internal/ratelimit"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	code, _ := body["error"].(string)
	return code
}

func TestRecovery(t *testing.T) {
	h := Recovery(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/members", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if code := errorCode(t, rec); code != "STORAGE_ERROR" {
		t.Errorf("error = %q, want STORAGE_ERROR", code)
	}
}

func TestRequireAuth(t *testing.T) {
	issuer, err := auth.NewTokenIssuer("secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	token, _ := issuer.Issue(&models.User{ID: "u1", Email: "a@example.com"})

	var gotUser, gotEmail string
	h := RequireAuth(issuer, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = httputil.GetUserID(r)
		gotEmail = httputil.GetUserEmail(r)
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + token, http.StatusNoContent},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/members", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusUnauthorized {
				if code := errorCode(t, rec); code != "AUTH_INVALID" {
					t.Errorf("error = %q, want AUTH_INVALID", code)
				}
			}
		})
	}

	if gotUser != "u1" || gotEmail != "a@example.com" {
		t.Errorf("context user = %q %q", gotUser, gotEmail)
	}
}

type failingLimiter struct{}

func (failingLimiter) Allow(ctx context.Context, key string) (ratelimit.Result, error) {
	return ratelimit.Result{}, errors.New("redis down")
}
func (failingLimiter) Close() error { return nil }

func TestRateLimit(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := RateLimit(ratelimit.NewMemoryLimiter(2, time.Minute), testLogger())(ok)

	codes := make([]int, 3)
	for i := range codes {
		r := httptest.NewRequest(http.MethodGet, "/api/members", nil)
		r.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		codes[i] = rec.Code
		if i == 2 {
			if code := errorCode(t, rec); code != "RATE_LIMITED" {
				t.Errorf("error = %q, want RATE_LIMITED", code)
			}
			if rec.Header().Get("Retry-After") == "" {
				t.Error("missing Retry-After header")
			}
		}
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}

	rec := httptest.NewRecorder()
	RateLimit(failingLimiter{}, testLogger())(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("limiter failure status = %d, want 200", rec.Code)
	}
}
