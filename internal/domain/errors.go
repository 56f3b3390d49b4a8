package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling (OCP compliance).
type HTTPError interface {
	error
	StatusCode() int
}

// Error codes returned to clients in the "error" field of problem responses.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeHasChildren       = "HAS_CHILDREN"
	CodeAuthInvalid       = "AUTH_INVALID"
	CodeStorage           = "STORAGE_ERROR"
	CodeEmailExists       = "EMAIL_EXISTS"
	CodeInvalidCredential = "INVALID_CREDENTIALS"
	CodeTokenInvalid      = "TOKEN_INVALID_OR_EXPIRED"
	CodeUserNotFound      = "USER_NOT_FOUND"
	CodeBadRequest        = "BAD_REQUEST"
	CodeEmailPasswordReq  = "EMAIL_PASSWORD_REQUIRED"
	CodeRateLimited       = "RATE_LIMITED"
	CodeForbidden         = "FORBIDDEN"
	CodeConflict          = "CONFLICT"
)

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrHasChildren blocks deleting a member that other members reference as parent.
	ErrHasChildren = errors.New("member has children")
	// ErrStorage wraps failures of the underlying persistence layer.
	ErrStorage = errors.New("storage failure")
	// ErrRateLimited is returned when a caller exceeds the request budget.
	ErrRateLimited = errors.New("too many requests")

	ErrEmailExists         = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrTokenInvalid        = errors.New("token invalid or expired")
	ErrUserNotFound        = errors.New("user not found")
	ErrBadRequest          = errors.New("bad request")
	ErrEmailPasswordNeeded = errors.New("email and password are required")
)

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string   { return e.Message }
func (e *ValidationError) Error() string { return e.Message }

func (e *NotFoundError) StatusCode() int   { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

// Is allows errors.Is() to match the typed errors against their sentinels
func (e *NotFoundError) Is(target error) bool   { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// HasChildrenError reports the member whose deletion was blocked
type HasChildrenError struct {
	MemberID      string
	ChildrenCount int
}

func (e *HasChildrenError) Error() string {
	return "member " + e.MemberID + " has children and cannot be deleted"
}

func (e *HasChildrenError) StatusCode() int { return http.StatusConflict }

func (e *HasChildrenError) Is(target error) bool { return target == ErrHasChildren }

// codeTable is ordered: the first matching sentinel wins.
var codeTable = []struct {
	err    error
	code   string
	status int
}{
	{ErrHasChildren, CodeHasChildren, http.StatusConflict},
	{ErrEmailExists, CodeEmailExists, http.StatusConflict},
	{ErrInvalidCredentials, CodeInvalidCredential, http.StatusUnauthorized},
	{ErrTokenInvalid, CodeTokenInvalid, http.StatusBadRequest},
	{ErrUserNotFound, CodeUserNotFound, http.StatusNotFound},
	{ErrEmailPasswordNeeded, CodeEmailPasswordReq, http.StatusBadRequest},
	{ErrBadRequest, CodeBadRequest, http.StatusBadRequest},
	{ErrRateLimited, CodeRateLimited, http.StatusTooManyRequests},
	{ErrValidation, CodeValidation, http.StatusBadRequest},
	{ErrNotFound, CodeNotFound, http.StatusNotFound},
	{ErrUnauthorized, CodeAuthInvalid, http.StatusUnauthorized},
	{ErrForbidden, CodeForbidden, http.StatusForbidden},
	{ErrConflict, CodeConflict, http.StatusConflict},
	{ErrStorage, CodeStorage, http.StatusInternalServerError},
}

// CodeOf returns the client-facing error code for err.
// Unknown errors are reported as STORAGE_ERROR, the generic failure code.
func CodeOf(err error) string {
	for _, entry := range codeTable {
		if errors.Is(err, entry.err) {
			return entry.code
		}
	}
	return CodeStorage
}

// StatusOf returns the HTTP status for err, defaulting to 500.
func StatusOf(err error) int {
	for _, entry := range codeTable {
		if errors.Is(err, entry.err) {
			return entry.status
		}
	}
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode()
	}
	return http.StatusInternalServerError
}

// ErrorForCode maps a client-facing code back to its sentinel.
// Used by API clients so that errors.Is works across the wire.
func ErrorForCode(code string) error {
	for _, entry := range codeTable {
		if entry.code == code {
			return entry.err
		}
	}
	return nil
}
