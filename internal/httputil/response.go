package httputil

import (
	"encoding/json"
	"net/http"
)

// RespondJSON writes a JSON response with the given status code.
// It handles encoding errors safely by marshaling first, preventing
// partial responses if encoding fails after headers are sent.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		// Encoding failed - return 500 instead
		RespondError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

// ProblemDetail represents an RFC 7807 Problem Details response
type ProblemDetail struct {
	Type     string                 `json:"type"`
	Title    string                 `json:"title"`
	Status   int                    `json:"status"`
	Detail   string                 `json:"detail,omitempty"`
	Instance string                 `json:"instance,omitempty"`
	Extra    map[string]interface{} `json:"-"`
}

// MarshalJSON implements custom JSON marshaling to include Extra fields at top level
func (p ProblemDetail) MarshalJSON() ([]byte, error) {
	// Create base map
	m := map[string]interface{}{
		"type":   p.Type,
		"title":  p.Title,
		"status": p.Status,
	}

	if p.Detail != "" {
		m["detail"] = p.Detail
	}
	if p.Instance != "" {
		m["instance"] = p.Instance
	}

	// Add extra fields
	for k, v := range p.Extra {
		m[k] = v
	}

	return json.Marshal(m)
}

// RespondError writes an RFC 7807 Problem Details error response
func RespondError(w http.ResponseWriter, status int, detail string) {
	RespondErrorWithExtras(w, status, detail, nil)
}

// RespondCode writes a problem response carrying a machine-readable error code
// in the "error" field, e.g. {"error": "HAS_CHILDREN", ...}
func RespondCode(w http.ResponseWriter, status int, code, detail string) {
	RespondErrorWithExtras(w, status, detail, map[string]interface{}{"error": code})
}

// RespondErrorWithExtras writes an RFC 7807 error with additional fields
func RespondErrorWithExtras(w http.ResponseWriter, status int, detail string, extras map[string]interface{}) {
	problem := ProblemDetail{
		Type:   errorTypeFromStatus(status),
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
		Extra:  extras,
	}

	payload, err := json.Marshal(problem)
	if err != nil {
		// Fallback to plain text if JSON encoding fails
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("internal server error"))
		return
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	w.Write(payload)
}

// problemTypes maps statuses to their RFC 9110 / RFC 6585 section URIs
var problemTypes = map[int]string{
	http.StatusBadRequest:            "https://www.rfc-editor.org/rfc/rfc9110#name-400-bad-request",
	http.StatusUnauthorized:          "https://www.rfc-editor.org/rfc/rfc9110#name-401-unauthorized",
	http.StatusForbidden:             "https://www.rfc-editor.org/rfc/rfc9110#name-403-forbidden",
	http.StatusNotFound:              "https://www.rfc-editor.org/rfc/rfc9110#name-404-not-found",
	http.StatusConflict:              "https://www.rfc-editor.org/rfc/rfc9110#name-409-conflict",
	http.StatusRequestEntityTooLarge: "https://www.rfc-editor.org/rfc/rfc9110#name-413-content-too-large",
	http.StatusTooManyRequests:       "https://www.rfc-editor.org/rfc/rfc6585#section-4",
	http.StatusInternalServerError:   "https://www.rfc-editor.org/rfc/rfc9110#name-500-internal-server-error",
}

// errorTypeFromStatus returns the problem type URI, about:blank when unmapped
func errorTypeFromStatus(status int) string {
	if uri, ok := problemTypes[status]; ok {
		return uri
	}
	return "about:blank"
}
