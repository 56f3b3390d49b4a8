package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// maxJSONBody bounds JSON request bodies
const maxJSONBody = 1 << 20

// ParseJSON decodes JSON from the request body into the given destination.
// It limits the request body size to prevent abuse and provides clear error messages.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	// Unknown fields are ignored so older clients keep working
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}
