package service

import (
	"fmt"
	"html"
	"strings"

	"familytree/internal/domain"

	"github.com/microcosm-cc/bluemonday"
)

// textSanitizer checks user supplied display text for markup.
// Safe for concurrent use.
type textSanitizer struct {
	policy *bluemonday.Policy
}

func newTextSanitizer() *textSanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

// Clean removes tags and returns the plain, trimmed text.
// bluemonday escapes entities, so they are decoded again for comparison.
func (s *textSanitizer) Clean(text string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(text)))
}

// Plain returns text trimmed, or a validation error when stripping markup
// would change it. Text is stored as sent or not at all.
func (s *textSanitizer) Plain(field, text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if s.Clean(trimmed) != trimmed {
		return "", &domain.ValidationError{Message: fmt.Sprintf("%s must not contain markup", field)}
	}
	return trimmed, nil
}
