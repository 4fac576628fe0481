// Package sanitize strips markup from free-text input before it is stored.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Text removes every HTML tag and trims surrounding whitespace. Entities
// escaped by the policy are decoded again so "Tom & Jerry" round-trips.
func Text(input string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(input)))
}

// TextPtr applies Text to an optional value.
func TextPtr(input *string) *string {
	if input == nil {
		return nil
	}
	out := Text(*input)
	return &out
}
