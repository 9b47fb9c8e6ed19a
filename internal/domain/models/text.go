// internal/domain/models/text.go
package models

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes all markup. Server free text is rendered on a terminal,
// so tags are dropped and entities are decoded back to plain characters.
var strict = bluemonday.StrictPolicy()

// CleanText strips markup from server-provided free text.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
