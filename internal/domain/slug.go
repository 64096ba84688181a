package domain

import (
	"regexp"
	"strings"
)

var (
	slugInvalid    = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugWhitespace = regexp.MustCompile(`\s+`)
)

// Slugify lower-cases s, drops everything except letters, digits, whitespace
// and hyphens, then collapses whitespace runs into single hyphens.
func Slugify(s string) string {
	out := strings.ToLower(strings.TrimSpace(s))
	out = slugInvalid.ReplaceAllString(out, "")
	out = strings.TrimSpace(out)
	return slugWhitespace.ReplaceAllString(out, "-")
}
