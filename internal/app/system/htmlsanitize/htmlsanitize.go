// Package htmlsanitize cleans free text submitted by PIRs and coaches.
//
// Check-in notes, goal titles, and assignment descriptions are plain text.
// Anything that looks like markup is stripped before storage so nothing
// stored can later be rendered as HTML by a client.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict = bluemonday.StrictPolicy()
	ugc    = bluemonday.UGCPolicy()
)

// Text strips all markup from s, unescapes entities bluemonday produces,
// and trims surrounding whitespace.
func Text(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// Rich keeps a safe subset of formatting (links, emphasis, lists) and drops
// scripts, event handlers, and javascript: URLs. Used for coach-authored
// assignment descriptions.
func Rich(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(ugc.Sanitize(s))
}

// IsPlainText reports whether s contains no tag-like sequences.
func IsPlainText(s string) bool {
	i := strings.IndexByte(s, '<')
	return i < 0 || !strings.Contains(s[i:], ">")
}
