// Package normalize trims and case-folds user-supplied values before they
// are validated or stored.
package normalize

import (
	"strings"
	"time"
)

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name but keeps its case.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Role lowercases and trims a role name.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status lowercases and trims a status value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Period lowercases and trims a check-in period.
func Period(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a query-string value and keeps its case.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// TimeZone returns s if it names a loadable IANA zone, otherwise "".
func TimeZone(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if _, err := time.LoadLocation(s); err != nil {
		return ""
	}
	return s
}

// Rating clamps a 0..max scale value.
func Rating(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
