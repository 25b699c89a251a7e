// internal/app/system/search/search.go
package search

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// Prefix returns the [lo, hi) bounds matching every folded value that
// starts with q. lo is empty when q folds to nothing.
//
//	lo, hi := search.Prefix(q)
//	filter["full_name_ci"] = bson.M{"$gte": lo, "$lt": hi}
func Prefix(q string) (lo, hi string) {
	lo = text.Fold(strings.TrimSpace(q))
	if lo == "" {
		return "", ""
	}
	return lo, lo + "\uffff"
}

// EmailPrefix is Prefix for email addresses, which are stored lowercased
// rather than folded.
func EmailPrefix(q string) (lo, hi string) {
	lo = strings.ToLower(strings.TrimSpace(q))
	if lo == "" {
		return "", ""
	}
	return lo, lo + "\uffff"
}

// EmailPivot reports whether a PIR search should match and sort on email
// instead of name. It does when the query looks like an email and the
// status is fixed, which keeps the (role, status, email) index selective.
func EmailPivot(q, status string) bool {
	return strings.Contains(q, "@") && equalsAnyFold(status, "active", "disabled")
}

func equalsAnyFold(s string, vals ...string) bool {
	s = strings.TrimSpace(s)
	for _, v := range vals {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
