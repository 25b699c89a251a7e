// Package shared holds small helpers used by more than one API feature.
package shared

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// RequestID returns the request ID set by chi's RequestID middleware, or a
// fresh UUID when the handler runs without it (tests, internal callers).
// Activity events carry it so a log line can be matched to the events one
// request produced.
func RequestID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return uuid.NewString()
}
