// internal/app/features/activity/routes.go
package activity

import "github.com/go-chi/chi/v5"

// PIRRoutes is mounted under /api/pirs/{id}/activity. Access to the PIR is
// checked per request against the caller's caseload.
func PIRRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeFeed)
	r.Get("/export.csv", h.ServeEventsCSV)
	return r
}
