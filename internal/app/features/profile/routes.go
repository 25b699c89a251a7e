// internal/app/features/profile/routes.go
package profile

import "github.com/go-chi/chi/v5"

// Routes is mounted under /api/me for every signed-in role.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeProfile)
	r.Patch("/", h.HandleUpdate)
	r.Get("/timezones", h.ServeTimeZones)
	return r
}
