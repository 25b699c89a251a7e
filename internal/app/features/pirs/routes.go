// internal/app/features/pirs/routes.go
package pirs

import (
	"net/http"
	"sort"

	"github.com/glrs/lighthouse/internal/app/system/auth"
	"github.com/glrs/lighthouse/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted under /api/pirs for coaches and admins. perPIR maps a
// path segment to a feature router mounted at /{id}/<segment>; those
// routers read the PIR id from the "id" URL parameter.
func Routes(h *Handler, sm *auth.SessionManager, perPIR map[string]http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleCoach, models.RoleAdmin))

	r.Get("/", h.ServeList)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.ServeDetail)

		r.Group(func(r chi.Router) {
			r.Use(sm.RequireRole(models.RoleAdmin))
			r.Put("/coach", h.HandleAssignCoach)
			r.Put("/status", h.HandleSetStatus)
		})

		segments := make([]string, 0, len(perPIR))
		for seg := range perPIR {
			segments = append(segments, seg)
		}
		sort.Strings(segments)
		for _, seg := range segments {
			r.Mount("/"+seg, perPIR[seg])
		}
	})
	return r
}
