// internal/app/features/resources/routes.go
package resources

import (
	"github.com/glrs/lighthouse/internal/app/system/auth"
	"github.com/glrs/lighthouse/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes serves the guides library. Mounted under /api/resources.
//
// Everyone signed in can browse; PIRs read their own Guides tab; coaches
// and admins curate.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLibrary)

	r.With(sm.RequireRole(models.RolePIR)).Get("/assigned", h.ServeAssigned)

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireRole(models.RoleCoach, models.RoleAdmin))
		r.Post("/", h.HandleCreate)
		r.Put("/{resourceID}/status", h.HandleSetStatus)
	})
	return r
}

// PIRRoutes lets staff manage one PIR's Guides tab. Mounted under
// /api/pirs/{id}/resources.
func PIRRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServePIRList)
	r.Post("/", h.HandleAssign)
	r.Delete("/{resourceID}", h.HandleUnassign)
	return r
}
