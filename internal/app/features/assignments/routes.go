// internal/app/features/assignments/routes.go
package assignments

import (
	"github.com/glrs/lighthouse/internal/app/system/auth"
	"github.com/glrs/lighthouse/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes serves a PIR's own assignments. Mounted under /api/assignments.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RolePIR))
	r.Get("/", h.ServeMine)
	r.Post("/{assignmentID}/complete", h.HandleComplete)
	return r
}

// PIRRoutes lets staff assign and review work. Mounted under
// /api/pirs/{id}/assignments.
func PIRRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServePIRList)
	r.Post("/", h.HandleCreate)
	return r
}
