// internal/app/features/goals/routes.go
package goals

import (
	"github.com/glrs/lighthouse/internal/app/system/auth"
	"github.com/glrs/lighthouse/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes serves a PIR's own goals. Mounted under /api/goals.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RolePIR))
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Patch("/{goalID}", h.HandleUpdate)
	return r
}

// PIRRoutes lets staff read a PIR's goals. Mounted under /api/pirs/{id}/goals.
func PIRRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServePIRList)
	return r
}
