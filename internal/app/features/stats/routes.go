// internal/app/features/stats/routes.go
package stats

import (
	"github.com/glrs/lighthouse/internal/app/system/auth"
	"github.com/glrs/lighthouse/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted under /api/stats.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.With(sm.RequireRole(models.RolePIR)).Get("/me", h.ServeMine)
	return r
}

// PIRRoutes is mounted under /api/pirs/{id}/stats.
func PIRRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServePIR)
	return r
}
