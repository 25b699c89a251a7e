// internal/app/features/meetings/routes.go
package meetings

import (
	"github.com/glrs/lighthouse/internal/app/system/auth"
	"github.com/glrs/lighthouse/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted under /api/meetings. Every signed-in user may browse;
// only admins add meetings.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.With(sm.RequireRole(models.RoleAdmin)).Post("/", h.HandleCreate)
	return r
}
