// internal/app/features/dashboard/routes.go
package dashboard

import (
	"github.com/glrs/lighthouse/internal/app/system/auth"
	"github.com/glrs/lighthouse/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes wires the dashboard feature under whatever mount point
// the top-level router chooses (e.g., "/api/dashboard").
//
// The handler dispatches to the coach or admin view based on the
// current user's role.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireRole(models.RoleCoach, models.RoleAdmin))
		pr.Get("/", h.ServeDashboard)
	})

	return r
}
