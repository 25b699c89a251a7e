// internal/app/features/alerts/routes.go
package alerts

import (
	"github.com/glrs/lighthouse/internal/app/system/auth"
	"github.com/glrs/lighthouse/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted under /api/alerts.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleCoach, models.RoleAdmin))
	r.Get("/", h.ServeList)
	r.Post("/{alertID}/acknowledge", h.HandleAcknowledge)
	r.Post("/{alertID}/resolve", h.HandleResolve)
	return r
}
