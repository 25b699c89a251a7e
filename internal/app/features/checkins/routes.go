// internal/app/features/checkins/routes.go
package checkins

import (
	"github.com/glrs/lighthouse/internal/app/system/auth"
	"github.com/glrs/lighthouse/internal/app/system/ratelimit"
	"github.com/glrs/lighthouse/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes serves a PIR's own check-ins. Mounted under /api/checkins.
// Submissions are throttled per user when rl is non-nil.
func Routes(h *Handler, sm *auth.SessionManager, rl *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RolePIR))
	r.Get("/", h.ServeList)
	if rl != nil {
		r.With(rl.Middleware(ratelimit.UserOrIP)).Post("/", h.HandleSubmit)
	} else {
		r.Post("/", h.HandleSubmit)
	}
	return r
}

// PIRRoutes serves one PIR's check-ins to staff. Mounted under
// /api/pirs/{id}/checkins.
func PIRRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServePIRList)
	return r
}
