// internal/app/features/dashboard/coach.go
package dashboard

import (
	"context"
	"net/http"

	"github.com/glrs/lighthouse/internal/app/policy/pirpolicy"
	metricsstore "github.com/glrs/lighthouse/internal/app/store/metrics"
	userstore "github.com/glrs/lighthouse/internal/app/store/users"
	"github.com/glrs/lighthouse/internal/app/system/jsonio"
	"github.com/glrs/lighthouse/internal/app/system/timeouts"
	"github.com/glrs/lighthouse/internal/domain/models"
	"go.uber.org/zap"
)

// ServeCoach shows totals and rows for the coach's own caseload.
func (h *Handler) ServeCoach(w http.ResponseWriter, r *http.Request) {
	coachID, u, ok := pirpolicy.Self(r)
	if !ok {
		jsonio.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	now := h.Now().UTC()
	counts := metricsstore.FetchDashboardCounts(ctx, h.DB, &coachID, now, h.DefaultLoc)

	pirs, err := userstore.New(h.DB).ListPIRs(ctx, &coachID, true)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list caseload failed", err, "")
		return
	}
	rows, err := h.buildRows(ctx, pirs, now)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "compute dashboard rows failed", err, "")
		return
	}

	h.Log.Debug("coach dashboard served", zap.String("user", u.Name), zap.Int("pirs", len(rows)))

	jsonio.Write(w, http.StatusOK, dashboardData{
		Role:        models.RoleCoach,
		GeneratedAt: now,
		Counts:      counts,
		PIRs:        rows,
	})
}
