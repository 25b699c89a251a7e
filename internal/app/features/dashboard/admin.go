// internal/app/features/dashboard/admin.go
package dashboard

import (
	"context"
	"net/http"

	metricsstore "github.com/glrs/lighthouse/internal/app/store/metrics"
	userstore "github.com/glrs/lighthouse/internal/app/store/users"
	"github.com/glrs/lighthouse/internal/app/system/auth"
	"github.com/glrs/lighthouse/internal/app/system/jsonio"
	"github.com/glrs/lighthouse/internal/app/system/timeouts"
	"github.com/glrs/lighthouse/internal/domain/models"
	"go.uber.org/zap"
)

// ServeAdmin shows totals and rows across every active PIR.
func (h *Handler) ServeAdmin(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	now := h.Now().UTC()
	counts := metricsstore.FetchDashboardCounts(ctx, h.DB, nil, now, h.DefaultLoc)

	pirs, err := userstore.New(h.DB).ListPIRs(ctx, nil, true)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list pirs failed", err, "")
		return
	}
	rows, err := h.buildRows(ctx, pirs, now)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "compute dashboard rows failed", err, "")
		return
	}

	h.Log.Debug("admin dashboard served", zap.String("user", u.Name), zap.Int("pirs", len(rows)))

	jsonio.Write(w, http.StatusOK, dashboardData{
		Role:        models.RoleAdmin,
		GeneratedAt: now,
		Counts:      counts,
		PIRs:        rows,
	})
}
