// internal/app/features/alerts/alerts.go
package alerts

import (
	"context"
	"errors"
	"net/http"

	"github.com/glrs/lighthouse/internal/app/features/shared"
	"github.com/glrs/lighthouse/internal/app/policy/pirpolicy"
	activity "github.com/glrs/lighthouse/internal/app/store/activity"
	alertstore "github.com/glrs/lighthouse/internal/app/store/alerts"
	"github.com/glrs/lighthouse/internal/app/system/jsonio"
	"github.com/glrs/lighthouse/internal/app/system/limits"
	"github.com/glrs/lighthouse/internal/app/system/normalize"
	"github.com/glrs/lighthouse/internal/app/system/timeouts"
	"github.com/glrs/lighthouse/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const defaultListLimit = 100

type listResponse struct {
	Alerts []models.CrisisAlert `json:"alerts"`
}

// ServeList handles GET /api/alerts?status=&limit=.
//
// Coaches see alerts for their caseload; admins see every alert. status
// defaults to open; "all" lists every status.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	scope := pirpolicy.CanListPIRs(r)
	if !scope.CanList {
		h.ErrLog.LogForbidden(w, r, "alert list denied")
		return
	}

	status := normalize.Status(r.URL.Query().Get("status"))
	switch status {
	case "":
		status = models.AlertOpen
	case "all":
		status = ""
	case models.AlertOpen, models.AlertAcknowledged, models.AlertResolved:
	default:
		jsonio.Error(w, http.StatusBadRequest, `status must be "open", "acknowledged", "resolved" or "all"`)
		return
	}
	limit, err := jsonio.IntQuery(r, "limit", defaultListLimit, 1, limits.MaxListLimit)
	if err != nil {
		jsonio.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := alertstore.New(h.DB).List(ctx, scope.CoachID, status, int64(limit))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list alerts failed", err, "")
		return
	}
	if list == nil {
		list = []models.CrisisAlert{}
	}
	jsonio.Write(w, http.StatusOK, listResponse{Alerts: list})
}

// HandleAcknowledge handles POST /api/alerts/{alertID}/acknowledge.
func (h *Handler) HandleAcknowledge(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.AlertAcknowledged)
}

// HandleResolve handles POST /api/alerts/{alertID}/resolve.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.AlertResolved)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, to string) {
	actor, _, ok := pirpolicy.Self(r)
	if !ok {
		jsonio.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	scope := pirpolicy.CanListPIRs(r)
	if !scope.CanList {
		h.ErrLog.LogForbidden(w, r, "alert transition denied")
		return
	}
	id, ok := jsonio.ObjectIDParam(r, "alertID")
	if !ok {
		jsonio.Error(w, http.StatusBadRequest, "invalid alert id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := alertstore.New(h.DB).Transition(ctx, id, to, actor, scope.CoachID)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		jsonio.Error(w, http.StatusNotFound, "alert not found")
		return
	case errors.Is(err, alertstore.ErrBadTransition):
		jsonio.Error(w, http.StatusConflict, "alert cannot move to "+to)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "alert transition failed", err, "")
		return
	}

	h.Log.Info("alert transitioned",
		zap.String("alert_id", a.ID.Hex()),
		zap.String("status", a.Status),
		zap.String("by", actor.Hex()))

	if err := activity.New(h.DB).Record(ctx, a.UserID, activity.EventAlertTransitioned, shared.RequestID(r), &a.ID, map[string]any{
		"status": a.Status,
		"by":     actor.Hex(),
	}); err != nil {
		h.Log.Warn("record alert activity failed", zap.Error(err))
	}
	jsonio.Write(w, http.StatusOK, a)
}
