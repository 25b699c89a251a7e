// internal/app/features/checkins/list.go
package checkins

import (
	"context"
	"net/http"
	"time"

	"github.com/glrs/lighthouse/internal/app/policy/pirpolicy"
	checkinstore "github.com/glrs/lighthouse/internal/app/store/checkins"
	userstore "github.com/glrs/lighthouse/internal/app/store/users"
	"github.com/glrs/lighthouse/internal/app/system/jsonio"
	"github.com/glrs/lighthouse/internal/app/system/limits"
	"github.com/glrs/lighthouse/internal/app/system/normalize"
	"github.com/glrs/lighthouse/internal/app/system/streaks"
	"github.com/glrs/lighthouse/internal/app/system/timeouts"
	"github.com/glrs/lighthouse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const defaultListLimit = 100

type listResponse struct {
	CheckIns []models.CheckIn `json:"check_ins"`
}

// ServeList handles GET /api/checkins?from=&to=&limit= for the signed-in PIR.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	uid, _, ok := pirpolicy.Self(r)
	if !ok {
		jsonio.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	h.serveFor(w, r, uid)
}

// ServePIRList handles GET /api/pirs/{id}/checkins for staff.
func (h *Handler) ServePIRList(w http.ResponseWriter, r *http.Request) {
	pirID, ok := jsonio.ObjectIDParam(r, "id")
	if !ok {
		jsonio.Error(w, http.StatusBadRequest, "invalid pir id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	pir, allowed, err := pirpolicy.CheckPIRAccess(ctx, userstore.New(h.DB), r, pirID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load pir failed", err, "")
		return
	}
	if pir == nil {
		jsonio.Error(w, http.StatusNotFound, "pir not found")
		return
	}
	if !allowed {
		h.ErrLog.LogForbidden(w, r, "pir outside caller's caseload")
		return
	}
	h.serveFor(w, r, pir.ID)
}

func (h *Handler) serveFor(w http.ResponseWriter, r *http.Request, uid primitive.ObjectID) {
	q := r.URL.Query()
	from, okFrom := parseDay(q.Get("from"))
	to, okTo := parseDay(q.Get("to"))
	if !okFrom || !okTo {
		jsonio.Error(w, http.StatusBadRequest, "from and to must be YYYY-MM-DD")
		return
	}
	limit, err := jsonio.IntQuery(r, "limit", defaultListLimit, 1, limits.MaxListLimit)
	if err != nil {
		jsonio.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := checkinstore.New(h.DB).ListByUser(ctx, uid, from, to, int64(limit))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list check-ins failed", err, "")
		return
	}

	for i := range list {
		plain, err := h.Keys.Decrypt(uid.Hex(), list[i].Notes)
		if err != nil {
			h.Log.Warn("decrypt check-in notes failed",
				zap.String("check_in_id", list[i].ID.Hex()), zap.Error(err))
			plain = ""
		}
		list[i].Notes = plain
	}
	if list == nil {
		list = []models.CheckIn{}
	}
	jsonio.Write(w, http.StatusOK, listResponse{CheckIns: list})
}

// parseDay validates an optional YYYY-MM-DD query value.
func parseDay(raw string) (string, bool) {
	raw = normalize.QueryParam(raw)
	if raw == "" {
		return "", true
	}
	if _, err := time.Parse(streaks.DayLayout, raw); err != nil {
		return "", false
	}
	return raw, true
}
