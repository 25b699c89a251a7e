// internal/app/features/pirs/detail.go
package pirs

import (
	"context"
	"errors"
	"net/http"

	"github.com/glrs/lighthouse/internal/app/policy/pirpolicy"
	alertstore "github.com/glrs/lighthouse/internal/app/store/alerts"
	metricsstore "github.com/glrs/lighthouse/internal/app/store/metrics"
	userstore "github.com/glrs/lighthouse/internal/app/store/users"
	"github.com/glrs/lighthouse/internal/app/system/jsonio"
	"github.com/glrs/lighthouse/internal/app/system/timeouts"
	"github.com/glrs/lighthouse/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type coachRef struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type detailResponse struct {
	PIR        pirSummary            `json:"pir"`
	Phone      string                `json:"phone,omitempty"`
	Coach      *coachRef             `json:"coach,omitempty"`
	Stats      metricsstore.PIRStats `json:"stats"`
	OpenAlerts []models.CrisisAlert  `json:"open_alerts"`
}

// ServeDetail handles GET /api/pirs/{id}.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	pir, ok := h.loadPIR(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "pir detail")
	defer cancel()

	resp := detailResponse{PIR: summarize(*pir), OpenAlerts: []models.CrisisAlert{}}

	if pir.Phone != "" {
		phone, err := h.Keys.Decrypt(pir.ID.Hex(), pir.Phone)
		if err != nil {
			h.Log.Warn("decrypt phone failed", zap.String("pir_id", pir.ID.Hex()), zap.Error(err))
		} else {
			resp.Phone = phone
		}
	}

	if pir.CoachID != nil {
		coach, err := userstore.New(h.DB).GetByID(ctx, *pir.CoachID)
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
		case err != nil:
			h.ErrLog.LogServerError(w, r, "load coach failed", err, "")
			return
		default:
			resp.Coach = &coachRef{ID: coach.ID.Hex(), FullName: coach.FullName, Email: coach.Email}
		}
	}

	st, err := metricsstore.FetchPIRStats(ctx, h.DB, *pir, h.Now().UTC(), h.DefaultLoc)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "compute stats failed", err, "")
		return
	}
	resp.Stats = st

	alerts, err := alertstore.New(h.DB).ListForUser(ctx, pir.ID, true)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list alerts failed", err, "")
		return
	}
	if alerts != nil {
		resp.OpenAlerts = alerts
	}

	jsonio.Write(w, http.StatusOK, resp)
}

// loadPIR resolves {id} and enforces caseload access, writing the error
// response itself when ok is false.
func (h *Handler) loadPIR(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	pirID, ok := jsonio.ObjectIDParam(r, "id")
	if !ok {
		jsonio.Error(w, http.StatusBadRequest, "invalid pir id")
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	pir, allowed, err := pirpolicy.CheckPIRAccess(ctx, userstore.New(h.DB), r, pirID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load pir failed", err, "")
		return nil, false
	}
	if pir == nil {
		jsonio.Error(w, http.StatusNotFound, "pir not found")
		return nil, false
	}
	if !allowed {
		h.ErrLog.LogForbidden(w, r, "pir outside caller's caseload")
		return nil, false
	}
	return pir, true
}
