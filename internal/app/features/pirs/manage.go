// internal/app/features/pirs/manage.go
package pirs

import (
	"context"
	"errors"
	"net/http"

	"github.com/glrs/lighthouse/internal/app/features/shared"
	"github.com/glrs/lighthouse/internal/app/policy/pirpolicy"
	activitystore "github.com/glrs/lighthouse/internal/app/store/activity"
	userstore "github.com/glrs/lighthouse/internal/app/store/users"
	"github.com/glrs/lighthouse/internal/app/system/jsonio"
	"github.com/glrs/lighthouse/internal/app/system/normalize"
	"github.com/glrs/lighthouse/internal/app/system/timeouts"
	"github.com/glrs/lighthouse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type assignCoachRequest struct {
	CoachID string `json:"coach_id"`
}

type setStatusRequest struct {
	Status string `json:"status"`
}

// HandleAssignCoach handles PUT /api/pirs/{id}/coach. Admin only.
func (h *Handler) HandleAssignCoach(w http.ResponseWriter, r *http.Request) {
	pirID, ok := jsonio.ObjectIDParam(r, "id")
	if !ok {
		jsonio.Error(w, http.StatusBadRequest, "invalid pir id")
		return
	}
	var req assignCoachRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode coach assignment failed", err, err.Error())
		return
	}
	coachID, err := primitive.ObjectIDFromHex(req.CoachID)
	if err != nil {
		jsonio.Error(w, http.StatusBadRequest, "invalid coach_id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	users := userstore.New(h.DB)
	coach, err := users.GetByID(ctx, coachID)
	if errors.Is(err, mongo.ErrNoDocuments) || (err == nil && coach.Role != models.RoleCoach) {
		jsonio.Error(w, http.StatusBadRequest, "coach_id does not name a coach")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load coach failed", err, "")
		return
	}

	if err := users.AssignCoach(ctx, pirID, coachID); err != nil {
		if errors.Is(err, userstore.ErrNotPIR) {
			jsonio.Error(w, http.StatusNotFound, "pir not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "assign coach failed", err, "")
		return
	}

	h.record(ctx, r, pirID, activitystore.EventCoachAssigned, map[string]any{"coach_id": coachID.Hex()})
	h.Log.Info("coach assigned", zap.String("pir_id", pirID.Hex()), zap.String("coach_id", coachID.Hex()))
	h.writeSummary(ctx, w, r, users, pirID)
}

// HandleSetStatus handles PUT /api/pirs/{id}/status. Admin only. Disabled
// PIRs keep their records but can no longer sign in.
func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	pirID, ok := jsonio.ObjectIDParam(r, "id")
	if !ok {
		jsonio.Error(w, http.StatusBadRequest, "invalid pir id")
		return
	}
	var req setStatusRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode status failed", err, err.Error())
		return
	}
	status := normalize.Status(req.Status)
	if status != models.StatusActive && status != models.StatusDisabled {
		jsonio.Error(w, http.StatusBadRequest, `status must be "active" or "disabled"`)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	users := userstore.New(h.DB)
	if _, err := users.GetPIR(ctx, pirID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			jsonio.Error(w, http.StatusNotFound, "pir not found")
			return
		}
		h.ErrLog.LogServerError(w, r, "load pir failed", err, "")
		return
	}
	if err := users.SetStatus(ctx, pirID, status); err != nil {
		h.ErrLog.LogServerError(w, r, "set status failed", err, "")
		return
	}

	h.record(ctx, r, pirID, activitystore.EventStatusChanged, map[string]any{"status": status})
	h.Log.Info("pir status changed", zap.String("pir_id", pirID.Hex()), zap.String("status", status))
	h.writeSummary(ctx, w, r, users, pirID)
}

func (h *Handler) writeSummary(ctx context.Context, w http.ResponseWriter, r *http.Request, users *userstore.Store, pirID primitive.ObjectID) {
	pir, err := users.GetPIR(ctx, pirID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "reload pir failed", err, "")
		return
	}
	jsonio.Write(w, http.StatusOK, summarize(*pir))
}

func (h *Handler) record(ctx context.Context, r *http.Request, pirID primitive.ObjectID, event string, details map[string]any) {
	actor, _, _ := pirpolicy.Self(r)
	details["actor_id"] = actor.Hex()
	err := activitystore.New(h.DB).Record(ctx, pirID, event, shared.RequestID(r), &actor, details)
	if err != nil {
		h.Log.Warn("record activity failed", zap.String("event", event), zap.Error(err))
	}
}
