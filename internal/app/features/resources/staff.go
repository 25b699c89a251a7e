// internal/app/features/resources/staff.go
package resources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/glrs/lighthouse/internal/app/features/shared"
	"github.com/glrs/lighthouse/internal/app/policy/pirpolicy"
	activitystore "github.com/glrs/lighthouse/internal/app/store/activity"
	resourceassignstore "github.com/glrs/lighthouse/internal/app/store/resourceassign"
	resourcestore "github.com/glrs/lighthouse/internal/app/store/resources"
	userstore "github.com/glrs/lighthouse/internal/app/store/users"
	"github.com/glrs/lighthouse/internal/app/system/htmlsanitize"
	"github.com/glrs/lighthouse/internal/app/system/jsonio"
	"github.com/glrs/lighthouse/internal/app/system/limits"
	"github.com/glrs/lighthouse/internal/app/system/timeouts"
	"github.com/glrs/lighthouse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type assignRequest struct {
	ResourceID string `json:"resource_id"`
	Note       string `json:"note"`
}

// loadPIR resolves {id} and checks the caller may act on that PIR. It
// writes the error response itself and returns nil when the request should
// stop.
func (h *Handler) loadPIR(ctx context.Context, w http.ResponseWriter, r *http.Request) *models.User {
	pirID, ok := jsonio.ObjectIDParam(r, "id")
	if !ok {
		jsonio.Error(w, http.StatusBadRequest, "invalid pir id")
		return nil
	}
	pir, allowed, err := pirpolicy.CheckPIRAccess(ctx, userstore.New(h.DB), r, pirID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load pir failed", err, "")
		return nil
	}
	if pir == nil {
		jsonio.Error(w, http.StatusNotFound, "pir not found")
		return nil
	}
	if !allowed {
		h.ErrLog.LogForbidden(w, r, "pir outside caller's caseload")
		return nil
	}
	return pir
}

// ServePIRList handles GET /api/pirs/{id}/resources. Staff also see guides
// that have since been disabled.
func (h *Handler) ServePIRList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	pir := h.loadPIR(ctx, w, r)
	if pir == nil {
		return
	}
	list, err := h.guidesFor(ctx, pir.ID, true)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list guides failed", err, "")
		return
	}
	jsonio.Write(w, http.StatusOK, guidesResponse{Guides: list})
}

// HandleAssign handles POST /api/pirs/{id}/resources. Only active guides
// can be assigned, and each at most once per PIR.
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	callerID, _, ok := pirpolicy.Self(r)
	if !ok {
		jsonio.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req assignRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode resource assignment failed", err, err.Error())
		return
	}
	resID, err := primitive.ObjectIDFromHex(req.ResourceID)
	if err != nil {
		jsonio.Error(w, http.StatusBadRequest, "invalid resource_id")
		return
	}
	note := htmlsanitize.Text(req.Note)
	if utf8.RuneCountInString(note) > limits.MaxDescriptionLength {
		jsonio.Error(w, http.StatusBadRequest, fmt.Sprintf("note must be at most %d characters", limits.MaxDescriptionLength))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	pir := h.loadPIR(ctx, w, r)
	if pir == nil {
		return
	}
	res, err := resourcestore.New(h.DB).GetByID(ctx, resID)
	if errors.Is(err, mongo.ErrNoDocuments) || (err == nil && res.Status != models.StatusActive) {
		jsonio.Error(w, http.StatusNotFound, "resource not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load resource failed", err, "")
		return
	}

	a, err := resourceassignstore.New(h.DB).Create(ctx, models.ResourceAssignment{
		UserID:       pir.ID,
		ResourceID:   res.ID,
		AssignedByID: callerID,
		Note:         note,
		CreatedAt:    h.Now().UTC(),
	})
	if errors.Is(err, resourceassignstore.ErrAlreadyAssigned) {
		jsonio.Error(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "assign resource failed", err, "")
		return
	}

	if err := activitystore.New(h.DB).Record(ctx, pir.ID, activitystore.EventResourceAssigned, shared.RequestID(r), &res.ID, map[string]any{
		"title": res.Title,
		"by":    callerID.Hex(),
	}); err != nil {
		h.Log.Warn("record activity failed", zap.String("event", activitystore.EventResourceAssigned), zap.Error(err))
	}

	h.Log.Info("resource assigned",
		zap.String("resource_id", res.ID.Hex()),
		zap.String("pir_id", pir.ID.Hex()),
		zap.String("by", callerID.Hex()))
	jsonio.Write(w, http.StatusCreated, guide{
		Resource:     res,
		Note:         a.Note,
		AssignedByID: a.AssignedByID,
		AssignedAt:   a.CreatedAt,
	})
}

// HandleUnassign handles DELETE /api/pirs/{id}/resources/{resourceID}.
func (h *Handler) HandleUnassign(w http.ResponseWriter, r *http.Request) {
	resID, ok := jsonio.ObjectIDParam(r, "resourceID")
	if !ok {
		jsonio.Error(w, http.StatusBadRequest, "invalid resource id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	pir := h.loadPIR(ctx, w, r)
	if pir == nil {
		return
	}
	err := resourceassignstore.New(h.DB).Delete(ctx, pir.ID, resID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonio.Error(w, http.StatusNotFound, "resource not assigned")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "unassign resource failed", err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
