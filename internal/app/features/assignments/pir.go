// internal/app/features/assignments/pir.go
package assignments

import (
	"context"
	"errors"
	"net/http"

	"github.com/glrs/lighthouse/internal/app/features/shared"
	"github.com/glrs/lighthouse/internal/app/policy/pirpolicy"
	activity "github.com/glrs/lighthouse/internal/app/store/activity"
	assignmentstore "github.com/glrs/lighthouse/internal/app/store/assignments"
	"github.com/glrs/lighthouse/internal/app/system/jsonio"
	"github.com/glrs/lighthouse/internal/app/system/normalize"
	"github.com/glrs/lighthouse/internal/app/system/timeouts"
	"github.com/glrs/lighthouse/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type listResponse struct {
	Assignments []models.Assignment `json:"assignments"`
}

// ServeMine handles GET /api/assignments?status= for the signed-in PIR.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	uid, _, ok := pirpolicy.Self(r)
	if !ok {
		jsonio.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	status := normalize.Status(r.URL.Query().Get("status"))
	if status != "" && status != models.AssignmentPending && status != models.AssignmentCompleted {
		jsonio.Error(w, http.StatusBadRequest, `status must be "pending" or "completed"`)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := assignmentstore.New(h.DB).ListByUser(ctx, uid, status)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list assignments failed", err, "")
		return
	}
	if list == nil {
		list = []models.Assignment{}
	}
	jsonio.Write(w, http.StatusOK, listResponse{Assignments: list})
}

// HandleComplete handles POST /api/assignments/{assignmentID}/complete.
// Only the assigned PIR may complete an assignment, and only once.
func (h *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	uid, _, ok := pirpolicy.Self(r)
	if !ok {
		jsonio.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := jsonio.ObjectIDParam(r, "assignmentID")
	if !ok {
		jsonio.Error(w, http.StatusBadRequest, "invalid assignment id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := assignmentstore.New(h.DB).Complete(ctx, id, uid, h.Now().UTC())
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		jsonio.Error(w, http.StatusNotFound, "assignment not found")
		return
	case errors.Is(err, assignmentstore.ErrAlreadyCompleted):
		jsonio.Error(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "complete assignment failed", err, "")
		return
	}

	if err := activity.New(h.DB).Record(ctx, uid, activity.EventAssignmentCompleted, shared.RequestID(r), &a.ID, map[string]any{
		"title": a.Title,
	}); err != nil {
		h.Log.Warn("record assignment activity failed", zap.Error(err))
	}
	jsonio.Write(w, http.StatusOK, a)
}
