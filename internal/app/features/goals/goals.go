// internal/app/features/goals/goals.go
package goals

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/glrs/lighthouse/internal/app/features/shared"
	"github.com/glrs/lighthouse/internal/app/policy/pirpolicy"
	activity "github.com/glrs/lighthouse/internal/app/store/activity"
	goalstore "github.com/glrs/lighthouse/internal/app/store/goals"
	userstore "github.com/glrs/lighthouse/internal/app/store/users"
	"github.com/glrs/lighthouse/internal/app/system/htmlsanitize"
	"github.com/glrs/lighthouse/internal/app/system/jsonio"
	"github.com/glrs/lighthouse/internal/app/system/limits"
	"github.com/glrs/lighthouse/internal/app/system/normalize"
	"github.com/glrs/lighthouse/internal/app/system/timeouts"
	"github.com/glrs/lighthouse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type listResponse struct {
	Goals []models.Goal `json:"goals"`
}

type createRequest struct {
	Title      string `json:"title"`
	TargetDate string `json:"target_date"`
	Progress   int    `json:"progress"`
}

// updateRequest changes progress, status, or both. Status is applied after
// progress so an explicit status wins.
type updateRequest struct {
	Progress *int    `json:"progress"`
	Status   *string `json:"status"`
}

// ServeList handles GET /api/goals?status=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	uid, _, ok := pirpolicy.Self(r)
	if !ok {
		jsonio.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	status := normalize.Status(r.URL.Query().Get("status"))
	if status != "" && !models.ValidGoalStatus(status) {
		jsonio.Error(w, http.StatusBadRequest, goalstore.ErrBadStatus.Error())
		return
	}
	h.serveFor(w, r, uid, status)
}

// ServePIRList handles GET /api/pirs/{id}/goals.
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
	h.serveFor(w, r, pir.ID, "")
}

func (h *Handler) serveFor(w http.ResponseWriter, r *http.Request, uid primitive.ObjectID, status string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := goalstore.New(h.DB).ListByUser(ctx, uid, status)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list goals failed", err, "")
		return
	}
	if list == nil {
		list = []models.Goal{}
	}
	jsonio.Write(w, http.StatusOK, listResponse{Goals: list})
}

// HandleCreate handles POST /api/goals.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	uid, _, ok := pirpolicy.Self(r)
	if !ok {
		jsonio.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode goal failed", err, err.Error())
		return
	}
	title := htmlsanitize.Text(req.Title)
	if utf8.RuneCountInString(title) > limits.MaxTitleLength {
		jsonio.Error(w, http.StatusBadRequest, fmt.Sprintf("title must be at most %d characters", limits.MaxTitleLength))
		return
	}
	target, err := jsonio.ParseDay(req.TargetDate)
	if err != nil {
		jsonio.Error(w, http.StatusBadRequest, "target_date: "+err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := goalstore.New(h.DB).Create(ctx, models.Goal{
		UserID:     uid,
		Title:      title,
		TargetDate: target,
		Progress:   req.Progress,
	})
	if errors.Is(err, goalstore.ErrTitleRequired) {
		jsonio.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create goal failed", err, "")
		return
	}
	jsonio.Write(w, http.StatusCreated, g)
}

// HandleUpdate handles PATCH /api/goals/{goalID}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	uid, _, ok := pirpolicy.Self(r)
	if !ok {
		jsonio.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := jsonio.ObjectIDParam(r, "goalID")
	if !ok {
		jsonio.Error(w, http.StatusBadRequest, "invalid goal id")
		return
	}

	var req updateRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode goal update failed", err, err.Error())
		return
	}
	if req.Progress == nil && req.Status == nil {
		jsonio.Error(w, http.StatusBadRequest, "progress or status is required")
		return
	}
	if req.Status != nil && !models.ValidGoalStatus(normalize.Status(*req.Status)) {
		jsonio.Error(w, http.StatusBadRequest, goalstore.ErrBadStatus.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	store := goalstore.New(h.DB)
	var (
		g   models.Goal
		err error
	)
	if req.Progress != nil {
		g, err = store.UpdateProgress(ctx, id, uid, *req.Progress)
	}
	if err == nil && req.Status != nil {
		g, err = store.SetStatus(ctx, id, uid, *req.Status)
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonio.Error(w, http.StatusNotFound, "goal not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "update goal failed", err, "")
		return
	}

	if err := activity.New(h.DB).Record(ctx, uid, activity.EventGoalUpdated, shared.RequestID(r), &g.ID, map[string]any{
		"progress": g.Progress,
		"status":   g.Status,
	}); err != nil {
		h.Log.Warn("record goal activity failed", zap.Error(err))
	}
	jsonio.Write(w, http.StatusOK, g)
}
