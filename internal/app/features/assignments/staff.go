// internal/app/features/assignments/staff.go
package assignments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/glrs/lighthouse/internal/app/policy/pirpolicy"
	assignmentstore "github.com/glrs/lighthouse/internal/app/store/assignments"
	userstore "github.com/glrs/lighthouse/internal/app/store/users"
	"github.com/glrs/lighthouse/internal/app/system/htmlsanitize"
	"github.com/glrs/lighthouse/internal/app/system/jsonio"
	"github.com/glrs/lighthouse/internal/app/system/limits"
	"github.com/glrs/lighthouse/internal/app/system/timeouts"
	"github.com/glrs/lighthouse/internal/domain/models"
	"go.uber.org/zap"
)

type createRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
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

// ServePIRList handles GET /api/pirs/{id}/assignments.
func (h *Handler) ServePIRList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	pir := h.loadPIR(ctx, w, r)
	if pir == nil {
		return
	}
	list, err := assignmentstore.New(h.DB).ListByUser(ctx, pir.ID, "")
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list assignments failed", err, "")
		return
	}
	if list == nil {
		list = []models.Assignment{}
	}
	jsonio.Write(w, http.StatusOK, listResponse{Assignments: list})
}

// HandleCreate handles POST /api/pirs/{id}/assignments.
//
// The assignment is owned by the PIR's coach. When an admin assigns work to
// a PIR without a coach, the admin becomes the owner.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	callerID, caller, ok := pirpolicy.Self(r)
	if !ok {
		jsonio.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode assignment failed", err, err.Error())
		return
	}
	title := htmlsanitize.Text(req.Title)
	desc := htmlsanitize.Rich(req.Description)
	if utf8.RuneCountInString(title) > limits.MaxTitleLength {
		jsonio.Error(w, http.StatusBadRequest, fmt.Sprintf("title must be at most %d characters", limits.MaxTitleLength))
		return
	}
	if utf8.RuneCountInString(desc) > limits.MaxDescriptionLength {
		jsonio.Error(w, http.StatusBadRequest, fmt.Sprintf("description must be at most %d characters", limits.MaxDescriptionLength))
		return
	}
	due, err := jsonio.ParseDate(req.DueDate)
	if err != nil {
		jsonio.Error(w, http.StatusBadRequest, "due_date: "+err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	pir := h.loadPIR(ctx, w, r)
	if pir == nil {
		return
	}

	owner := callerID
	if caller.Role == models.RoleAdmin && pir.CoachID != nil {
		owner = *pir.CoachID
	}

	a, err := assignmentstore.New(h.DB).Create(ctx, models.Assignment{
		UserID:      pir.ID,
		CoachID:     owner,
		Title:       title,
		Description: desc,
		DueDate:     due,
	})
	if errors.Is(err, assignmentstore.ErrTitleRequired) {
		jsonio.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create assignment failed", err, "")
		return
	}

	h.Log.Info("assignment created",
		zap.String("assignment_id", a.ID.Hex()),
		zap.String("pir_id", pir.ID.Hex()),
		zap.String("by", callerID.Hex()))
	jsonio.Write(w, http.StatusCreated, a)
}
