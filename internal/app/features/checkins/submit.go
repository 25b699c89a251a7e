// internal/app/features/checkins/submit.go
package checkins

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/glrs/lighthouse/internal/app/features/shared"
	"github.com/glrs/lighthouse/internal/app/policy/pirpolicy"
	activity "github.com/glrs/lighthouse/internal/app/store/activity"
	alertstore "github.com/glrs/lighthouse/internal/app/store/alerts"
	checkinstore "github.com/glrs/lighthouse/internal/app/store/checkins"
	userstore "github.com/glrs/lighthouse/internal/app/store/users"
	"github.com/glrs/lighthouse/internal/app/system/htmlsanitize"
	"github.com/glrs/lighthouse/internal/app/system/jsonio"
	"github.com/glrs/lighthouse/internal/app/system/limits"
	"github.com/glrs/lighthouse/internal/app/system/normalize"
	"github.com/glrs/lighthouse/internal/app/system/streaks"
	"github.com/glrs/lighthouse/internal/app/system/timeouts"
	"github.com/glrs/lighthouse/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type submitRequest struct {
	Period   string `json:"period"`
	Mood     *int   `json:"mood"`
	Cravings *int   `json:"cravings"`
	Anxiety  *int   `json:"anxiety"`
	Sleep    *int   `json:"sleep"`
	Notes    string `json:"notes"`
}

type submitResponse struct {
	CheckIn models.CheckIn      `json:"check_in"`
	Alert   *models.CrisisAlert `json:"alert,omitempty"`
}

// HandleSubmit handles POST /api/checkins.
//
// mood and cravings are required; anxiety and sleep default to 0. Ratings
// are clamped to 0–10. An empty period is taken from the PIR's local clock
// (before noon is morning). A second check-in for the same day and period
// is a 409.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	uid, _, ok := pirpolicy.Self(r)
	if !ok {
		jsonio.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req submitRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode check-in failed", err, err.Error())
		return
	}
	if req.Mood == nil || req.Cravings == nil {
		jsonio.Error(w, http.StatusBadRequest, "mood and cravings are required")
		return
	}
	notes := htmlsanitize.Text(req.Notes)
	if utf8.RuneCountInString(notes) > limits.MaxNotesLength {
		jsonio.Error(w, http.StatusBadRequest, fmt.Sprintf("notes must be at most %d characters", limits.MaxNotesLength))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := userstore.New(h.DB).GetByID(ctx, uid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonio.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load user failed", err, "")
		return
	}

	now := h.Now().UTC()
	loc := user.Location(h.DefaultLoc)

	period := normalize.Period(req.Period)
	if period == "" {
		period = models.PeriodMorning
		if now.In(loc).Hour() >= 12 {
			period = models.PeriodEvening
		}
	}
	if !models.ValidPeriod(period) {
		jsonio.Error(w, http.StatusBadRequest, `period must be "morning" or "evening"`)
		return
	}

	sealed, err := h.Keys.Encrypt(uid.Hex(), notes)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "encrypt notes failed", err, "")
		return
	}

	ci, err := checkinstore.New(h.DB).Create(ctx, models.CheckIn{
		UserID:    uid,
		LocalDate: streaks.FormatDay(now, loc),
		Period:    period,
		Mood:      normalize.Rating(*req.Mood, models.MaxRating),
		Cravings:  normalize.Rating(*req.Cravings, models.MaxRating),
		Anxiety:   normalize.Rating(deref(req.Anxiety), models.MaxRating),
		Sleep:     normalize.Rating(deref(req.Sleep), models.MaxRating),
		Notes:     sealed,
		CreatedAt: now,
	})
	if errors.Is(err, checkinstore.ErrDuplicate) {
		jsonio.Error(w, http.StatusConflict, fmt.Sprintf("a %s check-in was already submitted today", period))
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "insert check-in failed", err, "")
		return
	}

	reqID := shared.RequestID(r)
	events := activity.New(h.DB)
	if err := events.Record(ctx, uid, activity.EventCheckInSubmitted, reqID, &ci.ID, map[string]any{
		"local_date": ci.LocalDate,
		"period":     ci.Period,
	}); err != nil {
		h.Log.Warn("record check-in activity failed", zap.Error(err), zap.String("user_id", uid.Hex()))
	}

	resp := submitResponse{CheckIn: ci}
	resp.CheckIn.Notes = notes

	if alert := h.raiseCrisis(ctx, user, ci, reqID); alert != nil {
		resp.Alert = alert
	}

	jsonio.Write(w, http.StatusCreated, resp)
}

// raiseCrisis opens an alert when the check-in crosses a threshold. Alert
// failures are logged; the check-in itself is already stored.
func (h *Handler) raiseCrisis(ctx context.Context, user *models.User, ci models.CheckIn, reqID string) *models.CrisisAlert {
	hit, both := h.Crisis.Triggered(ci.Mood, ci.Cravings)
	if !hit {
		return nil
	}

	severity := models.SeverityHigh
	if both {
		severity = models.SeverityCritical
	}

	alert, err := alertstore.New(h.DB).Create(ctx, models.CrisisAlert{
		UserID:    user.ID,
		CoachID:   user.CoachID,
		Source:    models.AlertSourceCheckIn,
		Severity:  severity,
		CheckInID: &ci.ID,
		Message:   crisisMessage(ci),
	})
	if err != nil {
		h.Log.Error("create crisis alert failed", zap.Error(err),
			zap.String("user_id", user.ID.Hex()), zap.String("check_in_id", ci.ID.Hex()))
		return nil
	}

	h.Log.Info("crisis alert raised",
		zap.String("alert_id", alert.ID.Hex()),
		zap.String("user_id", user.ID.Hex()),
		zap.String("severity", severity))

	if err := activity.New(h.DB).Record(ctx, user.ID, activity.EventAlertRaised, reqID, &alert.ID, map[string]any{
		"source":   alert.Source,
		"severity": alert.Severity,
	}); err != nil {
		h.Log.Warn("record alert activity failed", zap.Error(err))
	}
	return &alert
}

func crisisMessage(ci models.CheckIn) string {
	return fmt.Sprintf("%s check-in on %s: mood %d/%d, cravings %d/%d",
		ci.Period, ci.LocalDate, ci.Mood, models.MaxRating, ci.Cravings, models.MaxRating)
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
