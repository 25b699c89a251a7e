// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/glrs/lighthouse/internal/app/features/shared"
	"github.com/glrs/lighthouse/internal/app/policy/pirpolicy"
	activitystore "github.com/glrs/lighthouse/internal/app/store/activity"
	metricsstore "github.com/glrs/lighthouse/internal/app/store/metrics"
	userstore "github.com/glrs/lighthouse/internal/app/store/users"
	"github.com/glrs/lighthouse/internal/app/system/htmlsanitize"
	"github.com/glrs/lighthouse/internal/app/system/jsonio"
	"github.com/glrs/lighthouse/internal/app/system/streaks"
	"github.com/glrs/lighthouse/internal/app/system/timeouts"
	"github.com/glrs/lighthouse/internal/app/system/timezones"
	"github.com/glrs/lighthouse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	maxNameLength  = 120
	maxPhoneLength = 32
)

// profileData is the response body for GET and PATCH /api/me.
type profileData struct {
	ID           string  `json:"id"`
	FullName     string  `json:"full_name"`
	Email        string  `json:"email"`
	Role         string  `json:"role"`
	CoachID      *string `json:"coach_id,omitempty"`
	TimeZone     string  `json:"time_zone"`
	TimeZoneName string  `json:"time_zone_label"`
	SobrietyDate *string `json:"sobriety_date,omitempty"`
	DaysSober    *int    `json:"days_sober,omitempty"`
	Phone        string  `json:"phone,omitempty"`
}

// updateRequest carries the self-editable fields. Absent fields are left
// alone; an empty string clears time_zone, sobriety_date or phone.
type updateRequest struct {
	FullName     *string `json:"full_name"`
	TimeZone     *string `json:"time_zone"`
	SobrietyDate *string `json:"sobriety_date"`
	Phone        *string `json:"phone"`
}

// ServeProfile handles GET /api/me.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	uid, _, ok := pirpolicy.Self(r)
	if !ok {
		jsonio.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	h.writeProfile(ctx, w, r, uid, http.StatusOK)
}

// HandleUpdate handles PATCH /api/me.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	uid, _, ok := pirpolicy.Self(r)
	if !ok {
		jsonio.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req updateRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode profile failed", err, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	users := userstore.New(h.DB)
	cur, err := users.GetByID(ctx, uid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonio.Error(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load user failed", err, "")
		return
	}
	loc := cur.Location(h.DefaultLoc)

	var upd userstore.ProfileUpdate
	var changed []string
	if req.FullName != nil {
		name := htmlsanitize.Text(*req.FullName)
		if name == "" {
			jsonio.Error(w, http.StatusBadRequest, "full_name must not be empty")
			return
		}
		if utf8.RuneCountInString(name) > maxNameLength {
			jsonio.Error(w, http.StatusBadRequest, fmt.Sprintf("full_name must be at most %d characters", maxNameLength))
			return
		}
		upd.FullName = &name
		changed = append(changed, "full_name")
	}
	if req.TimeZone != nil {
		tz := strings.TrimSpace(*req.TimeZone)
		upd.TimeZone = &tz
		if l, err := time.LoadLocation(tz); err == nil && tz != "" {
			loc = l
		}
		changed = append(changed, "time_zone")
	}
	if req.SobrietyDate != nil {
		d, err := jsonio.ParseDay(*req.SobrietyDate)
		if err != nil {
			jsonio.Error(w, http.StatusBadRequest, "sobriety_date: "+err.Error())
			return
		}
		// Compared against the user's own calendar day, not UTC.
		if d != nil && d.After(streaks.Day(h.Now(), loc)) {
			jsonio.Error(w, http.StatusBadRequest, "sobriety_date must not be in the future")
			return
		}
		upd.SobrietyDate = d
		upd.ClearSobrietyDate = d == nil
		changed = append(changed, "sobriety_date")
	}
	if req.Phone != nil {
		phone := htmlsanitize.Text(*req.Phone)
		if utf8.RuneCountInString(phone) > maxPhoneLength {
			jsonio.Error(w, http.StatusBadRequest, fmt.Sprintf("phone must be at most %d characters", maxPhoneLength))
			return
		}
		if phone != "" {
			enc, err := h.Keys.Encrypt(uid.Hex(), phone)
			if err != nil {
				h.ErrLog.LogServerError(w, r, "encrypt phone failed", err, "")
				return
			}
			phone = enc
		}
		upd.Phone = &phone
		changed = append(changed, "phone")
	}
	if len(changed) == 0 {
		jsonio.Error(w, http.StatusBadRequest, "no profile fields given")
		return
	}

	err = users.UpdateProfile(ctx, uid, upd)
	switch {
	case errors.Is(err, userstore.ErrBadTimeZone):
		jsonio.Error(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, mongo.ErrNoDocuments):
		jsonio.Error(w, http.StatusNotFound, "user not found")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "update profile failed", err, "")
		return
	}

	// Field names only; values may be sensitive.
	details := map[string]any{"fields": changed}
	if err := activitystore.New(h.DB).Record(ctx, uid, activitystore.EventProfileUpdated, shared.RequestID(r), nil, details); err != nil {
		h.Log.Warn("record activity failed", zap.String("event", activitystore.EventProfileUpdated), zap.Error(err))
	}
	h.writeProfile(ctx, w, r, uid, http.StatusOK)
}

func (h *Handler) writeProfile(ctx context.Context, w http.ResponseWriter, r *http.Request, uid primitive.ObjectID, status int) {
	u, err := userstore.New(h.DB).GetByID(ctx, uid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonio.Error(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load user failed", err, "")
		return
	}
	jsonio.Write(w, status, h.toProfile(*u))
}

func (h *Handler) toProfile(u models.User) profileData {
	p := profileData{
		ID:       u.ID.Hex(),
		FullName: u.FullName,
		Email:    u.Email,
		Role:     u.Role,
		TimeZone: u.Location(h.DefaultLoc).String(),
	}
	p.TimeZoneName = timezones.Label(p.TimeZone)
	if u.CoachID != nil {
		id := u.CoachID.Hex()
		p.CoachID = &id
	}
	if u.SobrietyDate != nil {
		d := u.SobrietyDate.UTC().Format("2006-01-02")
		p.SobrietyDate = &d
		days := metricsstore.DaysSober(*u.SobrietyDate, h.Now(), u.Location(h.DefaultLoc))
		p.DaysSober = &days
	}
	if u.Phone != "" {
		phone, err := h.Keys.Decrypt(u.ID.Hex(), u.Phone)
		if err != nil {
			h.Log.Warn("decrypt phone failed", zap.String("user_id", u.ID.Hex()), zap.Error(err))
		} else {
			p.Phone = phone
		}
	}
	return p
}
