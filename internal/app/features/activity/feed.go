// internal/app/features/activity/feed.go
package activity

import (
	"context"
	"net/http"
	"time"

	"github.com/glrs/lighthouse/internal/app/policy/pirpolicy"
	activitystore "github.com/glrs/lighthouse/internal/app/store/activity"
	userstore "github.com/glrs/lighthouse/internal/app/store/users"
	"github.com/glrs/lighthouse/internal/app/system/jsonio"
	"github.com/glrs/lighthouse/internal/app/system/limits"
	"github.com/glrs/lighthouse/internal/app/system/timeouts"
	"github.com/glrs/lighthouse/internal/domain/models"
)

const (
	defaultFeedLimit = 50
	defaultRangeDays = 30
)

type feedResponse struct {
	Events []activitystore.Event `json:"events"`
	// Counts tallies Events by event_type.
	Counts map[string]int `json:"counts"`
}

// ServeFeed handles GET /api/pirs/{id}/activity?start=&end=&limit=.
//
// Without a range the most recent events are returned newest first. With
// start or end the events in [start, end] are returned oldest first; a
// missing bound defaults to the last 30 days ending now.
func (h *Handler) ServeFeed(w http.ResponseWriter, r *http.Request) {
	pir, ok := h.loadPIR(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "activity feed")
	defer cancel()

	var (
		events []activitystore.Event
		err    error
	)
	q := r.URL.Query()
	if q.Get("start") != "" || q.Get("end") != "" {
		start, end, perr := h.parseRange(r)
		if perr != nil {
			jsonio.Error(w, http.StatusBadRequest, perr.Error())
			return
		}
		events, err = h.Activity.GetByUserInTimeRange(ctx, pir.ID, start, end)
	} else {
		limit, lerr := jsonio.IntQuery(r, "limit", defaultFeedLimit, 1, limits.MaxListLimit)
		if lerr != nil {
			jsonio.Error(w, http.StatusBadRequest, lerr.Error())
			return
		}
		events, err = h.Activity.GetByUser(ctx, pir.ID, int64(limit))
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load activity failed", err, "")
		return
	}
	if events == nil {
		events = []activitystore.Event{}
	}

	counts := make(map[string]int)
	for _, e := range events {
		counts[e.EventType]++
	}
	jsonio.Write(w, http.StatusOK, feedResponse{Events: events, Counts: counts})
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

// parseRange reads ?start= and ?end=. A date-only end covers that whole day.
func (h *Handler) parseRange(r *http.Request) (time.Time, time.Time, error) {
	end := h.Now().UTC()
	start := end.AddDate(0, 0, -defaultRangeDays)

	q := r.URL.Query()
	if raw := q.Get("start"); raw != "" {
		t, err := jsonio.ParseDate(raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = *t
	}
	if raw := q.Get("end"); raw != "" {
		t, err := jsonio.ParseDate(raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = *t
		if len(raw) == len("2006-01-02") {
			end = end.Add(24*time.Hour - time.Nanosecond)
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errRangeOrder
	}
	return start, end, nil
}
