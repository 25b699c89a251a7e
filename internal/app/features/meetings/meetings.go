// internal/app/features/meetings/meetings.go
package meetings

import (
	"context"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	meetingstore "github.com/glrs/lighthouse/internal/app/store/meetings"
	"github.com/glrs/lighthouse/internal/app/system/htmlsanitize"
	"github.com/glrs/lighthouse/internal/app/system/jsonio"
	"github.com/glrs/lighthouse/internal/app/system/timeouts"
	"github.com/glrs/lighthouse/internal/domain/models"
	"go.uber.org/zap"
)

const earthRadiusKm = 6371.0

type meetingRow struct {
	models.Meeting
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

type listResponse struct {
	Meetings []meetingRow `json:"meetings"`
}

// ServeList handles GET /api/meetings?day=&kind=&lat=&lng=.
//
// day is 0 (Sunday) through 6. With lat and lng, geocoded meetings are
// ordered nearest first and carry distance_km; meetings without a location
// follow in their usual order.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var f meetingstore.Filter
	if raw := strings.TrimSpace(q.Get("day")); raw != "" {
		day, err := strconv.Atoi(raw)
		if err != nil || day < 0 || day > 6 {
			jsonio.Error(w, http.StatusBadRequest, "day must be 0 (Sunday) through 6")
			return
		}
		f.DayOfWeek = &day
	}
	if raw := q.Get("kind"); raw != "" {
		kind, ok := models.MeetingKind(raw)
		if !ok {
			jsonio.Error(w, http.StatusBadRequest, `kind must be "AA", "NA", "SMART" or "other"`)
			return
		}
		f.Kind = kind
	}
	origin, ok := parseOrigin(q.Get("lat"), q.Get("lng"))
	if !ok {
		jsonio.Error(w, http.StatusBadRequest, "lat and lng must be given together as decimal degrees")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := meetingstore.New(h.DB).List(ctx, f)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list meetings failed", err, "")
		return
	}

	rows := make([]meetingRow, len(list))
	for i, m := range list {
		rows[i] = meetingRow{Meeting: m}
		if origin != nil && m.Location != nil {
			d := distanceKm(*origin, *m.Location)
			rows[i].DistanceKm = &d
		}
	}
	if origin != nil {
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := rows[i].DistanceKm, rows[j].DistanceKm
			if a == nil || b == nil {
				return a != nil && b == nil
			}
			return *a < *b
		})
	}
	jsonio.Write(w, http.StatusOK, listResponse{Meetings: rows})
}

type createRequest struct {
	Name      string         `json:"name"`
	Kind      string         `json:"kind"`
	DayOfWeek int            `json:"day_of_week"`
	StartTime string         `json:"start_time"`
	Address   models.Address `json:"address"`
}

// HandleCreate handles POST /api/meetings. New meetings are left for the
// address migration to geocode.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode meeting failed", err, err.Error())
		return
	}

	name := htmlsanitize.Text(req.Name)
	if name == "" {
		jsonio.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	kind, ok := models.MeetingKind(req.Kind)
	if !ok {
		jsonio.Error(w, http.StatusBadRequest, `kind must be "AA", "NA", "SMART" or "other"`)
		return
	}
	if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
		jsonio.Error(w, http.StatusBadRequest, "day_of_week must be 0 (Sunday) through 6")
		return
	}
	st, err := time.Parse("15:04", strings.TrimSpace(req.StartTime))
	if err != nil {
		jsonio.Error(w, http.StatusBadRequest, "start_time must be HH:MM")
		return
	}
	// Zero-padded so the stored text sorts in clock order.
	start := st.Format("15:04")
	addr := models.Address{
		Street: htmlsanitize.Text(req.Address.Street),
		City:   htmlsanitize.Text(req.Address.City),
		State:  htmlsanitize.Text(req.Address.State),
		Zip:    htmlsanitize.Text(req.Address.Zip),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := meetingstore.New(h.DB).Create(ctx, models.Meeting{
		Name:      name,
		Kind:      kind,
		DayOfWeek: req.DayOfWeek,
		StartTime: start,
		Address:   addr,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "create meeting failed", err, "")
		return
	}
	h.Log.Info("meeting created", zap.String("meeting_id", m.ID.Hex()), zap.String("name", m.Name))
	jsonio.Write(w, http.StatusCreated, m)
}

func parseOrigin(lat, lng string) (*models.GeoPoint, bool) {
	lat, lng = strings.TrimSpace(lat), strings.TrimSpace(lng)
	if lat == "" && lng == "" {
		return nil, true
	}
	la, err1 := strconv.ParseFloat(lat, 64)
	lo, err2 := strconv.ParseFloat(lng, 64)
	if err1 != nil || err2 != nil || la < -90 || la > 90 || lo < -180 || lo > 180 {
		return nil, false
	}
	return &models.GeoPoint{Lat: la, Lng: lo}, true
}

// distanceKm is the haversine great-circle distance.
func distanceKm(a, b models.GeoPoint) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := rad(b.Lat - a.Lat)
	dLng := rad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(a.Lat))*math.Cos(rad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
