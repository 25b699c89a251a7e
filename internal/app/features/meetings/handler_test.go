package meetings_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	uierrors "github.com/glrs/lighthouse/internal/app/features/errors"
	"github.com/glrs/lighthouse/internal/app/features/meetings"
	meetingstore "github.com/glrs/lighthouse/internal/app/store/meetings"
	"github.com/glrs/lighthouse/internal/domain/models"
	"github.com/glrs/lighthouse/internal/testutil"
	"go.uber.org/zap"
)

type row struct {
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	DayOfWeek  int      `json:"day_of_week"`
	StartTime  string   `json:"start_time"`
	DistanceKm *float64 `json:"distance_km"`
}

func seed(t *testing.T, ctx context.Context, store *meetingstore.Store) {
	t.Helper()
	meetings := []models.Meeting{
		{Name: "Downtown Serenity", Kind: models.KindAA, DayOfWeek: 1, StartTime: "19:00"},
		{Name: "Harbor Hope", Kind: models.KindNA, DayOfWeek: 1, StartTime: "12:00"},
		{Name: "Sunday SMART", Kind: models.KindSMART, DayOfWeek: 0, StartTime: "10:00"},
	}
	for _, m := range meetings {
		created, err := store.Create(ctx, m)
		if err != nil {
			t.Fatalf("create meeting: %v", err)
		}
		var loc *models.GeoPoint
		switch m.Name {
		case "Downtown Serenity":
			loc = &models.GeoPoint{Lat: 40.7128, Lng: -74.0060} // New York
		case "Harbor Hope":
			loc = &models.GeoPoint{Lat: 42.3601, Lng: -71.0589} // Boston
		}
		if loc != nil {
			if err := store.SetGeocode(ctx, created.ID, "", loc, models.GeocodeOK, time.Now()); err != nil {
				t.Fatalf("SetGeocode: %v", err)
			}
		}
	}
}

func list(t *testing.T, h *meetings.Handler, user testutil.TestUser, query string) ([]row, *testutil.ResponseRecorder) {
	t.Helper()
	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/api/meetings"+query, user))
	var resp struct {
		Meetings []row `json:"meetings"`
	}
	if rec.Code == http.StatusOK {
		rec.DecodeJSON(t, &resp)
	}
	return resp.Meetings, rec
}

func TestServeList_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	seed(t, ctx, meetingstore.New(db))

	logger := zap.NewNop()
	h := meetings.NewHandler(db, uierrors.NewErrorLogger(logger), logger)
	user := testutil.TestUser{ID: "u", Role: models.RolePIR}

	all, rec := list(t, h, user, "")
	rec.AssertStatus(t, http.StatusOK)
	if len(all) != 3 || all[0].Name != "Sunday SMART" || all[1].Name != "Harbor Hope" {
		t.Errorf("default order: %+v", all)
	}

	monday, _ := list(t, h, user, "?day=1")
	if len(monday) != 2 {
		t.Errorf("day=1: got %d, want 2", len(monday))
	}

	na, _ := list(t, h, user, "?kind=na")
	if len(na) != 1 || na[0].Kind != models.KindNA {
		t.Errorf("kind=na: %+v", na)
	}

	_, rec = list(t, h, user, "?day=9")
	rec.AssertStatus(t, http.StatusBadRequest)
	_, rec = list(t, h, user, "?kind=church")
	rec.AssertStatus(t, http.StatusBadRequest)
	_, rec = list(t, h, user, "?lat=40")
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestServeList_NearestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	seed(t, ctx, meetingstore.New(db))

	logger := zap.NewNop()
	h := meetings.NewHandler(db, uierrors.NewErrorLogger(logger), logger)

	// Providence is closer to Boston than to New York.
	rows, rec := list(t, h, testutil.TestUser{ID: "u", Role: models.RolePIR}, "?lat=41.824&lng=-71.4128")
	rec.AssertStatus(t, http.StatusOK)
	if len(rows) != 3 {
		t.Fatalf("rows: got %d", len(rows))
	}
	if rows[0].Name != "Harbor Hope" || rows[1].Name != "Downtown Serenity" {
		t.Errorf("order: %s, %s", rows[0].Name, rows[1].Name)
	}
	if rows[0].DistanceKm == nil || *rows[0].DistanceKm < 60 || *rows[0].DistanceKm > 70 {
		t.Errorf("Providence to Boston distance: %v", rows[0].DistanceKm)
	}
	if rows[2].DistanceKm != nil {
		t.Error("ungeocoded meeting should have no distance")
	}
}

func TestHandleCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	h := meetings.NewHandler(db, uierrors.NewErrorLogger(logger), logger)
	admin := testutil.TestUser{ID: "a", Role: models.RoleAdmin}

	rec := testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewJSONRequest("POST", "/api/meetings", map[string]any{
		"name": "Lunch Bunch", "kind": "aa", "day_of_week": 3, "start_time": "12:15",
		"address": map[string]any{"street": "1 Main St", "city": "Springfield", "state": "IL"},
	}, admin))
	rec.AssertStatus(t, http.StatusCreated)

	var m models.Meeting
	rec.DecodeJSON(t, &m)
	if m.Kind != models.KindAA || m.GeocodeStatus != "" || m.Address.City != "Springfield" {
		t.Errorf("created meeting: %+v", m)
	}

	rec = testutil.NewRecorder()
	h.HandleCreate(rec, testutil.NewJSONRequest("POST", "/api/meetings", map[string]any{
		"name": "Late", "kind": "AA", "day_of_week": 3, "start_time": "7pm",
	}, admin))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestHandleCreate_PadsStartTime(t *testing.T) {
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	h := meetings.NewHandler(db, uierrors.NewErrorLogger(logger), logger)
	admin := testutil.TestUser{ID: "a", Role: models.RoleAdmin}

	for _, start := range []string{"10:00", " 9:30 "} {
		rec := testutil.NewRecorder()
		h.HandleCreate(rec, testutil.NewJSONRequest("POST", "/api/meetings", map[string]any{
			"name": "Group " + start, "kind": "NA", "day_of_week": 2, "start_time": start,
		}, admin))
		rec.AssertStatus(t, http.StatusCreated)
	}

	rows, rec := list(t, h, admin, "?day=2")
	rec.AssertStatus(t, http.StatusOK)
	if len(rows) != 2 {
		t.Fatalf("expected 2 meetings, got %d", len(rows))
	}
	if rows[0].StartTime != "09:30" || rows[1].StartTime != "10:00" {
		t.Errorf("order: %q then %q", rows[0].StartTime, rows[1].StartTime)
	}
}
