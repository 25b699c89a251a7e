package pirs_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	uierrors "github.com/glrs/lighthouse/internal/app/features/errors"
	"github.com/glrs/lighthouse/internal/app/features/pirs"
	alertstore "github.com/glrs/lighthouse/internal/app/store/alerts"
	userstore "github.com/glrs/lighthouse/internal/app/store/users"
	"github.com/glrs/lighthouse/internal/app/system/auth"
	"github.com/glrs/lighthouse/internal/app/system/fieldcrypt"
	"github.com/glrs/lighthouse/internal/domain/models"
	"github.com/glrs/lighthouse/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type env struct {
	h      *pirs.Handler
	fx     *testutil.Fixtures
	keys   *fieldcrypt.Keyring
	admin  models.User
	coachA models.User
	coachB models.User
	pat    models.User
	sam    models.User
}

func setup(t *testing.T) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	keys, err := fieldcrypt.NewKeyring("test-field-secret")
	if err != nil {
		t.Fatalf("NewKeyring: %v", err)
	}
	logger := zap.NewNop()
	h := pirs.NewHandler(db, keys, time.UTC, uierrors.NewErrorLogger(logger), logger)
	h.Now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }

	fx := testutil.NewFixtures(t, db)
	e := env{h: h, fx: fx, keys: keys}
	e.admin = fx.CreateAdmin(ctx, "Ada Admin", "ada@example.com")
	e.coachA = fx.CreateCoach(ctx, "Coach A", "a@example.com")
	e.coachB = fx.CreateCoach(ctx, "Coach B", "b@example.com")
	e.pat = fx.CreatePIR(ctx, "Pat Doe", "pat@example.com", e.coachA.ID)
	e.sam = fx.CreatePIR(ctx, "Sam Roe", "sam@example.com", e.coachB.ID)
	return e
}

type listBody struct {
	PIRs []struct {
		ID       string `json:"id"`
		FullName string `json:"full_name"`
		Status   string `json:"status"`
	} `json:"pirs"`
	HasPrev    bool   `json:"has_prev"`
	HasNext    bool   `json:"has_next"`
	PrevCursor string `json:"prev_cursor"`
	NextCursor string `json:"next_cursor"`
}

func TestServeList_Scope(t *testing.T) {
	e := setup(t)

	rec := testutil.NewRecorder()
	e.h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/api/pirs", testutil.AsTestUser(e.coachA)))
	rec.AssertStatus(t, http.StatusOK)
	var mine listBody
	rec.DecodeJSON(t, &mine)
	if len(mine.PIRs) != 1 || mine.PIRs[0].FullName != "Pat Doe" {
		t.Errorf("coach A caseload: %+v", mine.PIRs)
	}

	rec = testutil.NewRecorder()
	e.h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/api/pirs?q=sa", testutil.AsTestUser(e.admin)))
	rec.AssertStatus(t, http.StatusOK)
	var found listBody
	rec.DecodeJSON(t, &found)
	if len(found.PIRs) != 1 || found.PIRs[0].FullName != "Sam Roe" {
		t.Errorf("admin search: %+v", found.PIRs)
	}

	rec = testutil.NewRecorder()
	e.h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/api/pirs?status=gone", testutil.AsTestUser(e.admin)))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = testutil.NewRecorder()
	e.h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/api/pirs", testutil.AsTestUser(e.pat)))
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestServeList_Pages(t *testing.T) {
	e := setup(t)

	page := func(target string) listBody {
		t.Helper()
		rec := testutil.NewRecorder()
		e.h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", target, testutil.AsTestUser(e.admin)))
		rec.AssertStatus(t, http.StatusOK)
		var b listBody
		rec.DecodeJSON(t, &b)
		return b
	}

	first := page("/api/pirs?size=1")
	if len(first.PIRs) != 1 || first.PIRs[0].FullName != "Pat Doe" {
		t.Fatalf("first page: %+v", first.PIRs)
	}
	if first.HasPrev || !first.HasNext || first.NextCursor == "" {
		t.Fatalf("first page flags: %+v", first)
	}

	second := page("/api/pirs?size=1&after=" + url.QueryEscape(first.NextCursor))
	if len(second.PIRs) != 1 || second.PIRs[0].FullName != "Sam Roe" {
		t.Fatalf("second page: %+v", second.PIRs)
	}
	if !second.HasPrev || second.HasNext || second.NextCursor != "" {
		t.Errorf("second page flags: %+v", second)
	}

	back := page("/api/pirs?size=1&before=" + url.QueryEscape(second.PrevCursor))
	if len(back.PIRs) != 1 || back.PIRs[0].FullName != "Pat Doe" {
		t.Errorf("back page: %+v", back.PIRs)
	}
}

func TestServeDetail(t *testing.T) {
	e := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	enc, err := e.keys.Encrypt(e.pat.ID.Hex(), "555-0100")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if err := userstore.New(e.fx.DB()).UpdateProfile(ctx, e.pat.ID, userstore.ProfileUpdate{Phone: &enc}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	_, err = alertstore.New(e.fx.DB()).Create(ctx, models.CrisisAlert{
		UserID:   e.pat.ID,
		CoachID:  &e.coachA.ID,
		Source:   models.AlertSourceCheckIn,
		Severity: models.SeverityHigh,
		Message:  "morning check-in",
	})
	if err != nil {
		t.Fatalf("create alert: %v", err)
	}

	detail := func(as models.User, id string) *testutil.ResponseRecorder {
		req := testutil.NewAuthenticatedRequest("GET", "/api/pirs/"+id, testutil.AsTestUser(as))
		rec := testutil.NewRecorder()
		e.h.ServeDetail(rec, testutil.WithChiURLParam(req, "id", id))
		return rec
	}

	rec := detail(e.coachA, e.pat.ID.Hex())
	rec.AssertStatus(t, http.StatusOK)
	var body struct {
		Phone string `json:"phone"`
		Coach *struct {
			FullName string `json:"full_name"`
		} `json:"coach"`
		Stats struct {
			UserID string `json:"user_id"`
		} `json:"stats"`
		OpenAlerts []models.CrisisAlert `json:"open_alerts"`
	}
	rec.DecodeJSON(t, &body)
	if body.Phone != "555-0100" {
		t.Errorf("phone: got %q", body.Phone)
	}
	if body.Coach == nil || body.Coach.FullName != "Coach A" {
		t.Errorf("coach: %+v", body.Coach)
	}
	if len(body.OpenAlerts) != 1 {
		t.Errorf("open alerts: got %d", len(body.OpenAlerts))
	}

	detail(e.coachB, e.pat.ID.Hex()).AssertStatus(t, http.StatusForbidden)
	detail(e.admin, e.coachA.ID.Hex()).AssertStatus(t, http.StatusNotFound)
	detail(e.admin, "zzz").AssertStatus(t, http.StatusBadRequest)
}

func TestHandleAssignCoach(t *testing.T) {
	e := setup(t)

	put := func(pirID string, body map[string]any) *testutil.ResponseRecorder {
		req := testutil.NewJSONRequest("PUT", "/api/pirs/"+pirID+"/coach", body, testutil.AsTestUser(e.admin))
		rec := testutil.NewRecorder()
		e.h.HandleAssignCoach(rec, testutil.WithChiURLParam(req, "id", pirID))
		return rec
	}

	rec := put(e.pat.ID.Hex(), map[string]any{"coach_id": e.coachB.ID.Hex()})
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, e.coachB.ID.Hex())

	put(e.pat.ID.Hex(), map[string]any{"coach_id": e.sam.ID.Hex()}).AssertStatus(t, http.StatusBadRequest)
	put(e.pat.ID.Hex(), map[string]any{"coach_id": "nope"}).AssertStatus(t, http.StatusBadRequest)
	put(e.coachA.ID.Hex(), map[string]any{"coach_id": e.coachB.ID.Hex()}).AssertStatus(t, http.StatusNotFound)

	// Coach B now sees Pat.
	rec = testutil.NewRecorder()
	e.h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/api/pirs", testutil.AsTestUser(e.coachB)))
	var list listBody
	rec.DecodeJSON(t, &list)
	if len(list.PIRs) != 2 {
		t.Errorf("coach B caseload after move: %+v", list.PIRs)
	}
}

func TestHandleSetStatus(t *testing.T) {
	e := setup(t)

	put := func(pirID, status string) *testutil.ResponseRecorder {
		req := testutil.NewJSONRequest("PUT", "/api/pirs/"+pirID+"/status", map[string]any{"status": status}, testutil.AsTestUser(e.admin))
		rec := testutil.NewRecorder()
		e.h.HandleSetStatus(rec, testutil.WithChiURLParam(req, "id", pirID))
		return rec
	}

	put(e.sam.ID.Hex(), "Disabled").AssertStatus(t, http.StatusOK)
	put(e.sam.ID.Hex(), "archived").AssertStatus(t, http.StatusBadRequest)
	put(e.admin.ID.Hex(), "disabled").AssertStatus(t, http.StatusNotFound)

	rec := testutil.NewRecorder()
	e.h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/api/pirs?status=disabled", testutil.AsTestUser(e.admin)))
	var list listBody
	rec.DecodeJSON(t, &list)
	if len(list.PIRs) != 1 || list.PIRs[0].ID != e.sam.ID.Hex() {
		t.Errorf("disabled list: %+v", list.PIRs)
	}
}

func TestRoutes_MountsPerPIRFeatures(t *testing.T) {
	e := setup(t)
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}

	var seenID string
	notes := chi.NewRouter()
	notes.Get("/", func(w http.ResponseWriter, r *http.Request) {
		seenID = chi.URLParam(r, "id")
		w.WriteHeader(http.StatusTeapot)
	})
	router := pirs.Routes(e.h, sm, map[string]http.Handler{"notes": notes})

	serve := func(method, path string, as models.User) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(method, path, testutil.AsTestUser(as)))
		return rec
	}

	if rec := serve("GET", "/"+e.pat.ID.Hex()+"/notes", e.coachA); rec.Code != http.StatusTeapot {
		t.Errorf("mounted route: got %d", rec.Code)
	}
	if seenID != e.pat.ID.Hex() {
		t.Errorf("id param: got %q", seenID)
	}
	if rec := serve("GET", "/", e.pat); rec.Code != http.StatusForbidden {
		t.Errorf("pir on staff routes: got %d", rec.Code)
	}
	if rec := serve("PUT", "/"+e.pat.ID.Hex()+"/status", e.coachA); rec.Code != http.StatusForbidden {
		t.Errorf("coach on admin route: got %d", rec.Code)
	}
}
