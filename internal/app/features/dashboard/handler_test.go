package dashboard_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glrs/lighthouse/internal/app/features/dashboard"
	uierrors "github.com/glrs/lighthouse/internal/app/features/errors"
	"github.com/glrs/lighthouse/internal/domain/models"
	"github.com/glrs/lighthouse/internal/testutil"
	"go.uber.org/zap"
)

type dashboardResponse struct {
	Role   string `json:"role"`
	Counts struct {
		PIRs          int64 `json:"pirs"`
		OpenAlerts    int64 `json:"open_alerts"`
		CheckInsToday int64 `json:"check_ins_today"`
	} `json:"counts"`
	PIRs []struct {
		FullName      string `json:"full_name"`
		CurrentStreak int    `json:"current_streak"`
		LastCheckIn   string `json:"last_check_in"`
	} `json:"pirs"`
}

func newTestHandler(t *testing.T) (*dashboard.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return dashboard.NewHandler(db, time.UTC, uierrors.NewErrorLogger(logger), logger), testutil.NewFixtures(t, db)
}

func TestServeDashboard_Unauthenticated(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeDashboard(rec, httptest.NewRequest("GET", "/api/dashboard", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestServeDashboard_PIRForbidden(t *testing.T) {
	handler, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	coach := fx.CreateCoach(ctx, "Coach", "coach@example.com")
	pir := fx.CreatePIR(ctx, "Pat", "pat@example.com", coach.ID)

	rec := testutil.NewRecorder()
	handler.ServeDashboard(rec, testutil.NewAuthenticatedRequest("GET", "/api/dashboard", testutil.AsTestUser(pir)))
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestServeDashboard_CoachSeesCaseload(t *testing.T) {
	handler, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Date(2025, 6, 15, 15, 0, 0, 0, time.UTC)
	handler.Now = func() time.Time { return now }

	coach := fx.CreateCoach(ctx, "Coach", "coach@example.com")
	other := fx.CreateCoach(ctx, "Other", "other@example.com")
	alex := fx.CreatePIR(ctx, "Alex", "alex@example.com", coach.ID)
	fx.CreatePIR(ctx, "Blake", "blake@example.com", coach.ID)
	fx.CreatePIR(ctx, "Casey", "casey@example.com", other.ID)

	fx.CreateCheckIn(ctx, alex.ID, now.AddDate(0, 0, -1), models.PeriodMorning)
	fx.CreateCheckIn(ctx, alex.ID, now, models.PeriodMorning)

	rec := testutil.NewRecorder()
	handler.ServeDashboard(rec, testutil.NewAuthenticatedRequest("GET", "/api/dashboard", testutil.AsTestUser(coach)))
	rec.AssertStatus(t, http.StatusOK)

	var resp dashboardResponse
	rec.DecodeJSON(t, &resp)
	if resp.Role != models.RoleCoach {
		t.Errorf("role: got %q", resp.Role)
	}
	if resp.Counts.PIRs != 2 {
		t.Errorf("counts.pirs: got %d, want 2", resp.Counts.PIRs)
	}
	if len(resp.PIRs) != 2 {
		t.Fatalf("rows: got %d, want 2", len(resp.PIRs))
	}
	if resp.PIRs[0].FullName != "Alex" || resp.PIRs[0].CurrentStreak != 2 || resp.PIRs[0].LastCheckIn != "2025-06-15" {
		t.Errorf("first row: %+v", resp.PIRs[0])
	}
	if resp.PIRs[1].FullName != "Blake" || resp.PIRs[1].CurrentStreak != 0 || resp.PIRs[1].LastCheckIn != "" {
		t.Errorf("second row: %+v", resp.PIRs[1])
	}
}

func TestServeDashboard_AdminSeesAll(t *testing.T) {
	handler, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fx.CreateAdmin(ctx, "Admin", "admin@example.com")
	coach := fx.CreateCoach(ctx, "Coach", "coach@example.com")
	other := fx.CreateCoach(ctx, "Other", "other@example.com")
	fx.CreatePIR(ctx, "Alex", "alex@example.com", coach.ID)
	fx.CreatePIR(ctx, "Casey", "casey@example.com", other.ID)

	rec := testutil.NewRecorder()
	handler.ServeDashboard(rec, testutil.NewAuthenticatedRequest("GET", "/api/dashboard", testutil.AsTestUser(admin)))
	rec.AssertStatus(t, http.StatusOK)

	var resp dashboardResponse
	rec.DecodeJSON(t, &resp)
	if resp.Role != models.RoleAdmin || len(resp.PIRs) != 2 || resp.Counts.PIRs != 2 {
		t.Errorf("admin dashboard: %+v", resp)
	}
}
