package pirpolicy_test

import (
	"net/http/httptest"
	"testing"

	"github.com/glrs/lighthouse/internal/app/policy/pirpolicy"
	userstore "github.com/glrs/lighthouse/internal/app/store/users"
	"github.com/glrs/lighthouse/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCanListPIRs(t *testing.T) {
	coachID := primitive.NewObjectID()

	admin := testutil.NewAuthenticatedRequest("GET", "/", testutil.TestUser{ID: primitive.NewObjectID().Hex(), Role: "admin"})
	if s := pirpolicy.CanListPIRs(admin); !s.CanList || s.CoachID != nil {
		t.Errorf("admin scope: %+v", s)
	}

	coach := testutil.NewAuthenticatedRequest("GET", "/", testutil.TestUser{ID: coachID.Hex(), Role: "coach"})
	s := pirpolicy.CanListPIRs(coach)
	if !s.CanList || s.CoachID == nil || *s.CoachID != coachID {
		t.Errorf("coach scope: %+v", s)
	}

	pir := testutil.NewAuthenticatedRequest("GET", "/", testutil.TestUser{ID: primitive.NewObjectID().Hex(), Role: "pir"})
	if pirpolicy.CanListPIRs(pir).CanList {
		t.Error("pir should not list PIRs")
	}

	if pirpolicy.CanListPIRs(httptest.NewRequest("GET", "/", nil)).CanList {
		t.Error("anonymous should not list PIRs")
	}
}

func TestCheckPIRAccess(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	coach := fx.CreateCoach(ctx, "Casey Coach", "casey@example.com")
	other := fx.CreateCoach(ctx, "Other Coach", "other@example.com")
	admin := fx.CreateAdmin(ctx, "Ada Admin", "ada@example.com")
	pir := fx.CreatePIR(ctx, "Pat PIR", "pat@example.com", coach.ID)
	peer := fx.CreatePIR(ctx, "Peer PIR", "peer@example.com", coach.ID)

	users := userstore.New(db)

	cases := []struct {
		name    string
		as      testutil.TestUser
		target  primitive.ObjectID
		found   bool
		allowed bool
	}{
		{"own coach", testutil.AsTestUser(coach), pir.ID, true, true},
		{"other coach", testutil.AsTestUser(other), pir.ID, true, false},
		{"admin", testutil.AsTestUser(admin), pir.ID, true, true},
		{"self", testutil.AsTestUser(pir), pir.ID, true, true},
		{"peer", testutil.AsTestUser(peer), pir.ID, true, false},
		{"coach is not a pir", testutil.AsTestUser(admin), coach.ID, false, false},
		{"unknown", testutil.AsTestUser(admin), primitive.NewObjectID(), false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := testutil.NewAuthenticatedRequest("GET", "/", tc.as)
			got, ok, err := pirpolicy.CheckPIRAccess(ctx, users, r, tc.target)
			if err != nil {
				t.Fatalf("CheckPIRAccess: %v", err)
			}
			if (got != nil) != tc.found {
				t.Errorf("found: got %v, want %v", got != nil, tc.found)
			}
			if ok != tc.allowed {
				t.Errorf("allowed: got %v, want %v", ok, tc.allowed)
			}
		})
	}
}

func TestSelf(t *testing.T) {
	id := primitive.NewObjectID()
	r := testutil.NewAuthenticatedRequest("GET", "/", testutil.TestUser{ID: id.Hex(), Role: "pir"})
	got, u, ok := pirpolicy.Self(r)
	if !ok || got != id || u.Role != "pir" {
		t.Errorf("Self: got %v %v %v", got, u, ok)
	}

	bad := testutil.NewAuthenticatedRequest("GET", "/", testutil.TestUser{ID: "nope", Role: "pir"})
	if _, _, ok := pirpolicy.Self(bad); ok {
		t.Error("expected invalid id to fail")
	}
}
