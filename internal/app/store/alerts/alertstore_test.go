package alertstore_test

import (
	"errors"
	"testing"

	alertstore "github.com/glrs/lighthouse/internal/app/store/alerts"
	"github.com/glrs/lighthouse/internal/domain/models"
	"github.com/glrs/lighthouse/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func newAlert(user, coach primitive.ObjectID, source string) models.CrisisAlert {
	return models.CrisisAlert{
		UserID:   user,
		CoachID:  &coach,
		Source:   source,
		Severity: models.SeverityHigh,
		Message:  "cravings at 9",
	}
}

func TestStore_Create_StartsOpen(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := alertstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in := newAlert(primitive.NewObjectID(), primitive.NewObjectID(), models.AlertSourceCheckIn)
	in.Status = models.AlertResolved
	a, err := store.Create(ctx, in)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if a.Status != models.AlertOpen {
		t.Errorf("expected open, got %q", a.Status)
	}
}

func TestStore_Transition(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := alertstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	coach := primitive.NewObjectID()
	a, err := store.Create(ctx, newAlert(primitive.NewObjectID(), coach, models.AlertSourceCheckIn))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	other := primitive.NewObjectID()
	if _, err := store.Transition(ctx, a.ID, models.AlertAcknowledged, other, &other); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("other coach: got %v, want ErrNoDocuments", err)
	}

	acked, err := store.Transition(ctx, a.ID, models.AlertAcknowledged, coach, &coach)
	if err != nil {
		t.Fatalf("acknowledge failed: %v", err)
	}
	if acked.Status != models.AlertAcknowledged || acked.AcknowledgedBy == nil || *acked.AcknowledgedBy != coach {
		t.Errorf("unexpected acknowledged alert: %+v", acked)
	}

	if _, err := store.Transition(ctx, a.ID, models.AlertAcknowledged, coach, &coach); !errors.Is(err, alertstore.ErrBadTransition) {
		t.Errorf("re-acknowledge: got %v, want ErrBadTransition", err)
	}

	admin := primitive.NewObjectID()
	resolved, err := store.Transition(ctx, a.ID, models.AlertResolved, admin, nil)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.Status != models.AlertResolved {
		t.Errorf("expected resolved, got %q", resolved.Status)
	}
	if *resolved.AcknowledgedBy != coach {
		t.Error("resolving should keep the original acknowledger")
	}

	if _, err := store.Transition(ctx, a.ID, models.AlertOpen, admin, nil); !errors.Is(err, alertstore.ErrBadTransition) {
		t.Errorf("reopen: got %v, want ErrBadTransition", err)
	}
}

func TestStore_Transition_ResolveFromOpen(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := alertstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	coach := primitive.NewObjectID()
	a, _ := store.Create(ctx, newAlert(primitive.NewObjectID(), coach, models.AlertSourceCheckIn))

	resolved, err := store.Transition(ctx, a.ID, models.AlertResolved, coach, &coach)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.AcknowledgedBy == nil || *resolved.AcknowledgedBy != coach {
		t.Error("direct resolve should record the actor")
	}
}

func TestStore_HasUnresolved_And_Counts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := alertstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := primitive.NewObjectID()
	coach := primitive.NewObjectID()

	has, err := store.HasUnresolved(ctx, user, models.AlertSourceMissedCheckIn)
	if err != nil {
		t.Fatalf("HasUnresolved failed: %v", err)
	}
	if has {
		t.Error("expected no alerts yet")
	}

	a, _ := store.Create(ctx, newAlert(user, coach, models.AlertSourceMissedCheckIn))
	if _, err := store.Create(ctx, newAlert(primitive.NewObjectID(), primitive.NewObjectID(), models.AlertSourceCheckIn)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	has, _ = store.HasUnresolved(ctx, user, models.AlertSourceMissedCheckIn)
	if !has {
		t.Error("expected unresolved missed check-in alert")
	}
	has, _ = store.HasUnresolved(ctx, user, models.AlertSourceCheckIn)
	if has {
		t.Error("source should be matched")
	}

	n, err := store.CountOpen(ctx, &coach)
	if err != nil {
		t.Fatalf("CountOpen failed: %v", err)
	}
	if n != 1 {
		t.Errorf("coach open count: got %d, want 1", n)
	}
	n, _ = store.CountOpen(ctx, nil)
	if n != 2 {
		t.Errorf("total open count: got %d, want 2", n)
	}

	if _, err := store.Transition(ctx, a.ID, models.AlertResolved, coach, nil); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	has, _ = store.HasUnresolved(ctx, user, models.AlertSourceMissedCheckIn)
	if has {
		t.Error("resolved alert should not count")
	}

	list, err := store.List(ctx, &coach, "", 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("coach list: got %d, want 1", len(list))
	}
}
