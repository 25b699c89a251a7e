package goalstore_test

import (
	"errors"
	"testing"

	goalstore "github.com/glrs/lighthouse/internal/app/store/goals"
	"github.com/glrs/lighthouse/internal/domain/models"
	"github.com/glrs/lighthouse/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create_ClampsProgress(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := goalstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Goal{Title: ""}); !errors.Is(err, goalstore.ErrTitleRequired) {
		t.Errorf("blank title: got %v", err)
	}

	g, err := store.Create(ctx, models.Goal{UserID: primitive.NewObjectID(), Title: "Run a 5k", Progress: -20})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if g.Progress != 0 || g.Status != models.GoalActive {
		t.Errorf("got progress %d status %q", g.Progress, g.Status)
	}

	done, err := store.Create(ctx, models.Goal{UserID: primitive.NewObjectID(), Title: "Done already", Progress: 250})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if done.Progress != 100 || done.Status != models.GoalAchieved {
		t.Errorf("got progress %d status %q", done.Progress, done.Status)
	}
}

func TestStore_UpdateProgress(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := goalstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := primitive.NewObjectID()
	g, err := store.Create(ctx, models.Goal{UserID: user, Title: "90 meetings in 90 days"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	mid, err := store.UpdateProgress(ctx, g.ID, user, 45)
	if err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}
	if mid.Progress != 45 || mid.Status != models.GoalActive {
		t.Errorf("got progress %d status %q", mid.Progress, mid.Status)
	}

	full, err := store.UpdateProgress(ctx, g.ID, user, 130)
	if err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}
	if full.Progress != 100 || full.Status != models.GoalAchieved {
		t.Errorf("got progress %d status %q", full.Progress, full.Status)
	}

	if _, err := store.UpdateProgress(ctx, g.ID, primitive.NewObjectID(), 10); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("other user: got %v, want ErrNoDocuments", err)
	}
}

func TestStore_SetStatus_And_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := goalstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := primitive.NewObjectID()
	a, _ := store.Create(ctx, models.Goal{UserID: user, Title: "A"})
	if _, err := store.Create(ctx, models.Goal{UserID: user, Title: "B"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := store.SetStatus(ctx, a.ID, user, "paused"); !errors.Is(err, goalstore.ErrBadStatus) {
		t.Errorf("bad status: got %v", err)
	}
	if _, err := store.SetStatus(ctx, a.ID, user, " Abandoned "); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	active, err := store.ListByUser(ctx, user, models.GoalActive)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(active) != 1 || active[0].Title != "B" {
		t.Errorf("unexpected active goals: %+v", active)
	}

	all, err := store.ListByUser(ctx, user, "")
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 goals, got %d", len(all))
	}
}
