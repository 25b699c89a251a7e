package addressmigrate_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	meetingstore "github.com/glrs/lighthouse/internal/app/store/meetings"
	"github.com/glrs/lighthouse/internal/app/system/addressmigrate"
	"github.com/glrs/lighthouse/internal/app/system/geocode"
	"github.com/glrs/lighthouse/internal/domain/models"
	"github.com/glrs/lighthouse/internal/testutil"
	"go.uber.org/zap"
)

type fakeGeocoder struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeGeocoder) Geocode(_ context.Context, q string) (geocode.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	f.mu.Unlock()

	switch {
	case strings.Contains(q, "Nowhere"):
		return geocode.Result{}, geocode.ErrNotFound
	case strings.Contains(q, "Broken"):
		return geocode.Result{}, errors.New("upstream 500")
	}
	return geocode.Result{Point: models.GeoPoint{Lat: 40, Lng: -105}}, nil
}

func seed(t *testing.T, f *testutil.Fixtures) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f.CreateMeeting(ctx, "Good 1", models.Address{Street: "1 Main St", City: "Boulder", State: "CO", Zip: "80302"})
	f.CreateMeeting(ctx, "Good 2", models.Address{Street: "2 Main St", City: "Boulder", State: "CO"})
	f.CreateMeeting(ctx, "Missing", models.Address{City: "Nowhere"})
	f.CreateMeeting(ctx, "Erroring", models.Address{City: "Broken"})
	f.CreateMeeting(ctx, "Empty", models.Address{})
}

func TestMigrator_Run(t *testing.T) {
	db := testutil.SetupTestDB(t)
	seed(t, testutil.NewFixtures(t, db))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	geo := &fakeGeocoder{}
	m := addressmigrate.New(db, geo, zap.NewNop())

	res, err := m.Run(ctx, addressmigrate.Options{BatchSize: 2})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	want := addressmigrate.Result{Scanned: 5, Geocoded: 2, NotFound: 1, Failed: 1, Skipped: 1, Batches: 3}
	if res != want {
		t.Errorf("result: got %+v, want %+v", res, want)
	}
	if len(geo.calls) != 4 {
		t.Errorf("expected 4 geocode calls, got %d", len(geo.calls))
	}
	if geo.calls[0] != "1 Main St, Boulder, CO 80302" {
		t.Errorf("address line: got %q", geo.calls[0])
	}

	list, err := meetingstore.New(db).List(ctx, meetingstore.Filter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	status := map[string]string{}
	for _, mt := range list {
		status[mt.Name] = mt.GeocodeStatus
		if mt.Name == "Good 1" {
			if mt.Location == nil || mt.Location.Lat != 40 {
				t.Errorf("expected location on Good 1, got %v", mt.Location)
			}
			if mt.Address.Formatted != "1 Main St, Boulder, CO 80302" {
				t.Errorf("formatted: got %q", mt.Address.Formatted)
			}
		}
	}
	if status["Good 2"] != models.GeocodeOK || status["Missing"] != models.GeocodeNotFound ||
		status["Erroring"] != models.GeocodeError || status["Empty"] != models.GeocodeNotFound {
		t.Errorf("unexpected statuses: %v", status)
	}

	// Everything now has a status, so a second run without force is a no-op.
	again, err := m.Run(ctx, addressmigrate.Options{BatchSize: 2})
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if again.Scanned != 0 {
		t.Errorf("expected nothing to scan, got %+v", again)
	}

	forced, err := m.Run(ctx, addressmigrate.Options{BatchSize: 10, Force: true})
	if err != nil {
		t.Fatalf("forced Run failed: %v", err)
	}
	if forced.Scanned != 5 {
		t.Errorf("force should rescan all, got %+v", forced)
	}
}

func TestMigrator_DryRunWritesNothing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	seed(t, testutil.NewFixtures(t, db))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	m := addressmigrate.New(db, &fakeGeocoder{}, zap.NewNop())
	res, err := m.Run(ctx, addressmigrate.Options{BatchSize: 2, DryRun: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Scanned != 5 || res.Geocoded != 2 {
		t.Errorf("unexpected dry-run result: %+v", res)
	}

	list, _ := meetingstore.New(db).List(ctx, meetingstore.Filter{})
	for _, mt := range list {
		if mt.GeocodeStatus != "" || mt.Location != nil {
			t.Errorf("dry run wrote to %s: %q %v", mt.Name, mt.GeocodeStatus, mt.Location)
		}
	}
}

func TestMigrator_StopsOnCancel(t *testing.T) {
	db := testutil.SetupTestDB(t)
	seed(t, testutil.NewFixtures(t, db))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := addressmigrate.New(db, &fakeGeocoder{}, zap.NewNop())
	if _, err := m.Run(ctx, addressmigrate.Options{}); err == nil {
		t.Error("expected error from cancelled context")
	}
}
