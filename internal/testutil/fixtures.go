package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/glrs/lighthouse/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with the given role. coachID is only meaningful
// for PIRs.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string, coachID *primitive.ObjectID) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		Role:       role,
		Status:     models.StatusActive,
		CoachID:    coachID,
		TimeZone:   "UTC",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateAdmin creates a test admin.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleAdmin, nil)
}

// CreateCoach creates a test coach.
func (f *Fixtures) CreateCoach(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RoleCoach, nil)
}

// CreatePIR creates a test PIR assigned to coachID.
func (f *Fixtures) CreatePIR(ctx context.Context, fullName, email string, coachID primitive.ObjectID) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, models.RolePIR, &coachID)
}

// CreateCheckIn inserts a check-in for userID at the given instant. The
// local date is taken in UTC, matching the fixture users' zone.
func (f *Fixtures) CreateCheckIn(ctx context.Context, userID primitive.ObjectID, at time.Time, period string) models.CheckIn {
	f.t.Helper()

	ci := models.CheckIn{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		LocalDate: at.UTC().Format("2006-01-02"),
		Period:    period,
		Mood:      6,
		Cravings:  2,
		Anxiety:   3,
		Sleep:     7,
		CreatedAt: at.UTC(),
	}
	if _, err := f.db.Collection("check_ins").InsertOne(ctx, ci); err != nil {
		f.t.Fatalf("failed to create test check-in: %v", err)
	}
	return ci
}

// CreateMeeting inserts a meeting with the given address and no location.
func (f *Fixtures) CreateMeeting(ctx context.Context, name string, addr models.Address) models.Meeting {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Meeting{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Kind:      "AA",
		DayOfWeek: 1,
		StartTime: "19:00",
		Address:   addr,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("meetings").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test meeting: %v", err)
	}
	return m
}

// CreateResource inserts an active article guide.
func (f *Fixtures) CreateResource(ctx context.Context, title, url string) models.Resource {
	f.t.Helper()

	now := time.Now().UTC()
	r := models.Resource{
		ID:        primitive.NewObjectID(),
		Title:     title,
		TitleCI:   text.Fold(title),
		Category:  "coping",
		Kind:      models.ResourceArticle,
		URL:       url,
		Status:    models.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("resources").InsertOne(ctx, r); err != nil {
		f.t.Fatalf("failed to create test resource: %v", err)
	}
	return r
}
