// internal/app/store/alerts/alertstore.go
package alertstore

import (
	"context"
	"errors"
	"time"

	"github.com/glrs/lighthouse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrBadTransition is returned when an alert cannot move to the requested
// status from the one it is in.
var ErrBadTransition = errors.New("alert status transition not allowed")

// Store manages crisis alerts.
type Store struct {
	c *mongo.Collection
}

// New creates an alert Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("crisis_alerts")}
}

// Create inserts an open alert.
func (s *Store) Create(ctx context.Context, a models.CrisisAlert) (models.CrisisAlert, error) {
	now := time.Now().UTC()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	a.Status = models.AlertOpen
	a.AcknowledgedBy = nil
	a.CreatedAt = now
	a.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.CrisisAlert{}, err
	}
	return a, nil
}

// GetByID loads one alert. Returns mongo.ErrNoDocuments if missing.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.CrisisAlert, error) {
	var a models.CrisisAlert
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	return a, err
}

// List returns alerts newest first. A nil coachID lists every coach's
// alerts; an empty status lists every status.
func (s *Store) List(ctx context.Context, coachID *primitive.ObjectID, status string, limit int64) ([]models.CrisisAlert, error) {
	filter := bson.M{}
	if coachID != nil {
		filter["coach_id"] = *coachID
	}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.CrisisAlert
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Transition moves an alert to status to on behalf of actor. When coachID
// is non-nil the alert must belong to that coach, otherwise
// mongo.ErrNoDocuments is returned. The update is conditional on the status
// read, so a concurrent change surfaces as ErrBadTransition.
func (s *Store) Transition(ctx context.Context, id primitive.ObjectID, to string, actor primitive.ObjectID, coachID *primitive.ObjectID) (models.CrisisAlert, error) {
	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return models.CrisisAlert{}, err
	}
	if coachID != nil && (cur.CoachID == nil || *cur.CoachID != *coachID) {
		return models.CrisisAlert{}, mongo.ErrNoDocuments
	}
	if !models.CanTransition(cur.Status, to) {
		return models.CrisisAlert{}, ErrBadTransition
	}

	set := bson.M{"status": to, "updated_at": time.Now().UTC()}
	if to == models.AlertAcknowledged || cur.AcknowledgedBy == nil {
		set["acknowledged_by"] = actor
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var out models.CrisisAlert
	err = s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": cur.Status},
		bson.M{"$set": set},
		opts,
	).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.CrisisAlert{}, ErrBadTransition
	}
	return out, err
}

// ListForUser returns one user's alerts, newest first. unresolvedOnly
// skips resolved alerts.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID, unresolvedOnly bool) ([]models.CrisisAlert, error) {
	filter := bson.M{"user_id": userID}
	if unresolvedOnly {
		filter["status"] = bson.M{"$ne": models.AlertResolved}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.CrisisAlert
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// HasUnresolved reports whether the user has an open or acknowledged alert
// from source.
func (s *Store) HasUnresolved(ctx context.Context, userID primitive.ObjectID, source string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"user_id": userID,
		"source":  source,
		"status":  bson.M{"$ne": models.AlertResolved},
	}, options.Count().SetLimit(1))
	return n > 0, err
}

// CountOpen counts alerts still in the open state. A nil coachID counts
// across all coaches.
func (s *Store) CountOpen(ctx context.Context, coachID *primitive.ObjectID) (int64, error) {
	filter := bson.M{"status": models.AlertOpen}
	if coachID != nil {
		filter["coach_id"] = *coachID
	}
	return s.c.CountDocuments(ctx, filter)
}

// Count returns the total number of alerts.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.D{})
}

// UserIDs returns every distinct user_id referenced by an alert.
func (s *Store) UserIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	raw, err := s.c.Distinct(ctx, "user_id", bson.D{})
	if err != nil {
		return nil, err
	}
	out := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(primitive.ObjectID); ok {
			out = append(out, id)
		}
	}
	return out, nil
}
