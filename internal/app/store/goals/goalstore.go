// internal/app/store/goals/goalstore.go
package goalstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/glrs/lighthouse/internal/app/system/normalize"
	"github.com/glrs/lighthouse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MaxProgress is a finished goal.
const MaxProgress = 100

var (
	ErrTitleRequired = errors.New("goal title is required")
	ErrBadStatus     = errors.New("invalid goal status")
)

// Store manages PIR goals.
type Store struct {
	c *mongo.Collection
}

// New creates a goal Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("goals")}
}

// Create inserts an active goal with progress clamped to 0–100.
func (s *Store) Create(ctx context.Context, g models.Goal) (models.Goal, error) {
	g.Title = strings.TrimSpace(g.Title)
	if g.Title == "" {
		return models.Goal{}, ErrTitleRequired
	}
	now := time.Now().UTC()
	if g.ID.IsZero() {
		g.ID = primitive.NewObjectID()
	}
	g.Progress = normalize.Rating(g.Progress, MaxProgress)
	g.Status = models.GoalActive
	if g.Progress == MaxProgress {
		g.Status = models.GoalAchieved
	}
	g.CreatedAt = now
	g.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, g); err != nil {
		return models.Goal{}, err
	}
	return g, nil
}

// ListByUser returns a user's goals, newest first. An empty status lists all.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID, status string) ([]models.Goal, error) {
	filter := bson.M{"user_id": userID}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Goal
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateProgress sets a goal's progress, clamped to 0–100. Reaching 100
// marks the goal achieved. Returns mongo.ErrNoDocuments when the goal is
// not the user's.
func (s *Store) UpdateProgress(ctx context.Context, id, userID primitive.ObjectID, progress int) (models.Goal, error) {
	progress = normalize.Rating(progress, MaxProgress)
	set := bson.M{
		"progress":   progress,
		"updated_at": time.Now().UTC(),
	}
	if progress == MaxProgress {
		set["status"] = models.GoalAchieved
	}
	return s.update(ctx, id, userID, set)
}

// SetStatus changes a goal's status.
func (s *Store) SetStatus(ctx context.Context, id, userID primitive.ObjectID, status string) (models.Goal, error) {
	status = normalize.Status(status)
	if !models.ValidGoalStatus(status) {
		return models.Goal{}, ErrBadStatus
	}
	return s.update(ctx, id, userID, bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	})
}

func (s *Store) update(ctx context.Context, id, userID primitive.ObjectID, set bson.M) (models.Goal, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var g models.Goal
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": set},
		opts,
	).Decode(&g)
	return g, err
}

// Count returns the total number of goals.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.D{})
}
