// internal/app/store/assignments/assignmentstore.go
package assignmentstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/glrs/lighthouse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrTitleRequired is returned by Create when the title is blank.
	ErrTitleRequired = errors.New("assignment title is required")
	// ErrAlreadyCompleted is returned by Complete for finished assignments.
	ErrAlreadyCompleted = errors.New("assignment already completed")
)

// Store manages coach-to-PIR assignments.
type Store struct {
	c *mongo.Collection
}

// New creates an assignment Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("assignments")}
}

// Create inserts a pending assignment.
func (s *Store) Create(ctx context.Context, a models.Assignment) (models.Assignment, error) {
	a.Title = strings.TrimSpace(a.Title)
	if a.Title == "" {
		return models.Assignment{}, ErrTitleRequired
	}
	now := time.Now().UTC()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	a.Status = models.AssignmentPending
	a.CompletedAt = nil
	a.CreatedAt = now
	a.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Assignment{}, err
	}
	return a, nil
}

// GetByID loads one assignment. Returns mongo.ErrNoDocuments if missing.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Assignment, error) {
	var a models.Assignment
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	return a, err
}

// ListByUser returns a PIR's assignments, soonest due first. An empty
// status lists all.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID, status string) ([]models.Assignment, error) {
	filter := bson.M{"user_id": userID}
	if status != "" {
		filter["status"] = status
	}
	return s.find(ctx, filter)
}

// ListByCoach returns every assignment a coach has handed out.
func (s *Store) ListByCoach(ctx context.Context, coachID primitive.ObjectID) ([]models.Assignment, error) {
	return s.find(ctx, bson.M{"coach_id": coachID})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Assignment, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "due_date", Value: 1},
		{Key: "created_at", Value: 1},
	})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Assignment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Complete marks the user's pending assignment completed at now.
// Returns mongo.ErrNoDocuments when the assignment does not belong to userID
// and ErrAlreadyCompleted when it was finished before.
func (s *Store) Complete(ctx context.Context, id, userID primitive.ObjectID, now time.Time) (models.Assignment, error) {
	now = now.UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var a models.Assignment
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "user_id": userID, "status": models.AssignmentPending},
		bson.M{"$set": bson.M{
			"status":       models.AssignmentCompleted,
			"completed_at": now,
			"updated_at":   now,
		}},
		opts,
	).Decode(&a)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.Assignment{}, err
	}

	n, cerr := s.c.CountDocuments(ctx, bson.M{"_id": id, "user_id": userID})
	if cerr != nil {
		return models.Assignment{}, cerr
	}
	if n > 0 {
		return models.Assignment{}, ErrAlreadyCompleted
	}
	return models.Assignment{}, mongo.ErrNoDocuments
}

// Compliance counts the user's assignments due within [start, end] and how
// many of those are completed.
func (s *Store) Compliance(ctx context.Context, userID primitive.ObjectID, start, end time.Time) (completed, due int64, err error) {
	filter := bson.M{
		"user_id":  userID,
		"due_date": bson.M{"$gte": start, "$lte": end},
	}
	due, err = s.c.CountDocuments(ctx, filter)
	if err != nil || due == 0 {
		return 0, due, err
	}
	filter["status"] = models.AssignmentCompleted
	completed, err = s.c.CountDocuments(ctx, filter)
	return completed, due, err
}

// CountPending counts pending assignments, optionally for one coach.
func (s *Store) CountPending(ctx context.Context, coachID *primitive.ObjectID) (int64, error) {
	filter := bson.M{"status": models.AssignmentPending}
	if coachID != nil {
		filter["coach_id"] = *coachID
	}
	return s.c.CountDocuments(ctx, filter)
}

// Count returns the total number of assignments.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.D{})
}

// UserIDs returns every distinct user_id referenced by an assignment.
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
