// internal/app/store/checkins/checkinstore.go
package checkinstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/glrs/lighthouse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicate is returned when the user already checked in for that day
// and period.
var ErrDuplicate = errors.New("check-in already recorded for this day and period")

// Store manages check-in documents.
type Store struct {
	c *mongo.Collection
}

// New creates a check-in Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("check_ins")}
}

// Create inserts a check-in. ID and CreatedAt are filled when zero.
// Relies on the unique (user_id, local_date, period) index.
func (s *Store) Create(ctx context.Context, ci models.CheckIn) (models.CheckIn, error) {
	if ci.ID.IsZero() {
		ci.ID = primitive.NewObjectID()
	}
	if ci.CreatedAt.IsZero() {
		ci.CreatedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, ci); err != nil {
		if wafflemongo.IsDup(err) {
			return models.CheckIn{}, ErrDuplicate
		}
		return models.CheckIn{}, err
	}
	return ci, nil
}

// ListByUser returns a user's check-ins, newest day first. from and to are
// inclusive YYYY-MM-DD bounds; empty means unbounded. limit <= 0 means no
// limit.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID, from, to string, limit int64) ([]models.CheckIn, error) {
	filter := bson.M{"user_id": userID}
	day := bson.M{}
	if from != "" {
		day["$gte"] = from
	}
	if to != "" {
		day["$lte"] = to
	}
	if len(day) > 0 {
		filter["local_date"] = day
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "local_date", Value: -1},
		{Key: "created_at", Value: -1},
	})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.CheckIn
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LocalDates returns the distinct local_date values a user has checked in
// on, unordered.
func (s *Store) LocalDates(ctx context.Context, userID primitive.ObjectID) ([]string, error) {
	raw, err := s.c.Distinct(ctx, "local_date", bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if d, ok := v.(string); ok && d != "" {
			out = append(out, d)
		}
	}
	return out, nil
}

// Last returns the user's most recent check-in, or (nil, nil) if they have
// never checked in.
func (s *Store) Last(ctx context.Context, userID primitive.ObjectID) (*models.CheckIn, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var ci models.CheckIn
	err := s.c.FindOne(ctx, bson.M{"user_id": userID}, opts).Decode(&ci)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ci, nil
}

// CountSince counts check-ins created at or after since. When userIDs is
// non-nil the count is restricted to those users.
func (s *Store) CountSince(ctx context.Context, since time.Time, userIDs []primitive.ObjectID) (int64, error) {
	filter := bson.M{"created_at": bson.M{"$gte": since}}
	if userIDs != nil {
		filter["user_id"] = bson.M{"$in": userIDs}
	}
	return s.c.CountDocuments(ctx, filter)
}

// CountByUser returns how many check-ins a user has submitted.
func (s *Store) CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"user_id": userID})
}

// Count returns the total number of check-ins.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.D{})
}

// UserIDs returns every distinct user_id referenced by a check-in.
func (s *Store) UserIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	return distinctIDs(ctx, s.c, "user_id")
}

func distinctIDs(ctx context.Context, c *mongo.Collection, field string) ([]primitive.ObjectID, error) {
	raw, err := c.Distinct(ctx, field, bson.D{})
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
