// internal/app/store/meetings/meetingstore.go
package meetingstore

import (
	"context"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/glrs/lighthouse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages the meeting directory.
type Store struct {
	c *mongo.Collection
}

// New creates a meeting Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("meetings")}
}

// Create inserts a meeting.
func (s *Store) Create(ctx context.Context, m models.Meeting) (models.Meeting, error) {
	now := time.Now().UTC()
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	m.NameCI = text.Fold(m.Name)
	m.CreatedAt = now
	m.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Meeting{}, err
	}
	return m, nil
}

// Filter narrows List. A nil DayOfWeek or empty Kind matches everything.
type Filter struct {
	DayOfWeek *int
	Kind      string
}

// List returns meetings ordered by weekday, start time and name.
func (s *Store) List(ctx context.Context, f Filter) ([]models.Meeting, error) {
	filter := bson.M{}
	if f.DayOfWeek != nil {
		filter["day_of_week"] = *f.DayOfWeek
	}
	if f.Kind != "" {
		filter["kind"] = f.Kind
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "day_of_week", Value: 1},
		{Key: "start_time", Value: 1},
		{Key: "name_ci", Value: 1},
	})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Meeting
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NextForGeocoding returns up to limit meetings with _id greater than after,
// in _id order. Without force only meetings that were never geocoded are
// returned.
func (s *Store) NextForGeocoding(ctx context.Context, after primitive.ObjectID, force bool, limit int64) ([]models.Meeting, error) {
	filter := bson.M{}
	if !after.IsZero() {
		filter["_id"] = bson.M{"$gt": after}
	}
	if !force {
		filter["$or"] = bson.A{
			bson.M{"geocode_status": bson.M{"$exists": false}},
			bson.M{"geocode_status": ""},
		}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Meeting
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetGeocode records a geocoding outcome. loc is nil unless status is ok.
func (s *Store) SetGeocode(ctx context.Context, id primitive.ObjectID, formatted string, loc *models.GeoPoint, status string, at time.Time) error {
	set := bson.M{
		"geocode_status": status,
		"geocoded_at":    at.UTC(),
		"updated_at":     at.UTC(),
	}
	update := bson.M{"$set": set}
	if formatted != "" {
		set["address.formatted"] = formatted
	}
	if loc != nil {
		set["location"] = loc
	} else {
		update["$unset"] = bson.M{"location": ""}
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Count returns the total number of meetings.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.D{})
}
