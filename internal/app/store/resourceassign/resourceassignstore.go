// internal/app/store/resourceassign/resourceassignstore.go
package resourceassignstore

import (
	"context"
	"errors"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/glrs/lighthouse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrAlreadyAssigned is returned by Create when the PIR already has the guide.
var ErrAlreadyAssigned = errors.New("resource already assigned to this pir")

// Store manages which guides sit on which PIR's Guides tab.
type Store struct {
	c *mongo.Collection
}

// New creates a resource assignment Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("resource_assignments")}
}

// Create inserts an assignment. The unique (user_id, resource_id) index
// turns a repeat into ErrAlreadyAssigned.
func (s *Store) Create(ctx context.Context, a models.ResourceAssignment) (models.ResourceAssignment, error) {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	a.Note = strings.TrimSpace(a.Note)
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.ResourceAssignment{}, ErrAlreadyAssigned
		}
		return models.ResourceAssignment{}, err
	}
	return a, nil
}

// ListByUser returns a PIR's assignments, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.ResourceAssignment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ResourceAssignment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes the guide from the PIR's tab. Returns mongo.ErrNoDocuments
// when it was not assigned.
func (s *Store) Delete(ctx context.Context, userID, resourceID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID, "resource_id": resourceID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
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
