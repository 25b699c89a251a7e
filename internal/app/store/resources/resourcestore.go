// internal/app/store/resources/resourcestore.go
package resourcestore

import (
	"context"
	"errors"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/glrs/lighthouse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicateTitle is returned when another guide already has the title.
	ErrDuplicateTitle = errors.New("a resource with this title already exists")
	// ErrTitleRequired is returned by Create when the title is blank.
	ErrTitleRequired = errors.New("resource title is required")
	// ErrBadURL is returned for a url that is not an absolute http(s) URL.
	ErrBadURL = errors.New("url must be a valid http(s) URL")
	// ErrBadKind is returned for a kind outside models.ResourceKinds.
	ErrBadKind = errors.New(`kind must be "article"|"video"|"audio"|"worksheet"|"link"`)
	// ErrBadStatus is returned by SetStatus for anything but active or disabled.
	ErrBadStatus = errors.New(`status must be "active"|"disabled"`)
)

// Store manages the guides library.
type Store struct {
	c *mongo.Collection
}

// New creates a resource Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("resources")}
}

// Create validates and inserts a guide. Kind defaults to
// models.DefaultResourceKind and the guide starts active.
func (s *Store) Create(ctx context.Context, r models.Resource) (models.Resource, error) {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return models.Resource{}, ErrTitleRequired
	}
	r.URL = strings.TrimSpace(r.URL)
	if !urlutil.IsValidAbsHTTPURL(r.URL) {
		return models.Resource{}, ErrBadURL
	}
	r.Kind = strings.ToLower(strings.TrimSpace(r.Kind))
	if r.Kind == "" {
		r.Kind = models.DefaultResourceKind
	}
	if !models.ValidResourceKind(r.Kind) {
		return models.Resource{}, ErrBadKind
	}

	now := time.Now().UTC()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	r.TitleCI = text.Fold(r.Title)
	r.Category = strings.ToLower(strings.TrimSpace(r.Category))
	r.Status = models.StatusActive
	r.CreatedAt = now
	r.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, r); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Resource{}, ErrDuplicateTitle
		}
		return models.Resource{}, err
	}
	return r, nil
}

// GetByID loads one guide. Returns mongo.ErrNoDocuments if missing.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Resource, error) {
	var r models.Resource
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	return r, err
}

// GetByIDs returns the guides with the given IDs keyed by ID.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Resource, error) {
	out := make(map[primitive.ObjectID]models.Resource, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ID] = r
	}
	return out, nil
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	Kind            string
	Category        string
	IncludeDisabled bool
}

// List returns guides ordered by title.
func (s *Store) List(ctx context.Context, f Filter) ([]models.Resource, error) {
	filter := bson.M{}
	if !f.IncludeDisabled {
		filter["status"] = models.StatusActive
	}
	if f.Kind != "" {
		filter["kind"] = f.Kind
	}
	if f.Category != "" {
		filter["category"] = strings.ToLower(f.Category)
	}
	return s.find(ctx, filter)
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Resource, error) {
	opts := options.Find().SetSort(bson.D{{Key: "title_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Resource
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetStatus enables or disables a guide. Disabled guides leave the library
// and stop showing on Guides tabs. Returns mongo.ErrNoDocuments if missing.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) (models.Resource, error) {
	if status != models.StatusActive && status != models.StatusDisabled {
		return models.Resource{}, ErrBadStatus
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var r models.Resource
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
		opts,
	).Decode(&r)
	return r, err
}
