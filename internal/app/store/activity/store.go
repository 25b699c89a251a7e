// internal/app/store/activity/store.go
package activity

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event types for activity tracking.
const (
	EventCheckInSubmitted    = "checkin_submitted"    // PIR submitted a check-in
	EventAssignmentCompleted = "assignment_completed" // PIR finished an assignment
	EventGoalUpdated         = "goal_updated"         // PIR changed goal progress or status
	EventAlertRaised         = "alert_raised"         // crisis alert created
	EventAlertTransitioned   = "alert_transitioned"   // coach acknowledged or resolved an alert
	EventCoachAssigned       = "coach_assigned"       // admin moved a PIR to a caseload
	EventStatusChanged       = "status_changed"       // admin enabled or disabled a PIR
	EventProfileUpdated      = "profile_updated"      // user edited their own profile
	EventResourceAssigned    = "resource_assigned"    // coach put a guide on a PIR's tab
)

// Event is one entry in a PIR's activity feed.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`

	EventType string `bson:"event_type" json:"event_type"`

	// RequestID ties the event to the API request or job run that caused it.
	RequestID string              `bson:"request_id,omitempty" json:"request_id,omitempty"`
	SubjectID *primitive.ObjectID `bson:"subject_id,omitempty" json:"subject_id,omitempty"`
	Details   map[string]any      `bson:"details,omitempty" json:"details,omitempty"`
}

// Store manages activity events.
type Store struct {
	c *mongo.Collection
}

// New creates a new activity Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("activity_events")}
}

// Create records a new activity event.
func (s *Store) Create(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// Record is shorthand for Create with the common fields.
func (s *Store) Record(ctx context.Context, userID primitive.ObjectID, eventType, requestID string, subjectID *primitive.ObjectID, details map[string]any) error {
	return s.Create(ctx, Event{
		UserID:    userID,
		EventType: eventType,
		RequestID: requestID,
		SubjectID: subjectID,
		Details:   details,
	})
}

// GetByUser retrieves recent events for a user.
func (s *Store) GetByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]Event, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// GetByUserInTimeRange retrieves events for a user within a time range.
func (s *Store) GetByUserInTimeRange(ctx context.Context, userID primitive.ObjectID, start, end time.Time) ([]Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})

	filter := bson.M{
		"user_id": userID,
		"timestamp": bson.M{
			"$gte": start,
			"$lte": end,
		},
	}

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Last returns the user's most recent event of eventType, or nil.
func (s *Store) Last(ctx context.Context, userID primitive.ObjectID, eventType string) (*Event, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	var event Event
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "event_type": eventType}, opts).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// CountByUserInTimeRange counts events for a user in a time range.
func (s *Store) CountByUserInTimeRange(ctx context.Context, userID primitive.ObjectID, eventType string, start, end time.Time) (int64, error) {
	filter := bson.M{
		"user_id":    userID,
		"event_type": eventType,
		"timestamp": bson.M{
			"$gte": start,
			"$lte": end,
		},
	}
	return s.c.CountDocuments(ctx, filter)
}
