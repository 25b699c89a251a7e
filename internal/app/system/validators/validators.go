package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/glrs/lighthouse/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("check_ins", checkInsSchema())
	ensure("assignments", assignmentsSchema())
	ensure("goals", goalsSchema())
	ensure("meetings", meetingsSchema())
	ensure("crisis_alerts", crisisAlertsSchema())
	ensure("resources", resourcesSchema())
	ensure("resource_assignments", resourceAssignmentsSchema())

	// No validator; the collection is still created up front.
	ensure("activity_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func rating() bson.M {
	return bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0, "maximum": models.MaxRating}
}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"full_name", "email", "role", "status"},
			"properties": bson.M{
				"full_name":     nonBlank,
				"full_name_ci":  bson.M{"bsonType": "string"},
				"email":         nonBlank,
				"role":          bson.M{"enum": bson.A{models.RolePIR, models.RoleCoach, models.RoleAdmin}},
				"status":        bson.M{"enum": bson.A{models.StatusActive, models.StatusDisabled}},
				"coach_id":      bson.M{"bsonType": bson.A{"objectId", "null"}},
				"time_zone":     bson.M{"bsonType": "string"},
				"sobriety_date": bson.M{"bsonType": bson.A{"date", "null"}},
			},
		},
	}
}

func checkInsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "local_date", "period", "created_at"},
			"properties": bson.M{
				"user_id":    bson.M{"bsonType": "objectId"},
				"local_date": bson.M{"bsonType": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
				"period":     bson.M{"enum": bson.A{models.PeriodMorning, models.PeriodEvening}},
				"mood":       rating(),
				"cravings":   rating(),
				"anxiety":    rating(),
				"sleep":      rating(),
				"notes":      bson.M{"bsonType": "string"},
				"created_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func assignmentsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "coach_id", "title", "status"},
			"properties": bson.M{
				"user_id":      bson.M{"bsonType": "objectId"},
				"coach_id":     bson.M{"bsonType": "objectId"},
				"title":        nonBlank,
				"status":       bson.M{"enum": bson.A{models.AssignmentPending, models.AssignmentCompleted}},
				"due_date":     bson.M{"bsonType": bson.A{"date", "null"}},
				"completed_at": bson.M{"bsonType": bson.A{"date", "null"}},
			},
		},
	}
}

func goalsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "title", "status", "progress"},
			"properties": bson.M{
				"user_id":  bson.M{"bsonType": "objectId"},
				"title":    nonBlank,
				"status":   bson.M{"enum": bson.A{models.GoalActive, models.GoalAchieved, models.GoalAbandoned}},
				"progress": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0, "maximum": 100},
			},
		},
	}
}

func meetingsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "day_of_week"},
			"properties": bson.M{
				"name":           nonBlank,
				"day_of_week":    bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0, "maximum": 6},
				"geocode_status": bson.M{"enum": bson.A{"", models.GeocodeOK, models.GeocodeNotFound, models.GeocodeError}},
			},
		},
	}
}

func crisisAlertsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "source", "severity", "status"},
			"properties": bson.M{
				"user_id":  bson.M{"bsonType": "objectId"},
				"source":   bson.M{"enum": bson.A{models.AlertSourceCheckIn, models.AlertSourceMissedCheckIn}},
				"severity": bson.M{"enum": bson.A{models.SeverityHigh, models.SeverityCritical}},
				"status":   bson.M{"enum": bson.A{models.AlertOpen, models.AlertAcknowledged, models.AlertResolved}},
			},
		},
	}
}

func resourcesSchema() bson.M {
	kinds := make(bson.A, 0, len(models.ResourceKinds))
	for _, k := range models.ResourceKinds {
		kinds = append(kinds, k)
	}
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "kind", "url", "status"},
			"properties": bson.M{
				"title":  nonBlank,
				"kind":   bson.M{"enum": kinds},
				"url":    bson.M{"bsonType": "string", "pattern": "^https?://"},
				"status": bson.M{"enum": bson.A{models.StatusActive, models.StatusDisabled}},
			},
		},
	}
}

func resourceAssignmentsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"user_id", "resource_id", "assigned_by_id", "created_at"},
			"properties": bson.M{
				"user_id":        bson.M{"bsonType": "objectId"},
				"resource_id":    bson.M{"bsonType": "objectId"},
				"assigned_by_id": bson.M{"bsonType": "objectId"},
				"created_at":     bson.M{"bsonType": "date"},
			},
		},
	}
}
