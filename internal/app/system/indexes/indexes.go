// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each collection's index set is idempotent.
Errors are aggregated so every problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	for _, c := range collections() {
		if err := ensureIndexSet(ctx, db.Collection(c.name), c.models); err != nil {
			problems = append(problems, c.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type collectionIndexes struct {
	name   string
	models []mongo.IndexModel
}

func idx(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name)}
}

func unique(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name).SetUnique(true)}
}

func collections() []collectionIndexes {
	return []collectionIndexes{
		{"users", []mongo.IndexModel{
			unique("uniq_users_email", bson.D{{Key: "email", Value: 1}}),
			idx("idx_users_role_name", bson.D{{Key: "role", Value: 1}, {Key: "full_name_ci", Value: 1}}),
			idx("idx_users_coach", bson.D{{Key: "coach_id", Value: 1}, {Key: "status", Value: 1}}),
		}},
		{"check_ins", []mongo.IndexModel{
			// one check-in per PIR per day per period
			unique("uniq_checkins_user_day_period", bson.D{{Key: "user_id", Value: 1}, {Key: "local_date", Value: 1}, {Key: "period", Value: 1}}),
			idx("idx_checkins_user_created", bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}),
			idx("idx_checkins_day", bson.D{{Key: "local_date", Value: 1}}),
		}},
		{"assignments", []mongo.IndexModel{
			idx("idx_assignments_user_status", bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}, {Key: "due_date", Value: 1}}),
			idx("idx_assignments_coach", bson.D{{Key: "coach_id", Value: 1}, {Key: "created_at", Value: -1}}),
		}},
		{"goals", []mongo.IndexModel{
			idx("idx_goals_user_status", bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}}),
		}},
		{"meetings", []mongo.IndexModel{
			idx("idx_meetings_day_kind", bson.D{{Key: "day_of_week", Value: 1}, {Key: "kind", Value: 1}, {Key: "start_time", Value: 1}}),
			idx("idx_meetings_geocode", bson.D{{Key: "geocode_status", Value: 1}, {Key: "_id", Value: 1}}),
		}},
		{"crisis_alerts", []mongo.IndexModel{
			idx("idx_alerts_coach_status", bson.D{{Key: "coach_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}}),
			idx("idx_alerts_user_source", bson.D{{Key: "user_id", Value: 1}, {Key: "source", Value: 1}, {Key: "status", Value: 1}}),
		}},
		{"resources", []mongo.IndexModel{
			unique("uniq_resources_title", bson.D{{Key: "title_ci", Value: 1}}),
			idx("idx_resources_status_kind", bson.D{{Key: "status", Value: 1}, {Key: "kind", Value: 1}, {Key: "title_ci", Value: 1}}),
		}},
		{"resource_assignments", []mongo.IndexModel{
			// a guide sits on a PIR's tab at most once
			unique("uniq_resource_assignments_user_resource", bson.D{{Key: "user_id", Value: 1}, {Key: "resource_id", Value: 1}}),
			idx("idx_resource_assignments_user_created", bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}),
		}},
		{"activity_events", []mongo.IndexModel{
			idx("idx_activity_user", bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}),
			idx("idx_activity_type", bson.D{{Key: "event_type", Value: 1}, {Key: "timestamp", Value: -1}}),
		}},
	}
}

// Mongo and DocumentDB report IndexOptionsConflict when the same keys already
// exist under another name. The existing index serves, so that is not fatal.
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 85 || ce.Code == 86) {
		return true
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict") ||
		strings.Contains(err.Error(), "IndexKeySpecsConflict")
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string
	for _, m := range models {
		name := ""
		if m.Options != nil && m.Options.Name != nil {
			name = *m.Options.Name
		}
		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isOptionsConflictErr(err) {
				zap.L().Warn("index exists with different options; keeping existing",
					zap.String("collection", coll.Name()),
					zap.String("name", name),
					zap.Error(err))
				continue
			}
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			continue
		}
		zap.L().Debug("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", name))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
