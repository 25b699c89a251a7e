// internal/domain/models/goal.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Goal statuses.
const (
	GoalActive    = "active"
	GoalAchieved  = "achieved"
	GoalAbandoned = "abandoned"
)

// Goal is a PIR's personal recovery goal. Progress is a 0–100 percentage.
type Goal struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	Title      string             `bson:"title" json:"title"`
	TargetDate *time.Time         `bson:"target_date,omitempty" json:"target_date,omitempty"`
	Status     string             `bson:"status" json:"status"`
	Progress   int                `bson:"progress" json:"progress"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ValidGoalStatus reports whether s is a known goal status.
func ValidGoalStatus(s string) bool {
	switch s {
	case GoalActive, GoalAchieved, GoalAbandoned:
		return true
	}
	return false
}
