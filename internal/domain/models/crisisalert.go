// internal/domain/models/crisisalert.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Alert sources.
const (
	AlertSourceCheckIn       = "check_in"
	AlertSourceMissedCheckIn = "missed_check_in"
)

// Alert severities.
const (
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Alert statuses. Alerts move open → acknowledged → resolved; an open alert
// may also be resolved directly.
const (
	AlertOpen         = "open"
	AlertAcknowledged = "acknowledged"
	AlertResolved     = "resolved"
)

// CrisisAlert flags a PIR for their coach's attention.
type CrisisAlert struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID  `bson:"user_id" json:"user_id"`
	CoachID        *primitive.ObjectID `bson:"coach_id,omitempty" json:"coach_id,omitempty"`
	Source         string              `bson:"source" json:"source"`
	Severity       string              `bson:"severity" json:"severity"`
	CheckInID      *primitive.ObjectID `bson:"check_in_id,omitempty" json:"check_in_id,omitempty"`
	Message        string              `bson:"message" json:"message"`
	Status         string              `bson:"status" json:"status"`
	AcknowledgedBy *primitive.ObjectID `bson:"acknowledged_by,omitempty" json:"acknowledged_by,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CanTransition reports whether an alert may move from one status to another.
func CanTransition(from, to string) bool {
	switch from {
	case AlertOpen:
		return to == AlertAcknowledged || to == AlertResolved
	case AlertAcknowledged:
		return to == AlertResolved
	}
	return false
}
