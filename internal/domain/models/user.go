// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles.
const (
	RolePIR   = "pir"
	RoleCoach = "coach"
	RoleAdmin = "admin"
)

// User statuses.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// User represents PIRs, coaches, and admins.
//
// NOTE:
//   - CoachID is only set for PIRs. A coach's caseload is every PIR
//     whose coach_id points at them.
//   - Phone is stored encrypted (see fieldcrypt); handlers decrypt on read.
type User struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FullName     string              `bson:"full_name" json:"full_name"`
	FullNameCI   string              `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Email        string              `bson:"email" json:"email"`
	Role         string              `bson:"role" json:"role"` // pir | coach | admin
	Status       string              `bson:"status,omitempty" json:"status,omitempty"`
	CoachID      *primitive.ObjectID `bson:"coach_id,omitempty" json:"coach_id,omitempty"`
	TimeZone     string              `bson:"time_zone,omitempty" json:"time_zone,omitempty"`
	SobrietyDate *time.Time          `bson:"sobriety_date,omitempty" json:"sobriety_date,omitempty"`
	Phone        string              `bson:"phone,omitempty" json:"phone,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RolePIR, RoleCoach, RoleAdmin:
		return true
	}
	return false
}

// Location returns the user's time zone, falling back to def and then UTC.
func (u User) Location(def *time.Location) *time.Location {
	if u.TimeZone != "" {
		if loc, err := time.LoadLocation(u.TimeZone); err == nil {
			return loc
		}
	}
	if def != nil {
		return def
	}
	return time.UTC
}
