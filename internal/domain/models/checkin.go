// internal/domain/models/checkin.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Check-in periods. A PIR may submit one check-in per period per day.
const (
	PeriodMorning = "morning"
	PeriodEvening = "evening"
)

// MaxRating is the top of every 0–10 check-in scale.
const MaxRating = 10

// CheckIn is a PIR's self-report for one period of one day.
//
// LocalDate is the calendar day (YYYY-MM-DD) in the PIR's time zone at the
// moment of submission. Streaks are computed from it, not from CreatedAt.
type CheckIn struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	LocalDate string             `bson:"local_date" json:"local_date"`
	Period    string             `bson:"period" json:"period"`

	Mood     int `bson:"mood" json:"mood"`
	Cravings int `bson:"cravings" json:"cravings"`
	Anxiety  int `bson:"anxiety" json:"anxiety"`
	Sleep    int `bson:"sleep" json:"sleep"`

	Notes string `bson:"notes,omitempty" json:"notes,omitempty"` // encrypted at rest

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// ValidPeriod reports whether p is a known check-in period.
func ValidPeriod(p string) bool {
	return p == PeriodMorning || p == PeriodEvening
}
