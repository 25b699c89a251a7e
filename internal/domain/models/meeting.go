// internal/domain/models/meeting.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Geocode statuses. An empty status means the address was never geocoded.
const (
	GeocodeOK       = "ok"
	GeocodeNotFound = "not_found"
	GeocodeError    = "error"
)

// Meeting kinds.
const (
	KindAA    = "AA"
	KindNA    = "NA"
	KindSMART = "SMART"
	KindOther = "other"
)

// MeetingKind maps s to a known kind, ignoring case.
func MeetingKind(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, k := range []string{KindAA, KindNA, KindSMART, KindOther} {
		if strings.EqualFold(s, k) {
			return k, true
		}
	}
	return "", false
}

// Address is a postal address as entered by staff.
type Address struct {
	Street    string `bson:"street,omitempty" json:"street,omitempty"`
	City      string `bson:"city,omitempty" json:"city,omitempty"`
	State     string `bson:"state,omitempty" json:"state,omitempty"`
	Zip       string `bson:"zip,omitempty" json:"zip,omitempty"`
	Formatted string `bson:"formatted,omitempty" json:"formatted,omitempty"`
}

// OneLine joins the non-empty parts into a single geocodable line.
// A stored Formatted value wins when present.
func (a Address) OneLine() string {
	if f := strings.TrimSpace(a.Formatted); f != "" {
		return f
	}
	var parts []string
	for _, p := range []string{a.Street, a.City, strings.TrimSpace(a.State + " " + a.Zip)} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Meeting is a recovery meeting listed in the PIR app.
type Meeting struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	NameCI        string             `bson:"name_ci" json:"-"`
	Kind          string             `bson:"kind" json:"kind"`               // AA | NA | SMART | other
	DayOfWeek     int                `bson:"day_of_week" json:"day_of_week"` // 0 = Sunday
	StartTime     string             `bson:"start_time" json:"start_time"`   // HH:MM local
	Address       Address            `bson:"address" json:"address"`
	Location      *GeoPoint          `bson:"location,omitempty" json:"location,omitempty"`
	GeocodeStatus string             `bson:"geocode_status,omitempty" json:"geocode_status,omitempty"`
	GeocodedAt    *time.Time         `bson:"geocoded_at,omitempty" json:"geocoded_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
