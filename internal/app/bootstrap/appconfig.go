// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, logging, CORS); everything specific
// to Lighthouse lives here and is passed to each lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: lighthouse-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// FieldSecret derives the per-user keys that encrypt check-in notes and
	// phone numbers. Changing it makes existing ciphertext unreadable.
	FieldSecret string

	// DefaultTimeZone is used for users without a valid time_zone.
	DefaultTimeZone string

	// Crisis detection
	CrisisCravingThreshold int // cravings at or above this raise an alert
	CrisisMoodThreshold    int // mood at or below this raises an alert
	MissedCheckInHours     int // silence longer than this raises an alert
	JobsEnabled            bool

	// CheckInRateLimit caps check-in submissions per user per minute.
	// Zero disables the limit.
	CheckInRateLimit int

	// Geocoding (lighthousectl migrate-addresses)
	GeocodeURL    string
	GeocodeAPIKey string
	GeocodeRPS    int

	// AdminEmail names an account promoted to admin (or created) on startup.
	AdminEmail string
}

// Location resolves DefaultTimeZone, falling back to UTC.
func (c AppConfig) Location() *time.Location {
	if c.DefaultTimeZone != "" {
		if loc, err := time.LoadLocation(c.DefaultTimeZone); err == nil {
			return loc
		}
	}
	return time.UTC
}
