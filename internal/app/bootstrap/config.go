// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/glrs/lighthouse/internal/app/features/checkins"
	"go.uber.org/zap"
)

// minFieldSecret is the shortest field_secret accepted outside dev.
const minFieldSecret = 16

// appConfigKeys defines the configuration keys for Lighthouse.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: LIGHTHOUSE_MONGO_URI, LIGHTHOUSE_FIELD_SECRET, etc.
//   - Command-line flags: --mongo_uri, --field_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "lighthouse", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "lighthouse-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime (e.g., 24h, 720h)"},

	// Sensitive field encryption
	{Name: "field_secret", Default: "dev-only-field-secret", Desc: "Secret for encrypting notes and phone numbers"},

	{Name: "default_time_zone", Default: "America/New_York", Desc: "IANA zone for users without one"},

	// Crisis detection
	{Name: "crisis_craving_threshold", Default: checkins.DefaultCravingThreshold, Desc: "Cravings at or above this raise a crisis alert (0-10)"},
	{Name: "crisis_mood_threshold", Default: checkins.DefaultMoodThreshold, Desc: "Mood at or below this raises a crisis alert (0-10)"},
	{Name: "missed_checkin_hours", Default: 48, Desc: "Hours without a check-in before a missed check-in alert"},
	{Name: "jobs_enabled", Default: true, Desc: "Run background jobs in this process"},
	{Name: "checkin_rate_limit", Default: 10, Desc: "Check-in submissions per user per minute (0 disables)"},

	// Geocoding
	{Name: "geocode_url", Default: "https://nominatim.openstreetmap.org", Desc: "Nominatim-compatible geocoder base URL"},
	{Name: "geocode_api_key", Default: "", Desc: "Geocoder API key (optional)"},
	{Name: "geocode_rps", Default: 1, Desc: "Geocoder requests per second"},

	// Admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of an admin user (promotes/creates on startup)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, LIGHTHOUSE_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "LIGHTHOUSE", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 30*24*time.Hour),

		FieldSecret:     appValues.String("field_secret"),
		DefaultTimeZone: appValues.String("default_time_zone"),

		CrisisCravingThreshold: appValues.Int("crisis_craving_threshold"),
		CrisisMoodThreshold:    appValues.Int("crisis_mood_threshold"),
		MissedCheckInHours:     appValues.Int("missed_checkin_hours"),
		JobsEnabled:            appValues.Bool("jobs_enabled"),
		CheckInRateLimit:       appValues.Int("checkin_rate_limit"),

		GeocodeURL:    appValues.String("geocode_url"),
		GeocodeAPIKey: appValues.String("geocode_api_key"),
		GeocodeRPS:    appValues.Int("geocode_rps"),

		AdminEmail: appValues.String("admin_email"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Lighthouse validates the MongoDB URI, the time zone and the crisis
// thresholds before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.DefaultTimeZone != "" {
		if _, err := time.LoadLocation(appCfg.DefaultTimeZone); err != nil {
			return fmt.Errorf("default_time_zone %q: %w", appCfg.DefaultTimeZone, err)
		}
	}
	if appCfg.CrisisCravingThreshold < 0 || appCfg.CrisisCravingThreshold > 10 {
		return fmt.Errorf("crisis_craving_threshold must be 0-10, got %d", appCfg.CrisisCravingThreshold)
	}
	if appCfg.CrisisMoodThreshold < 0 || appCfg.CrisisMoodThreshold > 10 {
		return fmt.Errorf("crisis_mood_threshold must be 0-10, got %d", appCfg.CrisisMoodThreshold)
	}
	if appCfg.MissedCheckInHours < 1 {
		return fmt.Errorf("missed_checkin_hours must be positive, got %d", appCfg.MissedCheckInHours)
	}
	if appCfg.FieldSecret == "" {
		return fmt.Errorf("field_secret is required")
	}
	if coreCfg != nil && coreCfg.Env == "prod" && len(appCfg.FieldSecret) < minFieldSecret {
		return fmt.Errorf("field_secret must be at least %d characters in prod", minFieldSecret)
	}
	return nil
}
