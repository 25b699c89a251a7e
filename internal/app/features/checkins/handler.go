// internal/app/features/checkins/handler.go
package checkins

import (
	"time"

	uierrors "github.com/glrs/lighthouse/internal/app/features/errors"
	"github.com/glrs/lighthouse/internal/app/system/fieldcrypt"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Default crisis thresholds on the 0–10 scales.
const (
	DefaultCravingThreshold = 8
	DefaultMoodThreshold    = 2
)

// Thresholds decide when a check-in raises a crisis alert: cravings at or
// above Cravings, or mood at or below Mood.
type Thresholds struct {
	Cravings int
	Mood     int
}

// Triggered reports whether the ratings cross either threshold, and whether
// both do.
func (t Thresholds) Triggered(mood, cravings int) (any, both bool) {
	c := cravings >= t.Cravings
	m := mood <= t.Mood
	return c || m, c && m
}

// Handler owns the check-in endpoints.
type Handler struct {
	DB         *mongo.Database
	Keys       *fieldcrypt.Keyring
	Crisis     Thresholds
	DefaultLoc *time.Location
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger

	Now func() time.Time
}

// NewHandler constructs a Handler bound to the given Mongo database, keyring
// and logger.
func NewHandler(db *mongo.Database, keys *fieldcrypt.Keyring, crisis Thresholds, defaultLoc *time.Location, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return &Handler{
		DB:         db,
		Keys:       keys,
		Crisis:     crisis,
		DefaultLoc: defaultLoc,
		Log:        logger,
		ErrLog:     errLog,
		Now:        time.Now,
	}
}
