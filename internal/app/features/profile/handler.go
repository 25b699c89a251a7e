// internal/app/features/profile/handler.go
package profile

import (
	"time"

	uierrors "github.com/glrs/lighthouse/internal/app/features/errors"
	"github.com/glrs/lighthouse/internal/app/system/fieldcrypt"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the signed-in user's own profile.
type Handler struct {
	DB         *mongo.Database
	Keys       *fieldcrypt.Keyring
	DefaultLoc *time.Location
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger

	Now func() time.Time
}

// NewHandler constructs a Handler bound to the given Mongo database and logger.
func NewHandler(db *mongo.Database, keys *fieldcrypt.Keyring, defaultLoc *time.Location, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Keys:       keys,
		DefaultLoc: defaultLoc,
		Log:        logger,
		ErrLog:     errLog,
		Now:        time.Now,
	}
}
