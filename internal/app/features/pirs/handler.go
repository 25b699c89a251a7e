// internal/app/features/pirs/handler.go
package pirs

import (
	"time"

	uierrors "github.com/glrs/lighthouse/internal/app/features/errors"
	"github.com/glrs/lighthouse/internal/app/system/fieldcrypt"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the staff view of PIRs: caseload listing, PIR detail and
// admin caseload management.
type Handler struct {
	DB         *mongo.Database
	Keys       *fieldcrypt.Keyring
	DefaultLoc *time.Location
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger

	Now func() time.Time
}

// NewHandler constructs a pirs Handler.
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
