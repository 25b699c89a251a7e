// internal/app/features/resources/handler.go
package resources

import (
	"time"

	uierrors "github.com/glrs/lighthouse/internal/app/features/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the guides library and the per-PIR Guides tab.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger

	Now func() time.Time
}

// NewHandler constructs a resources Handler.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger, ErrLog: errLog, Now: time.Now}
}
