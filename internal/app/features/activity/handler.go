// internal/app/features/activity/handler.go
package activity

import (
	"time"

	uierrors "github.com/glrs/lighthouse/internal/app/features/errors"
	"github.com/glrs/lighthouse/internal/app/store/activity"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves a PIR's activity feed to staff.
type Handler struct {
	DB       *mongo.Database
	Activity *activity.Store
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger

	Now func() time.Time
}

// NewHandler creates a new activity Handler.
func NewHandler(db *mongo.Database, activityStore *activity.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Activity: activityStore,
		ErrLog:   errLog,
		Log:      logger,
		Now:      time.Now,
	}
}
