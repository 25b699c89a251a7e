// internal/app/features/assignments/handler.go
package assignments

import (
	"time"

	uierrors "github.com/glrs/lighthouse/internal/app/features/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the assignment endpoints for PIRs and staff.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger

	Now func() time.Time
}

// NewHandler constructs an assignments Handler.
func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Log: logger, ErrLog: errLog, Now: time.Now}
}
