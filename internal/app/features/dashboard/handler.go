// internal/app/features/dashboard/handler.go
package dashboard

import (
	"net/http"
	"time"

	uierrors "github.com/glrs/lighthouse/internal/app/features/errors"
	"github.com/glrs/lighthouse/internal/app/system/auth"
	"github.com/glrs/lighthouse/internal/app/system/jsonio"
	"github.com/glrs/lighthouse/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// rowConcurrency bounds the per-PIR stat queries running at once.
const rowConcurrency = 8

type Handler struct {
	DB         *mongo.Database
	DefaultLoc *time.Location
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger

	Now func() time.Time
}

func NewHandler(db *mongo.Database, defaultLoc *time.Location, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return &Handler{
		DB:         db,
		DefaultLoc: defaultLoc,
		Log:        logger,
		ErrLog:     errLog,
		Now:        time.Now,
	}
}

// ServeDashboard dispatches to the caller's role-specific view.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		jsonio.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	switch u.Role {
	case models.RoleAdmin:
		h.ServeAdmin(w, r)
	case models.RoleCoach:
		h.ServeCoach(w, r)
	default:
		h.ErrLog.LogForbidden(w, r, "dashboard denied")
	}
}
