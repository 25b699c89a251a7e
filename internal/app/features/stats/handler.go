// internal/app/features/stats/handler.go
package stats

import (
	"context"
	"errors"
	"net/http"
	"time"

	uierrors "github.com/glrs/lighthouse/internal/app/features/errors"
	"github.com/glrs/lighthouse/internal/app/policy/pirpolicy"
	metricsstore "github.com/glrs/lighthouse/internal/app/store/metrics"
	userstore "github.com/glrs/lighthouse/internal/app/store/users"
	"github.com/glrs/lighthouse/internal/app/system/jsonio"
	"github.com/glrs/lighthouse/internal/app/system/timeouts"
	"github.com/glrs/lighthouse/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves streak and compliance stats.
type Handler struct {
	DB         *mongo.Database
	DefaultLoc *time.Location
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger

	Now func() time.Time
}

// NewHandler constructs a stats Handler.
func NewHandler(db *mongo.Database, defaultLoc *time.Location, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, DefaultLoc: defaultLoc, Log: logger, ErrLog: errLog, Now: time.Now}
}

// ServeMine handles GET /api/stats/me for the signed-in PIR.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	uid, _, ok := pirpolicy.Self(r)
	if !ok {
		jsonio.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := userstore.New(h.DB).GetPIR(ctx, uid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonio.Error(w, http.StatusNotFound, "pir not found")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load user failed", err, "")
		return
	}
	h.write(ctx, w, r, u)
}

// ServePIR handles GET /api/pirs/{id}/stats for staff.
func (h *Handler) ServePIR(w http.ResponseWriter, r *http.Request) {
	pirID, ok := jsonio.ObjectIDParam(r, "id")
	if !ok {
		jsonio.Error(w, http.StatusBadRequest, "invalid pir id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	pir, allowed, err := pirpolicy.CheckPIRAccess(ctx, userstore.New(h.DB), r, pirID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load pir failed", err, "")
		return
	}
	if pir == nil {
		jsonio.Error(w, http.StatusNotFound, "pir not found")
		return
	}
	if !allowed {
		h.ErrLog.LogForbidden(w, r, "pir outside caller's caseload")
		return
	}
	h.write(ctx, w, r, pir)
}

func (h *Handler) write(ctx context.Context, w http.ResponseWriter, r *http.Request, u *models.User) {
	st, err := metricsstore.FetchPIRStats(ctx, h.DB, *u, h.Now().UTC(), h.DefaultLoc)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "compute stats failed", err, "")
		return
	}
	jsonio.Write(w, http.StatusOK, st)
}
