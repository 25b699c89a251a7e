// internal/app/bootstrap/routes.go
package bootstrap

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/waffle/config"
	activityfeature "github.com/glrs/lighthouse/internal/app/features/activity"
	alertsfeature "github.com/glrs/lighthouse/internal/app/features/alerts"
	assignmentsfeature "github.com/glrs/lighthouse/internal/app/features/assignments"
	checkinsfeature "github.com/glrs/lighthouse/internal/app/features/checkins"
	dashboardfeature "github.com/glrs/lighthouse/internal/app/features/dashboard"
	errorsfeature "github.com/glrs/lighthouse/internal/app/features/errors"
	goalsfeature "github.com/glrs/lighthouse/internal/app/features/goals"
	healthfeature "github.com/glrs/lighthouse/internal/app/features/health"
	meetingsfeature "github.com/glrs/lighthouse/internal/app/features/meetings"
	pirsfeature "github.com/glrs/lighthouse/internal/app/features/pirs"
	profilefeature "github.com/glrs/lighthouse/internal/app/features/profile"
	resourcesfeature "github.com/glrs/lighthouse/internal/app/features/resources"
	statsfeature "github.com/glrs/lighthouse/internal/app/features/stats"
	activitystore "github.com/glrs/lighthouse/internal/app/store/activity"
	userstore "github.com/glrs/lighthouse/internal/app/store/users"
	"github.com/glrs/lighthouse/internal/app/system/auth"
	"github.com/glrs/lighthouse/internal/app/system/fieldcrypt"
	"github.com/glrs/lighthouse/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// Layout:
//
//	/health                       public
//	/api/checkins, /stats, ...    signed-in; role checked per feature
//	/api/resources                guides library and a PIR's Guides tab
//	/api/pirs                     coaches and admins
//	/api/pirs/{id}/<feature>      staff view of one PIR
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.LighthouseMongoDatabase

	// LoadSessionUser fetches fresh user data on each request so role
	// changes and disabled accounts take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	keys, err := fieldcrypt.NewKeyring(appCfg.FieldSecret)
	if err != nil {
		return nil, fmt.Errorf("field keyring: %w", err)
	}

	var checkInLimiter *ratelimit.Limiter
	if appCfg.CheckInRateLimit > 0 {
		checkInLimiter = ratelimit.New(appCfg.CheckInRateLimit, time.Minute)
		trackLimiter(checkInLimiter)
	}

	loc := appCfg.Location()
	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler()

	checkinsHandler := checkinsfeature.NewHandler(db, keys,
		checkinsfeature.Thresholds{Cravings: appCfg.CrisisCravingThreshold, Mood: appCfg.CrisisMoodThreshold},
		loc, errLog, logger)
	statsHandler := statsfeature.NewHandler(db, loc, errLog, logger)
	assignmentsHandler := assignmentsfeature.NewHandler(db, errLog, logger)
	goalsHandler := goalsfeature.NewHandler(db, errLog, logger)
	alertsHandler := alertsfeature.NewHandler(db, errLog, logger)
	dashboardHandler := dashboardfeature.NewHandler(db, loc, errLog, logger)
	meetingsHandler := meetingsfeature.NewHandler(db, errLog, logger)
	resourcesHandler := resourcesfeature.NewHandler(db, errLog, logger)
	profileHandler := profilefeature.NewHandler(db, keys, loc, errLog, logger)
	pirsHandler := pirsfeature.NewHandler(db, keys, loc, errLog, logger)
	activityHandler := activityfeature.NewHandler(db, activitystore.New(db), errLog, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.LighthouseMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Route("/api", func(api chi.Router) {
		// Loads SessionUser into context if signed in, then rejects
		// anonymous callers.
		api.Use(sessionMgr.LoadSessionUser)
		api.Use(sessionMgr.RequireSignedIn)
		// Request bodies must be JSON. A cross-site form or text/plain
		// POST is refused before it reaches a handler.
		api.Use(middleware.AllowContentType("application/json"))

		api.Mount("/me", profilefeature.Routes(profileHandler))
		api.Mount("/checkins", checkinsfeature.Routes(checkinsHandler, sessionMgr, checkInLimiter))
		api.Mount("/stats", statsfeature.Routes(statsHandler, sessionMgr))
		api.Mount("/assignments", assignmentsfeature.Routes(assignmentsHandler, sessionMgr))
		api.Mount("/goals", goalsfeature.Routes(goalsHandler, sessionMgr))
		api.Mount("/meetings", meetingsfeature.Routes(meetingsHandler, sessionMgr))
		api.Mount("/resources", resourcesfeature.Routes(resourcesHandler, sessionMgr))
		api.Mount("/alerts", alertsfeature.Routes(alertsHandler, sessionMgr))
		api.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

		api.Mount("/pirs", pirsfeature.Routes(pirsHandler, sessionMgr, map[string]http.Handler{
			"checkins":    checkinsfeature.PIRRoutes(checkinsHandler),
			"stats":       statsfeature.PIRRoutes(statsHandler),
			"assignments": assignmentsfeature.PIRRoutes(assignmentsHandler),
			"goals":       goalsfeature.PIRRoutes(goalsHandler),
			"resources":   resourcesfeature.PIRRoutes(resourcesHandler),
			"activity":    activityfeature.PIRRoutes(activityHandler),
		}))
	})

	return r, nil
}
