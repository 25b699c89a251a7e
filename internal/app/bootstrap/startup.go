// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/glrs/lighthouse/internal/app/store/activity"
	alertstore "github.com/glrs/lighthouse/internal/app/store/alerts"
	checkinstore "github.com/glrs/lighthouse/internal/app/store/checkins"
	userstore "github.com/glrs/lighthouse/internal/app/store/users"
	"github.com/glrs/lighthouse/internal/app/system/normalize"
	"github.com/glrs/lighthouse/internal/app/system/ratelimit"
	"github.com/glrs/lighthouse/internal/app/system/tasks"
	"github.com/glrs/lighthouse/internal/app/system/timeouts"
	"github.com/glrs/lighthouse/internal/app/system/timezones"
	"github.com/glrs/lighthouse/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// runtimeState holds the long-lived workers started by Startup and
// BuildHandler so Shutdown can stop them.
var runtimeState struct {
	mu        sync.Mutex
	scheduler *tasks.Scheduler
	limiters  []*ratelimit.Limiter
}

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// Lighthouse ensures the configured admin account exists and starts the
// missed check-in job.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := timezones.Load(); err != nil {
		return fmt.Errorf("load time zones: %w", err)
	}

	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, deps, appCfg.AdminEmail, logger); err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}
	}

	if !appCfg.JobsEnabled {
		logger.Info("background jobs disabled")
		return nil
	}

	db := deps.LighthouseMongoDatabase
	missed := &tasks.MissedCheckIns{
		Users:      userstore.New(db),
		CheckIns:   checkinstore.New(db),
		Alerts:     alertstore.New(db),
		Activity:   activity.New(db),
		Threshold:  time.Duration(appCfg.MissedCheckInHours) * time.Hour,
		DefaultLoc: appCfg.Location(),
		Log:        logger.Named("missed-checkins"),
	}
	sched := tasks.NewScheduler(logger, timeouts.Batch())
	sched.Add(tasks.MissedCheckInJob(missed))
	sched.Start()

	runtimeState.mu.Lock()
	runtimeState.scheduler = sched
	runtimeState.mu.Unlock()
	return nil
}

// ensureAdmin promotes the user with email to admin, creating the account
// when it does not exist.
func ensureAdmin(ctx context.Context, deps DBDeps, email string, logger *zap.Logger) error {
	email = normalize.Email(email)
	users := userstore.New(deps.LighthouseMongoDatabase)

	u, err := users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		created, err := users.Create(ctx, models.User{
			FullName: "Administrator",
			Email:    email,
			Role:     models.RoleAdmin,
		})
		if err != nil {
			return err
		}
		logger.Info("admin created", zap.String("email", email), zap.String("user_id", created.ID.Hex()))
		return nil
	case err != nil:
		return err
	}

	if u.Role == models.RoleAdmin {
		return nil
	}
	if err := users.SetRole(ctx, u.ID, models.RoleAdmin); err != nil {
		return err
	}
	logger.Info("user promoted to admin",
		zap.String("email", email),
		zap.String("user_id", u.ID.Hex()),
		zap.String("previous_role", u.Role))
	return nil
}

func trackLimiter(l *ratelimit.Limiter) {
	runtimeState.mu.Lock()
	runtimeState.limiters = append(runtimeState.limiters, l)
	runtimeState.mu.Unlock()
}
