// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops background work, then tears down DB connections.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	runtimeState.mu.Lock()
	sched := runtimeState.scheduler
	limiters := runtimeState.limiters
	runtimeState.scheduler = nil
	runtimeState.limiters = nil
	runtimeState.mu.Unlock()

	if sched != nil {
		sched.Stop()
	}
	for _, l := range limiters {
		l.Stop()
	}

	if deps.LighthouseMongoClient != nil {
		logger.Info("disconnecting Lighthouse MongoDB client")
		if err := deps.LighthouseMongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
