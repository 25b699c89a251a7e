// internal/app/bootstrap/hooks.go
package bootstrap

import (
	"github.com/dalemusser/waffle/app"
)

// Hooks hands Lighthouse's config, Mongo, schema, startup and routing steps
// to the WAFFLE app runner.
var Hooks = app.Hooks[AppConfig, DBDeps]{
	Name:           "lighthouse",
	LoadConfig:     LoadConfig,
	ValidateConfig: ValidateConfig,
	ConnectDB:      ConnectDB,
	EnsureSchema:   EnsureSchema,
	Startup:        Startup,
	BuildHandler:   BuildHandler,
	Shutdown:       Shutdown,
}
