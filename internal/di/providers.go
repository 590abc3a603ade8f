// Package di wires the engine and its collaborators for the CLI.
package di

import (
	"github.com/kcaldas/condenser/pkg/config"
	"github.com/kcaldas/condenser/pkg/discovery"
	"github.com/kcaldas/condenser/pkg/engine"
	"github.com/kcaldas/condenser/pkg/events"
	"github.com/kcaldas/condenser/pkg/fileops"
	"github.com/kcaldas/condenser/pkg/logging"
)

// Runner bundles everything one CLI invocation needs.
type Runner struct {
	Engine *engine.Engine
	Bus    events.Bus
	Walker *discovery.Walker
	Files  fileops.Manager
}

// Each runner gets its own bus so Shutdown drains only its events.
func provideBus() events.Bus {
	return events.NewBus()
}

func providePublisher(bus events.Bus) events.Publisher {
	return bus
}

func provideLogger() logging.Logger {
	return logging.NewComponentLogger("engine")
}

func provideEngine(cfg config.Config, pub events.Publisher, logger logging.Logger) (*engine.Engine, error) {
	return engine.New(cfg, engine.WithPublisher(pub), engine.WithLogger(logger))
}

func provideWalker(cfg config.Config) *discovery.Walker {
	return discovery.NewOsWalker(discovery.Options{MaxFileBytes: cfg.MaxFileBytes})
}
