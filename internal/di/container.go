// Package di wires the client together with google/wire. wire.go holds the
// injector; wire_gen.go is its generated form.
package di

import (
	"graphlearn/internal/app"
	"graphlearn/internal/client"
	"graphlearn/internal/config"
	"graphlearn/internal/observability"
	"graphlearn/internal/router"
	"graphlearn/internal/session"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config  *config.Config
	Level   zap.AtomicLevel
	Logger  *zap.Logger
	Metrics *observability.Collector
	Tracing *observability.TracerProvider
	Session *session.Store
	API     *client.API
	Loader  router.TemplateLoader
	App     *app.App
}

// Watch applies log level changes from a config watcher.
func (c *Container) Watch(w *config.Watcher) {
	w.OnChange(c.ApplyConfig)
}

// ApplyConfig applies the parts of cfg that can change at runtime.
func (c *Container) ApplyConfig(cfg *config.Config) {
	level, err := zap.ParseAtomicLevel(cfg.Logging.Level)
	if err != nil {
		c.Logger.Warn("Ignoring invalid log level", zap.String("level", cfg.Logging.Level))
		return
	}
	if level.Level() != c.Level.Level() {
		c.Level.SetLevel(level.Level())
		c.Logger.Info("Log level changed", zap.String("level", level.String()))
	}
}
