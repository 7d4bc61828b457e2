package di

import (
	"context"
	"fmt"
	"time"

	"graphlearn/internal/app"
	"graphlearn/internal/canvas"
	"graphlearn/internal/client"
	"graphlearn/internal/config"
	"graphlearn/internal/content"
	"graphlearn/internal/observability"
	"graphlearn/internal/router"
	"graphlearn/internal/session"
	"graphlearn/internal/ui"
	"graphlearn/web"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// MemorySessionPath keeps the session in memory instead of sqlite.
const MemorySessionPath = ":memory:"

// ProvideLogLevel creates the level shared by the logger and the config
// watcher.
func ProvideLogLevel(cfg *config.Config) (zap.AtomicLevel, error) {
	level, err := zap.ParseAtomicLevel(cfg.Logging.Level)
	if err != nil {
		return zap.AtomicLevel{}, fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, err)
	}
	return level, nil
}

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.IsProduction() {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	zc.Encoding = cfg.Logging.Format
	if cfg.Logging.Format == "console" {
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	zc.OutputPaths = []string{cfg.Logging.Output}
	zc.ErrorOutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("environment", string(cfg.Environment))), nil
}

// ProvideMetrics creates the collector, or nil when metrics are disabled.
func ProvideMetrics(cfg *config.Config) *observability.Collector {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return observability.NewCollector(cfg.Metrics.Namespace)
}

// ProvideTracing installs the tracer provider and flushes it on cleanup.
func ProvideTracing(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     Version,
		Environment: string(cfg.Environment),
		Endpoint:    cfg.Tracing.Endpoint,
	})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// ProvideSessionStorage opens the sqlite session file, or memory storage for
// MemorySessionPath.
func ProvideSessionStorage(cfg *config.Config, logger *zap.Logger) (session.Storage, func(), error) {
	if cfg.Session.Path == MemorySessionPath {
		return session.NewMemoryStorage(), func() {}, nil
	}
	storage, err := session.OpenSQLiteStorage(cfg.Session.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open session storage: %w", err)
	}
	cleanup := func() {
		if err := storage.Close(); err != nil {
			logger.Warn("Failed to close session storage", zap.Error(err))
		}
	}
	return storage, cleanup, nil
}

// ProvideSessionStore creates the session store.
func ProvideSessionStore(storage session.Storage, logger *zap.Logger) *session.Store {
	return session.NewStore(storage, logger.Named("session"))
}

// ProvideRequestClient creates the HTTP client for the platform API.
func ProvideRequestClient(
	cfg *config.Config,
	store *session.Store,
	tp *observability.TracerProvider,
	metrics *observability.Collector,
	logger *zap.Logger,
) *client.RequestClient {
	return client.NewRequestClient(cfg.API, cfg.CircuitBreaker, store, logger.Named("client"),
		client.WithTracer(tp.Tracer()),
		client.WithMetrics(metrics),
	)
}

// ProvideAPI creates the typed API.
func ProvideAPI(rc *client.RequestClient) *client.API {
	return client.NewAPI(rc)
}

// ProvideTemplateLoader reads templates from the binary or over HTTP.
func ProvideTemplateLoader(cfg *config.Config) router.TemplateLoader {
	if cfg.Templates.Source == config.EmbeddedTemplates {
		return router.NewFSTemplateLoader(web.Pages)
	}
	return router.NewHTTPTemplateLoader(cfg.Templates.Source, nil)
}

// ProvideRenderer creates the rich-content renderer.
func ProvideRenderer(logger *zap.Logger, metrics *observability.Collector) *content.Renderer {
	return content.NewRenderer(logger.Named("content"), metrics)
}

// ProvideLoop creates the UI loop.
func ProvideLoop(logger *zap.Logger) *ui.Loop {
	return ui.NewLoop(logger.Named("loop"))
}

// ProvideCanvasFactory creates in-memory canvas widgets.
func ProvideCanvasFactory() canvas.Factory {
	return canvas.NewSceneFactory()
}

// ProvideApp assembles the client.
func ProvideApp(
	cfg *config.Config,
	api *client.API,
	store *session.Store,
	loader router.TemplateLoader,
	notifier ui.Notifier,
	loop *ui.Loop,
	factory canvas.Factory,
	renderer *content.Renderer,
	metrics *observability.Collector,
	logger *zap.Logger,
) (*app.App, error) {
	nav, err := web.NavMarkup()
	if err != nil {
		return nil, fmt.Errorf("failed to read navigation markup: %w", err)
	}
	return app.New(app.Deps{
		API:       api,
		Session:   store,
		Loader:    loader,
		Notifier:  notifier,
		Loop:      loop,
		Canvas:    factory,
		Renderer:  renderer,
		Config:    cfg,
		Metrics:   metrics,
		Logger:    logger,
		NavMarkup: nav,
	})
}
