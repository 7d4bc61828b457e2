package app

import (
	"context"
	"fmt"

	"graphlearn/internal/canvas"
	"graphlearn/internal/config"
	"graphlearn/internal/content"
	"graphlearn/internal/observability"
	"graphlearn/internal/router"
	"graphlearn/internal/session"
	"graphlearn/internal/ui"
	"graphlearn/internal/views"

	"go.uber.org/zap"
)

// Deps are the collaborators App is assembled from.
type Deps struct {
	API      views.API
	Session  *session.Store
	Loader   router.TemplateLoader
	Notifier ui.Notifier
	Loop     *ui.Loop
	Canvas   canvas.Factory
	Renderer *content.Renderer
	Config   *config.Config
	Metrics  *observability.Collector
	Logger   *zap.Logger

	// NavMarkup is the navigation bar. Empty means no navigation bar.
	NavMarkup string
}

// App is an assembled client: one container, one router and the views
// behind it.
type App struct {
	Container *ui.Container
	Router    *router.Router
	Views     *views.Views
	Nav       *views.Nav
	Table     *router.RouteTable
	Loop      *ui.Loop
	Session   *session.Store

	logger *zap.Logger
}

// New wires the router, the view initializers and the navigation bar.
func New(deps Deps) (*App, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Loop == nil {
		deps.Loop = ui.NewLoop(deps.Logger)
	}
	if deps.Canvas == nil {
		deps.Canvas = canvas.NewSceneFactory()
	}
	if deps.Renderer == nil {
		deps.Renderer = content.NewRenderer(deps.Logger, deps.Metrics)
	}

	table, err := RouteTable()
	if err != nil {
		return nil, fmt.Errorf("failed to build route table: %w", err)
	}

	a := &App{
		Container: ui.NewContainer(),
		Table:     table,
		Loop:      deps.Loop,
		Session:   deps.Session,
		logger:    deps.Logger,
	}

	dispatcher := router.NewDispatcher(deps.Logger)
	a.Router = router.New(router.Config{
		Table:      table,
		Private:    PrivateRules(),
		Auth:       deps.Session,
		Loader:     deps.Loader,
		Container:  a.Container,
		Dispatcher: dispatcher,
		Loop:       deps.Loop,
		Metrics:    deps.Metrics,
		Logger:     deps.Logger.Named("router"),
	})

	vdeps := views.Deps{
		API:       deps.API,
		Session:   deps.Session,
		Navigator: a.Router,
		Notifier:  deps.Notifier,
		Loop:      deps.Loop,
		Renderer:  deps.Renderer,
		Canvas:    deps.Canvas,
		Metrics:   deps.Metrics,
		Logger:    deps.Logger.Named("views"),
	}
	if deps.Config != nil {
		vdeps.Pagination = deps.Config.Pagination
		vdeps.CanvasConf = deps.Config.Canvas
	}
	a.Views = views.New(vdeps)
	Register(dispatcher, a.Views)

	if deps.NavMarkup != "" {
		nav, err := views.NewNav(deps.NavMarkup, deps.Session, a.Router, deps.Logger.Named("nav"))
		if err != nil {
			return nil, fmt.Errorf("failed to build navigation bar: %w", err)
		}
		nav.Follow(deps.Session)
		a.Nav = nav
	}

	return a, nil
}

// Start renders the navigation bar and navigates to the initial path.
func (a *App) Start(ctx context.Context, path string) error {
	if a.Nav != nil {
		a.Nav.Refresh(ctx)
	}
	if path == "" {
		path = "/"
	}
	a.Router.Navigate(ctx, path)
	return a.Loop.Drain(ctx)
}

// Settle runs pending continuations until the client is idle.
func (a *App) Settle(ctx context.Context) error {
	return a.Loop.Drain(ctx)
}

// Page returns the mounted view page, or nil while an error is shown.
func (a *App) Page() *ui.Page {
	return a.Container.Page()
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}
