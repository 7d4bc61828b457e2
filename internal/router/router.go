// Package router implements client-side navigation: resolving paths to view
// templates, guarding private paths, mounting the loaded view and running its
// initializer.
package router

import (
	"context"
	"net/url"
	"strings"

	"graphlearn/internal/observability"
	"graphlearn/internal/ui"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultLoginPath is where unauthenticated visitors of private paths go.
const DefaultLoginPath = "/login"

// Authenticator answers whether a session exists.
type Authenticator interface {
	IsAuthenticated(ctx context.Context) bool
}

// Navigator is the navigation surface views depend on.
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// NavigationState is the state of the most recent successful navigation.
type NavigationState struct {
	Path   string
	Route  string
	Params map[string]string
	Query  url.Values
}

// Config holds the collaborators of a Router.
type Config struct {
	Table      *RouteTable
	Private    []PrivateRule
	LoginPath  string
	Auth       Authenticator
	Loader     TemplateLoader
	Container  *ui.Container
	History    History
	Dispatcher *Dispatcher
	Loop       *ui.Loop
	Metrics    *observability.Collector
	Logger     *zap.Logger
}

// Router owns navigation. All methods must be called from the loop goroutine.
type Router struct {
	table      *RouteTable
	private    []PrivateRule
	loginPath  string
	auth       Authenticator
	loader     TemplateLoader
	container  *ui.Container
	history    History
	dispatcher *Dispatcher
	loop       *ui.Loop
	tracer     trace.Tracer
	metrics    *observability.Collector
	logger     *zap.Logger

	generation uint64
	state      NavigationState
}

// New creates a router.
func New(cfg Config) *Router {
	if cfg.LoginPath == "" {
		cfg.LoginPath = DefaultLoginPath
	}
	if cfg.History == nil {
		cfg.History = NewMemoryHistory()
	}
	if cfg.Dispatcher == nil {
		cfg.Dispatcher = NewDispatcher(cfg.Logger)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Router{
		table:      cfg.Table,
		private:    cfg.Private,
		loginPath:  cfg.LoginPath,
		auth:       cfg.Auth,
		loader:     cfg.Loader,
		container:  cfg.Container,
		history:    cfg.History,
		dispatcher: cfg.Dispatcher,
		loop:       cfg.Loop,
		tracer:     otel.Tracer(observability.TracerName),
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

// Navigate moves to path. Private paths without a session redirect to the
// login path. The view template loads asynchronously; on success the view is
// mounted, the path is pushed to history and exactly one initializer runs.
// On failure an inline error replaces the content and history is unchanged.
func (r *Router) Navigate(ctx context.Context, path string) {
	r.render(ctx, path, r.history.Push)
}

// Back re-renders the previous history entry without pushing a new one.
// It reports false when there is nothing to go back to. When the previous
// entry redirects to the login path, the login path takes the popped entry's
// place.
func (r *Router) Back(ctx context.Context) bool {
	prev, ok := r.history.Previous()
	if !ok {
		return false
	}
	r.render(ctx, prev, func(shown string) {
		r.history.Pop()
		if shown != prev {
			r.history.Push(shown)
		}
	})
	return true
}

// Reload re-renders the current path. It reports false when nothing has been
// shown yet.
func (r *Router) Reload(ctx context.Context) bool {
	current := r.history.Current()
	if current == "" {
		return false
	}
	r.render(ctx, current, func(shown string) {
		if shown != current {
			r.history.Push(shown)
		}
	})
	return true
}

// State returns the current navigation state.
func (r *Router) State() NavigationState {
	return r.state
}

// History returns the navigation history.
func (r *Router) History() History {
	return r.history
}

// IsPrivate reports whether a path needs a session.
func (r *Router) IsPrivate(pathname string) bool {
	for _, rule := range r.private {
		if rule.Matches(pathname) {
			return true
		}
	}
	return false
}

// render loads and mounts path. commit receives the path actually shown,
// which is the login path after a redirect.
func (r *Router) render(ctx context.Context, path string, commit func(shown string)) {
	pathname, query := splitPath(path)

	if pathname != r.loginPath && r.IsPrivate(pathname) && !r.authenticated(ctx) {
		r.logger.Info("Redirecting private path to login", zap.String("path", pathname))
		r.render(ctx, r.loginPath, commit)
		return
	}

	match := r.table.Resolve(pathname)
	r.generation++
	gen := r.generation

	ctx, span := r.tracer.Start(ctx, "router.navigate", trace.WithAttributes(
		attribute.String("path", pathname),
		attribute.String("route", match.Route.Name),
	))

	var markup string
	r.loop.Go(ctx, func(ctx context.Context) error {
		m, err := r.loader.Load(ctx, match.Route.Template)
		markup = m
		return err
	}, func(err error) {
		defer span.End()
		r.metrics.RecordTemplateLoad(err)

		if gen != r.generation {
			r.logger.Debug("Dropping stale template load", zap.String("path", path))
			return
		}
		if err != nil {
			span.RecordError(err)
			r.logger.Error("Failed to load view template",
				zap.String("path", path),
				zap.String("template", match.Route.Template),
				zap.Error(err))
			r.container.ShowError(ui.Present(err))
			return
		}

		page, err := ui.ParsePage(match.Route.Template, markup)
		if err != nil {
			span.RecordError(err)
			r.logger.Error("Failed to parse view template", zap.String("template", match.Route.Template), zap.Error(err))
			r.container.ShowError(ui.MsgTemplateLoad)
			return
		}

		r.container.Mount(page)
		commit(path)
		r.state = NavigationState{Path: pathname, Route: match.Route.Name, Params: match.Params, Query: query}
		r.metrics.RecordNavigation(match.Route.Name)
		r.logger.Info("Navigated", zap.String("path", path), zap.String("route", match.Route.Name))

		r.dispatcher.Dispatch(ctx, ViewContext{
			Page:   page,
			Route:  match.Route.Name,
			Path:   pathname,
			Params: match.Params,
			Query:  query,
		})
	})
}

func (r *Router) authenticated(ctx context.Context) bool {
	return r.auth != nil && r.auth.IsAuthenticated(ctx)
}

func splitPath(path string) (string, url.Values) {
	pathname, rawQuery, _ := strings.Cut(path, "?")
	if pathname == "" {
		pathname = "/"
	}
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		query = url.Values{}
	}
	return pathname, query
}
