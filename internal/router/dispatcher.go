package router

import (
	"context"
	"net/url"

	"graphlearn/internal/ui"

	"go.uber.org/zap"
)

// ViewContext is what an initializer receives for a freshly mounted view.
type ViewContext struct {
	Page   *ui.Page
	Route  string
	Path   string
	Params map[string]string
	Query  url.Values
}

// Param returns a route param or "".
func (v ViewContext) Param(name string) string {
	return v.Params[name]
}

// Initializer binds behaviour to a mounted view.
type Initializer func(ctx context.Context, view ViewContext)

// Dispatcher maps route names to initializers.
type Dispatcher struct {
	initializers map[string]Initializer
	logger       *zap.Logger
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{initializers: make(map[string]Initializer), logger: logger}
}

// Register sets the initializer for a route name, replacing any previous one.
func (d *Dispatcher) Register(route string, init Initializer) {
	d.initializers[route] = init
}

// Dispatch runs the initializer for view.Route. Routes without one (static
// pages, not-found) are left as mounted. It reports whether one ran.
func (d *Dispatcher) Dispatch(ctx context.Context, view ViewContext) bool {
	init, ok := d.initializers[view.Route]
	if !ok {
		return false
	}
	d.logger.Debug("Initializing view", zap.String("route", view.Route), zap.String("path", view.Path))
	init(ctx, view)
	return true
}
