// Package graphcanvas drives the graph canvas in its two modes: the
// read-only view with voting and learning progress, and the editor with its
// edge-creation state machine.
package graphcanvas

import (
	"context"
	"fmt"

	"graphlearn/internal/canvas"
	"graphlearn/internal/config"
	"graphlearn/internal/domain"
	"graphlearn/internal/observability"
	"graphlearn/internal/router"
	"graphlearn/internal/ui"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// GraphService is the part of the platform API the canvas needs.
type GraphService interface {
	GetGraph(ctx context.Context, graphID string) (*domain.Graph, error)
	RateGraph(ctx context.Context, graphID string, value domain.Vote) error
	MarkLearned(ctx context.Context, nodeID string) error
	UnmarkLearned(ctx context.Context, nodeID string) error
	CreateNode(ctx context.Context, graphID string, in domain.NodeCreate) (*domain.Node, error)
	CreateEdge(ctx context.Context, graphID string, in domain.EdgeCreate) (*domain.Edge, error)
	UpdateNode(ctx context.Context, nodeID string, in domain.NodeUpdate) (*domain.Node, error)
	DeleteNode(ctx context.Context, nodeID string) error
	DeleteEdge(ctx context.Context, edgeID string) error
}

// Session tells the controller who is looking at the graph.
type Session interface {
	IsAuthenticated(ctx context.Context) bool
	UserID(ctx context.Context) string
}

// Deps are shared by every controller instance.
type Deps struct {
	API       GraphService
	Session   Session
	Canvas    canvas.Factory
	Notifier  ui.Notifier
	Navigator router.Navigator
	Loop      *ui.Loop
	Config    config.Canvas
	Metrics   *observability.Collector
	Logger    *zap.Logger
}

// Controller owns one mounted graph view. A new controller is created for
// every navigation, so nothing carries over between visits.
type Controller struct {
	deps    Deps
	graphID string
	page    *ui.Page

	graph      *domain.Graph
	widget     canvas.Widget
	hasSession bool
	isOwner    bool
	votes      domain.VoteState
	learned    domain.LearnedSet

	state    EditorState
	inflight map[string]struct{}
	validate *validator.Validate
}

// New creates a controller for the graph rendered into page.
func New(deps Deps, graphID string, page *ui.Page) *Controller {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Controller{
		deps:     deps,
		graphID:  graphID,
		page:     page,
		learned:  domain.NewLearnedSet(),
		inflight: make(map[string]struct{}),
		validate: validator.New(),
	}
}

// GraphID returns the graph the controller shows.
func (c *Controller) GraphID() string {
	return c.graphID
}

// Graph returns the loaded graph detail, or nil before it arrives.
func (c *Controller) Graph() *domain.Graph {
	return c.graph
}

// Widget returns the canvas, or nil before the graph is loaded.
func (c *Controller) Widget() canvas.Widget {
	return c.widget
}

// IsOwner reports whether the signed-in user owns the graph.
func (c *Controller) IsOwner() bool {
	return c.isOwner
}

// Busy reports whether an action with the key is in flight.
func (c *Controller) Busy(key string) bool {
	_, ok := c.inflight[key]
	return ok
}

// begin marks key as in flight. It returns false when it already is.
func (c *Controller) begin(key string) bool {
	if c.Busy(key) {
		c.deps.Logger.Debug("Ignoring duplicate action", zap.String("action", key))
		return false
	}
	c.inflight[key] = struct{}{}
	return true
}

func (c *Controller) end(key string) {
	delete(c.inflight, key)
}

// load fetches the graph detail and builds the canvas. errorTarget is
// replaced by an inline error when the fetch or the canvas fails.
func (c *Controller) load(ctx context.Context, loadingTarget, errorTarget string, styles []canvas.Style, ready func()) {
	c.page.SetText(loadingTarget, "Loading...")

	var graph *domain.Graph
	c.deps.Loop.Go(ctx, func(ctx context.Context) error {
		g, err := c.deps.API.GetGraph(ctx, c.graphID)
		graph = g
		return err
	}, func(err error) {
		if err != nil {
			c.deps.Logger.Warn("Failed to load graph", zap.String("graph_id", c.graphID), zap.Error(err))
			c.showInlineError(errorTarget, ui.Presentf(err, "Failed to load graph"))
			return
		}

		widget, err := c.deps.Canvas(canvas.Options{
			Elements: graph.Elements,
			Styles:   styles,
			Layout:   "preset",
			Padding:  c.deps.Config.Padding,
			Width:    c.deps.Config.Width,
			Height:   c.deps.Config.Height,
			MinZoom:  c.deps.Config.MinZoom,
			MaxZoom:  c.deps.Config.MaxZoom,
		})
		if err != nil {
			c.deps.Logger.Error("Failed to build canvas", zap.String("graph_id", c.graphID), zap.Error(err))
			c.showInlineError(errorTarget, fmt.Sprintf("Failed to draw graph: %v", err))
			return
		}

		c.graph = graph
		c.widget = widget
		c.hasSession = c.deps.Session.IsAuthenticated(ctx)
		c.isOwner = c.hasSession && graph.IsOwnedBy(c.deps.Session.UserID(ctx))
		c.votes = graph.Votes()
		c.learned = graph.Learned()
		c.bindZoomControls()
		ready()
	})
}

func (c *Controller) showInlineError(target, message string) {
	c.page.SetHTML(target, `<div class="alert alert-danger">`+escape(message)+`</div>`)
}

func (c *Controller) bindZoomControls() {
	c.page.On("zoom-in-btn", ui.EventClick, func(context.Context, ui.Event) {
		c.ZoomIn()
	})
	c.page.On("zoom-out-btn", ui.EventClick, func(context.Context, ui.Event) {
		c.ZoomOut()
	})
	c.page.On("fit-btn", ui.EventClick, func(context.Context, ui.Event) {
		c.Fit()
	})
}

// ZoomIn zooms in by the configured factor, within the zoom bounds.
func (c *Controller) ZoomIn() {
	if c.widget != nil {
		c.widget.SetZoom(c.widget.Zoom() * c.deps.Config.ZoomInFactor)
	}
}

// ZoomOut zooms out by the configured factor, within the zoom bounds.
func (c *Controller) ZoomOut() {
	if c.widget != nil {
		c.widget.SetZoom(c.widget.Zoom() * c.deps.Config.ZoomOutFactor)
	}
}

// Fit fits all elements into the viewport.
func (c *Controller) Fit() {
	if c.widget != nil {
		c.widget.Fit()
	}
}

// ViewportCenter returns the model coordinates under the centre of the
// widget's viewport.
func ViewportCenter(w canvas.Widget) domain.Position {
	width, height := w.Size()
	pan := w.Pan()
	zoom := w.Zoom()
	if zoom == 0 {
		zoom = 1
	}
	return domain.Position{
		X: (width/2 - pan.X) / zoom,
		Y: (height/2 - pan.Y) / zoom,
	}
}

func (c *Controller) nodeLabel(id string) string {
	if c.widget == nil {
		return id
	}
	if el, ok := c.widget.Element(id); ok && el.Data.Label != "" {
		return el.Data.Label
	}
	return id
}

func (c *Controller) record(action string, err error) {
	c.deps.Metrics.RecordCanvasAction(action, err)
}
