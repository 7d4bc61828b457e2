// Package views binds behaviour to the mounted view templates: the forms,
// the catalog, node pages, the profile, comments and the navigation bar.
// The graph pages delegate to graphcanvas.
package views

import (
	"context"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"graphlearn/internal/canvas"
	"graphlearn/internal/client"
	"graphlearn/internal/config"
	"graphlearn/internal/content"
	"graphlearn/internal/domain"
	"graphlearn/internal/graphcanvas"
	"graphlearn/internal/observability"
	"graphlearn/internal/router"
	"graphlearn/internal/ui"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// API is the platform API as used by the views.
type API interface {
	graphcanvas.GraphService
	Register(ctx context.Context, creds domain.Credentials) (*domain.User, error)
	Login(ctx context.Context, creds domain.Credentials) (*domain.Token, error)
	ListGraphs(ctx context.Context, q client.GraphQuery) (*domain.GraphList, error)
	CreateGraph(ctx context.Context, in domain.GraphCreate) (*domain.GraphSummary, error)
	GetNode(ctx context.Context, nodeID string) (*domain.Node, error)
	Profile(ctx context.Context) (*domain.Profile, error)
	ListComments(ctx context.Context, graphID string, skip, limit int) ([]domain.Comment, error)
	AddComment(ctx context.Context, graphID, content string) (*domain.Comment, error)
}

// SessionStore is the session as used by the views.
type SessionStore interface {
	graphcanvas.Session
	Login(ctx context.Context, token string) error
	Logout(ctx context.Context) error
}

// DefaultStatusClearDelay is how long the node editor shows its save status.
const DefaultStatusClearDelay = 2 * time.Second

// Deps are the collaborators of the views.
type Deps struct {
	API        API
	Session    SessionStore
	Navigator  router.Navigator
	Notifier   ui.Notifier
	Loop       *ui.Loop
	Renderer   *content.Renderer
	Canvas     canvas.Factory
	Pagination config.Pagination
	CanvasConf config.Canvas
	Metrics    *observability.Collector
	Logger     *zap.Logger

	// StatusClearDelay overrides DefaultStatusClearDelay when positive.
	StatusClearDelay time.Duration
}

// Views holds the initializers of every dynamic view.
type Views struct {
	deps     Deps
	validate *validator.Validate

	graph *graphcanvas.Controller
}

// New creates the views.
func New(deps Deps) *Views {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.StatusClearDelay <= 0 {
		deps.StatusClearDelay = DefaultStatusClearDelay
	}
	if deps.Pagination.GraphsPerPage <= 0 {
		deps.Pagination.GraphsPerPage = 10
	}
	if deps.Pagination.CommentsPerPage <= 0 {
		deps.Pagination.CommentsPerPage = 5
	}
	return &Views{deps: deps, validate: validator.New()}
}

// Graph returns the controller of the graph currently shown, if any.
func (v *Views) Graph() *graphcanvas.Controller {
	return v.graph
}

func (v *Views) canvasDeps() graphcanvas.Deps {
	return graphcanvas.Deps{
		API:       v.deps.API,
		Session:   v.deps.Session,
		Canvas:    v.deps.Canvas,
		Notifier:  v.deps.Notifier,
		Navigator: v.deps.Navigator,
		Loop:      v.deps.Loop,
		Config:    v.deps.CanvasConf,
		Metrics:   v.deps.Metrics,
		Logger:    v.deps.Logger,
	}
}

// GraphView initializes /graphs/{id}.
func (v *Views) GraphView(ctx context.Context, view router.ViewContext) {
	ctrl := graphcanvas.New(v.canvasDeps(), view.Param("id"), view.Page)
	v.graph = ctrl
	ctrl.RenderView(ctx)
	newComments(v.deps, view.Param("id"), view.Page).init(ctx)
}

// GraphEditor initializes /graphs/{id}/edit.
func (v *Views) GraphEditor(ctx context.Context, view router.ViewContext) {
	ctrl := graphcanvas.New(v.canvasDeps(), view.Param("id"), view.Page)
	v.graph = ctrl
	ctrl.RenderEditor(ctx)
}

// linkTo makes a click on id navigate to path.
func (v *Views) linkTo(page *ui.Page, id, path string) {
	page.On(id, ui.EventClick, func(ctx context.Context, _ ui.Event) {
		v.deps.Navigator.Navigate(ctx, path)
	})
}

func showError(page *ui.Page, id, message string) {
	page.SetText(id, message)
	page.Show(id)
}

func escape(s string) string {
	return html.EscapeString(s)
}

// truncate shortens text to max runes, adding an ellipsis.
func truncate(text string, max int) string {
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:max])) + "..."
}

const dateLayout = "2006-01-02"
