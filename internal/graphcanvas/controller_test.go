package graphcanvas

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"graphlearn/internal/canvas"
	"graphlearn/internal/config"
	"graphlearn/internal/domain"
	"graphlearn/internal/mocks"
	"graphlearn/internal/ui"
	pkgerrors "graphlearn/pkg/errors"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const viewMarkup = `<div>
<div id="graph-info-container"></div>
<button id="zoom-in-btn">+</button><button id="zoom-out-btn">-</button><button id="fit-btn">fit</button>
<div id="cy"></div>
<div id="node-action-modal" class="d-none"><h5 id="node-action-title"></h5><div id="node-action-buttons"></div></div>
</div>`

const editorMarkup = `<div id="editor-root">
<h1 id="graph-name"></h1><a id="view-graph-link" href="#">View</a>
<button id="add-node-btn">Add node</button><button id="add-edge-btn">Add edge</button>
<div id="editor-instructions" class="d-none"></div>
<div id="cy-edit"></div>
<div id="add-node-modal" class="d-none"><form id="add-node-form"><input id="new-node-name" name="name"></form>
<button id="save-node-btn" type="button">Save</button></div>
<div id="edit-node-action-modal" class="d-none"><h5 id="edit-node-action-title"></h5><div id="edit-node-action-buttons"></div></div>
</div>`

type fakeSession struct{ userID string }

func (f fakeSession) IsAuthenticated(context.Context) bool { return f.userID != "" }
func (f fakeSession) UserID(context.Context) string        { return f.userID }

type recordingNavigator struct{ paths []string }

func (n *recordingNavigator) Navigate(_ context.Context, path string) {
	n.paths = append(n.paths, path)
}

type harness struct {
	api      *mocks.MockAPI
	notifier *ui.RecordingNotifier
	nav      *recordingNavigator
	loop     *ui.Loop
	page     *ui.Page
	ctrl     *Controller
}

func sampleGraph() *domain.Graph {
	return &domain.Graph{
		GraphSummary: domain.GraphSummary{
			ID:        "g1",
			Name:      "Calculus",
			CreatedAt: domain.Timestamp{Time: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
			Owner:     domain.User{ID: "owner-1", Username: "ann"},
			Likes:     5,
			Dislikes:  2,
		},
		Elements: []domain.Element{
			domain.NodeElement("a", "Limits", domain.Position{X: 0, Y: 0}),
			domain.NodeElement("b", "Derivatives", domain.Position{X: 100, Y: 50}),
			domain.EdgeElement(domain.Edge{ID: "e1", SourceNodeID: "a", TargetNodeID: "b"}),
		},
		LearnedNodeIDs: []string{"a"},
	}
}

func newHarness(t *testing.T, markup, userID string, answers ...bool) *harness {
	t.Helper()
	page, err := ui.ParsePage("test", markup)
	require.NoError(t, err)

	h := &harness{
		api:      new(mocks.MockAPI),
		notifier: ui.NewRecordingNotifier(answers...),
		nav:      &recordingNavigator{},
		loop:     ui.NewLoop(nil),
		page:     page,
	}
	h.ctrl = New(Deps{
		API:       h.api,
		Session:   fakeSession{userID: userID},
		Canvas:    canvas.NewSceneFactory(),
		Notifier:  h.notifier,
		Navigator: h.nav,
		Loop:      h.loop,
		Config: config.Canvas{
			MinZoom: 0.1, MaxZoom: 3, ZoomInFactor: 1.2, ZoomOutFactor: 0.8,
			Padding: 30, Width: 800, Height: 600,
		},
	}, "g1", page)
	return h
}

func (h *harness) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.loop.Drain(ctx))
}

func (h *harness) scene(t *testing.T) *canvas.Scene {
	t.Helper()
	s, ok := h.ctrl.Widget().(*canvas.Scene)
	require.True(t, ok)
	return s
}

func renderedView(t *testing.T, userID string) *harness {
	h := newHarness(t, viewMarkup, userID)
	h.api.On("GetGraph", mock.Anything, "g1").Return(sampleGraph(), nil)
	h.ctrl.RenderView(context.Background())
	h.drain(t)
	return h
}

func renderedEditor(t *testing.T, answers ...bool) *harness {
	h := newHarness(t, editorMarkup, "owner-1", answers...)
	h.api.On("GetGraph", mock.Anything, "g1").Return(sampleGraph(), nil)
	h.ctrl.RenderEditor(context.Background())
	h.drain(t)
	return h
}

func TestRenderView_ReadOnlyWithLearnedNodes(t *testing.T) {
	h := renderedView(t, "viewer-1")
	w := h.ctrl.Widget()

	require.NotNil(t, w)
	assert.True(t, w.HasClass("a", canvas.ClassLearned))
	assert.False(t, w.HasClass("b", canvas.ClassLearned))
	assert.False(t, w.Grabbable())
	assert.Equal(t, "Calculus", h.page.Text("graph-name"))
	assert.Equal(t, "5", h.page.Text("like-count"))
	assert.Equal(t, "2", h.page.Text("dislike-count"))
	assert.False(t, h.page.Disabled("vote-up-btn"))
	assert.False(t, h.page.Has("edit-graph-link"))
}

func TestRenderView_FetchFailureShowsInlineError(t *testing.T) {
	h := newHarness(t, viewMarkup, "viewer-1")
	h.api.On("GetGraph", mock.Anything, "g1").Return(nil, pkgerrors.NewServerRejection(404, "Graph not found"))

	h.ctrl.RenderView(context.Background())
	h.drain(t)

	assert.Nil(t, h.ctrl.Widget())
	assert.Contains(t, h.page.Text("graph-info-container"), "Failed to load graph: Graph not found")
}

func TestRenderView_OwnerCannotVote(t *testing.T) {
	h := renderedView(t, "owner-1")

	assert.True(t, h.ctrl.IsOwner())
	assert.True(t, h.page.Disabled("vote-up-btn"))
	assert.True(t, h.page.Has("edit-graph-link"))

	h.ctrl.Vote(context.Background(), domain.VoteUp)
	h.drain(t)
	h.api.AssertNotCalled(t, "RateGraph", mock.Anything, mock.Anything, mock.Anything)

	h.page.Click(context.Background(), "edit-graph-link")
	assert.Equal(t, []string{"/graphs/g1/edit"}, h.nav.paths)
}

func TestVote_Reconciliation(t *testing.T) {
	h := renderedView(t, "viewer-1")
	h.api.On("RateGraph", mock.Anything, "g1", mock.Anything).Return(nil)
	ctx := context.Background()

	h.page.Click(ctx, "vote-up-btn")
	assert.Equal(t, domain.VoteState{MyVote: domain.VoteUp, Likes: 6, Dislikes: 2}, h.ctrl.Votes())
	assert.Equal(t, "6", h.page.Text("like-count"))
	h.drain(t)

	h.page.Click(ctx, "vote-up-btn")
	assert.Equal(t, domain.VoteState{MyVote: domain.VoteNone, Likes: 5, Dislikes: 2}, h.ctrl.Votes())
	h.drain(t)

	h.page.Click(ctx, "vote-up-btn")
	h.drain(t)
	h.page.Click(ctx, "vote-down-btn")
	h.drain(t)

	assert.Equal(t, domain.VoteState{MyVote: domain.VoteDown, Likes: 5, Dislikes: 3}, h.ctrl.Votes())
	assert.True(t, h.page.HasClass("vote-down-btn", "active"))
	assert.False(t, h.page.HasClass("vote-up-btn", "active"))
	h.api.AssertNumberOfCalls(t, "RateGraph", 4)
}

func TestVote_RollsBackOnFailure(t *testing.T) {
	h := renderedView(t, "viewer-1")
	h.api.On("RateGraph", mock.Anything, "g1", domain.VoteDown).Return(pkgerrors.NewServerRejection(400, "Voting closed"))

	h.ctrl.Vote(context.Background(), domain.VoteDown)
	assert.Equal(t, 3, h.ctrl.Votes().Dislikes)
	h.drain(t)

	assert.Equal(t, domain.VoteState{MyVote: domain.VoteNone, Likes: 5, Dislikes: 2}, h.ctrl.Votes())
	assert.Equal(t, "2", h.page.Text("dislike-count"))
	assert.Equal(t, []string{"Failed to rate graph: Voting closed"}, h.notifier.Alerts())
}

func TestVote_OneRequestInFlight(t *testing.T) {
	h := renderedView(t, "viewer-1")
	h.api.On("RateGraph", mock.Anything, "g1", mock.Anything).Return(nil)
	ctx := context.Background()

	h.ctrl.Vote(ctx, domain.VoteUp)
	h.ctrl.Vote(ctx, domain.VoteUp)
	assert.False(t, h.page.Click(ctx, "vote-down-btn"))
	h.drain(t)

	h.api.AssertNumberOfCalls(t, "RateGraph", 1)
	assert.Equal(t, domain.VoteUp, h.ctrl.Votes().MyVote)
	assert.False(t, h.page.Disabled("vote-up-btn"))
}

func TestVote_AnonymousIgnored(t *testing.T) {
	h := renderedView(t, "")

	assert.True(t, h.page.Disabled("vote-up-btn"))
	h.ctrl.Vote(context.Background(), domain.VoteUp)

	assert.Equal(t, 5, h.ctrl.Votes().Likes)
	h.api.AssertNotCalled(t, "RateGraph", mock.Anything, mock.Anything, mock.Anything)
}

func TestViewPanel_MarkLearnedAfterSuccess(t *testing.T) {
	h := renderedView(t, "viewer-1")
	h.api.On("MarkLearned", mock.Anything, "b").Return(nil)
	ctx := context.Background()

	h.scene(t).Tap("b")
	require.True(t, h.page.Visible("node-action-modal"))
	assert.Equal(t, `Node: "Derivatives"`, h.page.Text("node-action-title"))
	assert.False(t, h.page.Has("unmark-learned-btn"))

	require.True(t, h.page.Click(ctx, "mark-learned-btn"))
	assert.NotContains(t, h.ctrl.Learned(), "b")
	h.drain(t)

	assert.Equal(t, []string{"a", "b"}, h.ctrl.Learned())
	assert.True(t, h.ctrl.Widget().HasClass("b", canvas.ClassLearned))
	assert.False(t, h.page.Visible("node-action-modal"))
}

func TestViewPanel_UnmarkFailureKeepsState(t *testing.T) {
	h := renderedView(t, "viewer-1")
	h.api.On("UnmarkLearned", mock.Anything, "a").Return(pkgerrors.NewNetworkError("request failed", errors.New("connection refused")))

	h.scene(t).Tap("a")
	require.True(t, h.page.Click(context.Background(), "unmark-learned-btn"))
	h.drain(t)

	assert.Equal(t, []string{"a"}, h.ctrl.Learned())
	assert.True(t, h.ctrl.Widget().HasClass("a", canvas.ClassLearned))
	require.Len(t, h.notifier.Alerts(), 1)
	assert.Contains(t, h.notifier.Alerts()[0], "Failed to unmark the node")
	assert.False(t, h.page.Disabled("unmark-learned-btn"))
}

func TestViewPanel_AnonymousOnlyViewsContent(t *testing.T) {
	h := renderedView(t, "")

	h.scene(t).Tap("b")
	assert.False(t, h.page.Has("mark-learned-btn"))

	h.page.Click(context.Background(), "view-node-content-btn")
	assert.Equal(t, []string{"/nodes/b?graph_id=g1"}, h.nav.paths)
}

func TestZoomControls_Clamped(t *testing.T) {
	h := renderedView(t, "viewer-1")
	ctx := context.Background()

	for i := 0; i < 30; i++ {
		h.page.Click(ctx, "zoom-in-btn")
	}
	assert.Equal(t, 3.0, h.ctrl.Widget().Zoom())

	for i := 0; i < 60; i++ {
		h.page.Click(ctx, "zoom-out-btn")
	}
	assert.Equal(t, 0.1, h.ctrl.Widget().Zoom())
}

func TestEditor_Header(t *testing.T) {
	h := renderedEditor(t)

	assert.Equal(t, "Editing: Calculus", h.page.Text("graph-name"))
	assert.Equal(t, "/graphs/g1", h.page.Attr("view-graph-link", "href"))
	assert.True(t, h.ctrl.Widget().Grabbable())
	assert.Equal(t, EditorState{Mode: ModeNormal}, h.ctrl.State())
}

func TestEditor_EdgeModeBackgroundCancels(t *testing.T) {
	h := renderedEditor(t)
	ctx := context.Background()

	h.page.Click(ctx, "add-edge-btn")
	assert.True(t, h.ctrl.State().AwaitingSource())
	assert.Equal(t, []string{"a", "b"}, h.ctrl.Widget().WithClass(canvas.ClassEdgeMode))
	assert.Equal(t, InstructionsSource, h.page.Text("editor-instructions"))
	assert.Equal(t, "Cancel", h.page.Text("add-edge-btn"))

	h.scene(t).Tap("")
	h.drain(t)

	assert.Equal(t, EditorState{Mode: ModeNormal}, h.ctrl.State())
	assert.Empty(t, h.ctrl.Widget().WithClass(canvas.ClassEdgeMode))
	assert.False(t, h.page.Visible("editor-instructions"))
	h.api.AssertNotCalled(t, "CreateEdge", mock.Anything, mock.Anything, mock.Anything)
}

func TestEditor_SameNodeTwiceCancels(t *testing.T) {
	h := renderedEditor(t)

	h.ctrl.Dispatch(context.Background(), ToggleEdgeMode{})
	h.scene(t).Tap("a")
	assert.Equal(t, EditorState{Mode: ModeEdgeCreation, Source: "a"}, h.ctrl.State())
	assert.True(t, h.ctrl.Widget().HasClass("a", canvas.ClassEdgeSource))
	assert.Equal(t, InstructionsTarget, h.page.Text("editor-instructions"))

	h.scene(t).Tap("a")
	h.drain(t)

	assert.Equal(t, EditorState{Mode: ModeNormal}, h.ctrl.State())
	assert.Empty(t, h.ctrl.Widget().WithClass(canvas.ClassEdgeSource))
	h.api.AssertNotCalled(t, "CreateEdge", mock.Anything, mock.Anything, mock.Anything)
}

func TestEditor_CreatesOneEdge(t *testing.T) {
	h := renderedEditor(t)
	in := domain.EdgeCreate{SourceNodeID: "b", TargetNodeID: "a"}
	h.api.On("CreateEdge", mock.Anything, "g1", in).
		Return(&domain.Edge{ID: "e2", SourceNodeID: "b", TargetNodeID: "a"}, nil).Once()

	h.ctrl.Dispatch(context.Background(), ToggleEdgeMode{})
	h.scene(t).Tap("b")
	h.scene(t).Tap("a")
	assert.Equal(t, EditorState{Mode: ModeNormal}, h.ctrl.State())
	h.drain(t)

	h.api.AssertNumberOfCalls(t, "CreateEdge", 1)
	el, ok := h.ctrl.Widget().Element("e2")
	require.True(t, ok)
	assert.Equal(t, "b", el.Data.Source)
	assert.Equal(t, "a", el.Data.Target)
}

func TestEditor_SecondEdgeWhileFirstPending(t *testing.T) {
	h := newHarness(t, editorMarkup, "owner-1")
	graph := sampleGraph()
	graph.Elements = append(graph.Elements, domain.NodeElement("c", "Integrals", domain.Position{X: 200, Y: 0}))
	h.api.On("GetGraph", mock.Anything, "g1").Return(graph, nil)
	h.api.On("CreateEdge", mock.Anything, "g1", domain.EdgeCreate{SourceNodeID: "a", TargetNodeID: "c"}).
		Return(&domain.Edge{ID: "e2", SourceNodeID: "a", TargetNodeID: "c"}, nil).Once()
	h.api.On("CreateEdge", mock.Anything, "g1", domain.EdgeCreate{SourceNodeID: "b", TargetNodeID: "c"}).
		Return(&domain.Edge{ID: "e3", SourceNodeID: "b", TargetNodeID: "c"}, nil).Once()
	ctx := context.Background()
	h.ctrl.RenderEditor(ctx)
	h.drain(t)

	h.ctrl.Dispatch(ctx, ToggleEdgeMode{})
	h.scene(t).Tap("a")
	h.scene(t).Tap("c")
	require.True(t, h.ctrl.Busy(edgeKey("a", "c")))

	h.ctrl.Dispatch(ctx, ToggleEdgeMode{})
	h.scene(t).Tap("b")
	h.scene(t).Tap("c")
	h.drain(t)

	h.api.AssertNumberOfCalls(t, "CreateEdge", 2)
	assert.ElementsMatch(t, []string{"e1", "e2", "e3"}, h.ctrl.Widget().Edges())
	assert.Empty(t, h.notifier.Alerts())
}

func TestEditor_EdgeFailureNotifies(t *testing.T) {
	h := renderedEditor(t)
	h.api.On("CreateEdge", mock.Anything, "g1", mock.Anything).Return(nil, pkgerrors.NewServerRejection(400, "Edge already exists"))

	h.ctrl.Dispatch(context.Background(), ToggleEdgeMode{})
	h.scene(t).Tap("a")
	h.scene(t).Tap("b")
	h.drain(t)

	assert.Equal(t, []string{"e1"}, h.ctrl.Widget().Edges())
	assert.Equal(t, []string{"Failed to create edge: Edge already exists"}, h.notifier.Alerts())
	assert.Equal(t, EditorState{Mode: ModeNormal}, h.ctrl.State())
}

func TestEditor_AddNodeAtViewportCenter(t *testing.T) {
	h := renderedEditor(t)
	w := h.ctrl.Widget()
	w.SetZoom(2)
	w.SetPan(domain.Position{X: 100, Y: 50})
	// (800/2-100)/2, (600/2-50)/2
	want := domain.Position{X: 150, Y: 125}

	in := domain.NodeCreate{Name: "Integrals", PositionX: want.X, PositionY: want.Y}
	h.api.On("CreateNode", mock.Anything, "g1", in).Return(&domain.Node{ID: "c", Name: "Integrals"}, nil)

	ctx := context.Background()
	h.page.Click(ctx, "add-node-btn")
	require.True(t, h.page.Visible("add-node-modal"))
	h.page.SetValue("new-node-name", "  Integrals ")
	h.page.Click(ctx, "save-node-btn")
	assert.False(t, w.Has("c"))
	h.drain(t)

	pos, ok := w.Position("c")
	require.True(t, ok)
	assert.Equal(t, want, pos)
	assert.False(t, h.page.Visible("add-node-modal"))
}

func TestEditor_AddNodeIgnoresEmptyName(t *testing.T) {
	h := renderedEditor(t)

	h.ctrl.AddNode(context.Background(), "   ")
	h.drain(t)

	h.api.AssertNotCalled(t, "CreateNode", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, h.notifier.Alerts())
}

func TestEditor_AddNodeRejectsLongName(t *testing.T) {
	h := renderedEditor(t)

	h.ctrl.AddNode(context.Background(), strings.Repeat("x", 201))
	h.drain(t)

	h.api.AssertNotCalled(t, "CreateNode", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, []string{"Node name must be at most 200 characters."}, h.notifier.Alerts())
}

func TestValidationMessage(t *testing.T) {
	type code struct {
		Code string `validate:"len=3"`
	}
	v := validator.New()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"required", v.Struct(domain.NodeCreate{}), "Node name is required."},
		{"max", v.Struct(domain.NodeCreate{Name: strings.Repeat("y", 201)}), "Node name must be at most 200 characters."},
		{"other tag", v.Struct(code{Code: "ab"}), "Code is invalid (len)."},
		{"not a validation error", errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)
			assert.Equal(t, tt.want, validationMessage(tt.err))
		})
	}
}

func TestEditor_DeleteEdge(t *testing.T) {
	h := renderedEditor(t, true)
	h.api.On("DeleteEdge", mock.Anything, "e1").Return(nil).Once()

	h.scene(t).Tap("e1")
	assert.True(t, h.ctrl.Widget().Has("e1"))
	h.drain(t)

	h.api.AssertNumberOfCalls(t, "DeleteEdge", 1)
	assert.False(t, h.ctrl.Widget().Has("e1"))
	assert.Equal(t, []string{"a", "b"}, h.ctrl.Widget().Nodes())
}

func TestEditor_DeleteEdgeDeclined(t *testing.T) {
	h := renderedEditor(t, false)

	h.scene(t).Tap("e1")
	h.drain(t)

	assert.Len(t, h.notifier.Prompts(), 1)
	assert.True(t, h.ctrl.Widget().Has("e1"))
	h.api.AssertNotCalled(t, "DeleteEdge", mock.Anything, mock.Anything)
}

func TestEditor_DeleteNodeFromPanel(t *testing.T) {
	h := renderedEditor(t, true)
	h.api.On("DeleteNode", mock.Anything, "b").Return(nil).Once()
	ctx := context.Background()

	h.scene(t).Tap("b")
	require.True(t, h.page.Visible("edit-node-action-modal"))
	assert.Equal(t, "/nodes/b/edit?graph_id=g1", h.page.Attr("edit-node-content-btn", "href"))

	require.True(t, h.page.Click(ctx, "delete-node-btn"))
	h.drain(t)

	assert.False(t, h.ctrl.Widget().Has("b"))
	assert.Equal(t, []string{"a"}, h.ctrl.Widget().Nodes())
}

func TestEditor_DeleteNodeFailureKeepsNode(t *testing.T) {
	h := renderedEditor(t, true)
	h.api.On("DeleteNode", mock.Anything, "a").Return(pkgerrors.NewServerRejection(403, "Not allowed"))

	h.ctrl.DeleteNode(context.Background(), "a")
	h.drain(t)

	assert.True(t, h.ctrl.Widget().Has("a"))
	assert.Equal(t, []string{"Failed to delete node: Not allowed"}, h.notifier.Alerts())
}

func TestEditor_DragPersistsPosition(t *testing.T) {
	h := renderedEditor(t)
	target := domain.Position{X: 10, Y: 20}
	h.api.On("UpdateNode", mock.Anything, "a", domain.PositionUpdate(target)).
		Return(nil, pkgerrors.NewServerRejection(500, "boom"))

	require.True(t, h.scene(t).Drag("a", target))
	h.drain(t)

	h.api.AssertNumberOfCalls(t, "UpdateNode", 1)
	pos, _ := h.ctrl.Widget().Position("a")
	assert.Equal(t, target, pos)
	assert.Equal(t, []string{"Failed to save node position: boom"}, h.notifier.Alerts())
}

func TestInFlightGuard(t *testing.T) {
	edge := func(source, target string) func(context.Context, *harness) {
		return func(ctx context.Context, h *harness) {
			h.ctrl.Dispatch(ctx, ToggleEdgeMode{})
			h.ctrl.Dispatch(ctx, TapNode{ID: source})
			h.ctrl.Dispatch(ctx, TapNode{ID: target})
		}
	}
	addNode := func(name string) func(context.Context, *harness) {
		return func(ctx context.Context, h *harness) { h.ctrl.AddNode(ctx, name) }
	}
	deleteNode := func(id string) func(context.Context, *harness) {
		return func(ctx context.Context, h *harness) { h.ctrl.DeleteNode(ctx, id) }
	}
	toggleLearned := func(id string) func(context.Context, *harness) {
		return func(ctx context.Context, h *harness) { h.ctrl.ToggleLearned(ctx, id) }
	}
	named := func(name string) interface{} {
		return mock.MatchedBy(func(in domain.NodeCreate) bool { return in.Name == name })
	}

	tests := []struct {
		name       string
		render     func(t *testing.T) *harness
		setup      func(h *harness)
		first      func(context.Context, *harness)
		second     func(context.Context, *harness)
		wantCalls  map[string]int
		wantAlerts []string
	}{
		{
			name:   "same edge is dropped",
			render: func(t *testing.T) *harness { return renderedEditor(t) },
			setup: func(h *harness) {
				h.api.On("CreateEdge", mock.Anything, "g1", domain.EdgeCreate{SourceNodeID: "b", TargetNodeID: "a"}).
					Return(&domain.Edge{ID: "e2", SourceNodeID: "b", TargetNodeID: "a"}, nil)
			},
			first:      edge("b", "a"),
			second:     edge("b", "a"),
			wantCalls:  map[string]int{"CreateEdge": 1},
			wantAlerts: []string{DuplicateEdgeMessage},
		},
		{
			name:   "other edge goes through",
			render: func(t *testing.T) *harness { return renderedEditor(t) },
			setup: func(h *harness) {
				h.api.On("CreateEdge", mock.Anything, "g1", domain.EdgeCreate{SourceNodeID: "b", TargetNodeID: "a"}).
					Return(&domain.Edge{ID: "e2", SourceNodeID: "b", TargetNodeID: "a"}, nil)
				h.api.On("CreateEdge", mock.Anything, "g1", domain.EdgeCreate{SourceNodeID: "a", TargetNodeID: "b"}).
					Return(&domain.Edge{ID: "e3", SourceNodeID: "a", TargetNodeID: "b"}, nil)
			},
			first:     edge("b", "a"),
			second:    edge("a", "b"),
			wantCalls: map[string]int{"CreateEdge": 2},
		},
		{
			name:   "same node name is dropped",
			render: func(t *testing.T) *harness { return renderedEditor(t) },
			setup: func(h *harness) {
				h.api.On("CreateNode", mock.Anything, "g1", named("Integrals")).Return(&domain.Node{ID: "c", Name: "Integrals"}, nil)
			},
			first:      addNode("Integrals"),
			second:     addNode("Integrals"),
			wantCalls:  map[string]int{"CreateNode": 1},
			wantAlerts: []string{DuplicateNodeMessage},
		},
		{
			name:   "other node name goes through",
			render: func(t *testing.T) *harness { return renderedEditor(t) },
			setup: func(h *harness) {
				h.api.On("CreateNode", mock.Anything, "g1", named("Integrals")).Return(&domain.Node{ID: "c", Name: "Integrals"}, nil)
				h.api.On("CreateNode", mock.Anything, "g1", named("Series")).Return(&domain.Node{ID: "d", Name: "Series"}, nil)
			},
			first:     addNode("Integrals"),
			second:    addNode("Series"),
			wantCalls: map[string]int{"CreateNode": 2},
		},
		{
			name:   "same node delete is dropped",
			render: func(t *testing.T) *harness { return renderedEditor(t, true, true) },
			setup: func(h *harness) {
				h.api.On("DeleteNode", mock.Anything, "a").Return(nil)
			},
			first:     deleteNode("a"),
			second:    deleteNode("a"),
			wantCalls: map[string]int{"DeleteNode": 1},
		},
		{
			name:   "other node delete goes through",
			render: func(t *testing.T) *harness { return renderedEditor(t, true, true) },
			setup: func(h *harness) {
				h.api.On("DeleteNode", mock.Anything, mock.Anything).Return(nil)
			},
			first:     deleteNode("a"),
			second:    deleteNode("b"),
			wantCalls: map[string]int{"DeleteNode": 2},
		},
		{
			name:   "same learned toggle is dropped",
			render: func(t *testing.T) *harness { return renderedView(t, "viewer-1") },
			setup: func(h *harness) {
				h.api.On("MarkLearned", mock.Anything, "b").Return(nil)
			},
			first:     toggleLearned("b"),
			second:    toggleLearned("b"),
			wantCalls: map[string]int{"MarkLearned": 1},
		},
		{
			name:   "other learned toggle goes through",
			render: func(t *testing.T) *harness { return renderedView(t, "viewer-1") },
			setup: func(h *harness) {
				h.api.On("MarkLearned", mock.Anything, "b").Return(nil)
				h.api.On("UnmarkLearned", mock.Anything, "a").Return(nil)
			},
			first:     toggleLearned("b"),
			second:    toggleLearned("a"),
			wantCalls: map[string]int{"MarkLearned": 1, "UnmarkLearned": 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := tt.render(t)
			tt.setup(h)
			ctx := context.Background()

			tt.first(ctx, h)
			tt.second(ctx, h)
			h.drain(t)

			for method, n := range tt.wantCalls {
				h.api.AssertNumberOfCalls(t, method, n)
			}
			if tt.wantAlerts == nil {
				assert.Empty(t, h.notifier.Alerts())
			} else {
				assert.Equal(t, tt.wantAlerts, h.notifier.Alerts())
			}
		})
	}
}

func TestViewportCenter_Identity(t *testing.T) {
	s, err := canvas.NewScene(canvas.Options{Width: 400, Height: 200})
	require.NoError(t, err)

	assert.Equal(t, domain.Position{X: 200, Y: 100}, ViewportCenter(s))
}
