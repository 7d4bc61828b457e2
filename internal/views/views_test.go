package views

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"graphlearn/internal/canvas"
	"graphlearn/internal/client"
	"graphlearn/internal/config"
	"graphlearn/internal/content"
	"graphlearn/internal/domain"
	"graphlearn/internal/mocks"
	"graphlearn/internal/router"
	"graphlearn/internal/ui"
	pkgerrors "graphlearn/pkg/errors"
	"graphlearn/web"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSession struct {
	userID string
	token  string
	logins int
}

func (f *fakeSession) IsAuthenticated(context.Context) bool { return f.userID != "" }
func (f *fakeSession) UserID(context.Context) string        { return f.userID }

func (f *fakeSession) Login(_ context.Context, token string) error {
	f.token = token
	f.userID = "user-1"
	f.logins++
	return nil
}

func (f *fakeSession) Logout(context.Context) error {
	f.token = ""
	f.userID = ""
	return nil
}

type recordingNavigator struct{ paths []string }

func (n *recordingNavigator) Navigate(_ context.Context, path string) {
	n.paths = append(n.paths, path)
}

type harness struct {
	api      *mocks.MockAPI
	session  *fakeSession
	nav      *recordingNavigator
	notifier *ui.RecordingNotifier
	loop     *ui.Loop
	views    *Views
}

func newHarness(t *testing.T, userID string) *harness {
	t.Helper()
	h := &harness{
		api:      new(mocks.MockAPI),
		session:  &fakeSession{userID: userID},
		nav:      &recordingNavigator{},
		notifier: ui.NewRecordingNotifier(),
		loop:     ui.NewLoop(zap.NewNop()),
	}
	h.views = New(Deps{
		API:              h.api,
		Session:          h.session,
		Navigator:        h.nav,
		Notifier:         h.notifier,
		Loop:             h.loop,
		Renderer:         content.NewRenderer(zap.NewNop(), nil),
		Canvas:           canvas.NewSceneFactory(),
		Pagination:       config.Pagination{GraphsPerPage: 10, CommentsPerPage: 5, MinSearchLength: 3},
		CanvasConf:       config.Canvas{MinZoom: 0.1, MaxZoom: 3, ZoomInFactor: 1.2, ZoomOutFactor: 0.8, Padding: 30, Width: 800, Height: 600},
		Logger:           zap.NewNop(),
		StatusClearDelay: time.Millisecond,
	})
	return h
}

func (h *harness) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.loop.Drain(ctx))
}

// mount parses one of the shipped page templates.
func mount(t *testing.T, name string, params map[string]string, query url.Values) router.ViewContext {
	t.Helper()
	data, err := web.Pages.ReadFile("pages/" + name)
	require.NoError(t, err)
	page, err := ui.ParsePage("/pages/"+name, string(data))
	require.NoError(t, err)
	if query == nil {
		query = url.Values{}
	}
	return router.ViewContext{Page: page, Params: params, Query: query}
}

func summary(id, name string) domain.GraphSummary {
	return domain.GraphSummary{
		ID:        id,
		Name:      name,
		CreatedAt: domain.Timestamp{Time: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)},
		Owner:     domain.User{ID: "owner-1", Username: "ann"},
	}
}

func TestLogin_SignsInAndGoesHome(t *testing.T) {
	h := newHarness(t, "")
	view := mount(t, "login.html", nil, nil)
	h.api.On("Login", mock.Anything, domain.Credentials{Username: "ann", Password: "secret1"}).
		Return(&domain.Token{AccessToken: "tok", TokenType: "bearer"}, nil).Once()

	h.views.Login(context.Background(), view)
	require.True(t, view.Page.Submit(context.Background(), "login-form", map[string]string{"username": " ann ", "password": "secret1"}))
	h.drain(t)

	assert.Equal(t, "tok", h.session.token)
	assert.Equal(t, []string{"/"}, h.nav.paths)
	assert.False(t, view.Page.Visible(errorMessageID))
	h.api.AssertExpectations(t)
}

func TestLogin_RequiresBothFields(t *testing.T) {
	h := newHarness(t, "")
	view := mount(t, "login.html", nil, nil)

	h.views.Login(context.Background(), view)
	view.Page.Submit(context.Background(), "login-form", map[string]string{"username": "ann", "password": ""})
	h.drain(t)

	assert.True(t, view.Page.Visible(errorMessageID))
	assert.Equal(t, "Username and password are required.", view.Page.Text(errorMessageID))
	h.api.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
}

func TestLogin_ShowsServerDetail(t *testing.T) {
	h := newHarness(t, "")
	view := mount(t, "login.html", nil, nil)
	h.api.On("Login", mock.Anything, mock.Anything).
		Return(nil, pkgerrors.NewServerRejection(400, "Incorrect username or password"))

	h.views.Login(context.Background(), view)
	view.Page.Submit(context.Background(), "login-form", map[string]string{"username": "ann", "password": "wrong-pass"})
	h.drain(t)

	assert.Equal(t, "Incorrect username or password", view.Page.Text(errorMessageID))
	assert.Empty(t, h.nav.paths)
	assert.Zero(t, h.session.logins)
}

func TestRegister_SignsInTheNewUser(t *testing.T) {
	h := newHarness(t, "")
	view := mount(t, "register.html", nil, nil)
	creds := domain.Credentials{Username: "newbie", Password: "secret1"}
	h.api.On("Register", mock.Anything, creds).Return(&domain.User{ID: "u9", Username: "newbie"}, nil).Once()
	h.api.On("Login", mock.Anything, creds).Return(&domain.Token{AccessToken: "fresh"}, nil).Once()

	h.views.Register(context.Background(), view)
	view.Page.Submit(context.Background(), "register-form", map[string]string{"username": "newbie", "password": "secret1"})
	h.drain(t)

	assert.Equal(t, "fresh", h.session.token)
	assert.Equal(t, []string{"/"}, h.nav.paths)
	h.api.AssertExpectations(t)
}

func TestRegister_ValidatesCredentials(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		want     string
	}{
		{"short username", "ab", "secret1", "Username must be between 3 and 50 characters."},
		{"short password", "annie", "12345", "Password must be at least 6 characters."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "")
			view := mount(t, "register.html", nil, nil)

			h.views.Register(context.Background(), view)
			view.Page.Submit(context.Background(), "register-form", map[string]string{"username": tt.username, "password": tt.password})
			h.drain(t)

			assert.Equal(t, tt.want, view.Page.Text(errorMessageID))
			h.api.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
		})
	}
}

func TestCatalog_PaginatesByPageSize(t *testing.T) {
	h := newHarness(t, "")
	view := mount(t, "graphs.html", nil, nil)
	first := client.GraphQuery{Skip: 0, Limit: 10, SortBy: client.SortDateDesc}
	second := client.GraphQuery{Skip: 10, Limit: 10, SortBy: client.SortDateDesc}
	h.api.On("ListGraphs", mock.Anything, first).
		Return(&domain.GraphList{Total: 25, Graphs: []domain.GraphSummary{summary("g1", "Calculus"), summary("g2", "Algebra")}}, nil)
	h.api.On("ListGraphs", mock.Anything, second).
		Return(&domain.GraphList{Total: 25, Graphs: []domain.GraphSummary{summary("g3", "Topology")}}, nil)

	h.views.Catalog(context.Background(), view)
	h.drain(t)

	page := view.Page
	assert.Equal(t, 2, page.Count("#graphs-list .card"))
	assert.Equal(t, []string{"page-prev", "page-1", "page-2", "page-3", "page-next"}, page.IDs("#pagination-controls a"))
	assert.False(t, page.Click(context.Background(), "page-prev"), "previous is disabled on the first page")

	require.True(t, page.Click(context.Background(), "page-2"))
	h.drain(t)
	assert.Equal(t, []string{"graph-link-g3"}, page.IDs("#graphs-list a"))

	page.Click(context.Background(), "graph-link-g3")
	assert.Equal(t, []string{"/graphs/g3"}, h.nav.paths)
	h.api.AssertExpectations(t)
}

func TestCatalog_DropsShortSearches(t *testing.T) {
	h := newHarness(t, "")
	view := mount(t, "graphs.html", nil, nil)
	h.api.On("ListGraphs", mock.Anything, mock.Anything).Return(&domain.GraphList{}, nil)

	h.views.Catalog(context.Background(), view)
	h.drain(t)
	view.Page.Submit(context.Background(), "filter-form", map[string]string{"search": "ab"})
	h.drain(t)
	view.Page.Submit(context.Background(), "filter-form", map[string]string{"search": "calc"})
	h.drain(t)

	require.Len(t, h.api.Calls, 3)
	assert.Equal(t, "", h.api.Calls[1].Arguments.Get(1).(client.GraphQuery).Search)
	assert.Equal(t, "calc", h.api.Calls[2].Arguments.Get(1).(client.GraphQuery).Search)
	assert.Equal(t, "Nothing found. Try changing the filters.", view.Page.Text(graphsListID))
}

func TestCatalog_SortChangeReloadsFirstPage(t *testing.T) {
	h := newHarness(t, "")
	view := mount(t, "graphs.html", nil, nil)
	h.api.On("ListGraphs", mock.Anything, mock.Anything).Return(&domain.GraphList{}, nil)

	h.views.Catalog(context.Background(), view)
	h.drain(t)
	assert.Equal(t, "No graphs have been created yet. Be the first!", view.Page.Text(graphsListID))

	view.Page.Change(context.Background(), sortSelectID, client.SortRatingDesc)
	h.drain(t)

	require.Len(t, h.api.Calls, 2)
	assert.Equal(t, client.GraphQuery{Limit: 10, SortBy: client.SortRatingDesc}, h.api.Calls[1].Arguments.Get(1))
}

func TestCatalog_ShowsListFailure(t *testing.T) {
	h := newHarness(t, "")
	view := mount(t, "graphs.html", nil, nil)
	h.api.On("ListGraphs", mock.Anything, mock.Anything).Return(nil, pkgerrors.NewServerRejection(500, "database down"))

	h.views.Catalog(context.Background(), view)
	h.drain(t)

	assert.Equal(t, "Failed to load graphs: database down", view.Page.Text(graphsListID))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 3, TotalPages(25, 10))
	assert.Equal(t, 0, TotalPages(5, 0))
}

func TestCreateGraph_ValidatesAndOpensEditor(t *testing.T) {
	h := newHarness(t, "user-1")
	view := mount(t, "create_graph.html", nil, nil)
	h.api.On("CreateGraph", mock.Anything, domain.GraphCreate{Name: "Optics", Description: "Light"}).
		Return(&domain.GraphSummary{ID: "abcd-1234", Name: "Optics"}, nil).Once()

	h.views.CreateGraph(context.Background(), view)
	view.Page.Submit(context.Background(), "create-graph-form", map[string]string{"graph-name": "  "})
	h.drain(t)
	assert.Equal(t, "Graph name is required.", view.Page.Text(errorMessageID))

	view.Page.Submit(context.Background(), "create-graph-form", map[string]string{"graph-name": "Optics", "graph-description": "Light"})
	h.drain(t)

	assert.Equal(t, []string{"/graphs/abcd-1234/edit"}, h.nav.paths)
	h.api.AssertNumberOfCalls(t, "CreateGraph", 1)
}

func TestNodeView_RendersContentAndBackLink(t *testing.T) {
	h := newHarness(t, "")
	view := mount(t, "view_node.html", map[string]string{"id": "n1"}, url.Values{"graph_id": {"g1"}})
	h.api.On("GetNode", mock.Anything, "n1").Return(&domain.Node{ID: "n1", Name: "Limits", Content: "**core** idea"}, nil)

	h.views.NodeView(context.Background(), view)
	h.drain(t)

	page := view.Page
	assert.Equal(t, "Limits", page.Text("node-view-name-header"))
	assert.Contains(t, page.HTML("node-view-content"), "<strong>core</strong>")
	assert.Equal(t, "/graphs/g1", page.Attr("back-to-graph-view-link", "href"))

	page.Click(context.Background(), "back-to-graph-view-link")
	assert.Equal(t, []string{"/graphs/g1"}, h.nav.paths)
}

func TestNodeView_WithoutGraphFallsBackToCatalog(t *testing.T) {
	h := newHarness(t, "")
	view := mount(t, "view_node.html", map[string]string{"id": "n1"}, nil)
	h.api.On("GetNode", mock.Anything, "n1").Return(&domain.Node{ID: "n1", Name: "Limits"}, nil)

	h.views.NodeView(context.Background(), view)
	h.drain(t)

	assert.Equal(t, "/graphs", view.Page.Attr("back-to-graph-view-link", "href"))
	assert.Equal(t, catalogBackLabel, view.Page.Text("back-to-graph-view-link"))
	assert.Equal(t, "No content has been added for this node yet.", view.Page.Text("node-view-content"))
}

func TestNodeView_ShowsLoadFailure(t *testing.T) {
	h := newHarness(t, "")
	view := mount(t, "view_node.html", map[string]string{"id": "n1"}, nil)
	h.api.On("GetNode", mock.Anything, "n1").Return(nil, pkgerrors.NewServerRejection(404, "Node not found"))

	h.views.NodeView(context.Background(), view)
	h.drain(t)

	assert.Equal(t, "Failed to load node: Node not found", view.Page.Text("node-view-root"))
}

func TestNodeEditor_PreviewsAndSaves(t *testing.T) {
	h := newHarness(t, "owner-1")
	view := mount(t, "edit_node.html", map[string]string{"id": "n1"}, url.Values{"graph_id": {"g1"}})
	h.api.On("GetNode", mock.Anything, "n1").Return(&domain.Node{ID: "n1", Name: "Limits", Content: "old"}, nil)
	h.api.On("UpdateNode", mock.Anything, "n1", domain.ContentUpdate("*new*")).
		Return(&domain.Node{ID: "n1", Name: "Limits", Content: "*new*"}, nil).Once()

	h.views.NodeEditor(context.Background(), view)
	h.drain(t)

	page := view.Page
	assert.Equal(t, `Editing node: "Limits"`, page.Text("node-name-header"))
	assert.Equal(t, "/graphs/g1/edit", page.Attr("back-to-graph-link", "href"))
	assert.Equal(t, "old", page.Value("node-content-editor"))

	page.Input(context.Background(), "node-content-editor", "*new*")
	assert.Contains(t, page.HTML("node-content-preview"), "<em>new</em>")

	require.True(t, page.Click(context.Background(), "save-node-content-btn"))
	assert.True(t, page.Disabled("save-node-content-btn"))
	assert.Equal(t, "Saving...", page.Text("save-status"))
	h.drain(t)

	assert.Equal(t, "Saved successfully!", page.Text("save-status"))
	assert.True(t, page.HasClass("save-status", "text-success"))
	assert.False(t, page.Visible("save-status"))
	assert.False(t, page.Disabled("save-node-content-btn"))
	h.api.AssertExpectations(t)
}

func TestNodeEditor_ReportsSaveFailure(t *testing.T) {
	h := newHarness(t, "owner-1")
	view := mount(t, "edit_node.html", map[string]string{"id": "n1"}, nil)
	h.api.On("GetNode", mock.Anything, "n1").Return(&domain.Node{ID: "n1", Name: "Limits"}, nil)
	h.api.On("UpdateNode", mock.Anything, "n1", mock.Anything).Return(nil, pkgerrors.NewServerRejection(403, "Not the owner"))

	h.views.NodeEditor(context.Background(), view)
	h.drain(t)
	view.Page.Click(context.Background(), "save-node-content-btn")
	h.drain(t)

	assert.Equal(t, "Save failed: Not the owner", view.Page.Text("save-status"))
	assert.True(t, view.Page.HasClass("save-status", "text-danger"))
}

func TestProfile_ListsGraphs(t *testing.T) {
	h := newHarness(t, "user-1")
	view := mount(t, "profile.html", nil, nil)
	h.api.On("Profile", mock.Anything).Return(&domain.Profile{
		Username:      "ann",
		TotalLikes:    3,
		TotalDislikes: 1,
		OwnedGraphs:   []domain.GraphSummary{summary("g1", "Calculus")},
	}, nil)

	h.views.Profile(context.Background(), view)
	h.drain(t)

	page := view.Page
	assert.False(t, page.Visible("profile-loader"))
	assert.True(t, page.Visible("profile-content"))
	assert.Equal(t, "ann", page.Text("profile-username"))
	assert.Equal(t, "▲ 3", page.Text("profile-likes"))
	assert.Equal(t, "▼ 1", page.Text("profile-dislikes"))
	assert.Equal(t, []string{"owned-graph-g1"}, page.IDs("#owned-graphs-list a"))
	assert.Equal(t, "You have not started learning any graphs yet.", page.Text("learning-graphs-list"))

	page.Click(context.Background(), "owned-graph-g1")
	assert.Equal(t, []string{"/graphs/g1/edit"}, h.nav.paths)
}

func TestProfile_ShowsFailure(t *testing.T) {
	h := newHarness(t, "user-1")
	view := mount(t, "profile.html", nil, nil)
	h.api.On("Profile", mock.Anything).Return(nil, pkgerrors.NewServerRejection(500, "boom"))

	h.views.Profile(context.Background(), view)
	h.drain(t)

	assert.Equal(t, "Failed to load profile: boom", view.Page.Text("profile-loader"))
	assert.False(t, view.Page.Visible("profile-content"))
}

func sampleGraph() *domain.Graph {
	return &domain.Graph{
		GraphSummary: summary("g1", "Calculus"),
		Elements: []domain.Element{
			domain.NodeElement("a", "Limits", domain.Position{}),
		},
	}
}

func sampleComments(from, n int) []domain.Comment {
	out := make([]domain.Comment, n)
	for i := range out {
		out[i] = domain.Comment{
			ID:      fmt.Sprintf("c%d", from+i),
			Content: fmt.Sprintf("comment %d", from+i),
			Owner:   domain.User{ID: "u2", Username: "bob"},
		}
	}
	return out
}

func TestGraphView_LoadsCommentsInPages(t *testing.T) {
	h := newHarness(t, "")
	view := mount(t, "view_graph.html", map[string]string{"id": "g1"}, nil)
	h.api.On("GetGraph", mock.Anything, "g1").Return(sampleGraph(), nil)
	h.api.On("ListComments", mock.Anything, "g1", 0, 5).Return(sampleComments(0, 5), nil).Once()
	h.api.On("ListComments", mock.Anything, "g1", 5, 5).Return(sampleComments(5, 2), nil).Once()

	h.views.GraphView(context.Background(), view)
	h.drain(t)

	page := view.Page
	require.NotNil(t, h.views.Graph())
	assert.Equal(t, "g1", h.views.Graph().GraphID())
	assert.True(t, page.Visible(commentLoginPrompt))
	assert.False(t, page.Visible(addCommentBoxID))
	assert.Equal(t, 5, page.Count("#comments-list .card"))
	assert.True(t, page.Visible(loadMoreContainer))

	require.True(t, page.Click(context.Background(), loadMoreBtnID))
	h.drain(t)

	assert.Equal(t, 7, page.Count("#comments-list .card"))
	assert.False(t, page.Visible(loadMoreContainer))
	assert.Equal(t, "Load more", page.Text(loadMoreBtnID))
	h.api.AssertExpectations(t)
}

func TestGraphView_AddsComment(t *testing.T) {
	h := newHarness(t, "user-1")
	view := mount(t, "view_graph.html", map[string]string{"id": "g1"}, nil)
	h.api.On("GetGraph", mock.Anything, "g1").Return(sampleGraph(), nil)
	h.api.On("ListComments", mock.Anything, "g1", 0, 5).Return(sampleComments(0, 1), nil)
	h.api.On("AddComment", mock.Anything, "g1", "Great graph").
		Return(&domain.Comment{ID: "new", Content: "Great graph", Owner: domain.User{Username: "me"}}, nil).Once()

	h.views.GraphView(context.Background(), view)
	h.drain(t)

	page := view.Page
	assert.True(t, page.Visible(addCommentBoxID))
	page.Submit(context.Background(), addCommentFormID, map[string]string{"content": "  Great graph "})
	h.drain(t)

	assert.Equal(t, []string{"comment-new", "comment-c0"}, page.IDs("#comments-list .card"))
	assert.Equal(t, "", page.Value(commentContentID))
	h.api.AssertExpectations(t)
}

func TestGraphView_CommentFailureAlerts(t *testing.T) {
	h := newHarness(t, "user-1")
	view := mount(t, "view_graph.html", map[string]string{"id": "g1"}, nil)
	h.api.On("GetGraph", mock.Anything, "g1").Return(sampleGraph(), nil)
	h.api.On("ListComments", mock.Anything, "g1", 0, 5).Return(nil, pkgerrors.NewServerRejection(500, "boom")).Once()
	h.api.On("AddComment", mock.Anything, "g1", "hi").Return(nil, pkgerrors.NewServerRejection(400, "Too long"))

	h.views.GraphView(context.Background(), view)
	h.drain(t)
	assert.Equal(t, "Failed to load comments.", view.Page.Text(commentsListID))

	view.Page.Submit(context.Background(), addCommentFormID, map[string]string{"content": "hi"})
	h.drain(t)

	assert.Equal(t, []string{"Failed to add comment: Too long"}, h.notifier.Alerts())
}

func TestNav_FollowsAuthentication(t *testing.T) {
	h := newHarness(t, "user-1")
	markup, err := web.NavMarkup()
	require.NoError(t, err)
	nav, err := NewNav(markup, h.session, h.nav, zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	nav.Refresh(ctx)
	page := nav.Page()
	assert.True(t, page.Has("nav-profile-link"))
	assert.True(t, page.Visible("nav-create-graph-link"))
	assert.False(t, page.Has("nav-login-link"))

	require.True(t, page.Click(ctx, "nav-logout-link"))
	assert.False(t, h.session.IsAuthenticated(ctx))
	assert.Equal(t, []string{"/"}, h.nav.paths)

	nav.Refresh(ctx)
	assert.True(t, page.Has("nav-login-link"))
	assert.False(t, page.Has("nav-logout-link"))
	assert.False(t, page.Visible("nav-create-graph-link"))

	page.Click(ctx, "nav-register-link")
	page.Click(ctx, "nav-graphs-link")
	assert.Equal(t, []string{"/", "/register", "/graphs"}, h.nav.paths)
}
