package commands

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"graphlearn/internal/app"
	"graphlearn/internal/config"
	"graphlearn/internal/domain"
	"graphlearn/internal/mocks"
	"graphlearn/internal/observability"
	"graphlearn/internal/router"
	"graphlearn/internal/session"
	"graphlearn/internal/ui"
	pkgerrors "graphlearn/pkg/errors"
	"graphlearn/web"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTemplateHandler(t *testing.T) {
	handler := TemplateHandler(config.Server{AllowedOrigins: []string{"http://localhost:3000"}},
		web.Pages, observability.NewCollector("test"), zap.NewNop())

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/pages/login.html", http.StatusOK, `id="login-form"`},
		{"/pages/view_graph.html", http.StatusOK, `id="comments-list"`},
		{"/pages/missing.html", http.StatusNotFound, ""},
		{"/health", http.StatusOK, `"healthy"`},
		{"/metrics", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Origin", "http://localhost:3000")
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
			assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestTemplateHandler_WithoutMetrics(t *testing.T) {
	handler := TemplateHandler(config.Server{}, web.Pages, nil, zap.NewNop())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckTemplates(t *testing.T) {
	table, err := app.RouteTable()
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, checkTemplates(context.Background(), router.NewFSTemplateLoader(web.Pages), table, 2, &out))
	assert.Equal(t, len(app.Routes())+1, strings.Count(out.String(), "ok   "))

	partial := fstest.MapFS{"pages/home.html": {Data: []byte("<p>home</p>")}}
	out.Reset()
	err = checkTemplates(context.Background(), router.NewFSTemplateLoader(partial), table, 2, &out)
	require.Error(t, err)
	assert.Contains(t, out.String(), "ok   /pages/home.html")
	assert.Contains(t, out.String(), "FAIL /pages/login.html")
}

type stubSession struct {
	token string
	err   error
}

func (s *stubSession) Login(_ context.Context, token string) error {
	s.token = token
	return s.err
}

func (s *stubSession) UserID(context.Context) string { return "u1" }

func TestSignIn(t *testing.T) {
	api := new(mocks.MockAPI)
	api.On("Login", mock.Anything, domain.Credentials{Username: "ann", Password: "secret1"}).
		Return(&domain.Token{AccessToken: "tok"}, nil)
	store := &stubSession{}
	var out bytes.Buffer

	err := signIn(context.Background(), api, store, &out, domain.Credentials{Username: " ann ", Password: "secret1"})

	require.NoError(t, err)
	assert.Equal(t, "tok", store.token)
	assert.Equal(t, "Signed in as ann (user u1)\n", out.String())
}

func TestSignIn_Failures(t *testing.T) {
	api := new(mocks.MockAPI)
	api.On("Login", mock.Anything, mock.Anything).
		Return(nil, pkgerrors.NewServerRejection(400, "Incorrect username or password"))

	err := signIn(context.Background(), api, &stubSession{}, &bytes.Buffer{}, domain.Credentials{Username: "ann"})
	assert.EqualError(t, err, "username and password are required")

	err = signIn(context.Background(), api, &stubSession{}, &bytes.Buffer{}, domain.Credentials{Username: "ann", Password: "nope"})
	assert.EqualError(t, err, "login failed: Incorrect username or password")

	ok := new(mocks.MockAPI)
	ok.On("Login", mock.Anything, mock.Anything).Return(&domain.Token{AccessToken: "tok"}, nil)
	err = signIn(context.Background(), ok, &stubSession{err: errors.New("disk full")}, &bytes.Buffer{},
		domain.Credentials{Username: "ann", Password: "secret1"})
	assert.ErrorContains(t, err, "disk full")
}

func TestReadPassword_FromPipe(t *testing.T) {
	secret, err := readPassword(strings.NewReader("hunter22\r\nrest"), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "hunter22", secret)

	_, err = readPassword(strings.NewReader(""), &bytes.Buffer{})
	assert.Error(t, err)
}

func newShellApp(t *testing.T, api *mocks.MockAPI, userID string) *app.App {
	t.Helper()
	store := session.NewStore(session.NewMemoryStorage(), zap.NewNop())
	if userID != "" {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "ann", "user_id": userID}).
			SignedString([]byte("test-secret"))
		require.NoError(t, err)
		require.NoError(t, store.Login(context.Background(), token))
	}
	nav, err := web.NavMarkup()
	require.NoError(t, err)

	a, err := app.New(app.Deps{
		API:      api,
		Session:  store,
		Loader:   router.NewFSTemplateLoader(web.Pages),
		Notifier: ui.NewRecordingNotifier(true),
		Config: &config.Config{
			Canvas:     config.Canvas{MinZoom: 0.1, MaxZoom: 3, ZoomInFactor: 1.2, ZoomOutFactor: 0.8, Padding: 30, Width: 800, Height: 600},
			Pagination: config.Pagination{GraphsPerPage: 10, CommentsPerPage: 5, MinSearchLength: 3},
		},
		Logger:    zap.NewNop(),
		NavMarkup: nav,
	})
	require.NoError(t, err)
	return a
}

func shellGraph() *domain.Graph {
	return &domain.Graph{
		GraphSummary: domain.GraphSummary{ID: "abcd", Name: "Calculus", Owner: domain.User{ID: "owner-1", Username: "ann"}},
		Elements: []domain.Element{
			domain.NodeElement("a1", "Limits", domain.Position{X: 0, Y: 0}),
			domain.NodeElement("b2", "Derivatives", domain.Position{X: 100, Y: 50}),
		},
	}
}

func runScript(t *testing.T, a *app.App, start string, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	sh := NewShell(a, strings.NewReader(strings.Join(lines, "\n")+"\n"), &out)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, sh.Run(ctx, start))
	return out.String()
}

func TestShell_BrowsesGraphToNode(t *testing.T) {
	api := new(mocks.MockAPI)
	api.On("GetGraph", mock.Anything, "abcd").Return(shellGraph(), nil)
	api.On("ListComments", mock.Anything, "abcd", 0, 5).Return([]domain.Comment{}, nil)
	api.On("GetNode", mock.Anything, "a1").Return(&domain.Node{ID: "a1", Name: "Limits", Content: "epsilon"}, nil)
	a := newShellApp(t, api, "")

	out := runScript(t, a, "/graphs/abcd",
		"zoom in",
		"tap node a1",
		"panel view",
		"quit",
	)

	assert.Contains(t, out, "[graph_view] /graphs/abcd")
	assert.Contains(t, out, "canvas: 2 nodes, 0 edges")
	assert.Contains(t, out, `a1 "Limits" (0, 0)`)
	assert.Contains(t, out, "zoom ")
	assert.Equal(t, app.RouteNodeView, a.Router.State().Route)
	assert.Contains(t, a.Page().Text("node-view-content"), "epsilon")
}

func TestShell_EditorCreatesEdge(t *testing.T) {
	api := new(mocks.MockAPI)
	api.On("GetGraph", mock.Anything, "abcd").Return(shellGraph(), nil)
	api.On("CreateEdge", mock.Anything, "abcd", domain.EdgeCreate{SourceNodeID: "a1", TargetNodeID: "b2"}).
		Return(&domain.Edge{ID: "e9", SourceNodeID: "a1", TargetNodeID: "b2"}, nil).Once()
	api.On("UpdateNode", mock.Anything, "b2", domain.PositionUpdate(domain.Position{X: 40, Y: 60})).
		Return(&domain.Node{ID: "b2"}, nil).Once()
	a := newShellApp(t, api, "owner-1")

	out := runScript(t, a, "/graphs/abcd/edit",
		"edge",
		"tap node a1",
		"tap node b2",
		"drag b2 40 60",
		"page",
		"quit",
	)

	assert.Contains(t, out, "[graph_edit] /graphs/abcd/edit")
	assert.Contains(t, out, "canvas: 2 nodes, 1 edges")
	assert.Contains(t, out, `b2 "Derivatives" (40, 60)`)
	api.AssertExpectations(t)
}

func TestShell_ReportsBadCommands(t *testing.T) {
	a := newShellApp(t, new(mocks.MockAPI), "")

	out := runScript(t, a, "/",
		"fly away",
		"tap bg",
		"click nowhere",
		"submit",
		"back",
	)

	assert.Contains(t, out, `error: unknown command "fly"`)
	assert.Contains(t, out, "error: no graph on this page")
	assert.Contains(t, out, `error: nothing to click at "nowhere"`)
	assert.Contains(t, out, "error: usage: submit <form> k=v...")
	assert.Contains(t, out, "error: no previous page")
}

func TestShell_SubmitsLoginThroughNavigation(t *testing.T) {
	api := new(mocks.MockAPI)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "ann", "user_id": "u1"}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)
	api.On("Login", mock.Anything, domain.Credentials{Username: "ann", Password: "secret1"}).
		Return(&domain.Token{AccessToken: token}, nil)
	a := newShellApp(t, api, "")

	out := runScript(t, a, "/",
		"click nav-login-link",
		"submit login-form username=ann password=secret1",
		"page",
	)

	assert.Contains(t, out, "[login] /login")
	assert.Contains(t, out, "[home] /")
	assert.True(t, a.Session.IsAuthenticated(context.Background()))
	assert.True(t, a.Nav.Page().Has("nav-logout-link"))
}

func TestShell_ReloadRendersCurrentPage(t *testing.T) {
	a := newShellApp(t, new(mocks.MockAPI), "")

	out := runScript(t, a, "/", "reload")

	assert.Equal(t, 2, strings.Count(out, "[home] /\n"))
	assert.Equal(t, []string{"/"}, a.Router.History().Entries())
}
