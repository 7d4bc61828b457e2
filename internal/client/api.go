package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"graphlearn/internal/domain"
)

// Sort orders accepted by the catalog endpoint.
const (
	SortDateDesc   = "date_desc"
	SortRatingDesc = "rating_desc"
)

// GraphQuery selects one page of the catalog.
type GraphQuery struct {
	Skip   int
	Limit  int
	SortBy string
	Search string
}

// API exposes the typed endpoints of the graph platform.
type API struct {
	rc *RequestClient
}

// NewAPI wraps a RequestClient.
func NewAPI(rc *RequestClient) *API {
	return &API{rc: rc}
}

// Client returns the underlying RequestClient.
func (a *API) Client() *RequestClient {
	return a.rc
}

// Register creates an account.
func (a *API) Register(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	var user domain.User
	if err := a.rc.Call(ctx, http.MethodPost, "/users/register", creds, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for an access token. The endpoint takes a form.
func (a *API) Login(ctx context.Context, creds domain.Credentials) (*domain.Token, error) {
	form := url.Values{}
	form.Set("username", creds.Username)
	form.Set("password", creds.Password)

	var token domain.Token
	if err := a.rc.PostForm(ctx, "/users/login/token", form, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// ListGraphs fetches a page of the catalog. An empty search is omitted.
func (a *API) ListGraphs(ctx context.Context, q GraphQuery) (*domain.GraphList, error) {
	params := url.Values{}
	params.Set("skip", strconv.Itoa(q.Skip))
	params.Set("limit", strconv.Itoa(q.Limit))
	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = SortDateDesc
	}
	params.Set("sort_by", sortBy)
	if q.Search != "" {
		params.Set("search", q.Search)
	}

	var list domain.GraphList
	if err := a.rc.Call(ctx, http.MethodGet, "/graphs/?"+params.Encode(), nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// CreateGraph creates a graph owned by the current user.
func (a *API) CreateGraph(ctx context.Context, in domain.GraphCreate) (*domain.GraphSummary, error) {
	var g domain.GraphSummary
	if err := a.rc.Call(ctx, http.MethodPost, "/graphs/", in, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// GetGraph fetches the graph detail including its canvas elements.
func (a *API) GetGraph(ctx context.Context, graphID string) (*domain.Graph, error) {
	var g domain.Graph
	if err := a.rc.Call(ctx, http.MethodGet, "/graphs/"+url.PathEscape(graphID), nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateNode adds a node to a graph.
func (a *API) CreateNode(ctx context.Context, graphID string, in domain.NodeCreate) (*domain.Node, error) {
	var n domain.Node
	endpoint := fmt.Sprintf("/graphs/%s/nodes", url.PathEscape(graphID))
	if err := a.rc.Call(ctx, http.MethodPost, endpoint, in, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// CreateEdge adds an edge to a graph.
func (a *API) CreateEdge(ctx context.Context, graphID string, in domain.EdgeCreate) (*domain.Edge, error) {
	var e domain.Edge
	endpoint := fmt.Sprintf("/graphs/%s/edges", url.PathEscape(graphID))
	if err := a.rc.Call(ctx, http.MethodPost, endpoint, in, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// GetNode fetches a node with its content.
func (a *API) GetNode(ctx context.Context, nodeID string) (*domain.Node, error) {
	var n domain.Node
	if err := a.rc.Call(ctx, http.MethodGet, "/nodes/"+url.PathEscape(nodeID), nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// UpdateNode patches the fields set in in.
func (a *API) UpdateNode(ctx context.Context, nodeID string, in domain.NodeUpdate) (*domain.Node, error) {
	var n domain.Node
	if err := a.rc.Call(ctx, http.MethodPatch, "/nodes/"+url.PathEscape(nodeID), in, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// DeleteNode removes a node and its edges.
func (a *API) DeleteNode(ctx context.Context, nodeID string) error {
	return a.rc.Call(ctx, http.MethodDelete, "/nodes/"+url.PathEscape(nodeID), nil, nil)
}

// DeleteEdge removes an edge.
func (a *API) DeleteEdge(ctx context.Context, edgeID string) error {
	return a.rc.Call(ctx, http.MethodDelete, "/edges/"+url.PathEscape(edgeID), nil, nil)
}

// MarkLearned records that the current user learned a node.
func (a *API) MarkLearned(ctx context.Context, nodeID string) error {
	return a.rc.Call(ctx, http.MethodPost, fmt.Sprintf("/nodes/%s/progress", url.PathEscape(nodeID)), nil, nil)
}

// UnmarkLearned clears the learned mark.
func (a *API) UnmarkLearned(ctx context.Context, nodeID string) error {
	return a.rc.Call(ctx, http.MethodDelete, fmt.Sprintf("/nodes/%s/progress", url.PathEscape(nodeID)), nil, nil)
}

// Profile fetches the current user's profile.
func (a *API) Profile(ctx context.Context) (*domain.Profile, error) {
	var p domain.Profile
	if err := a.rc.Call(ctx, http.MethodGet, "/users/me/profile", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// RateGraph sends a vote; value is VoteUp or VoteDown. Repeating the current
// vote retracts it server-side.
func (a *API) RateGraph(ctx context.Context, graphID string, value domain.Vote) error {
	body := struct {
		Value domain.Vote `json:"value"`
	}{Value: value}
	return a.rc.Call(ctx, http.MethodPost, fmt.Sprintf("/graphs/%s/rate", url.PathEscape(graphID)), body, nil)
}

// ListComments fetches a page of comments, newest first.
func (a *API) ListComments(ctx context.Context, graphID string, skip, limit int) ([]domain.Comment, error) {
	params := url.Values{}
	params.Set("skip", strconv.Itoa(skip))
	params.Set("limit", strconv.Itoa(limit))

	var comments []domain.Comment
	endpoint := fmt.Sprintf("/graphs/%s/comments?%s", url.PathEscape(graphID), params.Encode())
	if err := a.rc.Call(ctx, http.MethodGet, endpoint, nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// AddComment posts a comment on a graph.
func (a *API) AddComment(ctx context.Context, graphID, content string) (*domain.Comment, error) {
	body := struct {
		Content string `json:"content"`
	}{Content: content}

	var c domain.Comment
	if err := a.rc.Call(ctx, http.MethodPost, fmt.Sprintf("/graphs/%s/comments", url.PathEscape(graphID)), body, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
