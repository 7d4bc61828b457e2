// Package domain holds the client-side model of the graph learning platform:
// graphs, their canvas elements, votes and learning progress.
package domain

import (
	"encoding/json"
	"strings"
	"time"

	pkgerrors "graphlearn/pkg/errors"
)

// Element groups as used by the canvas payload.
const (
	GroupNodes = "nodes"
	GroupEdges = "edges"
)

// Timestamp accepts RFC 3339 times as well as the zone-less ISO form the API
// emits for naive datetimes.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			t.Time = parsed
			return nil
		}
		lastErr = err
	}
	return lastErr
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// User is the public view of an account.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Position is a canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ElementData carries node or edge data. Label is set for nodes,
// Source and Target for edges.
type ElementData struct {
	ID     string `json:"id"`
	Label  string `json:"label,omitempty"`
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
}

// Element is a single canvas element.
type Element struct {
	Group    string      `json:"group"`
	Data     ElementData `json:"data"`
	Position *Position   `json:"position,omitempty"`
}

// IsNode reports whether the element is a node.
func (e Element) IsNode() bool { return e.Group == GroupNodes }

// IsEdge reports whether the element is an edge.
func (e Element) IsEdge() bool { return e.Group == GroupEdges }

// NodeElement builds a node element at the given position.
func NodeElement(id, label string, pos Position) Element {
	return Element{Group: GroupNodes, Data: ElementData{ID: id, Label: label}, Position: &pos}
}

// EdgeElement builds an edge element.
func EdgeElement(e Edge) Element {
	return Element{Group: GroupEdges, Data: ElementData{ID: e.ID, Source: e.SourceNodeID, Target: e.TargetNodeID}}
}

// GraphSummary is a graph as it appears in the catalog.
type GraphSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   Timestamp `json:"created_at"`
	Owner       User      `json:"owner"`
	Likes       int       `json:"likes"`
	Dislikes    int       `json:"dislikes"`
}

// DescriptionText returns the description or an empty string.
func (g GraphSummary) DescriptionText() string {
	if g.Description == nil {
		return ""
	}
	return *g.Description
}

// Graph is the detailed view of a graph, including canvas elements and the
// viewer's vote and learning progress.
type Graph struct {
	GraphSummary
	MyVote         Vote      `json:"my_vote"`
	Elements       []Element `json:"elements"`
	LearnedNodeIDs []string  `json:"learned_node_ids"`
}

// Votes returns the vote triple for reconciliation.
func (g *Graph) Votes() VoteState {
	return VoteState{MyVote: g.MyVote, Likes: g.Likes, Dislikes: g.Dislikes}
}

// IsOwnedBy reports whether the user id owns the graph.
func (g *Graph) IsOwnedBy(userID string) bool {
	return userID != "" && strings.EqualFold(userID, g.Owner.ID)
}

// Learned returns the learned set built from LearnedNodeIDs.
func (g *Graph) Learned() LearnedSet {
	return NewLearnedSet(g.LearnedNodeIDs...)
}

// HasNode reports whether a node with the id is among the elements.
func (g *Graph) HasNode(id string) bool {
	for _, el := range g.Elements {
		if el.IsNode() && el.Data.ID == id {
			return true
		}
	}
	return false
}

// Node is a graph node with its rich content.
type Node struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Content   string  `json:"content"`
	PositionX float64 `json:"position_x"`
	PositionY float64 `json:"position_y"`
}

// Position returns the node's canvas position.
func (n Node) Position() Position {
	return Position{X: n.PositionX, Y: n.PositionY}
}

// NodeCreate is the body of a create-node request.
type NodeCreate struct {
	Name      string  `json:"name" validate:"required,max=200"`
	Content   string  `json:"content,omitempty"`
	PositionX float64 `json:"position_x"`
	PositionY float64 `json:"position_y"`
}

// NodeUpdate is the body of a partial node update; nil fields are untouched.
type NodeUpdate struct {
	Name      *string  `json:"name,omitempty"`
	Content   *string  `json:"content,omitempty"`
	PositionX *float64 `json:"position_x,omitempty"`
	PositionY *float64 `json:"position_y,omitempty"`
}

// PositionUpdate builds an update that only moves the node.
func PositionUpdate(pos Position) NodeUpdate {
	x, y := pos.X, pos.Y
	return NodeUpdate{PositionX: &x, PositionY: &y}
}

// ContentUpdate builds an update that only replaces the content.
func ContentUpdate(content string) NodeUpdate {
	return NodeUpdate{Content: &content}
}

// Edge is a directed connection between two nodes of the same graph.
type Edge struct {
	ID           string `json:"id"`
	SourceNodeID string `json:"source_node_id"`
	TargetNodeID string `json:"target_node_id"`
}

// EdgeCreate is the body of a create-edge request.
type EdgeCreate struct {
	SourceNodeID string `json:"source_node_id"`
	TargetNodeID string `json:"target_node_id"`
}

// Validate checks the edge invariants against the graph the edge belongs to.
func (e EdgeCreate) Validate(g *Graph) error {
	if e.SourceNodeID == "" || e.TargetNodeID == "" {
		return pkgerrors.NewValidationError("edge endpoints are required")
	}
	if e.SourceNodeID == e.TargetNodeID {
		return pkgerrors.NewValidationError("an edge cannot connect a node to itself")
	}
	if g != nil && (!g.HasNode(e.SourceNodeID) || !g.HasNode(e.TargetNodeID)) {
		return pkgerrors.NewValidationError("edge endpoints must belong to the graph")
	}
	return nil
}

// GraphCreate is the body of a create-graph request.
type GraphCreate struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description,omitempty" validate:"max=1000"`
}

// GraphList is one page of the catalog.
type GraphList struct {
	Total  int            `json:"total"`
	Graphs []GraphSummary `json:"graphs"`
}

// Comment is a comment on a graph.
type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt Timestamp `json:"created_at"`
	Owner     User      `json:"owner"`
}

// Profile is the signed-in user's profile.
type Profile struct {
	Username       string         `json:"username"`
	TotalLikes     int            `json:"total_likes"`
	TotalDislikes  int            `json:"total_dislikes"`
	OwnedGraphs    []GraphSummary `json:"owned_graphs"`
	LearningGraphs []GraphSummary `json:"learning_graphs"`
}

// Token is the login response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Credentials are used for login and registration.
type Credentials struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
}
