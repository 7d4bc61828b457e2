package graphcanvas

import "graphlearn/internal/domain"

// EditorMode is the top-level state of the editor.
type EditorMode int

const (
	ModeNormal EditorMode = iota
	ModeEdgeCreation
)

func (m EditorMode) String() string {
	if m == ModeEdgeCreation {
		return "edge-creation"
	}
	return "normal"
}

// EditorState is the editor's interaction state. In ModeEdgeCreation an
// empty Source means the editor awaits the source node, otherwise the
// target.
type EditorState struct {
	Mode   EditorMode
	Source string
}

// AwaitingSource reports whether edge creation waits for its source node.
func (s EditorState) AwaitingSource() bool {
	return s.Mode == ModeEdgeCreation && s.Source == ""
}

// AwaitingTarget reports whether edge creation waits for its target node.
func (s EditorState) AwaitingTarget() bool {
	return s.Mode == ModeEdgeCreation && s.Source != ""
}

// Event is an input to the editor state machine.
type Event interface {
	editorEvent()
}

// ToggleEdgeMode is the add-edge button: it enters edge creation from
// normal mode and cancels it otherwise.
type ToggleEdgeMode struct{}

// TapNode is a tap on a node.
type TapNode struct{ ID string }

// TapEdge is a tap on an edge.
type TapEdge struct{ ID string }

// TapBackground is a tap on empty canvas.
type TapBackground struct{}

// Cancel abandons edge creation.
type Cancel struct{}

// DragRelease is the end of a node drag.
type DragRelease struct {
	ID       string
	Position domain.Position
}

func (ToggleEdgeMode) editorEvent() {}
func (TapNode) editorEvent()        {}
func (TapEdge) editorEvent()        {}
func (TapBackground) editorEvent()  {}
func (Cancel) editorEvent()         {}
func (DragRelease) editorEvent()    {}
