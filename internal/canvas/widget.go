// Package canvas defines the graph drawing widget the views render into and
// an in-memory implementation of it.
package canvas

import "graphlearn/internal/domain"

// Class names used by the graph views.
const (
	ClassLearned    = "learned"
	ClassEdgeMode   = "edge-mode"
	ClassEdgeSource = "edge-source"
)

// TargetKind is what a tap landed on.
type TargetKind int

const (
	TargetBackground TargetKind = iota
	TargetNode
	TargetEdge
)

func (k TargetKind) String() string {
	switch k {
	case TargetNode:
		return "node"
	case TargetEdge:
		return "edge"
	default:
		return "background"
	}
}

// TapEvent is a tap on the canvas.
type TapEvent struct {
	Kind TargetKind
	// ID is empty for background taps.
	ID string
}

// Style is a selector with display properties.
type Style struct {
	Selector   string
	Properties map[string]string
}

// Options configure a new widget.
type Options struct {
	Elements []domain.Element
	Styles   []Style
	// Layout "preset" places nodes at their stored positions.
	Layout  string
	Padding float64
	Width   float64
	Height  float64
	MinZoom float64
	MaxZoom float64
}

// Widget is the graph canvas capability.
type Widget interface {
	Add(el domain.Element) error
	Remove(id string) bool
	Has(id string) bool
	Element(id string) (domain.Element, bool)
	Nodes() []string
	Edges() []string

	Zoom() float64
	SetZoom(level float64) float64
	SetZoomBounds(lo, hi float64)
	Fit()
	Pan() domain.Position
	SetPan(p domain.Position)
	Size() (width, height float64)

	Position(id string) (domain.Position, bool)
	SetPosition(id string, p domain.Position) bool

	AddClass(id, class string)
	RemoveClass(id, class string)
	HasClass(id, class string) bool
	WithClass(class string) []string

	// Ungrab makes every node read-only: drags are ignored.
	Ungrab()
	Grabbable() bool

	OnTap(fn func(TapEvent))
	OnDragRelease(fn func(id string, p domain.Position))
}

// Factory creates a widget for a mounted view.
type Factory func(opts Options) (Widget, error)
