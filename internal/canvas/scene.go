package canvas

import (
	"fmt"
	"math"
	"sort"

	"graphlearn/internal/domain"
)

const (
	defaultWidth   = 1200
	defaultHeight  = 800
	defaultMinZoom = 1e-50
	defaultMaxZoom = 1e50
)

type item struct {
	el      domain.Element
	classes map[string]struct{}
	order   int
}

// Scene is an in-memory Widget. Rendered coordinates follow
// rendered = model*zoom + pan.
type Scene struct {
	items     map[string]*item
	seq       int
	styles    []Style
	padding   float64
	width     float64
	height    float64
	zoom      float64
	minZoom   float64
	maxZoom   float64
	pan       domain.Position
	grabbable bool

	tapHandlers  []func(TapEvent)
	dragHandlers []func(string, domain.Position)
}

var _ Widget = (*Scene)(nil)

// NewScene builds a scene from options. Nodes are added before edges.
func NewScene(opts Options) (*Scene, error) {
	s := &Scene{
		items:     make(map[string]*item),
		styles:    opts.Styles,
		padding:   opts.Padding,
		width:     opts.Width,
		height:    opts.Height,
		zoom:      1,
		minZoom:   defaultMinZoom,
		maxZoom:   defaultMaxZoom,
		grabbable: true,
	}
	if s.width <= 0 {
		s.width = defaultWidth
	}
	if s.height <= 0 {
		s.height = defaultHeight
	}
	if opts.MinZoom > 0 || opts.MaxZoom > 0 {
		s.SetZoomBounds(opts.MinZoom, opts.MaxZoom)
	}
	for _, group := range []string{domain.GroupNodes, domain.GroupEdges} {
		for _, el := range opts.Elements {
			if el.Group != group {
				continue
			}
			if err := s.Add(el); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

// NewSceneFactory returns a Factory producing scenes.
func NewSceneFactory() Factory {
	return func(opts Options) (Widget, error) {
		return NewScene(opts)
	}
}

// Styles returns the styles the scene was created with.
func (s *Scene) Styles() []Style {
	return s.styles
}

func (s *Scene) Add(el domain.Element) error {
	if el.Data.ID == "" {
		return fmt.Errorf("canvas element without id")
	}
	if _, exists := s.items[el.Data.ID]; exists {
		return fmt.Errorf("canvas element %q already exists", el.Data.ID)
	}
	switch {
	case el.IsNode():
		if el.Position == nil {
			el.Position = &domain.Position{}
		}
		pos := *el.Position
		el.Position = &pos
	case el.IsEdge():
		if !s.isNode(el.Data.Source) || !s.isNode(el.Data.Target) {
			return fmt.Errorf("edge %q references a missing node", el.Data.ID)
		}
		el.Position = nil
	default:
		return fmt.Errorf("canvas element %q has unknown group %q", el.Data.ID, el.Group)
	}
	s.seq++
	s.items[el.Data.ID] = &item{el: el, classes: make(map[string]struct{}), order: s.seq}
	return nil
}

// Remove deletes an element; removing a node also removes its edges.
func (s *Scene) Remove(id string) bool {
	it, ok := s.items[id]
	if !ok {
		return false
	}
	delete(s.items, id)
	if it.el.IsNode() {
		for eid, other := range s.items {
			if other.el.IsEdge() && (other.el.Data.Source == id || other.el.Data.Target == id) {
				delete(s.items, eid)
			}
		}
	}
	return true
}

func (s *Scene) Has(id string) bool {
	_, ok := s.items[id]
	return ok
}

func (s *Scene) Element(id string) (domain.Element, bool) {
	it, ok := s.items[id]
	if !ok {
		return domain.Element{}, false
	}
	el := it.el
	if el.Position != nil {
		pos := *el.Position
		el.Position = &pos
	}
	return el, true
}

func (s *Scene) Nodes() []string {
	return s.ids(func(it *item) bool { return it.el.IsNode() })
}

func (s *Scene) Edges() []string {
	return s.ids(func(it *item) bool { return it.el.IsEdge() })
}

func (s *Scene) Zoom() float64 {
	return s.zoom
}

// SetZoom clamps level to the zoom bounds and returns the applied level.
func (s *Scene) SetZoom(level float64) float64 {
	s.zoom = s.clampZoom(level)
	return s.zoom
}

func (s *Scene) SetZoomBounds(lo, hi float64) {
	if lo <= 0 {
		lo = defaultMinZoom
	}
	if hi <= 0 {
		hi = defaultMaxZoom
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	s.minZoom, s.maxZoom = lo, hi
	s.zoom = s.clampZoom(s.zoom)
}

// Fit zooms and pans so every node is visible inside the padding.
func (s *Scene) Fit() {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	count := 0
	for _, it := range s.items {
		if !it.el.IsNode() {
			continue
		}
		p := *it.el.Position
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		count++
	}
	if count == 0 {
		return
	}

	availW := math.Max(s.width-2*s.padding, 1)
	availH := math.Max(s.height-2*s.padding, 1)
	boxW, boxH := maxX-minX, maxY-minY

	zoom := s.maxZoom
	if boxW > 0 {
		zoom = math.Min(zoom, availW/boxW)
	}
	if boxH > 0 {
		zoom = math.Min(zoom, availH/boxH)
	}
	s.zoom = s.clampZoom(zoom)
	s.pan = domain.Position{
		X: s.width/2 - s.zoom*(minX+maxX)/2,
		Y: s.height/2 - s.zoom*(minY+maxY)/2,
	}
}

func (s *Scene) Pan() domain.Position {
	return s.pan
}

func (s *Scene) SetPan(p domain.Position) {
	s.pan = p
}

func (s *Scene) Size() (float64, float64) {
	return s.width, s.height
}

func (s *Scene) Position(id string) (domain.Position, bool) {
	it, ok := s.items[id]
	if !ok || !it.el.IsNode() {
		return domain.Position{}, false
	}
	return *it.el.Position, true
}

func (s *Scene) SetPosition(id string, p domain.Position) bool {
	it, ok := s.items[id]
	if !ok || !it.el.IsNode() {
		return false
	}
	*it.el.Position = p
	return true
}

func (s *Scene) AddClass(id, class string) {
	if it, ok := s.items[id]; ok {
		it.classes[class] = struct{}{}
	}
}

func (s *Scene) RemoveClass(id, class string) {
	if it, ok := s.items[id]; ok {
		delete(it.classes, class)
	}
}

func (s *Scene) HasClass(id, class string) bool {
	it, ok := s.items[id]
	if !ok {
		return false
	}
	_, has := it.classes[class]
	return has
}

func (s *Scene) WithClass(class string) []string {
	return s.ids(func(it *item) bool {
		_, ok := it.classes[class]
		return ok
	})
}

func (s *Scene) Ungrab() {
	s.grabbable = false
}

func (s *Scene) Grabbable() bool {
	return s.grabbable
}

func (s *Scene) OnTap(fn func(TapEvent)) {
	s.tapHandlers = append(s.tapHandlers, fn)
}

func (s *Scene) OnDragRelease(fn func(string, domain.Position)) {
	s.dragHandlers = append(s.dragHandlers, fn)
}

// Tap simulates a tap on an element, or on the background when id is empty.
// Taps on unknown ids are treated as background taps.
func (s *Scene) Tap(id string) {
	ev := TapEvent{Kind: TargetBackground}
	if it, ok := s.items[id]; ok {
		ev.ID = id
		ev.Kind = TargetEdge
		if it.el.IsNode() {
			ev.Kind = TargetNode
		}
	}
	for _, fn := range append(([]func(TapEvent))(nil), s.tapHandlers...) {
		fn(ev)
	}
}

// Drag simulates dragging a node to p and releasing it. Read-only scenes and
// non-nodes ignore drags. It reports whether the node moved.
func (s *Scene) Drag(id string, p domain.Position) bool {
	if !s.grabbable || !s.SetPosition(id, p) {
		return false
	}
	for _, fn := range append(([]func(string, domain.Position))(nil), s.dragHandlers...) {
		fn(id, p)
	}
	return true
}

func (s *Scene) isNode(id string) bool {
	it, ok := s.items[id]
	return ok && it.el.IsNode()
}

func (s *Scene) clampZoom(z float64) float64 {
	return math.Max(s.minZoom, math.Min(s.maxZoom, z))
}

func (s *Scene) ids(keep func(*item) bool) []string {
	var matched []*item
	for _, it := range s.items {
		if keep(it) {
			matched = append(matched, it)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].order < matched[j].order })
	ids := make([]string, len(matched))
	for i, it := range matched {
		ids[i] = it.el.Data.ID
	}
	return ids
}
