package render

import (
	"github.com/matzehuels/hsticky/pkg/attach"
	"github.com/matzehuels/hsticky/pkg/engine"
	"github.com/matzehuels/hsticky/pkg/geom"
	"github.com/matzehuels/hsticky/pkg/layout"
)

// Labeler names an element for display.
type Labeler func(attach.ElementKey) string

// Element is one attached element in a snapshot.
type Element struct {
	Key    attach.ElementKey
	Label  string
	Frame  geom.Rect // live frame
	Target geom.Rect // anchor frame the spring pulls toward
}

// Moving reports whether the element has not reached its target.
func (e Element) Moving() bool { return e.Frame != e.Target }

// Snapshot is the drawable state of an engine at one instant.
type Snapshot struct {
	Name     string
	Frame    int
	Viewport geom.Rect
	Extent   geom.Size
	Settled  bool

	// Focus is the focused cell, if any, and its enlarged live frame.
	Focus      *layout.IndexPath
	FocusFrame geom.Rect

	Elements []Element
}

// Option configures Capture.
type Option func(*capture)

type capture struct {
	name    string
	frame   int
	labeler Labeler
}

// WithName records a name for the snapshot, typically the scenario name.
func WithName(name string) Option { return func(c *capture) { c.name = name } }

// WithFrame records the animation frame number.
func WithFrame(n int) Option { return func(c *capture) { c.frame = n } }

// WithLabeler sets how elements are named. The default is the key's string.
func WithLabeler(l Labeler) Option { return func(c *capture) { c.labeler = l } }

// Capture records every attached element of e, cells first. A nil or
// unprepared engine yields an empty snapshot.
func Capture(e *engine.Engine, opts ...Option) Snapshot {
	c := capture{labeler: attach.ElementKey.String}
	for _, opt := range opts {
		opt(&c)
	}

	snap := Snapshot{Name: c.name, Frame: c.frame}
	if e == nil || !e.Prepared() {
		return snap
	}

	snap.Viewport = e.Bounds()
	snap.Extent = e.ContentExtent()
	snap.Settled = e.Settled()

	keys := e.AttachedKeys()
	snap.Elements = make([]Element, 0, len(keys))
	for _, key := range keys {
		live, ok := e.PositionOf(key)
		if !ok {
			continue
		}
		target, _ := e.TargetOf(key)
		snap.Elements = append(snap.Elements, Element{
			Key:    key,
			Label:  c.labeler(key),
			Frame:  live,
			Target: target,
		})
	}

	if path, _, ok := e.Focused(); ok {
		if f, ok := e.FocusedFrame(); ok {
			snap.Focus = &path
			snap.FocusFrame = f
		}
	}
	return snap
}

// Bounds returns the smallest rectangle holding the content extent, the
// viewport and every element's live frame. Popped headers extend it above
// zero.
func (s Snapshot) Bounds() geom.Rect {
	minX, minY := 0.0, 0.0
	maxX, maxY := s.Extent.Width, s.Viewport.Height
	grow := func(r geom.Rect) {
		minX = min(minX, r.MinX())
		minY = min(minY, r.MinY())
		maxX = max(maxX, r.MaxX())
		maxY = max(maxY, r.MaxY())
	}
	if !s.Viewport.IsEmpty() {
		grow(s.Viewport)
	}
	for _, el := range s.Elements {
		grow(el.Frame)
	}
	if s.Focus != nil {
		grow(s.FocusFrame)
	}
	return geom.NewRect(minX, minY, maxX-minX, maxY-minY)
}

// Cells returns the cell elements.
func (s Snapshot) Cells() []Element { return s.filter(attach.KindCell) }

// Headers returns the header elements.
func (s Snapshot) Headers() []Element { return s.filter(attach.KindHeader) }

func (s Snapshot) filter(kind attach.Kind) []Element {
	var out []Element
	for _, el := range s.Elements {
		if el.Key.Kind == kind {
			out = append(out, el)
		}
	}
	return out
}

// IsFocused reports whether el is the focused cell.
func (s Snapshot) IsFocused(el Element) bool {
	return s.Focus != nil && el.Key == attach.CellKey(*s.Focus)
}
