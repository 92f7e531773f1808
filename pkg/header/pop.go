package header

import "github.com/matzehuels/hsticky/pkg/geom"

// PopPolicy decides whether a header should be raised out of the way.
//
// minX and maxX bound the horizontal span the header occupies, including its
// right inset so that an enlarged neighbour also counts.
type PopPolicy interface {
	ShouldPop(section int, minX, maxX float64) bool
}

// FocusSource reports the frame of the element that currently has focus and
// is drawn enlarged. ok is false when nothing is focused.
type FocusSource interface {
	FocusedFrame() (frame geom.Rect, ok bool)
}

// FocusPop raises a header whenever the focused element's frame overlaps the
// header's horizontal span. It models focus-driven input devices where the
// focused cell grows over its neighbours.
type FocusPop struct {
	Focus FocusSource
}

// ShouldPop implements PopPolicy.
func (p FocusPop) ShouldPop(_ int, minX, maxX float64) bool {
	if p.Focus == nil {
		return false
	}
	f, ok := p.Focus.FocusedFrame()
	if !ok {
		return false
	}
	return !(f.MaxX() < minX || maxX < f.MinX())
}

// PopFunc adapts a function to PopPolicy.
type PopFunc func(section int, minX, maxX float64) bool

// ShouldPop implements PopPolicy.
func (f PopFunc) ShouldPop(section int, minX, maxX float64) bool { return f(section, minX, maxX) }
