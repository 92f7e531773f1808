package engine

import (
	"github.com/matzehuels/hsticky/pkg/attach"
	"github.com/matzehuels/hsticky/pkg/geom"
	"github.com/matzehuels/hsticky/pkg/layout"
)

// DefaultFocusScale is the enlargement applied to a focused cell when Focus
// is called with a non-positive scale.
const DefaultFocusScale = 1.2

// Focus marks the cell at path as focused and drawn scaled by scale. With
// Config.PopOut enabled, headers overlapping the enlarged cell are raised;
// header anchors are updated immediately.
func (e *Engine) Focus(path layout.IndexPath, scale float64) {
	if scale <= 0 {
		scale = DefaultFocusScale
	}
	e.focus = &focus{path: path, scale: scale}
	e.refreshHeaders()
}

// ClearFocus removes the focus.
func (e *Engine) ClearFocus() {
	e.focus = nil
	e.refreshHeaders()
}

// Focused returns the focused cell and its scale.
func (e *Engine) Focused() (layout.IndexPath, float64, bool) {
	if e.focus == nil {
		return layout.IndexPath{}, 0, false
	}
	return e.focus.path, e.focus.scale, true
}

// FocusedFrame returns the enlarged live frame of the focused cell. A
// focused cell that is not attached has no frame.
func (e *Engine) FocusedFrame() (geom.Rect, bool) {
	if e.focus == nil {
		return geom.Rect{}, false
	}
	f, ok := e.manager.PositionOf(attach.CellKey(e.focus.path))
	if !ok {
		return geom.Rect{}, false
	}
	return f.Scale(e.focus.scale), true
}

func (e *Engine) refreshHeaders() {
	if e.cache == nil {
		return
	}
	e.manager.ApplyBounds(e.bounds)
}
