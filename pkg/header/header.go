// Package header computes where each section's sticky header belongs for a
// given horizontal scroll offset.
//
// A header is pinned to the left edge of the viewport while its section
// scrolls underneath it, and released once pinning would push it past the
// right end of the section's content:
//
//	left  = max(scrollX + contentInset.Left + headerInsets.Left,
//	            first.MinX - itemInsets.Left + headerInsets.Left)
//	right = last.MaxX + itemInsets.Right - header.Width - headerInsets.Right
//	x     = min(left, right)
//
// When the header is wider than its section (left > right) the min yields
// right, so the header may extend past the section's end. That is accepted
// and not corrected.
//
// Targets are recomputed from scratch on every call; nothing is cached.
package header

import (
	"github.com/matzehuels/hsticky/pkg/geom"
	"github.com/matzehuels/hsticky/pkg/layout"
)

// DefaultPopOffset is how far a popped header is raised.
const DefaultPopOffset = 20.0

// Target is the computed frame of one section header.
type Target struct {
	Section int       `json:"section"`
	Frame   geom.Rect `json:"frame"`

	// Left and Right are the two clamping boundaries the frame was derived
	// from, before the header's left inset is applied.
	Left  float64 `json:"left"`
	Right float64 `json:"right"`

	Popped bool `json:"popped,omitempty"`
}

// Pinned reports whether the header is held by the viewport edge rather
// than by its section's content end.
func (t Target) Pinned() bool { return t.Left <= t.Right }

// FrameSource supplies the live frame of an item, which may differ from its
// static frame while it is animating.
type FrameSource interface {
	ItemFrame(path layout.IndexPath) (geom.Rect, bool)
}

// Calculator computes header targets.
type Calculator struct {
	// Delegate is queried for header size, header insets and section insets
	// on every call.
	Delegate layout.Delegate

	// ContentInset is the collection-wide inset; only Left participates.
	ContentInset geom.Insets

	// Pop optionally raises headers that overlap a focus-enlarged element.
	Pop PopPolicy

	// PopOffset is the raise distance; zero means DefaultPopOffset.
	PopOffset float64
}

// Targets returns one target per section of cache, in section order.
// frames may be nil, in which case static frames are used throughout.
func (c *Calculator) Targets(cache *layout.Cache, frames FrameSource, scrollX float64) []Target {
	n := cache.NumberOfSections()
	targets := make([]Target, 0, n)
	for section := 0; section < n; section++ {
		t, _ := c.Target(cache, frames, scrollX, section)
		targets = append(targets, t)
	}
	return targets
}

// Target computes the header target of a single section.
func (c *Calculator) Target(cache *layout.Cache, frames FrameSource, scrollX float64, section int) (Target, bool) {
	span, ok := cache.Section(section)
	if !ok {
		return Target{}, false
	}

	size := c.Delegate.HeaderSize(section)
	headerInsets := c.Delegate.HeaderInsets(section)
	itemInsets := c.Delegate.SectionInsets(section)

	minX, maxX := c.contentBounds(cache, frames, span)

	edge := scrollX + c.ContentInset.Left + headerInsets.Left
	left := max(edge, minX-itemInsets.Left+headerInsets.Left)
	right := maxX + itemInsets.Right - size.Width - headerInsets.Right
	x := min(left, right)

	t := Target{Section: section, Left: left, Right: right}

	dy := 0.0
	if c.Pop != nil && c.Pop.ShouldPop(section, x, x+size.Width+headerInsets.Right) {
		dy = -c.popOffset()
		t.Popped = true
	}

	t.Frame = geom.NewRect(x+headerInsets.Left, headerInsets.Top+dy, size.Width, size.Height)
	return t, true
}

// contentBounds returns the left edge of the section's first item and the
// right edge of its last, preferring live frames. An empty section falls
// back to its static span.
func (c *Calculator) contentBounds(cache *layout.Cache, frames FrameSource, span layout.SectionSpan) (float64, float64) {
	if span.Empty() {
		return span.Start, span.End
	}
	first := c.frame(cache, frames, layout.Path(span.Section, 0))
	last := c.frame(cache, frames, layout.Path(span.Section, span.Count-1))
	return first.MinX(), last.MaxX()
}

func (c *Calculator) frame(cache *layout.Cache, frames FrameSource, path layout.IndexPath) geom.Rect {
	if frames != nil {
		if f, ok := frames.ItemFrame(path); ok {
			return f
		}
	}
	f, _ := cache.Frame(path)
	return f
}

func (c *Calculator) popOffset() float64 {
	if c.PopOffset != 0 {
		return c.PopOffset
	}
	return DefaultPopOffset
}
