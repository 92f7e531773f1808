package layout

import (
	"sort"

	"github.com/matzehuels/hsticky/pkg/geom"
)

// Visibility selects how [Cache.VisiblePaths] interprets its rectangle.
type Visibility int

const (
	// VisibilityGlobal bounds the visible range by the globally first and
	// last cached items regardless of the rectangle, so every item is
	// considered visible. This over-approximation is the historical
	// behaviour and remains the default.
	VisibilityGlobal Visibility = iota

	// VisibilityExact keeps only items whose static frame intersects the
	// rectangle.
	VisibilityExact
)

// String returns the lowercase mode name.
func (v Visibility) String() string {
	switch v {
	case VisibilityExact:
		return "exact"
	default:
		return "global"
	}
}

// ParseVisibility converts "global" or "exact" to a Visibility.
func ParseVisibility(s string) (Visibility, bool) {
	switch s {
	case "global", "":
		return VisibilityGlobal, true
	case "exact":
		return VisibilityExact, true
	}
	return VisibilityGlobal, false
}

// VisiblePaths returns the index paths considered on screen for rect, in
// cache order. An empty cache yields no paths.
func (c *Cache) VisiblePaths(rect geom.Rect, mode Visibility) []IndexPath {
	if len(c.items) == 0 {
		return nil
	}
	if mode == VisibilityExact {
		return c.intersecting(rect)
	}

	first, _ := c.First()
	last, _ := c.Last()
	return c.pathRange(first.Path, last.Path)
}

// pathRange lists every item in sections [lo.Section, hi.Section] whose item
// index is at least lo.Item. No upper item bound is applied in the final
// section.
func (c *Cache) pathRange(lo, hi IndexPath) []IndexPath {
	var paths []IndexPath
	for section := lo.Section; section <= hi.Section; section++ {
		span, ok := c.Section(section)
		if !ok {
			continue
		}
		for item := lo.Item; item < span.Count; item++ {
			paths = append(paths, IndexPath{Section: section, Item: item})
		}
	}
	return paths
}

// intersecting relies on item x being non-decreasing across the whole cache,
// which Build guarantees by rejecting negative widths, spacing and
// horizontal insets.
func (c *Cache) intersecting(rect geom.Rect) []IndexPath {
	start := sort.Search(len(c.items), func(i int) bool {
		return c.items[i].Frame.MaxX() > rect.MinX()
	})

	var paths []IndexPath
	for _, l := range c.items[start:] {
		if l.Frame.MinX() >= rect.MaxX() {
			break
		}
		if l.Frame.Intersects(rect) {
			paths = append(paths, l.Path)
		}
	}
	return paths
}
