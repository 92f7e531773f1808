// Package layout computes the static, scroll-independent placement of every
// item in a horizontally scrolling, sectioned collection.
//
// # Overview
//
// Items are laid out left to right in a single row per section. Each section
// reserves a vertical band above its items for a header, so the row's y is
// the header's top inset plus its height plus its bottom inset. Sections
// follow one another without overlap:
//
//	| contentInset.Left | sec0.left | item item item | sec0.right | sec1.left | item | sec1.right |
//
// # Query Interfaces
//
// The builder never stores section metrics. It asks a [DataSource] for counts
// and a [Delegate] for sizes, insets and spacing on every pass, so callers
// may change any of them between passes.
//
// # Cache
//
// [Build] returns a [Cache] holding one [ItemLayout] per item in
// section-major, item-minor order. The cache is replaced wholesale on every
// build; there is no incremental update path.
//
// # Visibility
//
// [Cache.VisiblePaths] derives the set of index paths considered on screen
// for a rectangle. [VisibilityGlobal] reproduces the historical behaviour of
// treating the whole collection as visible; [VisibilityExact] intersects the
// static frames with the rectangle.
package layout
