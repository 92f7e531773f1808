package layout

import (
	"cmp"
	"fmt"

	"github.com/matzehuels/hsticky/pkg/geom"
)

// IndexPath identifies an item by section and position within the section.
type IndexPath struct {
	Section int `json:"section"`
	Item    int `json:"item"`
}

// Path is shorthand for IndexPath{Section: section, Item: item}.
func Path(section, item int) IndexPath {
	return IndexPath{Section: section, Item: item}
}

// Compare orders paths section-major, then item.
func (p IndexPath) Compare(o IndexPath) int {
	if c := cmp.Compare(p.Section, o.Section); c != 0 {
		return c
	}
	return cmp.Compare(p.Item, o.Item)
}

// String returns "section.item".
func (p IndexPath) String() string {
	return fmt.Sprintf("%d.%d", p.Section, p.Item)
}

// DataSource reports the shape of the collection.
type DataSource interface {
	NumberOfSections() int
	NumberOfItems(section int) int
}

// Delegate answers the per-item and per-section geometry queries.
// It is treated as a pure function of its arguments for the duration of a pass.
type Delegate interface {
	ItemSize(path IndexPath) geom.Size
	SectionInsets(section int) geom.Insets
	MinInterItemSpacing(section int) float64
	HeaderSize(section int) geom.Size
	HeaderInsets(section int) geom.Insets
}

// ItemLayout is the static frame of one item.
type ItemLayout struct {
	Path  IndexPath `json:"path"`
	Frame geom.Rect `json:"frame"`
}

// SectionSpan describes where a section's items landed.
//
// Start is the x of the first item (after the section's left inset) and End
// the right edge of the last item (before the right inset). For an empty
// section Start == End. First and Count index into [Cache.Items].
type SectionSpan struct {
	Section int     `json:"section"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	First   int     `json:"first"`
	Count   int     `json:"count"`
}

// Empty reports whether the section has no items.
func (s SectionSpan) Empty() bool { return s.Count == 0 }
