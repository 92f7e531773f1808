// Package layouttest provides an in-memory collection that satisfies both
// layout.DataSource and layout.Delegate, for use in tests.
package layouttest

import (
	"github.com/matzehuels/hsticky/pkg/geom"
	"github.com/matzehuels/hsticky/pkg/layout"
)

// Section describes one section of a test collection.
type Section struct {
	Widths       []float64 // one entry per item
	Height       float64   // item height, shared by every item
	Spacing      float64
	Insets       geom.Insets
	Header       geom.Size
	HeaderInsets geom.Insets
}

// Collection is a fixed list of sections.
type Collection struct {
	Sections []Section

	// Queries counts delegate calls, so tests can assert that metrics are
	// queried fresh on every pass.
	Queries int
}

// Uniform builds a section of n items of the given width.
func Uniform(n int, width, height, spacing float64) Section {
	widths := make([]float64, n)
	for i := range widths {
		widths[i] = width
	}
	return Section{Widths: widths, Height: height, Spacing: spacing}
}

// NumberOfSections returns the number of sections.
func (c *Collection) NumberOfSections() int { return len(c.Sections) }

// NumberOfItems returns the number of widths listed for section.
func (c *Collection) NumberOfItems(section int) int { return len(c.Sections[section].Widths) }

// ItemSize returns the listed width and the section's shared height.
func (c *Collection) ItemSize(path layout.IndexPath) geom.Size {
	c.Queries++
	s := c.Sections[path.Section]
	return geom.Size{Width: s.Widths[path.Item], Height: s.Height}
}

// SectionInsets returns the section's insets.
func (c *Collection) SectionInsets(section int) geom.Insets {
	c.Queries++
	return c.Sections[section].Insets
}

// MinInterItemSpacing returns the section's spacing.
func (c *Collection) MinInterItemSpacing(section int) float64 {
	c.Queries++
	return c.Sections[section].Spacing
}

// HeaderSize returns the section's header size.
func (c *Collection) HeaderSize(section int) geom.Size {
	c.Queries++
	return c.Sections[section].Header
}

// HeaderInsets returns the section's header insets.
func (c *Collection) HeaderInsets(section int) geom.Insets {
	c.Queries++
	return c.Sections[section].HeaderInsets
}

var (
	_ layout.DataSource = (*Collection)(nil)
	_ layout.Delegate   = (*Collection)(nil)
)

// TwoSections is the collection used throughout the package tests: section 0
// has three 50pt items with 10pt spacing and an 80pt header, section 1 has
// one 100pt item. All insets are zero.
func TwoSections() *Collection {
	s0 := Uniform(3, 50, 40, 10)
	s0.Header = geom.Size{Width: 80, Height: 20}
	s1 := Uniform(1, 100, 40, 10)
	s1.Header = geom.Size{Width: 80, Height: 20}
	return &Collection{Sections: []Section{s0, s1}}
}
