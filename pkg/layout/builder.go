package layout

import (
	"fmt"
	"slices"

	"github.com/matzehuels/hsticky/pkg/errors"
	"github.com/matzehuels/hsticky/pkg/geom"
)

// Cache is the result of one static layout pass.
type Cache struct {
	items        []ItemLayout
	sections     []SectionSpan
	contentInset geom.Insets
	trailing     float64 // right inset of the last section
}

// Build lays out every item of ds using the geometry answered by d.
//
// A nil data source or delegate is a configuration error: the pass is
// aborted and no cache is returned. Geometry that would break the
// left-to-right ordering (negative widths, spacing or horizontal insets,
// non-finite numbers) is rejected with [errors.ErrCodeInvalidGeometry].
func Build(ds DataSource, d Delegate, contentInset geom.Insets) (*Cache, error) {
	if ds == nil {
		return nil, errors.New(errors.ErrCodeConfiguration, "data source is not set")
	}
	if d == nil {
		return nil, errors.New(errors.ErrCodeConfiguration, "delegate is not set")
	}

	n := ds.NumberOfSections()
	c := &Cache{
		sections:     make([]SectionSpan, 0, max(n, 0)),
		contentInset: contentInset,
	}

	x := contentInset.Left
	for section := 0; section < n; section++ {
		insets := d.SectionInsets(section)
		headerSize := d.HeaderSize(section)
		headerInsets := d.HeaderInsets(section)
		spacing := d.MinInterItemSpacing(section)
		if err := validateSection(section, insets, headerSize, headerInsets, spacing); err != nil {
			return nil, err
		}

		x += insets.Left
		y := headerInsets.Top + headerSize.Height + headerInsets.Bottom

		count := max(ds.NumberOfItems(section), 0)
		span := SectionSpan{Section: section, Start: x, First: len(c.items), Count: count}
		for i := 0; i < count; i++ {
			path := IndexPath{Section: section, Item: i}
			size := d.ItemSize(path)
			if err := validateItem(path, size); err != nil {
				return nil, err
			}
			c.items = append(c.items, ItemLayout{
				Path:  path,
				Frame: geom.NewRect(x, y, size.Width, size.Height),
			})
			x += size.Width
			if i != count-1 {
				x += spacing
			}
		}
		span.End = x
		c.sections = append(c.sections, span)

		x += insets.Right
		c.trailing = insets.Right
	}
	return c, nil
}

func validateSection(section int, insets geom.Insets, headerSize geom.Size, headerInsets geom.Insets, spacing float64) error {
	checks := []struct {
		what string
		v    float64
	}{
		{"left inset", insets.Left},
		{"right inset", insets.Right},
		{"inter-item spacing", spacing},
		{"header width", headerSize.Width},
		{"header height", headerSize.Height},
	}
	for _, c := range checks {
		if err := errors.ValidateLength(fmt.Sprintf("section %d %s", section, c.what), c.v); err != nil {
			return err
		}
	}
	finite := []struct {
		what string
		v    float64
	}{
		{"top inset", insets.Top},
		{"bottom inset", insets.Bottom},
		{"header top inset", headerInsets.Top},
		{"header left inset", headerInsets.Left},
		{"header bottom inset", headerInsets.Bottom},
		{"header right inset", headerInsets.Right},
	}
	for _, c := range finite {
		if err := errors.ValidateFinite(fmt.Sprintf("section %d %s", section, c.what), c.v); err != nil {
			return err
		}
	}
	return nil
}

func validateItem(path IndexPath, size geom.Size) error {
	if err := errors.ValidateLength(fmt.Sprintf("item %s width", path), size.Width); err != nil {
		return err
	}
	return errors.ValidateLength(fmt.Sprintf("item %s height", path), size.Height)
}

// Items returns the cached layouts in section-major, item-minor order.
// The slice is shared with the cache and must not be modified.
func (c *Cache) Items() []ItemLayout { return c.items }

// Len returns the number of cached items.
func (c *Cache) Len() int { return len(c.items) }

// NumberOfSections returns the number of sections seen by the last build.
func (c *Cache) NumberOfSections() int { return len(c.sections) }

// Sections returns the span of every section, in order.
func (c *Cache) Sections() []SectionSpan { return c.sections }

// Section returns the span of one section.
func (c *Cache) Section(section int) (SectionSpan, bool) {
	if section < 0 || section >= len(c.sections) {
		return SectionSpan{}, false
	}
	return c.sections[section], true
}

// ContentInset returns the inset the cache was built with.
func (c *Cache) ContentInset() geom.Insets { return c.contentInset }

// Frame looks up the static frame of path.
func (c *Cache) Frame(path IndexPath) (geom.Rect, bool) {
	i, ok := slices.BinarySearchFunc(c.items, path, func(l ItemLayout, p IndexPath) int {
		return l.Path.Compare(p)
	})
	if !ok {
		return geom.Rect{}, false
	}
	return c.items[i].Frame, true
}

// SectionItems returns the cached layouts of one section.
func (c *Cache) SectionItems(section int) []ItemLayout {
	span, ok := c.Section(section)
	if !ok || span.Empty() {
		return nil
	}
	return c.items[span.First : span.First+span.Count]
}

// First returns the globally first cached item.
func (c *Cache) First() (ItemLayout, bool) {
	if len(c.items) == 0 {
		return ItemLayout{}, false
	}
	return c.items[0], true
}

// Last returns the globally last cached item.
func (c *Cache) Last() (ItemLayout, bool) {
	if len(c.items) == 0 {
		return ItemLayout{}, false
	}
	return c.items[len(c.items)-1], true
}

// ContentWidth returns the scrollable width: the right edge of the last item
// plus the last section's right inset. Without items it is the content
// inset alone.
func (c *Cache) ContentWidth() float64 {
	last, ok := c.Last()
	if !ok {
		return c.contentInset.Horizontal()
	}
	return last.Frame.MaxX() + c.trailing
}
