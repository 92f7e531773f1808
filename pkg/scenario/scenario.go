// Package scenario describes a collection, its viewport and a scroll script
// in a TOML file. A parsed [Scenario] serves as both data source and
// delegate of an engine, which is how the command-line tools and the HTTP
// server drive the engine without a real UI.
//
// A minimal scenario:
//
//	name = "shelf"
//	scroll = [0, 40, 100]
//
//	[viewport]
//	width = 300
//	height = 100
//
//	[[sections]]
//	title = "Recent"
//	items = [50, 50, 50]
//	height = 40
//	spacing = 10
//	header = { width = 80, height = 20 }
package scenario

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/hsticky/pkg/attach"
	"github.com/matzehuels/hsticky/pkg/engine"
	"github.com/matzehuels/hsticky/pkg/errors"
	"github.com/matzehuels/hsticky/pkg/geom"
	"github.com/matzehuels/hsticky/pkg/layout"
	"github.com/matzehuels/hsticky/pkg/physics"
)

// MaxSections and MaxItems bound the size of a scenario file.
const (
	MaxSections = 1000
	MaxItems    = 100_000
)

// Scenario is a complete, self-contained engine setup.
type Scenario struct {
	Name         string         `toml:"name" json:"name"`
	Viewport     geom.Size      `toml:"viewport" json:"viewport"`
	ContentInset geom.Insets    `toml:"content_inset" json:"content_inset"`
	Visibility   string         `toml:"visibility" json:"visibility,omitempty"`
	PopOut       bool           `toml:"pop_out" json:"pop_out"`
	PopOffset    float64        `toml:"pop_offset" json:"pop_offset,omitempty"`
	Reflow       bool           `toml:"reflow" json:"reflow"`
	Spring       physics.Spring `toml:"spring" json:"spring"`
	Scroll       []float64      `toml:"scroll" json:"scroll,omitempty"`
	Focus        *Focus         `toml:"focus" json:"focus,omitempty"`
	Sections     []Section      `toml:"sections" json:"sections"`

	visibility layout.Visibility
}

// Section is one run of items sharing a header.
type Section struct {
	Title string `toml:"title" json:"title"`

	// Items lists item widths. Alternatively Count items of Width each.
	Items []float64 `toml:"items" json:"items"`
	Count int       `toml:"count" json:"-"`
	Width float64   `toml:"width" json:"-"`

	Height       float64     `toml:"height" json:"height"`
	Spacing      float64     `toml:"spacing" json:"spacing"`
	Insets       geom.Insets `toml:"insets" json:"insets"`
	Header       geom.Size   `toml:"header" json:"header"`
	HeaderInsets geom.Insets `toml:"header_insets" json:"header_insets"`
}

// Focus names the cell drawn enlarged.
type Focus struct {
	Section int     `toml:"section" json:"section"`
	Item    int     `toml:"item" json:"item"`
	Scale   float64 `toml:"scale" json:"scale"`
}

// Path returns the focused index path.
func (f Focus) Path() layout.IndexPath { return layout.Path(f.Section, f.Item) }

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotFound, err, "read scenario %s", path)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if s.Name == "" {
		s.Name = path
	}
	return s, nil
}

// Parse decodes and validates a scenario.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	md, err := toml.Decode(string(data), &s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScenario, err, "decode scenario")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidScenario, "unknown scenario key %q", undecoded[0].String())
	}
	s.expand()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// expand turns Count/Width shorthands into explicit item widths.
func (s *Scenario) expand() {
	for i := range s.Sections {
		sec := &s.Sections[i]
		if len(sec.Items) == 0 && sec.Count > 0 && sec.Count <= MaxItems {
			sec.Items = make([]float64, sec.Count)
			for j := range sec.Items {
				sec.Items[j] = sec.Width
			}
		}
	}
}

// Validate checks the scenario for values the engine would reject or that
// make no sense for a viewport.
func (s *Scenario) Validate() error {
	vis, ok := layout.ParseVisibility(s.Visibility)
	if !ok {
		return errors.New(errors.ErrCodeInvalidScenario, "unknown visibility %q", s.Visibility)
	}
	s.visibility = vis

	if !(s.Viewport.Width > 0) || !(s.Viewport.Height > 0) || !geom.IsFinite(s.Viewport.Width, s.Viewport.Height) {
		return errors.New(errors.ErrCodeInvalidScenario, "viewport must have a positive width and height")
	}
	if len(s.Sections) > MaxSections {
		return errors.New(errors.ErrCodeInvalidScenario, "too many sections: %d (max %d)", len(s.Sections), MaxSections)
	}

	total := 0
	for i, sec := range s.Sections {
		if sec.Count < 0 || sec.Count > MaxItems {
			return errors.New(errors.ErrCodeInvalidScenario, "section %d: count %d out of range", i, sec.Count)
		}
		if sec.Count > 0 && len(sec.Items) > 0 && sec.Count != len(sec.Items) {
			return errors.New(errors.ErrCodeInvalidScenario, "section %d: count %d disagrees with %d items", i, sec.Count, len(sec.Items))
		}
		total += len(sec.Items)
		if total > MaxItems {
			return errors.New(errors.ErrCodeInvalidScenario, "too many items (max %d)", MaxItems)
		}
		if err := validateSection(sec); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScenario, err, "section %d", i)
		}
	}

	for i, off := range s.Scroll {
		if err := errors.ValidateFinite("scroll offset", off); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScenario, err, "scroll step %d", i)
		}
	}

	if f := s.Focus; f != nil {
		if f.Section < 0 || f.Section >= len(s.Sections) || f.Item < 0 || f.Item >= len(s.Sections[f.Section].Items) {
			return errors.New(errors.ErrCodeInvalidScenario, "focus %s is out of range", f.Path())
		}
		if f.Scale < 0 {
			return errors.New(errors.ErrCodeInvalidScenario, "focus scale must not be negative")
		}
	}

	cfg := s.EngineConfig()
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidScenario, err, "engine settings")
	}
	return nil
}

func validateSection(sec Section) error {
	lengths := []struct {
		what string
		v    float64
	}{
		{"item height", sec.Height},
		{"spacing", sec.Spacing},
		{"inset left", sec.Insets.Left},
		{"inset right", sec.Insets.Right},
		{"header width", sec.Header.Width},
		{"header height", sec.Header.Height},
		{"header inset left", sec.HeaderInsets.Left},
		{"header inset right", sec.HeaderInsets.Right},
		{"header inset top", sec.HeaderInsets.Top},
		{"header inset bottom", sec.HeaderInsets.Bottom},
	}
	for _, l := range lengths {
		if err := errors.ValidateLength(l.what, l.v); err != nil {
			return err
		}
	}
	if err := errors.ValidateFinite("inset top", sec.Insets.Top); err != nil {
		return err
	}
	if err := errors.ValidateFinite("inset bottom", sec.Insets.Bottom); err != nil {
		return err
	}
	for i, w := range sec.Items {
		if err := errors.ValidateLength("item width", w); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScenario, err, "item %d", i)
		}
	}
	return nil
}

// EngineConfig returns the engine settings the scenario asks for.
func (s *Scenario) EngineConfig() engine.Config {
	return engine.Config{
		ContentInset: s.ContentInset,
		Visibility:   s.visibility,
		Spring:       s.Spring,
		PopOut:       s.PopOut,
		PopOffset:    s.PopOffset,
		Reflow:       s.Reflow,
	}
}

// NewEngine returns an engine backed by the scenario, with the scenario's
// focus applied. opts are applied after the scenario's own.
func (s *Scenario) NewEngine(opts ...engine.Option) *engine.Engine {
	all := append([]engine.Option{engine.WithDataSource(s), engine.WithDelegate(s)}, opts...)
	e := engine.New(s.EngineConfig(), all...)
	if s.Focus != nil {
		e.Focus(s.Focus.Path(), s.Focus.Scale)
	}
	return e
}

// Bounds returns the visible rectangle at horizontal scroll offset x.
func (s *Scenario) Bounds(x float64) geom.Rect {
	return geom.NewRect(x, 0, s.Viewport.Width, s.Viewport.Height)
}

// Offsets returns the scroll script, or a single offset of 0 when the
// scenario has none.
func (s *Scenario) Offsets() []float64 {
	if len(s.Scroll) == 0 {
		return []float64{0}
	}
	return s.Scroll
}

// Title returns the title of section, or a generated one.
func (s *Scenario) Title(section int) string {
	if section >= 0 && section < len(s.Sections) && s.Sections[section].Title != "" {
		return s.Sections[section].Title
	}
	return "Section " + strconv.Itoa(section)
}

// Label names an element for display: headers by their section title,
// cells by index path.
func (s *Scenario) Label(key attach.ElementKey) string {
	if key.Kind == attach.KindHeader {
		return s.Title(key.Path.Section)
	}
	return key.Path.String()
}

// NumberOfSections implements layout.DataSource.
func (s *Scenario) NumberOfSections() int { return len(s.Sections) }

// NumberOfItems implements layout.DataSource.
func (s *Scenario) NumberOfItems(section int) int { return len(s.Sections[section].Items) }

// ItemSize implements layout.Delegate. Every item of a section shares its
// height.
func (s *Scenario) ItemSize(path layout.IndexPath) geom.Size {
	sec := s.Sections[path.Section]
	return geom.Size{Width: sec.Items[path.Item], Height: sec.Height}
}

// SectionInsets implements layout.Delegate.
func (s *Scenario) SectionInsets(section int) geom.Insets { return s.Sections[section].Insets }

// MinInterItemSpacing implements layout.Delegate.
func (s *Scenario) MinInterItemSpacing(section int) float64 { return s.Sections[section].Spacing }

// HeaderSize implements layout.Delegate.
func (s *Scenario) HeaderSize(section int) geom.Size { return s.Sections[section].Header }

// HeaderInsets implements layout.Delegate.
func (s *Scenario) HeaderInsets(section int) geom.Insets { return s.Sections[section].HeaderInsets }

var (
	_ layout.DataSource = (*Scenario)(nil)
	_ layout.Delegate   = (*Scenario)(nil)
)
