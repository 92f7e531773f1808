package engine

import (
	"github.com/matzehuels/hsticky/pkg/errors"
	"github.com/matzehuels/hsticky/pkg/geom"
	"github.com/matzehuels/hsticky/pkg/header"
	"github.com/matzehuels/hsticky/pkg/layout"
	"github.com/matzehuels/hsticky/pkg/physics"
)

// Config holds the engine-wide settings applied once per layout pass.
type Config struct {
	// ContentInset pads the collection. Left shifts every item and pins
	// headers further from the viewport edge; Top and Bottom only reduce the
	// reported content height.
	ContentInset geom.Insets `json:"content_inset" toml:"content_inset"`

	// Visibility chooses between the global over-approximation (default)
	// and exact rectangle intersection.
	Visibility layout.Visibility `json:"visibility" toml:"-"`

	// Spring configures the per-element animation.
	Spring physics.Spring `json:"spring" toml:"spring"`

	// PopOut raises a header while the focused cell overlaps it.
	PopOut bool `json:"pop_out" toml:"pop_out"`

	// PopOffset is the raise distance used with PopOut.
	PopOffset float64 `json:"pop_offset" toml:"pop_offset"`

	// Reflow animates still-visible cells to their new frame when a pass
	// changes their static position. Without it they jump there.
	Reflow bool `json:"reflow" toml:"reflow"`
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	var c Config
	c.SetDefaults()
	return c
}

// SetDefaults fills zero fields with their defaults.
func (c *Config) SetDefaults() {
	c.Spring.SetDefaults()
	if c.PopOffset == 0 {
		c.PopOffset = header.DefaultPopOffset
	}
}

// Validate checks the numeric settings.
func (c *Config) Validate() error {
	in := c.ContentInset
	finite := []struct {
		what string
		v    float64
	}{
		{"content inset top", in.Top},
		{"content inset bottom", in.Bottom},
		{"pop offset", c.PopOffset},
	}
	for _, f := range finite {
		if err := errors.ValidateFinite(f.what, f.v); err != nil {
			return err
		}
	}
	if err := errors.ValidateLength("content inset left", in.Left); err != nil {
		return err
	}
	if err := errors.ValidateLength("content inset right", in.Right); err != nil {
		return err
	}
	if c.Spring.FPS < 0 || c.Spring.Frequency < 0 || c.Spring.Damping < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "spring parameters must not be negative")
	}
	return nil
}
