// Package cli implements the hsticky command-line interface.
//
// The commands load a TOML scenario, drive an engine with it and report the
// result:
//   - layout: print the static layout and header targets
//   - simulate: play the scroll script and write SVG, PNG or JSON frames
//   - preview: interactive terminal preview with live springs
//   - serve: expose the engine over HTTP
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// also attached to the command context.
package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hsticky/pkg/engine"
	"github.com/matzehuels/hsticky/pkg/errors"
	"github.com/matzehuels/hsticky/pkg/layout"
	"github.com/matzehuels/hsticky/pkg/scenario"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "hsticky"

	// maxSettleFrames bounds how long simulate waits for springs to settle.
	maxSettleFrames = 3600
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// Output formats accepted by simulate.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetVerbose switches between info and debug logging.
func (c *CLI) SetVerbose(verbose bool) {
	c.SetLogLevel(levelFor(verbose))
}

// =============================================================================
// Scenario Helpers
// =============================================================================

// engineFlags are the engine overrides shared by every command.
type engineFlags struct {
	visibility string
	popOut     bool
	reflow     bool
}

// apply overrides the scenario's settings with flags the user set.
func (f engineFlags) apply(sc *scenario.Scenario) error {
	if f.visibility != "" {
		if _, ok := layout.ParseVisibility(f.visibility); !ok {
			return fmt.Errorf("invalid visibility: %s (must be 'global' or 'exact')", f.visibility)
		}
		sc.Visibility = f.visibility
	}
	if f.popOut {
		sc.PopOut = true
	}
	if f.reflow {
		sc.Reflow = true
	}
	return sc.Validate()
}

// loadScenario reads path and applies flag overrides.
func loadScenario(logger *log.Logger, path string, flags engineFlags) (*scenario.Scenario, error) {
	sc, err := scenario.Load(path)
	if err != nil {
		return nil, err
	}
	if err := flags.apply(sc); err != nil {
		return nil, err
	}
	logger.Debug("scenario loaded", "name", sc.Name, "sections", len(sc.Sections), "steps", len(sc.Offsets()))
	return sc, nil
}

// prepareEngine builds an engine for sc and runs the first layout pass at
// scroll offset x.
func prepareEngine(logger *log.Logger, sc *scenario.Scenario, x float64) (*engine.Engine, error) {
	eng := sc.NewEngine(engine.WithLogger(logger))
	if err := eng.Prepare(sc.Bounds(x)); err != nil {
		return nil, fmt.Errorf("layout %s: %w", sc.Name, err)
	}
	return eng, nil
}

// =============================================================================
// Flag Parsing
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{FormatSVG}
	}
	return strings.Split(s, ",")
}

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{FormatSVG: true, FormatPNG: true, FormatJSON: true}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be 'svg', 'png', or 'json')", f)
		}
	}
	return nil
}

// parseOffsets parses a comma-separated list of scroll offsets.
func parseOffsets(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid offset %q", p)
		}
		if err := errors.ValidateFinite("offset", v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
