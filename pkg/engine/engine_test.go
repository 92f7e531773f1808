package engine

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hsticky/pkg/attach"
	"github.com/matzehuels/hsticky/pkg/errors"
	"github.com/matzehuels/hsticky/pkg/geom"
	"github.com/matzehuels/hsticky/pkg/layout"
	"github.com/matzehuels/hsticky/pkg/layout/layouttest"
	"github.com/matzehuels/hsticky/pkg/observability"
)

func newEngine(t *testing.T, cfg Config, col *layouttest.Collection) *Engine {
	t.Helper()
	e := New(cfg, WithDataSource(col), WithDelegate(col))
	if err := e.Prepare(geom.NewRect(0, 0, 300, 100)); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	return e
}

func TestPrepareRequiresCollaborators(t *testing.T) {
	col := layouttest.TwoSections()

	tests := []struct {
		name string
		opts []Option
	}{
		{"nothing attached", nil},
		{"no delegate", []Option{WithDataSource(col)}},
		{"no data source", []Option{WithDelegate(col)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(Config{}, tt.opts...)
			err := e.Prepare(geom.NewRect(0, 0, 300, 100))
			if !errors.Is(err, errors.ErrCodeConfiguration) {
				t.Errorf("Prepare() error = %v, want %v", err, errors.ErrCodeConfiguration)
			}
			if e.Prepared() {
				t.Error("Prepared() = true after failed pass")
			}
			if got := e.ElementsInRect(geom.NewRect(0, 0, 1000, 1000)); got != nil {
				t.Errorf("ElementsInRect() = %v, want nil", got)
			}
		})
	}
}

func TestPrepareInvalidConfig(t *testing.T) {
	col := layouttest.TwoSections()
	e := New(Config{ContentInset: geom.Insets{Left: -4}}, WithDataSource(col), WithDelegate(col))
	if err := e.Prepare(geom.NewRect(0, 0, 300, 100)); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("Prepare() error = %v, want %v", err, errors.ErrCodeConfiguration)
	}
}

func TestLateCollaborators(t *testing.T) {
	col := layouttest.TwoSections()
	e := New(Config{})
	e.SetDataSource(col)
	e.SetDelegate(col)
	if err := e.Prepare(geom.NewRect(0, 0, 300, 100)); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if !e.Prepared() {
		t.Error("Prepared() = false")
	}
}

func TestContentExtent(t *testing.T) {
	col := layouttest.TwoSections()
	e := newEngine(t, Config{ContentInset: geom.Insets{Top: 10, Bottom: 5}}, col)

	got := e.ContentExtent()
	if got != (geom.Size{Width: 270, Height: 85}) {
		t.Errorf("ContentExtent() = %v, want {270 85}", got)
	}
}

func TestEmptyCollection(t *testing.T) {
	col := &layouttest.Collection{}
	e := New(Config{ContentInset: geom.Insets{Left: 8, Right: 8}}, WithDataSource(col), WithDelegate(col))
	if err := e.Prepare(geom.NewRect(0, 0, 300, 100)); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	if got := e.ContentExtent(); got.Width != 16 {
		t.Errorf("ContentExtent().Width = %v, want 16", got.Width)
	}
	if got := e.ElementsInRect(geom.NewRect(0, 0, 300, 100)); len(got) != 0 {
		t.Errorf("ElementsInRect() = %v, want empty", got)
	}
	if got := e.HeaderTargets(); len(got) != 0 {
		t.Errorf("HeaderTargets() = %v, want empty", got)
	}
	if e.ViewportChanged(geom.NewRect(50, 0, 300, 100)) {
		t.Error("ViewportChanged() = true")
	}
}

func TestStickyHeaderWhileScrolling(t *testing.T) {
	col := layouttest.TwoSections()
	e := newEngine(t, Config{}, col)

	tests := []struct {
		scrollX float64
		wantX   float64
	}{
		{0, 0},
		{40, 40},
		{100, 90},
		{0, 0},
	}

	for _, tt := range tests {
		if e.ViewportChanged(geom.NewRect(tt.scrollX, 0, 300, 100)) {
			t.Fatalf("ViewportChanged(%v) = true, want false", tt.scrollX)
		}
		target, ok := e.TargetOf(attach.HeaderKey(0))
		if !ok {
			t.Fatal("header 0 not attached")
		}
		if target.X != tt.wantX {
			t.Errorf("scroll %v: header target x = %v, want %v", tt.scrollX, target.X, tt.wantX)
		}

		e.Settle()
		live, _ := e.PositionOf(attach.HeaderKey(0))
		if live.X != tt.wantX {
			t.Errorf("scroll %v: settled header x = %v, want %v", tt.scrollX, live.X, tt.wantX)
		}
	}

	targets := e.HeaderTargets()
	if len(targets) != 2 || targets[0].Frame.X != 0 {
		t.Errorf("HeaderTargets() = %+v", targets)
	}
}

func TestTickAnimatesHeader(t *testing.T) {
	col := layouttest.TwoSections()
	e := newEngine(t, Config{}, col)

	e.ViewportChanged(geom.NewRect(40, 0, 300, 100))
	if e.Settled() {
		t.Fatal("Settled() = true right after the header was retargeted")
	}

	e.Tick()
	mid, _ := e.PositionOf(attach.HeaderKey(0))
	if mid.X <= 0 || mid.X >= 40 {
		t.Errorf("after one Tick header x = %v, want strictly between 0 and 40", mid.X)
	}

	for i := 0; e.Tick(); i++ {
		if i > 1000 {
			t.Fatal("Tick() never settled")
		}
	}
	if live, _ := e.PositionOf(attach.HeaderKey(0)); live.X != 40 {
		t.Errorf("settled header x = %v, want 40", live.X)
	}
}

func TestElementsInRect(t *testing.T) {
	col := layouttest.TwoSections()
	e := newEngine(t, Config{}, col)

	got := e.ElementsInRect(geom.NewRect(100, 0, 100, 100))
	var keys []string
	for _, el := range got {
		keys = append(keys, el.Key.String())
	}
	want := "cell 0.1,cell 0.2,cell 1.0,header 1"
	if strings.Join(keys, ",") != want {
		t.Errorf("ElementsInRect() = %v, want %v", keys, want)
	}

	if f, ok := e.StaticFrame(layout.Path(1, 0)); !ok || f.X != 170 {
		t.Errorf("StaticFrame(1.0) = %v, %v", f, ok)
	}
	if len(e.AttachedKeys()) != 6 {
		t.Errorf("len(AttachedKeys()) = %d, want 6", len(e.AttachedKeys()))
	}
}

func TestFocusPopOut(t *testing.T) {
	col := layouttest.TwoSections()
	e := newEngine(t, Config{PopOut: true}, col)

	e.Focus(layout.Path(0, 0), 1.2)
	if f, ok := e.FocusedFrame(); !ok || f.X != -5 || f.Width != 60 {
		t.Errorf("FocusedFrame() = %v, %v; want x -5 width 60", f, ok)
	}
	if target, _ := e.TargetOf(attach.HeaderKey(0)); target.Y != -20 {
		t.Errorf("header 0 target y = %v, want -20", target.Y)
	}
	if target, _ := e.TargetOf(attach.HeaderKey(1)); target.Y != 0 {
		t.Errorf("header 1 target y = %v, want 0", target.Y)
	}

	e.ClearFocus()
	if target, _ := e.TargetOf(attach.HeaderKey(0)); target.Y != 0 {
		t.Errorf("header 0 target y after ClearFocus = %v, want 0", target.Y)
	}
	if _, _, ok := e.Focused(); ok {
		t.Error("Focused() ok = true after ClearFocus")
	}
}

func TestFocusWithoutPopOut(t *testing.T) {
	col := layouttest.TwoSections()
	e := newEngine(t, Config{}, col)

	e.Focus(layout.Path(0, 0), 0)
	if _, scale, _ := e.Focused(); scale != DefaultFocusScale {
		t.Errorf("Focused() scale = %v, want %v", scale, DefaultFocusScale)
	}
	if target, _ := e.TargetOf(attach.HeaderKey(0)); target.Y != 0 {
		t.Errorf("header 0 target y = %v, want 0 without PopOut", target.Y)
	}
}

type recordingHooks struct {
	observability.NoopEngineHooks
	passes    int
	viewports int
	lastErr   error
}

func (r *recordingHooks) OnLayoutPass(_ string, _, _, _ int, _ time.Duration, err error) {
	r.passes++
	r.lastErr = err
}

func (r *recordingHooks) OnViewportChange(string, int) { r.viewports++ }

func TestHooksAndLogging(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetEngineHooks(hooks)
	defer observability.Reset()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	col := layouttest.TwoSections()
	e := New(Config{}, WithDataSource(col), WithDelegate(col), WithLogger(logger))
	if err := e.Prepare(geom.NewRect(0, 0, 300, 100)); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	e.ViewportChanged(geom.NewRect(50, 0, 300, 100))

	if hooks.passes != 1 || hooks.viewports != 1 || hooks.lastErr != nil {
		t.Errorf("hooks = %+v, want one pass and one viewport change", hooks)
	}
	out := buf.String()
	if !strings.Contains(out, "layout pass") || !strings.Contains(out, "viewport changed") {
		t.Errorf("debug log missing entries:\n%s", out)
	}
	if !strings.Contains(out, e.ID()[:8]) {
		t.Errorf("log lines should carry the engine id %s:\n%s", e.ID()[:8], out)
	}

	e.SetDelegate(nil)
	if err := e.Prepare(geom.NewRect(0, 0, 300, 100)); err == nil {
		t.Fatal("Prepare() without delegate succeeded")
	}
	if hooks.passes != 2 || hooks.lastErr == nil {
		t.Errorf("failed pass not reported to hooks: %+v", hooks)
	}
}

func TestReset(t *testing.T) {
	col := layouttest.TwoSections()
	e := newEngine(t, Config{}, col)
	e.Reset()

	if e.Prepared() {
		t.Error("Prepared() = true after Reset")
	}
	if len(e.AttachedKeys()) != 0 {
		t.Errorf("AttachedKeys() after Reset = %v", e.AttachedKeys())
	}
}

func TestPrepareAfterDataChange(t *testing.T) {
	for _, reflow := range []bool{false, true} {
		col := layouttest.TwoSections()
		e := newEngine(t, Config{Reflow: reflow}, col)

		col.Sections[0].Widths = []float64{50}
		if err := e.Prepare(geom.NewRect(0, 0, 300, 100)); err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		e.Settle()

		if f, _ := e.PositionOf(attach.CellKey(layout.Path(1, 0))); f.X != 50 {
			t.Errorf("reflow=%v: cell 1.0 x = %v, want 50", reflow, f.X)
		}
		for _, target := range e.HeaderTargets() {
			got, ok := e.PositionOf(attach.HeaderKey(target.Section))
			if !ok || got != target.Frame {
				t.Errorf("reflow=%v: header %d at %v, want target %v", reflow, target.Section, got, target.Frame)
			}
		}
		if f, _ := e.PositionOf(attach.HeaderKey(1)); f.X != 50 {
			t.Errorf("reflow=%v: header 1 x = %v, want 50 inside its section", reflow, f.X)
		}
	}
}

func TestContentExtentBeforePrepare(t *testing.T) {
	e := New(Config{ContentInset: geom.Insets{Top: 10, Left: 4, Bottom: 5, Right: 6}})
	if got := e.ContentExtent(); got != (geom.Size{Width: 10, Height: 0}) {
		t.Errorf("ContentExtent() = %v, want {10 0}", got)
	}
}

func TestConfigValidateReportsFirstProblem(t *testing.T) {
	c := Config{ContentInset: geom.Insets{Top: math.NaN(), Bottom: math.Inf(1)}, PopOffset: math.NaN()}
	for range 20 {
		err := c.Validate()
		if err == nil || !strings.Contains(err.Error(), "content inset top") {
			t.Fatalf("Validate() error = %v, want the content inset top check first", err)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if c.PopOffset != 20 {
		t.Errorf("PopOffset = %v, want 20", c.PopOffset)
	}
	if c.Spring.FPS != 60 {
		t.Errorf("Spring.FPS = %v, want 60", c.Spring.FPS)
	}
	if c.Visibility != layout.VisibilityGlobal {
		t.Errorf("Visibility = %v, want global", c.Visibility)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
