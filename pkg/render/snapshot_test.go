package render

import (
	"testing"

	"github.com/matzehuels/hsticky/pkg/attach"
	"github.com/matzehuels/hsticky/pkg/engine"
	"github.com/matzehuels/hsticky/pkg/geom"
	"github.com/matzehuels/hsticky/pkg/layout"
	"github.com/matzehuels/hsticky/pkg/layout/layouttest"
)

func prepared(t *testing.T, cfg engine.Config) *engine.Engine {
	t.Helper()
	col := layouttest.TwoSections()
	e := engine.New(cfg, engine.WithDataSource(col), engine.WithDelegate(col))
	if err := e.Prepare(geom.NewRect(0, 0, 300, 100)); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	return e
}

func TestCapture(t *testing.T) {
	e := prepared(t, engine.Config{})
	e.ViewportChanged(geom.NewRect(40, 0, 300, 100))

	snap := Capture(e, WithName("shelf"), WithFrame(3))

	if snap.Name != "shelf" || snap.Frame != 3 {
		t.Errorf("Name, Frame = %q, %d", snap.Name, snap.Frame)
	}
	if snap.Viewport != geom.NewRect(40, 0, 300, 100) {
		t.Errorf("Viewport = %v", snap.Viewport)
	}
	if snap.Extent.Width != 270 {
		t.Errorf("Extent.Width = %v, want 270", snap.Extent.Width)
	}
	if snap.Settled {
		t.Error("Settled = true while header 0 is moving")
	}
	if len(snap.Cells()) != 4 || len(snap.Headers()) != 2 {
		t.Fatalf("cells, headers = %d, %d; want 4, 2", len(snap.Cells()), len(snap.Headers()))
	}

	h := snap.Headers()[0]
	if h.Label != "header 0" {
		t.Errorf("Label = %q, want header 0", h.Label)
	}
	if !h.Moving() || h.Target.X != 40 || h.Frame.X != 0 {
		t.Errorf("header 0 frame %v target %v, want moving from 0 to 40", h.Frame, h.Target)
	}
	if snap.Cells()[0].Moving() {
		t.Error("cell 0.0 should be at rest")
	}
}

func TestCaptureLabeler(t *testing.T) {
	e := prepared(t, engine.Config{})
	snap := Capture(e, WithLabeler(func(k attach.ElementKey) string {
		if k.Kind == attach.KindHeader {
			return "H"
		}
		return "C"
	}))
	for _, el := range snap.Elements {
		want := "C"
		if el.Key.Kind == attach.KindHeader {
			want = "H"
		}
		if el.Label != want {
			t.Errorf("%s label = %q, want %q", el.Key, el.Label, want)
		}
	}
}

func TestCaptureUnprepared(t *testing.T) {
	if snap := Capture(nil); len(snap.Elements) != 0 {
		t.Errorf("Capture(nil) has %d elements", len(snap.Elements))
	}
	if snap := Capture(engine.New(engine.Config{})); len(snap.Elements) != 0 {
		t.Errorf("Capture(unprepared) has %d elements", len(snap.Elements))
	}
}

func TestSnapshotBounds(t *testing.T) {
	e := prepared(t, engine.Config{PopOut: true})
	e.Focus(layout.Path(0, 0), 1.2)
	e.Settle()

	snap := Capture(e)
	if snap.Focus == nil || *snap.Focus != layout.Path(0, 0) {
		t.Fatalf("Focus = %v, want 0.0", snap.Focus)
	}

	b := snap.Bounds()
	if b.MinY() != -20 {
		t.Errorf("Bounds().MinY() = %v, want -20 for the popped header", b.MinY())
	}
	if b.MinX() != -5 {
		t.Errorf("Bounds().MinX() = %v, want -5 for the enlarged focus", b.MinX())
	}
	if b.MaxX() != 300 {
		t.Errorf("Bounds().MaxX() = %v, want 300 for the viewport", b.MaxX())
	}
	if !snap.IsFocused(snap.Cells()[0]) || snap.IsFocused(snap.Cells()[1]) {
		t.Error("IsFocused() should only match cell 0.0")
	}
}
