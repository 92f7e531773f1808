package attach

import (
	"slices"
	"testing"

	"github.com/matzehuels/hsticky/pkg/geom"
	"github.com/matzehuels/hsticky/pkg/header"
	"github.com/matzehuels/hsticky/pkg/layout"
	"github.com/matzehuels/hsticky/pkg/layout/layouttest"
	"github.com/matzehuels/hsticky/pkg/physics"
)

func newManager(t *testing.T, col *layouttest.Collection, vis layout.Visibility) (*Manager, *layout.Cache) {
	t.Helper()
	cache, err := layout.Build(col, col, geom.Insets{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	m := NewManager(&header.Calculator{Delegate: col}, Options{Visibility: vis, Spring: physics.DefaultSpring()})
	return m, cache
}

func TestOnLayoutPassAttachesVisible(t *testing.T) {
	col := layouttest.TwoSections()
	m, cache := newManager(t, col, layout.VisibilityGlobal)

	st := m.OnLayoutPass(cache, geom.NewRect(0, 0, 100, 100))

	if st.Visible != 4 || m.Count(KindCell) != 4 {
		t.Errorf("cells = %d (stats %d), want 4", m.Count(KindCell), st.Visible)
	}
	if m.Count(KindHeader) != 2 {
		t.Errorf("headers = %d, want 2", m.Count(KindHeader))
	}
	if st.Attached != 6 || st.Detached != 0 {
		t.Errorf("stats = %+v, want 6 attached 0 detached", st)
	}

	f, ok := m.PositionOf(CellKey(layout.Path(0, 1)))
	if !ok || f != geom.NewRect(60, 20, 50, 40) {
		t.Errorf("PositionOf(cell 0.1) = %v, %v; want static frame", f, ok)
	}
	h, ok := m.PositionOf(HeaderKey(1))
	if !ok || h != geom.NewRect(170, 0, 80, 20) {
		t.Errorf("PositionOf(header 1) = %v, %v", h, ok)
	}
}

func TestOnLayoutPassIdempotent(t *testing.T) {
	for _, vis := range []layout.Visibility{layout.VisibilityGlobal, layout.VisibilityExact} {
		t.Run(vis.String(), func(t *testing.T) {
			col := layouttest.TwoSections()
			m, cache := newManager(t, col, vis)
			rect := geom.NewRect(30, 0, 120, 100)

			m.OnLayoutPass(cache, rect)
			keys := m.Keys()
			anchors := make(map[ElementKey]geom.Rect)
			for _, k := range keys {
				anchors[k], _ = m.Anchor(k)
			}

			st := m.OnLayoutPass(cache, rect)
			if st.Attached != 0 || st.Detached != 0 || st.Retargeted != 0 {
				t.Errorf("second pass stats = %+v, want no churn", st)
			}
			if !slices.Equal(m.Keys(), keys) {
				t.Errorf("Keys() changed: %v -> %v", keys, m.Keys())
			}
			for _, k := range keys {
				if a, _ := m.Anchor(k); a != anchors[k] {
					t.Errorf("anchor of %v moved: %v -> %v", k, anchors[k], a)
				}
			}
		})
	}
}

func TestExactVisibilityDiff(t *testing.T) {
	col := layouttest.TwoSections()
	m, cache := newManager(t, col, layout.VisibilityExact)

	m.OnLayoutPass(cache, geom.NewRect(0, 0, 100, 100))
	want := []ElementKey{CellKey(layout.Path(0, 0)), CellKey(layout.Path(0, 1)), HeaderKey(0)}
	if got := m.Keys(); !slices.Equal(got, want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}

	st := m.OnLayoutPass(cache, geom.NewRect(150, 0, 100, 100))
	want = []ElementKey{CellKey(layout.Path(0, 2)), CellKey(layout.Path(1, 0)), HeaderKey(0), HeaderKey(1)}
	if got := m.Keys(); !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if st.Detached != 2 || st.Attached != 3 {
		t.Errorf("stats = %+v, want 2 detached 3 attached", st)
	}

	// Header 0 survived the pass untouched: its anchor is still where it was
	// attached at scroll offset 0.
	if a, _ := m.Anchor(HeaderKey(0)); a.X != 0 {
		t.Errorf("header 0 anchor x = %v, want 0", a.X)
	}
}

func TestOnBoundsChangeRetargetsHeadersInPlace(t *testing.T) {
	col := layouttest.TwoSections()
	m, cache := newManager(t, col, layout.VisibilityGlobal)
	m.OnLayoutPass(cache, geom.NewRect(0, 0, 200, 100))

	if m.OnBoundsChange(geom.NewRect(40, 0, 200, 100)) {
		t.Error("OnBoundsChange() = true, want false")
	}

	anchor, _ := m.Anchor(HeaderKey(0))
	if anchor.X != 40 {
		t.Errorf("header 0 anchor x = %v, want 40", anchor.X)
	}
	// The body has not moved yet: the attachment was updated, not recreated.
	live, _ := m.PositionOf(HeaderKey(0))
	if live.X != 0 {
		t.Errorf("header 0 live x = %v before Step, want 0", live.X)
	}
	// Cells never move on scroll.
	if f, _ := m.PositionOf(CellKey(layout.Path(0, 0))); f.X != 0 {
		t.Errorf("cell 0.0 moved to %v", f.X)
	}

	for i := 0; m.Step(); i++ {
		if i > 1000 {
			t.Fatal("springs did not settle")
		}
	}
	if live, _ := m.PositionOf(HeaderKey(0)); live.X != 40 {
		t.Errorf("header 0 settled at %v, want 40", live.X)
	}

	st := m.ApplyBounds(geom.NewRect(100, 0, 200, 100))
	if st.Retargeted != 1 {
		t.Errorf("Retargeted = %d, want 1 (only header 0 moves)", st.Retargeted)
	}
	if a, _ := m.Anchor(HeaderKey(0)); a.X != 90 {
		t.Errorf("header 0 anchor x = %v, want release boundary 90", a.X)
	}
}

func TestOnBoundsChangeExactMembership(t *testing.T) {
	col := layouttest.TwoSections()
	m, cache := newManager(t, col, layout.VisibilityExact)
	m.OnLayoutPass(cache, geom.NewRect(0, 0, 50, 100))

	st := m.ApplyBounds(geom.NewRect(180, 0, 50, 100))
	if st.Attached != 2 || st.Detached != 2 {
		t.Errorf("stats = %+v, want cell+header swapped", st)
	}
	if _, ok := m.PositionOf(CellKey(layout.Path(0, 0))); ok {
		t.Error("cell 0.0 still attached after scrolling away")
	}
	if _, ok := m.PositionOf(HeaderKey(1)); !ok {
		t.Error("header 1 not attached after scrolling into section 1")
	}
}

func TestPositionsInRect(t *testing.T) {
	col := layouttest.TwoSections()
	m, cache := newManager(t, col, layout.VisibilityGlobal)
	m.OnLayoutPass(cache, geom.NewRect(0, 0, 300, 100))

	got := m.PositionsInRect(geom.NewRect(0, 0, 65, 100))
	var keys []ElementKey
	for _, e := range got {
		keys = append(keys, e.Key)
	}
	want := []ElementKey{CellKey(layout.Path(0, 0)), CellKey(layout.Path(0, 1)), HeaderKey(0)}
	if !slices.Equal(keys, want) {
		t.Errorf("PositionsInRect() keys = %v, want %v", keys, want)
	}

	if _, ok := m.PositionOf(CellKey(layout.Path(7, 7))); ok {
		t.Error("PositionOf(unknown) ok = true")
	}
}

func TestReflow(t *testing.T) {
	col := layouttest.TwoSections()
	cache, _ := layout.Build(col, col, geom.Insets{})
	m := NewManager(&header.Calculator{Delegate: col}, Options{Reflow: true})
	m.OnLayoutPass(cache, geom.NewRect(0, 0, 300, 100))

	col.Sections[0].Spacing = 20
	rebuilt, _ := layout.Build(col, col, geom.Insets{})
	st := m.OnLayoutPass(rebuilt, geom.NewRect(0, 0, 300, 100))

	// 0.1, 0.2 and 1.0 moved right.
	if st.Retargeted != 3 {
		t.Errorf("Retargeted = %d, want 3", st.Retargeted)
	}
	if a, _ := m.Anchor(CellKey(layout.Path(0, 2))); a.X != 140 {
		t.Errorf("cell 0.2 anchor x = %v, want 140", a.X)
	}

	if f, _ := m.PositionOf(CellKey(layout.Path(0, 2))); f.X != 120 {
		t.Errorf("cell 0.2 live x = %v before Step, want 120", f.X)
	}

	plain := NewManager(&header.Calculator{Delegate: col}, Options{})
	plain.OnLayoutPass(cache, geom.NewRect(0, 0, 300, 100))
	st = plain.OnLayoutPass(rebuilt, geom.NewRect(0, 0, 300, 100))
	if st.Placed != 3 {
		t.Errorf("without Reflow Placed = %d, want 3", st.Placed)
	}
	// Only header 1 follows its moved cell; no cell is animated.
	if st.Retargeted != 1 {
		t.Errorf("without Reflow Retargeted = %d, want 1", st.Retargeted)
	}
	if f, _ := plain.PositionOf(CellKey(layout.Path(0, 2))); f.X != 140 {
		t.Errorf("cell 0.2 live x = %v, want 140 without animation", f.X)
	}
	if a, _ := plain.Anchor(HeaderKey(1)); a.X != 190 {
		t.Errorf("header 1 anchor x = %v, want 190", a.X)
	}
}

func TestLayoutPassAfterDataChange(t *testing.T) {
	for _, reflow := range []bool{false, true} {
		t.Run(map[bool]string{false: "jump", true: "reflow"}[reflow], func(t *testing.T) {
			col := layouttest.TwoSections()
			calc := &header.Calculator{Delegate: col}
			m := NewManager(calc, Options{Reflow: reflow})
			cache, _ := layout.Build(col, col, geom.Insets{})
			m.OnLayoutPass(cache, geom.NewRect(0, 0, 300, 100))

			col.Sections[0].Widths = []float64{50}
			rebuilt, _ := layout.Build(col, col, geom.Insets{})
			m.OnLayoutPass(rebuilt, geom.NewRect(0, 0, 300, 100))

			for i := 0; m.Step(); i++ {
				if i > 1000 {
					t.Fatal("springs did not settle")
				}
			}

			want := map[ElementKey]geom.Rect{
				CellKey(layout.Path(1, 0)): geom.NewRect(50, 20, 100, 40),
				HeaderKey(0):               geom.NewRect(-30, 0, 80, 20),
				HeaderKey(1):               geom.NewRect(50, 0, 80, 20),
			}
			for key, frame := range want {
				if got, _ := m.PositionOf(key); got != frame {
					t.Errorf("PositionOf(%v) = %v, want %v", key, got, frame)
				}
			}
			for _, target := range calc.Targets(rebuilt, m, 0) {
				if got, _ := m.PositionOf(HeaderKey(target.Section)); got != target.Frame {
					t.Errorf("header %d at %v, target %v", target.Section, got, target.Frame)
				}
			}
		})
	}
}

func TestReset(t *testing.T) {
	col := layouttest.TwoSections()
	m, cache := newManager(t, col, layout.VisibilityGlobal)
	m.OnLayoutPass(cache, geom.NewRect(0, 0, 300, 100))
	m.Reset()

	if len(m.Keys()) != 0 {
		t.Errorf("Keys() after Reset = %v", m.Keys())
	}
	if st := m.ApplyBounds(geom.NewRect(10, 0, 10, 10)); st != (Stats{}) {
		t.Errorf("ApplyBounds() without cache = %+v, want zero", st)
	}
}

func TestElementKey(t *testing.T) {
	if s := HeaderKey(2).String(); s != "header 2" {
		t.Errorf("String() = %q", s)
	}
	if s := CellKey(layout.Path(1, 3)).String(); s != "cell 1.3" {
		t.Errorf("String() = %q", s)
	}
	if k, ok := ParseKind("header"); !ok || k != KindHeader {
		t.Errorf("ParseKind(header) = %v, %v", k, ok)
	}
	if _, ok := ParseKind("footer"); ok {
		t.Error("ParseKind(footer) ok = true")
	}
}
