// Package attach keeps one spring attachment per on-screen element and is the
// source of truth for where each element is currently drawn.
//
// A full layout pass ([Manager.OnLayoutPass]) diffs the visible set against
// the live attachments. Stale elements are detached and newly visible ones
// are attached at their static (cells) or sticky (headers) target. Elements
// that stay visible keep their attachment; only their anchor is updated when
// the pass moved their target. Scrolling ([Manager.OnBoundsChange]) only
// moves header anchors in place.
//
// Header targets are computed from the live frames of their section's cells,
// so they are refreshed after every pass and every animation step.
package attach

import (
	"slices"

	"github.com/matzehuels/hsticky/pkg/geom"
	"github.com/matzehuels/hsticky/pkg/header"
	"github.com/matzehuels/hsticky/pkg/layout"
	"github.com/matzehuels/hsticky/pkg/physics"
)

// Options configures a Manager.
type Options struct {
	Visibility layout.Visibility
	Spring     physics.Spring

	// Reflow retargets still-visible cells whose static frame changed
	// between passes, so they glide to their new place. When false they jump
	// straight to it.
	Reflow bool
}

// Stats summarises the membership changes made by one call.
type Stats struct {
	Visible    int // visible cells after the call
	Attached   int
	Detached   int
	Retargeted int
	Placed     int // still-visible cells moved without animation
}

// Manager owns the live attachments of one engine. It is not safe for
// concurrent use.
type Manager struct {
	opts     Options
	headers  *header.Calculator
	animator *physics.Animator[ElementKey]

	cache  *layout.Cache
	bounds geom.Rect
}

// NewManager creates a manager that asks calc for header targets.
func NewManager(calc *header.Calculator, opts Options) *Manager {
	return &Manager{
		opts:     opts,
		headers:  calc,
		animator: physics.NewAnimator[ElementKey](opts.Spring),
	}
}

// Bounds returns the visible rectangle of the last pass or bounds change.
func (m *Manager) Bounds() geom.Rect { return m.bounds }

// OnLayoutPass adopts cache and reconciles the attachments with the elements
// visible in rect.
func (m *Manager) OnLayoutPass(cache *layout.Cache, rect geom.Rect) Stats {
	m.cache = cache
	m.bounds = rect
	return m.sync()
}

// OnBoundsChange absorbs a viewport change and reports whether a full layout
// pass is needed, which is never the case.
func (m *Manager) OnBoundsChange(rect geom.Rect) bool {
	m.ApplyBounds(rect)
	return false
}

// ApplyBounds moves every attached header's anchor to its sticky target for
// rect. With exact visibility it also attaches and detaches elements that
// crossed the viewport edge, since membership then depends on the rectangle.
func (m *Manager) ApplyBounds(rect geom.Rect) Stats {
	m.bounds = rect
	if m.cache == nil {
		return Stats{}
	}

	var st Stats
	if m.opts.Visibility == layout.VisibilityExact {
		return m.sync()
	}
	st.Visible = m.count(KindCell)
	st.Retargeted = m.retargetHeaders()
	return st
}

func (m *Manager) sync() Stats {
	paths := m.cache.VisiblePaths(m.bounds, m.opts.Visibility)

	visible := make(map[layout.IndexPath]struct{}, len(paths))
	sections := make(map[int]struct{})
	for _, p := range paths {
		visible[p] = struct{}{}
		sections[p.Section] = struct{}{}
	}

	st := Stats{Visible: len(paths)}

	// Cells first: header targets read the live frames of their section's
	// first and last cells.
	for _, key := range m.animator.Keys() {
		if key.Kind != KindCell {
			continue
		}
		if _, ok := visible[key.Path]; !ok {
			m.animator.Detach(key)
			st.Detached++
		}
	}
	for _, p := range paths {
		frame, _ := m.cache.Frame(p)
		key := CellKey(p)
		switch {
		case m.animator.Attach(key, frame):
			st.Attached++
		case m.opts.Reflow:
			if m.animator.Retarget(key, frame) {
				st.Retargeted++
			}
		default:
			if m.animator.Place(key, frame) {
				st.Placed++
			}
		}
	}

	for _, key := range m.animator.Keys() {
		if key.Kind != KindHeader {
			continue
		}
		if _, ok := sections[key.Path.Section]; !ok {
			m.animator.Detach(key)
			st.Detached++
		}
	}
	for _, section := range sortedSections(sections) {
		key := HeaderKey(section)
		target, ok := m.headers.Target(m.cache, m, m.bounds.X, section)
		if !ok {
			continue
		}
		if m.animator.Attach(key, target.Frame) {
			st.Attached++
		} else if m.animator.Retarget(key, target.Frame) {
			st.Retargeted++
		}
	}
	return st
}

func (m *Manager) retargetHeaders() int {
	if m.cache == nil {
		return 0
	}
	n := 0
	for _, key := range m.sortedKeys() {
		if key.Kind != KindHeader {
			continue
		}
		target, ok := m.headers.Target(m.cache, m, m.bounds.X, key.Path.Section)
		if !ok {
			continue
		}
		if m.animator.Retarget(key, target.Frame) {
			n++
		}
	}
	return n
}

// ItemFrame returns the live frame of an attached cell. It lets the manager
// serve as the header calculator's frame source.
func (m *Manager) ItemFrame(path layout.IndexPath) (geom.Rect, bool) {
	return m.PositionOf(CellKey(path))
}

// PositionOf returns the live frame of key. ok is false when the element is
// not attached; callers should treat it as off screen or fall back to the
// static cache.
func (m *Manager) PositionOf(key ElementKey) (geom.Rect, bool) {
	att, ok := m.animator.Attachment(key)
	if !ok {
		return geom.Rect{}, false
	}
	return att.Frame(), true
}

// Anchor returns the target frame key is moving toward.
func (m *Manager) Anchor(key ElementKey) (geom.Rect, bool) {
	att, ok := m.animator.Attachment(key)
	if !ok {
		return geom.Rect{}, false
	}
	return att.Target(), true
}

// PositionsInRect returns every attached element whose live frame intersects
// rect, cells first, each group in index order.
func (m *Manager) PositionsInRect(rect geom.Rect) []Element {
	atts := m.animator.In(rect)
	out := make([]Element, 0, len(atts))
	for _, att := range atts {
		out = append(out, Element{Key: att.Key(), Frame: att.Frame()})
	}
	slices.SortFunc(out, func(a, b Element) int { return a.Key.Compare(b.Key) })
	return out
}

// Keys returns every attached key, cells first, in index order.
func (m *Manager) Keys() []ElementKey { return m.sortedKeys() }

// Count returns the number of attached elements of kind.
func (m *Manager) Count(kind Kind) int { return m.count(kind) }

// Step advances all springs by one frame and reports whether anything is
// still moving. Header anchors follow the cells that moved.
func (m *Manager) Step() bool {
	if m.animator.Settled() {
		return false
	}
	moving := m.animator.Step()
	return m.retargetHeaders() > 0 || moving
}

// Settle snaps every element onto its anchor, including headers whose
// target depends on cells that were still moving.
func (m *Manager) Settle() {
	m.animator.Settle()
	if m.retargetHeaders() > 0 {
		m.animator.Settle()
	}
}

// Settled reports whether every element is at rest.
func (m *Manager) Settled() bool { return m.animator.Settled() }

// Reset drops every attachment and the adopted cache.
func (m *Manager) Reset() {
	m.animator.Reset()
	m.cache = nil
}

func (m *Manager) count(kind Kind) int {
	n := 0
	m.animator.Each(func(a *physics.Attachment[ElementKey]) {
		if a.Key().Kind == kind {
			n++
		}
	})
	return n
}

func (m *Manager) sortedKeys() []ElementKey {
	keys := m.animator.Keys()
	slices.SortFunc(keys, ElementKey.Compare)
	return keys
}

func sortedSections(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}
