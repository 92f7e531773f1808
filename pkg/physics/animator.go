package physics

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/matzehuels/hsticky/pkg/geom"
)

// restEpsilon is the distance and speed below which a body counts as at rest.
const restEpsilon = 0.01

// Body is the live, animated state of an element.
type Body struct {
	Center   geom.Point
	Velocity geom.Point
	Size     geom.Size
}

// Frame returns the body's current rectangle.
func (b Body) Frame() geom.Rect { return geom.RectFromCenter(b.Center, b.Size) }

// Attachment binds an element to its anchor.
type Attachment[K comparable] struct {
	key    K
	anchor geom.Point
	body   Body
}

// Key returns the element key.
func (a *Attachment[K]) Key() K { return a.key }

// Anchor returns the point the body is pulled toward.
func (a *Attachment[K]) Anchor() geom.Point { return a.anchor }

// Body returns a copy of the live state.
func (a *Attachment[K]) Body() Body { return a.body }

// Frame returns the body's current rectangle.
func (a *Attachment[K]) Frame() geom.Rect { return a.body.Frame() }

// Target returns the rectangle the body is heading for.
func (a *Attachment[K]) Target() geom.Rect { return geom.RectFromCenter(a.anchor, a.body.Size) }

// AtRest reports whether the body sits on its anchor with no velocity.
func (a *Attachment[K]) AtRest() bool {
	b := a.body
	return math.Abs(b.Center.X-a.anchor.X) < restEpsilon &&
		math.Abs(b.Center.Y-a.anchor.Y) < restEpsilon &&
		math.Abs(b.Velocity.X) < restEpsilon &&
		math.Abs(b.Velocity.Y) < restEpsilon
}

// Animator owns the set of live attachments. It holds at most one
// attachment per key. It is not safe for concurrent use.
type Animator[K comparable] struct {
	spring      Spring
	motion      harmonica.Spring
	attachments map[K]*Attachment[K]
}

// NewAnimator creates an empty animator.
func NewAnimator[K comparable](s Spring) *Animator[K] {
	s.SetDefaults()
	return &Animator[K]{
		spring:      s,
		motion:      s.harmonica(),
		attachments: make(map[K]*Attachment[K]),
	}
}

// Spring returns the animator's spring configuration.
func (a *Animator[K]) Spring() Spring { return a.spring }

// Len returns the number of live attachments.
func (a *Animator[K]) Len() int { return len(a.attachments) }

// Attach anchors key at the center of frame with its body at rest on the
// anchor. If key is already attached nothing changes and false is returned.
func (a *Animator[K]) Attach(key K, frame geom.Rect) bool {
	if _, ok := a.attachments[key]; ok {
		return false
	}
	c := frame.Center()
	a.attachments[key] = &Attachment[K]{
		key:    key,
		anchor: c,
		body:   Body{Center: c, Size: frame.Size()},
	}
	return true
}

// Detach removes key's attachment and reports whether one existed.
func (a *Animator[K]) Detach(key K) bool {
	if _, ok := a.attachments[key]; !ok {
		return false
	}
	delete(a.attachments, key)
	return true
}

// Attachment returns the live attachment for key.
func (a *Animator[K]) Attachment(key K) (*Attachment[K], bool) {
	att, ok := a.attachments[key]
	return att, ok
}

// Retarget moves key's anchor to the center of target and adopts its size,
// keeping the body's position and velocity. It reports whether the anchor
// moved; an unknown key reports false.
func (a *Animator[K]) Retarget(key K, target geom.Rect) bool {
	att, ok := a.attachments[key]
	if !ok {
		return false
	}
	att.body.Size = target.Size()
	c := target.Center()
	if c == att.anchor {
		return false
	}
	att.anchor = c
	return true
}

// Place moves key's anchor and body to frame and stops the body, without
// animating. It reports whether anything changed; an unknown key reports
// false.
func (a *Animator[K]) Place(key K, frame geom.Rect) bool {
	att, ok := a.attachments[key]
	if !ok {
		return false
	}
	c := frame.Center()
	if c == att.anchor && att.body.Center == c && att.body.Size == frame.Size() {
		return false
	}
	att.anchor = c
	att.body = Body{Center: c, Size: frame.Size()}
	return true
}

// Each calls fn for every attachment in unspecified order.
func (a *Animator[K]) Each(fn func(*Attachment[K])) {
	for _, att := range a.attachments {
		fn(att)
	}
}

// Keys returns every attached key in unspecified order.
func (a *Animator[K]) Keys() []K {
	keys := make([]K, 0, len(a.attachments))
	for k := range a.attachments {
		keys = append(keys, k)
	}
	return keys
}

// In returns the attachments whose current frame intersects rect.
func (a *Animator[K]) In(rect geom.Rect) []*Attachment[K] {
	var out []*Attachment[K]
	for _, att := range a.attachments {
		if att.Frame().Intersects(rect) {
			out = append(out, att)
		}
	}
	return out
}

// Step advances every body by one frame and reports whether any body is
// still moving afterwards. Bodies that reach rest are snapped exactly onto
// their anchor.
func (a *Animator[K]) Step() bool {
	s := a.motion
	moving := false
	for _, att := range a.attachments {
		if att.AtRest() {
			att.body.Center = att.anchor
			att.body.Velocity = geom.Point{}
			continue
		}
		b := &att.body
		b.Center.X, b.Velocity.X = s.Update(b.Center.X, b.Velocity.X, att.anchor.X)
		b.Center.Y, b.Velocity.Y = s.Update(b.Center.Y, b.Velocity.Y, att.anchor.Y)
		if att.AtRest() {
			b.Center = att.anchor
			b.Velocity = geom.Point{}
			continue
		}
		moving = true
	}
	return moving
}

// Settle moves every body onto its anchor and stops it.
func (a *Animator[K]) Settle() {
	for _, att := range a.attachments {
		att.body.Center = att.anchor
		att.body.Velocity = geom.Point{}
	}
}

// Settled reports whether every body is at rest.
func (a *Animator[K]) Settled() bool {
	for _, att := range a.attachments {
		if !att.AtRest() {
			return false
		}
	}
	return true
}

// Reset drops every attachment.
func (a *Animator[K]) Reset() {
	clear(a.attachments)
}
