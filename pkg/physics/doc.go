// Package physics animates element positions toward target anchors with
// per-element damped springs.
//
// Each [Attachment] binds one element, identified by a comparable key, to an
// anchor point. The element's body (center and velocity) is advanced toward
// the anchor once per frame by [Animator.Step], using
// github.com/charmbracelet/harmonica for the spring integration. Moving an
// anchor never recreates the attachment, so an element that is already in
// motion keeps its velocity and glides to the new target instead of
// snapping.
//
// There is no rigid-body simulation, collision or gravity: the only behaviour
// is "spring toward the anchor".
package physics
