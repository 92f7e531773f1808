// Package geom provides the floating-point geometry types shared by the
// layout, header and attachment packages.
//
// All coordinates are content coordinates: x grows to the right, y grows
// downward, and a Rect's origin is its top-left corner.
package geom

import "math"

// Point is a location in content coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Insets are margins around a rectangle.
type Insets struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Bottom float64 `json:"bottom"`
	Right  float64 `json:"right"`
}

// Horizontal returns Left + Right.
func (i Insets) Horizontal() float64 { return i.Left + i.Right }

// Vertical returns Top + Bottom.
func (i Insets) Vertical() float64 { return i.Top + i.Bottom }

// Rect is an axis-aligned rectangle.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect creates a Rect with the given origin and dimensions.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// RectFromCenter creates a Rect of the given size centered on c.
func RectFromCenter(c Point, s Size) Rect {
	return Rect{X: c.X - s.Width/2, Y: c.Y - s.Height/2, Width: s.Width, Height: s.Height}
}

// MinX returns the left edge.
func (r Rect) MinX() float64 { return r.X }

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.X + r.Width }

// MinY returns the top edge.
func (r Rect) MinY() float64 { return r.Y }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// IsEmpty reports whether the rectangle has zero or negative area.
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Intersects reports whether r and o share a region of positive area.
// Rectangles that only touch along an edge do not intersect.
func (r Rect) Intersects(o Rect) bool {
	if r.IsEmpty() || o.IsEmpty() {
		return false
	}
	return r.X < o.MaxX() && o.X < r.MaxX() && r.Y < o.MaxY() && o.Y < r.MaxY()
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// WithCenter returns r moved so that its center is c.
func (r Rect) WithCenter(c Point) Rect {
	return RectFromCenter(c, r.Size())
}

// Scale returns r scaled by f about its center.
func (r Rect) Scale(f float64) Rect {
	return RectFromCenter(r.Center(), Size{Width: r.Width * f, Height: r.Height * f})
}

// IsFinite reports whether every component of v is a finite number.
func IsFinite(v ...float64) bool {
	for _, f := range v {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
