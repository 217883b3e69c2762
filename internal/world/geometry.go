package world

import "math"

// Vec2 is a point or direction in simulation space. Y grows downward.
type Vec2 struct {
	X float64
	Y float64
}

func (v Vec2) Add(o Vec2) Vec2           { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2           { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(k float64) Vec2      { return Vec2{v.X * k, v.Y * k} }
func (v Vec2) Len() float64              { return math.Hypot(v.X, v.Y) }
func (v Vec2) DistanceTo(o Vec2) float64 { return o.Sub(v).Len() }
func (v Vec2) IsZero() bool              { return v.X == 0 && v.Y == 0 }

// Normalized returns the unit vector in v's direction, or the zero vector.
func (v Vec2) Normalized() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

func (r Rect) MaxX() float64 { return r.X + r.W }
func (r Rect) MaxY() float64 { return r.Y + r.H }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.X && p.X <= r.MaxX() && p.Y >= r.Y && p.Y <= r.MaxY()
}

// Clamp returns the point of r closest to p.
func (r Rect) Clamp(p Vec2) Vec2 {
	return Vec2{
		X: math.Min(math.Max(p.X, r.X), r.MaxX()),
		Y: math.Min(math.Max(p.Y, r.Y), r.MaxY()),
	}
}

// Inset shrinks r by m on every side. An axis narrower than 2m collapses
// onto its center line.
func (r Rect) Inset(m float64) Rect {
	out := Rect{X: r.X + m, Y: r.Y + m, W: r.W - 2*m, H: r.H - 2*m}
	if out.W < 0 {
		out.X, out.W = r.X+r.W/2, 0
	}
	if out.H < 0 {
		out.Y, out.H = r.Y+r.H/2, 0
	}
	return out
}
