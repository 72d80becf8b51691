package spatial

import "math"

// Vec is a point or direction in playfield coordinates
type Vec struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle anchored at its top-left corner
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Contains reports whether (x, y) lies inside the closed rectangle
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// Collides tests a circle of the given radius against rect.
//
// The circle is treated as its bounding square, so corners overlap slightly
// earlier than a true circle would. Comparisons are strict: a circle whose
// bounding square only touches an edge does not collide.
func Collides(cx, cy, radius float64, rect Rect) bool {
	return cx+radius > rect.X &&
		cx-radius < rect.X+rect.Width &&
		cy+radius > rect.Y &&
		cy-radius < rect.Y+rect.Height
}

// CollidesAny reports whether the circle overlaps any of rects
func CollidesAny(cx, cy, radius float64, rects []Rect) bool {
	for _, r := range rects {
		if Collides(cx, cy, radius, r) {
			return true
		}
	}
	return false
}

// Distance returns the Euclidean distance between two points
func Distance(ax, ay, bx, by float64) float64 {
	return math.Hypot(ax-bx, ay-by)
}

// AngleTo returns the angle in radians from (fromX, fromY) toward (toX, toY)
func AngleTo(fromX, fromY, toX, toY float64) float64 {
	return math.Atan2(toY-fromY, toX-fromX)
}

// Clamp restricts v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
