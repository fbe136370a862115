package geometry

import "math"

// Point is a 2D coordinate in scene units.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

func (p Point) Scale(f float64) Point {
	return Point{p.X * f, p.Y * f}
}

// Lerp returns the point at parameter t on the segment p→q.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

// Dist returns the euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Near reports whether p and q are within eps on both axes.
func (p Point) Near(q Point, eps float64) bool {
	return math.Abs(p.X-q.X) <= eps && math.Abs(p.Y-q.Y) <= eps
}

// EvalCubic evaluates the cubic Bezier segment at parameter t.
func EvalCubic(seg [4]Point, t float64) Point {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return Point{
		a*seg[0].X + b*seg[1].X + c*seg[2].X + d*seg[3].X,
		a*seg[0].Y + b*seg[1].Y + c*seg[2].Y + d*seg[3].Y,
	}
}

// SliceBezier splits a cubic segment at t with De Casteljau's construction.
// The result is the 7-point sequence P0, P01, P012, P0123, P123, P23, P3:
// two cubic segments sharing the anchor P0123 that trace the input curve.
func SliceBezier(seg [4]Point, t float64) [7]Point {
	p01 := seg[0].Lerp(seg[1], t)
	p12 := seg[1].Lerp(seg[2], t)
	p23 := seg[2].Lerp(seg[3], t)
	p012 := p01.Lerp(p12, t)
	p123 := p12.Lerp(p23, t)
	p0123 := p012.Lerp(p123, t)
	return [7]Point{seg[0], p01, p012, p0123, p123, p23, seg[3]}
}

// LineSegment returns the control points and endpoint of a straight cubic
// segment from a to b.
func LineSegment(a, b Point) [3]Point {
	return [3]Point{a.Lerp(b, 1.0/3), a.Lerp(b, 2.0/3), b}
}

// QuadSegment elevates the quadratic segment (a, c, b) to a cubic one and
// returns its control points and endpoint.
func QuadSegment(a, c, b Point) [3]Point {
	return [3]Point{a.Lerp(c, 2.0/3), b.Lerp(c, 2.0/3), b}
}
