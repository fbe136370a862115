package geometry

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

// Path is a sequence of cubic Bezier segments: an anchor followed by
// (control1, control2, endpoint) triples. A single point is a valid
// path that has no segments yet.
type Path []Point

// Segments returns the number of cubic segments in the path.
func (p Path) Segments() int {
	if len(p) < 4 {
		return 0
	}
	return (len(p) - 1) / 3
}

// Segment returns the four control points of segment i.
func (p Path) Segment(i int) [4]Point {
	at := i * 3
	return [4]Point{p[at], p[at+1], p[at+2], p[at+3]}
}

// Valid reports whether the point count satisfies the cubic layout.
func (p Path) Valid() bool {
	return len(p) > 0 && (len(p)-1)%3 == 0
}

// Closed reports whether the path ends where it starts.
func (p Path) Closed() bool {
	return len(p) > 1 && p[0].Near(p[len(p)-1], 1e-9)
}

// Center selects the anchor used by RotateBy and ScaleBy.
type Center int

const (
	// ByOutline uses the centre of the bounding outline.
	ByOutline Center = iota
	// ByPoints uses the mean of all points.
	ByPoints
)

// DefaultStrokeWidth is the stroke width of a new Geometry in scene units.
const DefaultStrokeWidth = 0.10

// Geometry is a drawable object: cubic paths plus paint state.
//
// A Geometry owns all of its state. Clone returns a copy that shares no
// mutable data with the original.
type Geometry struct {
	paths []Path

	fill         Color
	fillGradient *LinearGradient

	stroke         Color
	strokeGradient *LinearGradient
	strokeWidth    float64

	hidden bool
}

// New creates an empty, visible Geometry with white fill and stroke.
func New() *Geometry {
	return &Geometry{
		fill:        White,
		stroke:      White,
		strokeWidth: DefaultStrokeWidth,
	}
}

// Clone returns a deep copy.
func (g *Geometry) Clone() *Geometry {
	out := *g
	out.paths = make([]Path, len(g.paths))
	for i, p := range g.paths {
		out.paths[i] = append(Path(nil), p...)
	}
	out.fillGradient = g.fillGradient.clone()
	out.strokeGradient = g.strokeGradient.clone()
	return &out
}

// AddPath appends an empty path; subsequent AddPoint calls extend it.
func (g *Geometry) AddPath() {
	g.paths = append(g.paths, Path{})
}

// AddPoint appends points to the last path.
func (g *Geometry) AddPoint(pts ...Point) error {
	if len(g.paths) == 0 {
		return fmt.Errorf("add point: no path: %w", ErrInvalidState)
	}
	last := len(g.paths) - 1
	g.paths[last] = append(g.paths[last], pts...)
	return nil
}

// AppendPath adds a copy of p as a new path.
func (g *Geometry) AppendPath(p Path) {
	g.paths = append(g.paths, append(Path(nil), p...))
}

// PathCount returns the number of paths.
func (g *Geometry) PathCount() int {
	return len(g.paths)
}

// PointCount returns the number of points of path i.
func (g *Geometry) PointCount(i int) int {
	return len(g.paths[i])
}

// TotalPoints returns the number of points over all paths.
func (g *Geometry) TotalPoints() int {
	n := 0
	for _, p := range g.paths {
		n += len(p)
	}
	return n
}

// Paths returns the paths. The slices are owned by g and must not be modified.
func (g *Geometry) Paths() []Path {
	return g.paths
}

// Points returns a flattened copy of every point in path order.
func (g *Geometry) Points() []Point {
	out := make([]Point, 0, g.TotalPoints())
	for _, p := range g.paths {
		out = append(out, p...)
	}
	return out
}

// DuplicatePath inserts a copy of path index at index, shifting later paths.
func (g *Geometry) DuplicatePath(index int) error {
	if index < 0 || index >= len(g.paths) {
		return fmt.Errorf("duplicate path %d of %d: %w", index, len(g.paths), ErrUnsupportedShape)
	}
	dup := append(Path(nil), g.paths[index]...)
	g.paths = slices.Insert(g.paths, index, dup)
	return nil
}

// DuplicateRandomPath duplicates a path chosen uniformly by rng.
func (g *Geometry) DuplicateRandomPath(rng *rand.Rand) error {
	if len(g.paths) == 0 {
		return fmt.Errorf("duplicate path: no paths: %w", ErrUnsupportedShape)
	}
	return g.DuplicatePath(rng.IntN(len(g.paths)))
}

// InterpolatePath bisects segment seg of path pathIndex at t=0.5,
// replacing its 4 points with the 7 points of two segments tracing the
// same curve.
func (g *Geometry) InterpolatePath(pathIndex, seg int) error {
	if pathIndex < 0 || pathIndex >= len(g.paths) {
		return fmt.Errorf("interpolate path %d of %d: %w", pathIndex, len(g.paths), ErrUnsupportedShape)
	}
	p := g.paths[pathIndex]
	if seg < 0 || seg >= p.Segments() {
		return fmt.Errorf("interpolate path %d segment %d of %d: %w", pathIndex, seg, p.Segments(), ErrUnsupportedShape)
	}
	sliced := SliceBezier(p.Segment(seg), 0.5)
	at := seg * 3
	out := make(Path, 0, len(p)+3)
	out = append(out, p[:at]...)
	out = append(out, sliced[:]...)
	out = append(out, p[at+4:]...)
	g.paths[pathIndex] = out
	return nil
}

// InterpolateRandomSegment bisects a segment of path pathIndex chosen uniformly by rng.
func (g *Geometry) InterpolateRandomSegment(pathIndex int, rng *rand.Rand) error {
	if pathIndex < 0 || pathIndex >= len(g.paths) {
		return fmt.Errorf("interpolate path %d of %d: %w", pathIndex, len(g.paths), ErrUnsupportedShape)
	}
	n := g.paths[pathIndex].Segments()
	if n == 0 {
		return fmt.Errorf("interpolate path %d: no segments: %w", pathIndex, ErrUnsupportedShape)
	}
	return g.InterpolatePath(pathIndex, rng.IntN(n))
}

// Outline returns the bounding box of every point, or an empty rect.
func (g *Geometry) Outline() Rect {
	r := EmptyRect()
	for i := range g.paths {
		r = r.Union(g.PathOutline(i))
	}
	return r
}

// PathOutline returns the bounding box of path i.
func (g *Geometry) PathOutline(i int) Rect {
	r := EmptyRect()
	for _, p := range g.paths[i] {
		r = r.Extend(p)
	}
	return r
}

// Center returns the anchor selected by mode.
func (g *Geometry) Center(mode Center) Point {
	if mode == ByPoints {
		n := g.TotalPoints()
		if n == 0 {
			return Point{}
		}
		var sum Point
		for _, p := range g.paths {
			for _, pt := range p {
				sum = sum.Add(pt)
			}
		}
		return sum.Scale(1 / float64(n))
	}
	r := g.Outline()
	if r.IsEmpty() {
		return Point{}
	}
	return r.Center()
}

// TranslateBy shifts every point by v.
func (g *Geometry) TranslateBy(v Point) {
	for _, p := range g.paths {
		for j := range p {
			p[j] = p[j].Add(v)
		}
	}
}

// TranslatePoints shifts each point by the matching entry of deltas,
// which must hold one vector per point in Points order.
func (g *Geometry) TranslatePoints(deltas []Point) error {
	if len(deltas) != g.TotalPoints() {
		return fmt.Errorf("translate %d points by %d vectors: %w", g.TotalPoints(), len(deltas), ErrInvalidState)
	}
	k := 0
	for _, p := range g.paths {
		for j := range p {
			p[j] = p[j].Add(deltas[k])
			k++
		}
	}
	return nil
}

// MoveTo translates the geometry so that its center lands on p.
func (g *Geometry) MoveTo(p Point, mode Center) {
	g.TranslateBy(p.Sub(g.Center(mode)))
}

// RotateBy rotates counter-clockwise by angle radians about the chosen center.
func (g *Geometry) RotateBy(angle float64, mode Center) {
	g.Transform(Rotate(angle).About(g.Center(mode)))
}

// ScaleBy scales uniformly by factor about the chosen center.
func (g *Geometry) ScaleBy(factor float64, mode Center) {
	g.Transform(Scale(factor, factor).About(g.Center(mode)))
}

// Transform applies m to every point. Stroke width is unchanged.
func (g *Geometry) Transform(m Matrix2D) {
	for _, p := range g.paths {
		for j := range p {
			p[j] = m.Apply(p[j])
		}
	}
}

// Fill returns the solid fill color.
func (g *Geometry) Fill() Color { return g.fill }

// SetFill sets a solid fill and clears any fill gradient.
func (g *Geometry) SetFill(c Color) {
	g.fill = c
	g.fillGradient = nil
}

// FillGradient returns the fill gradient, or nil when the fill is solid.
func (g *Geometry) FillGradient() *LinearGradient { return g.fillGradient }

// SetFillGradient makes grad the fill paint source.
func (g *Geometry) SetFillGradient(grad *LinearGradient) {
	g.fillGradient = grad
}

// Stroke returns the solid stroke color.
func (g *Geometry) Stroke() Color { return g.stroke }

// SetStroke sets a solid stroke and clears any stroke gradient.
func (g *Geometry) SetStroke(c Color) {
	g.stroke = c
	g.strokeGradient = nil
}

// StrokeGradient returns the stroke gradient, or nil when the stroke is solid.
func (g *Geometry) StrokeGradient() *LinearGradient { return g.strokeGradient }

// SetStrokeGradient makes grad the stroke paint source.
func (g *Geometry) SetStrokeGradient(grad *LinearGradient) {
	g.strokeGradient = grad
}

func (g *Geometry) StrokeWidth() float64 { return g.strokeWidth }

// SetStrokeWidth sets the stroke width; negative widths are clamped to zero.
func (g *Geometry) SetStrokeWidth(w float64) {
	g.strokeWidth = max(w, 0)
}

func (g *Geometry) FillOpacity() float64   { return g.fill.A }
func (g *Geometry) StrokeOpacity() float64 { return g.stroke.A }

// SetFillOpacity changes the alpha of the solid fill only.
func (g *Geometry) SetFillOpacity(a float64) {
	g.fill.A = a
}

// SetStrokeOpacity changes the alpha of the solid stroke only.
func (g *Geometry) SetStrokeOpacity(a float64) {
	g.stroke.A = a
}

// SetOpacity sets fill and stroke alpha together.
func (g *Geometry) SetOpacity(a float64) {
	g.fill.A = a
	g.stroke.A = a
}

func (g *Geometry) Hide()        { g.hidden = true }
func (g *Geometry) Show()        { g.hidden = false }
func (g *Geometry) Hidden() bool { return g.hidden }

// String summarizes the structure for logs.
func (g *Geometry) String() string {
	return fmt.Sprintf("Geometry(paths=%d points=%d hidden=%t)", len(g.paths), g.TotalPoints(), g.hidden)
}
