package geometry

import "fmt"

// kappa places cubic control points so that four segments approximate a circle.
// k = 4 * (sqrt(2) - 1) / 3 ≈ 0.5522847498
const kappa = 0.5522847498

// NewRect creates a width×height rectangle centred on the origin, traced
// counter-clockwise from its top-left corner as four straight segments.
func NewRect(width, height float64) *Geometry {
	hw, hh := width/2, height/2
	return NewPolygon(Pt(-hw, hh), Pt(-hw, -hh), Pt(hw, -hh), Pt(hw, hh))
}

// NewSquare creates a side×side square centred on the origin.
func NewSquare(side float64) *Geometry {
	return NewRect(side, side)
}

// NewEllipse creates an ellipse with radii rx, ry centred on the origin as
// four cubic arcs starting at the rightmost point.
func NewEllipse(rx, ry float64) *Geometry {
	kx, ky := rx*kappa, ry*kappa
	g := New()
	g.AppendPath(Path{
		Pt(rx, 0),
		Pt(rx, ky), Pt(kx, ry), Pt(0, ry),
		Pt(-kx, ry), Pt(-rx, ky), Pt(-rx, 0),
		Pt(-rx, -ky), Pt(-kx, -ry), Pt(0, -ry),
		Pt(kx, -ry), Pt(rx, -ky), Pt(rx, 0),
	})
	return g
}

// NewCircle creates a circle of radius r centred on the origin.
func NewCircle(r float64) *Geometry {
	return NewEllipse(r, r)
}

// NewLine creates a single straight segment with a transparent fill.
func NewLine(from, to Point) *Geometry {
	g := New()
	seg := LineSegment(from, to)
	g.AppendPath(Path{from, seg[0], seg[1], seg[2]})
	g.SetFill(Transparent)
	return g
}

// NewPolygon creates a closed polygon through the given vertices.
func NewPolygon(vertices ...Point) *Geometry {
	g := New()
	if len(vertices) == 0 {
		return g
	}
	p := Path{vertices[0]}
	for i := range vertices {
		seg := LineSegment(vertices[i], vertices[(i+1)%len(vertices)])
		p = append(p, seg[:]...)
	}
	g.AppendPath(p)
	return g
}

// NewPolyline creates an open chain of straight segments with a transparent fill.
func NewPolyline(vertices ...Point) (*Geometry, error) {
	if len(vertices) < 2 {
		return nil, fmt.Errorf("polyline with %d vertices: %w", len(vertices), ErrUnsupportedShape)
	}
	g := New()
	p := Path{vertices[0]}
	for i := 1; i < len(vertices); i++ {
		seg := LineSegment(vertices[i-1], vertices[i])
		p = append(p, seg[:]...)
	}
	g.AppendPath(p)
	g.SetFill(Transparent)
	return g, nil
}
