// Package svgpath imports SVG documents as geometries. Supported elements
// are path, rect, circle, ellipse, line, polyline and polygon, nested in
// groups carrying transform attributes.
package svgpath

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	mt "github.com/rustyoz/Mtransform"

	"github.com/inamate/animlib/internal/geometry"
)

var (
	ErrSyntax      = errors.New("svg syntax error")
	ErrUnsupported = errors.New("unsupported svg feature")
	ErrEmpty       = errors.New("svg has no drawable paths")
)

// Parse reads an SVG document and returns its outlines as one geometry
// with default paint. The y axis is flipped so up is positive and the
// result is centered on the origin.
func Parse(r io.Reader) (*geometry.Geometry, error) {
	dec := xml.NewDecoder(r)
	stack := []mt.Transform{mt.Identity()}
	var paths []geometry.Path

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode svg: %w: %w", ErrSyntax, err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			attrs := attrMap(el.Attr)
			t := stack[len(stack)-1]
			if s, ok := attrs["transform"]; ok {
				local, err := ParseTransform(s)
				if err != nil {
					return nil, fmt.Errorf("%s transform: %w", el.Name.Local, err)
				}
				t = mt.MultiplyTransforms(t, local)
			}
			stack = append(stack, t)

			ps, err := elementPaths(el.Name.Local, attrs)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", el.Name.Local, err)
			}
			for _, p := range ps {
				paths = append(paths, applyTransform(p, t))
			}
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	return build(paths)
}

// ParseString is Parse over a string.
func ParseString(s string) (*geometry.Geometry, error) {
	return Parse(strings.NewReader(s))
}

func build(paths []geometry.Path) (*geometry.Geometry, error) {
	g := geometry.New()
	for _, p := range paths {
		if len(p) < 4 {
			continue
		}
		flipped := make(geometry.Path, len(p))
		for i, pt := range p {
			flipped[i] = geometry.Pt(pt.X, -pt.Y)
		}
		g.AppendPath(flipped)
	}
	if g.PathCount() == 0 {
		return nil, ErrEmpty
	}
	g.MoveTo(geometry.Point{}, geometry.ByOutline)
	return g, nil
}

func attrMap(attrs []xml.Attr) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[a.Name.Local] = a.Value
	}
	return m
}

func applyTransform(p geometry.Path, t mt.Transform) geometry.Path {
	out := make(geometry.Path, len(p))
	for i, pt := range p {
		x, y := t.Apply(pt.X, pt.Y)
		out[i] = geometry.Pt(x, y)
	}
	return out
}

// elementPaths converts one element to paths in its own user space.
// Elements without geometry yield nothing.
func elementPaths(name string, attrs map[string]string) ([]geometry.Path, error) {
	switch name {
	case "path":
		return ParsePathData(attrs["d"])
	case "rect":
		v, err := floats(attrs, "x", "y", "width", "height")
		if err != nil {
			return nil, err
		}
		x, y, w, h := v[0], v[1], v[2], v[3]
		if w <= 0 || h <= 0 {
			return nil, nil
		}
		return []geometry.Path{polygon(
			geometry.Pt(x, y), geometry.Pt(x+w, y),
			geometry.Pt(x+w, y+h), geometry.Pt(x, y+h),
		)}, nil
	case "circle":
		v, err := floats(attrs, "cx", "cy", "r")
		if err != nil {
			return nil, err
		}
		return ellipse(v[0], v[1], v[2], v[2]), nil
	case "ellipse":
		v, err := floats(attrs, "cx", "cy", "rx", "ry")
		if err != nil {
			return nil, err
		}
		return ellipse(v[0], v[1], v[2], v[3]), nil
	case "line":
		v, err := floats(attrs, "x1", "y1", "x2", "y2")
		if err != nil {
			return nil, err
		}
		seg := geometry.LineSegment(geometry.Pt(v[0], v[1]), geometry.Pt(v[2], v[3]))
		return []geometry.Path{{geometry.Pt(v[0], v[1]), seg[0], seg[1], seg[2]}}, nil
	case "polyline", "polygon":
		nums, err := numbers("points", attrs["points"])
		if err != nil {
			return nil, err
		}
		if len(nums)%2 != 0 {
			return nil, fmt.Errorf("odd number of coordinates: %w", ErrSyntax)
		}
		pts := make([]geometry.Point, 0, len(nums)/2)
		for i := 0; i < len(nums); i += 2 {
			pts = append(pts, geometry.Pt(nums[i], nums[i+1]))
		}
		if len(pts) < 2 {
			return nil, nil
		}
		if name == "polygon" {
			return []geometry.Path{polygon(pts...)}, nil
		}
		return []geometry.Path{polyline(pts...)}, nil
	case "text", "image", "use":
		return nil, fmt.Errorf("element %s: %w", name, ErrUnsupported)
	}
	return nil, nil
}

func floats(attrs map[string]string, names ...string) ([]float64, error) {
	out := make([]float64, len(names))
	for i, n := range names {
		s := strings.TrimSpace(strings.TrimSuffix(attrs[n], "px"))
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("attribute %s=%q: %w", n, attrs[n], ErrSyntax)
		}
		out[i] = v
	}
	return out, nil
}

func polyline(pts ...geometry.Point) geometry.Path {
	p := geometry.Path{pts[0]}
	for i := 1; i < len(pts); i++ {
		seg := geometry.LineSegment(pts[i-1], pts[i])
		p = append(p, seg[:]...)
	}
	return p
}

func polygon(pts ...geometry.Point) geometry.Path {
	return polyline(append(pts, pts[0])...)
}

// ellipse traces four quarter arcs clockwise in SVG space, starting at
// the rightmost point.
func ellipse(cx, cy, rx, ry float64) []geometry.Path {
	if rx <= 0 || ry <= 0 {
		return nil
	}
	const k = 0.5522847498
	c := geometry.Pt(cx, cy)
	at := func(x, y float64) geometry.Point { return c.Add(geometry.Pt(x, y)) }
	return []geometry.Path{{
		at(rx, 0),
		at(rx, k*ry), at(k*rx, ry), at(0, ry),
		at(-k*rx, ry), at(-rx, k*ry), at(-rx, 0),
		at(-rx, -k*ry), at(-k*rx, -ry), at(0, -ry),
		at(k*rx, -ry), at(rx, -k*ry), at(rx, 0),
	}}
}
