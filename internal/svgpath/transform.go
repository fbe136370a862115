package svgpath

import (
	"fmt"
	"math"
	"strings"

	mt "github.com/rustyoz/Mtransform"
)

// affine builds the matrix of the SVG matrix(a b c d e f) function.
func affine(a, b, c, d, e, f float64) mt.Transform {
	t := mt.Identity()
	t[0][0], t[0][1], t[0][2] = a, c, e
	t[1][0], t[1][1], t[1][2] = b, d, f
	return t
}

// ParseTransform parses a transform attribute such as
// "translate(10 20) rotate(45)". Functions compose left to right.
func ParseTransform(s string) (mt.Transform, error) {
	t := mt.Identity()
	rest := strings.TrimSpace(s)
	for rest != "" {
		open := strings.IndexByte(rest, '(')
		end := strings.IndexByte(rest, ')')
		if open < 0 || end < open {
			return t, fmt.Errorf("transform %q: %w", s, ErrSyntax)
		}
		name := strings.TrimSpace(strings.Trim(rest[:open], ", \t\n"))
		args, err := numbers(name, rest[open+1:end])
		if err != nil {
			return t, err
		}
		local, err := transformFunc(name, args)
		if err != nil {
			return t, err
		}
		t = mt.MultiplyTransforms(t, local)
		rest = strings.TrimSpace(strings.TrimLeft(rest[end+1:], ", \t\n"))
	}
	return t, nil
}

func transformFunc(name string, a []float64) (mt.Transform, error) {
	arity := func(ns ...int) error {
		for _, n := range ns {
			if len(a) == n {
				return nil
			}
		}
		return fmt.Errorf("%s with %d arguments: %w", name, len(a), ErrSyntax)
	}

	switch name {
	case "matrix":
		if err := arity(6); err != nil {
			return mt.Identity(), err
		}
		return affine(a[0], a[1], a[2], a[3], a[4], a[5]), nil
	case "translate":
		if err := arity(1, 2); err != nil {
			return mt.Identity(), err
		}
		ty := 0.0
		if len(a) == 2 {
			ty = a[1]
		}
		return affine(1, 0, 0, 1, a[0], ty), nil
	case "scale":
		if err := arity(1, 2); err != nil {
			return mt.Identity(), err
		}
		sy := a[0]
		if len(a) == 2 {
			sy = a[1]
		}
		return affine(a[0], 0, 0, sy, 0, 0), nil
	case "rotate":
		if err := arity(1, 3); err != nil {
			return mt.Identity(), err
		}
		r := a[0] * math.Pi / 180
		sin, cos := math.Sincos(r)
		rot := affine(cos, sin, -sin, cos, 0, 0)
		if len(a) == 3 {
			to := affine(1, 0, 0, 1, a[1], a[2])
			back := affine(1, 0, 0, 1, -a[1], -a[2])
			return mt.MultiplyTransforms(mt.MultiplyTransforms(to, rot), back), nil
		}
		return rot, nil
	case "skewX":
		if err := arity(1); err != nil {
			return mt.Identity(), err
		}
		return affine(1, 0, math.Tan(a[0]*math.Pi/180), 1, 0, 0), nil
	case "skewY":
		if err := arity(1); err != nil {
			return mt.Identity(), err
		}
		return affine(1, math.Tan(a[0]*math.Pi/180), 0, 1, 0, 0), nil
	}
	return mt.Identity(), fmt.Errorf("transform function %q: %w", name, ErrUnsupported)
}
