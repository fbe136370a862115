package engine

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/inamate/animlib/internal/animation"
	"github.com/inamate/animlib/internal/document"
	"github.com/inamate/animlib/internal/geometry"
	"github.com/inamate/animlib/internal/glyph"
	"github.com/inamate/animlib/internal/svgpath"
)

var ErrNoAssets = errors.New("scene references an asset but no asset store is configured")

// DefaultTextSize is the em size of text objects without a size.
const DefaultTextSize = 1.0

// BuildObject creates the geometry an object describes: shaped around the
// origin, styled, then placed by its transform. SVG assets are read from
// assets, which may be nil when the scene has none.
func BuildObject(o document.Object, assets fs.FS) (*geometry.Geometry, error) {
	g, err := buildShape(o, assets)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", o.ID, err)
	}
	if err := applyStyle(g, o.Style); err != nil {
		return nil, fmt.Errorf("object %s: %w", o.ID, err)
	}

	t := o.Transform
	sx, sy := t.SX, t.SY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	m := geometry.FromPlacement(geometry.Pt(t.X, t.Y), sx, sy, t.R)
	if !m.IsIdentity() {
		g.Transform(m)
	}
	return g, nil
}

// BuildScene creates the geometry of every object, keyed by id.
func BuildScene(sc *document.Scene, assets fs.FS) (map[string]*geometry.Geometry, error) {
	out := make(map[string]*geometry.Geometry, len(sc.Objects))
	for _, o := range sc.Objects {
		g, err := BuildObject(o, assets)
		if err != nil {
			return nil, err
		}
		out[o.ID] = g
	}
	return out, nil
}

func buildShape(o document.Object, assets fs.FS) (*geometry.Geometry, error) {
	switch o.Kind {
	case document.ObjectRect:
		return geometry.NewRect(o.Width, o.Height), nil
	case document.ObjectCircle:
		return geometry.NewCircle(o.Radius), nil
	case document.ObjectEllipse:
		return geometry.NewEllipse(o.RX, o.RY), nil
	case document.ObjectLine:
		if len(o.Points) != 2 {
			return nil, fmt.Errorf("line with %d points: %w", len(o.Points), geometry.ErrUnsupportedShape)
		}
		return geometry.NewLine(o.Points[0], o.Points[1]), nil
	case document.ObjectPolygon:
		if len(o.Points) < 2 {
			return nil, fmt.Errorf("polygon with %d points: %w", len(o.Points), geometry.ErrUnsupportedShape)
		}
		return geometry.NewPolygon(o.Points...), nil
	case document.ObjectPolyline:
		return geometry.NewPolyline(o.Points...)
	case document.ObjectSVG:
		g, err := buildSVG(o, assets)
		if err != nil {
			return nil, err
		}
		fitHeight(g, o.Size)
		return g, nil
	case document.ObjectText:
		size := o.Size
		if size == 0 {
			size = DefaultTextSize
		}
		if o.Asset == "" {
			return glyph.Text(o.Text, size)
		}
		font, err := loadFont(o.Asset, assets)
		if err != nil {
			return nil, err
		}
		return font.Text(o.Text, size)
	}
	return nil, fmt.Errorf("kind %q: %w", o.Kind, geometry.ErrUnsupportedShape)
}

func buildSVG(o document.Object, assets fs.FS) (*geometry.Geometry, error) {
	if o.SVG != "" {
		return svgpath.Parse(strings.NewReader(o.SVG))
	}
	if assets == nil {
		return nil, ErrNoAssets
	}
	f, err := assets.Open(o.Asset)
	if err != nil {
		return nil, fmt.Errorf("open asset %s: %w", o.Asset, err)
	}
	defer f.Close()
	return svgpath.Parse(io.Reader(f))
}

func loadFont(name string, assets fs.FS) (*glyph.Font, error) {
	if assets == nil {
		return nil, ErrNoAssets
	}
	data, err := fs.ReadFile(assets, name)
	if err != nil {
		return nil, fmt.Errorf("open asset %s: %w", name, err)
	}
	return glyph.ParseFont(data)
}

// fitHeight scales g about its center so its outline is size units tall.
func fitHeight(g *geometry.Geometry, size float64) {
	if size <= 0 {
		return
	}
	h := g.Outline().Height()
	if h <= 0 {
		return
	}
	g.ScaleBy(size/h, geometry.ByOutline)
}

func applyStyle(g *geometry.Geometry, st document.Style) error {
	if st.Fill != "" {
		c, err := geometry.ParseColor(st.Fill)
		if err != nil {
			return fmt.Errorf("fill: %w", err)
		}
		g.SetFill(c)
	}
	if st.Stroke != "" {
		c, err := geometry.ParseColor(st.Stroke)
		if err != nil {
			return fmt.Errorf("stroke: %w", err)
		}
		g.SetStroke(c)
	}
	if st.StrokeWidth != nil {
		g.SetStrokeWidth(*st.StrokeWidth)
	}
	if st.Opacity != nil {
		g.SetFillOpacity(g.FillOpacity() * *st.Opacity)
		g.SetStrokeOpacity(g.StrokeOpacity() * *st.Opacity)
	}
	return nil
}

// BuildAnimation resolves a spec against built geometries.
func BuildAnimation(spec document.AnimationSpec, objs map[string]*geometry.Geometry, fps int, seed uint64) (*animation.Animation, error) {
	lookup := func(ids []string) ([]*geometry.Geometry, error) {
		out := make([]*geometry.Geometry, len(ids))
		for i, id := range ids {
			g, ok := objs[id]
			if !ok {
				return nil, fmt.Errorf("unknown object %q: %w", id, animation.ErrConfiguration)
			}
			out[i] = g
		}
		return out, nil
	}

	targets, err := lookup(spec.Targets)
	if err != nil {
		return nil, err
	}
	start, err := lookup(spec.Start)
	if err != nil {
		return nil, err
	}
	if spec.Seed != 0 {
		seed = spec.Seed
	}
	cfg := animation.Config{
		Targets:   targets,
		Start:     start,
		Duration:  spec.Duration,
		FPS:       fps,
		Easing:    spec.Easing,
		Direction: spec.Direction,
		Seed:      seed,
	}

	switch spec.Kind {
	case animation.KindFadeIn:
		return animation.NewFadeIn(cfg)
	case animation.KindFadeOut:
		return animation.NewFadeOut(cfg)
	case animation.KindTransform:
		return animation.NewTransform(cfg)
	case animation.KindUnveil:
		return animation.NewUnveil(cfg)
	case animation.KindHide:
		return animation.NewHide(cfg)
	}
	return nil, fmt.Errorf("animation kind %q: %w", spec.Kind, animation.ErrConfiguration)
}
