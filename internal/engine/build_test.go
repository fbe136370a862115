package engine

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/inamate/animlib/internal/animation"
	"github.com/inamate/animlib/internal/document"
	"github.com/inamate/animlib/internal/ease"
	"github.com/inamate/animlib/internal/geometry"
	"github.com/inamate/animlib/internal/glyph"
)

func ptr(v float64) *float64 { return &v }

func TestBuildObjectPlacement(t *testing.T) {
	g, err := BuildObject(document.Object{
		ID:        "r",
		Kind:      document.ObjectRect,
		Width:     2,
		Height:    1,
		Transform: document.Transform{X: 3, Y: -1, SX: 2},
	}, nil)
	require.NoError(t, err)

	r := g.Outline()
	assert.True(t, r.Center().Near(geometry.Pt(3, -1), 1e-9))
	assert.InDelta(t, 4, r.Width(), 1e-9)
	assert.InDelta(t, 1, r.Height(), 1e-9)
}

func TestBuildObjectStyle(t *testing.T) {
	g, err := BuildObject(document.Object{
		ID:     "c",
		Kind:   document.ObjectCircle,
		Radius: 1,
		Style:  document.Style{Fill: "#FF0000", Stroke: "BLUE_C", StrokeWidth: ptr(0.5), Opacity: ptr(0.5)},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, geometry.Color{R: 1, A: 0.5}, g.Fill())
	assert.Equal(t, 0.5, g.StrokeOpacity())
	assert.Equal(t, 0.5, g.StrokeWidth())

	line, err := BuildObject(document.Object{
		ID:     "l",
		Kind:   document.ObjectLine,
		Points: []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 0}},
		Style:  document.Style{Opacity: ptr(0.5)},
	}, nil)
	require.NoError(t, err)
	assert.Zero(t, line.FillOpacity(), "transparent fill stays transparent")
}

func TestBuildObjectKinds(t *testing.T) {
	svg := `<svg><rect x="0" y="0" width="10" height="20"/></svg>`
	assets := fstest.MapFS{"logo.svg": {Data: []byte(svg)}}

	tests := []struct {
		name   string
		obj    document.Object
		paths  int
		height float64
	}{
		{name: "ellipse", obj: document.Object{Kind: document.ObjectEllipse, RX: 2, RY: 1}, paths: 1, height: 2},
		{name: "polygon", obj: document.Object{Kind: document.ObjectPolygon, Points: []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}}, paths: 1, height: 1},
		{name: "polyline", obj: document.Object{Kind: document.ObjectPolyline, Points: []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 3}}}, paths: 1, height: 3},
		{name: "inline svg", obj: document.Object{Kind: document.ObjectSVG, SVG: svg, Size: 2}, paths: 1, height: 2},
		{name: "svg asset", obj: document.Object{Kind: document.ObjectSVG, Asset: "logo.svg"}, paths: 1, height: 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.obj.ID = tt.name
			g, err := BuildObject(tt.obj, assets)
			require.NoError(t, err)
			assert.Equal(t, tt.paths, g.PathCount())
			assert.InDelta(t, tt.height, g.Outline().Height(), 1e-9)
		})
	}

	text, err := BuildObject(document.Object{ID: "t", Kind: document.ObjectText, Text: "Go"}, nil)
	require.NoError(t, err)
	assert.Positive(t, text.PathCount())

	fonts := fstest.MapFS{"go.ttf": {Data: goregular.TTF}, "bad.ttf": {Data: []byte("nope")}}
	custom, err := BuildObject(document.Object{ID: "f", Kind: document.ObjectText, Text: "Go", Asset: "go.ttf"}, fonts)
	require.NoError(t, err)
	assert.Equal(t, text.PathCount(), custom.PathCount())

	_, err = BuildObject(document.Object{ID: "f", Kind: document.ObjectText, Text: "Go", Asset: "bad.ttf"}, fonts)
	assert.ErrorIs(t, err, glyph.ErrBadFont)
	_, err = BuildObject(document.Object{ID: "f", Kind: document.ObjectText, Text: "Go", Asset: "go.ttf"}, nil)
	assert.ErrorIs(t, err, ErrNoAssets)

	_, err = BuildObject(document.Object{ID: "x", Kind: "star"}, nil)
	assert.ErrorIs(t, err, geometry.ErrUnsupportedShape)
}

func TestBuildAnimation(t *testing.T) {
	objs := map[string]*geometry.Geometry{
		"a": geometry.NewSquare(1),
		"b": geometry.NewCircle(1),
	}

	tests := []struct {
		spec document.AnimationSpec
		kind animation.Kind
	}{
		{spec: document.AnimationSpec{Kind: animation.KindFadeIn, Targets: []string{"a"}}, kind: animation.KindFadeIn},
		{spec: document.AnimationSpec{Kind: animation.KindFadeOut, Targets: []string{"a"}, Easing: ease.Linear}, kind: animation.KindFadeOut},
		{spec: document.AnimationSpec{Kind: animation.KindTransform, Start: []string{"a"}, Targets: []string{"b"}}, kind: animation.KindTransform},
		{spec: document.AnimationSpec{Kind: animation.KindUnveil, Targets: []string{"a"}, Direction: animation.Top}, kind: animation.KindUnveil},
		{spec: document.AnimationSpec{Kind: animation.KindHide, Targets: []string{"a", "b"}, Duration: 2}, kind: animation.KindHide},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			a, err := BuildAnimation(tt.spec, objs, 30, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, a.Kind())
		})
	}

	_, err := BuildAnimation(document.AnimationSpec{Kind: animation.KindFadeIn, Targets: []string{"missing"}}, objs, 30, 1)
	assert.ErrorIs(t, err, animation.ErrConfiguration)

	_, err = BuildAnimation(document.AnimationSpec{Kind: "spin", Targets: []string{"a"}}, objs, 30, 1)
	assert.ErrorIs(t, err, animation.ErrConfiguration)
}

func TestEstimateFrames(t *testing.T) {
	sc := &document.Scene{Steps: []document.Step{
		{Action: document.ActionAnimate, Animations: []document.AnimationSpec{{Duration: 1}, {Duration: 2}}},
		{Action: document.ActionWait, Seconds: 0.5},
		{Action: document.ActionAdd, Objects: []string{"a"}},
		{Action: document.ActionAnimate, Animations: []document.AnimationSpec{{Duration: 0.01}}},
	}}
	assert.Equal(t, 20+5+2, EstimateFrames(sc, 10))
}
