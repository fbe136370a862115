package geometry

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliceBezier(t *testing.T) {
	seg := [4]Point{Pt(0, 0), Pt(0, 10), Pt(10, 10), Pt(10, 0)}
	out := SliceBezier(seg, 0.5)

	assert.Equal(t, Pt(0, 0), out[0])
	assert.Equal(t, Pt(10, 0), out[6])
	assert.True(t, EvalCubic(seg, 0.5).Near(out[3], 1e-12))
	assert.True(t, out[3].Near(Pt(5, 7.5), 1e-12))

	left := [4]Point{out[0], out[1], out[2], out[3]}
	right := [4]Point{out[3], out[4], out[5], out[6]}
	for _, u := range []float64{0.1, 0.25, 0.4, 0.5} {
		assert.True(t, EvalCubic(seg, u).Near(EvalCubic(left, 2*u), 1e-9), "left half at %v", u)
		assert.True(t, EvalCubic(seg, 0.5+u).Near(EvalCubic(right, 2*u), 1e-9), "right half at %v", u)
	}
}

func TestAddPointRequiresPath(t *testing.T) {
	g := New()
	err := g.AddPoint(Pt(1, 1))
	require.ErrorIs(t, err, ErrInvalidState)

	g.AddPath()
	require.NoError(t, g.AddPoint(Pt(0, 0), Pt(1, 0), Pt(2, 0), Pt(3, 0)))
	assert.Equal(t, 1, g.PathCount())
	assert.Equal(t, 4, g.PointCount(0))
}

func TestDefaults(t *testing.T) {
	g := New()
	assert.Equal(t, White, g.Fill())
	assert.Equal(t, White, g.Stroke())
	assert.InDelta(t, 0.10, g.StrokeWidth(), 1e-12)
	assert.False(t, g.Hidden())
}

func TestCloneIsDeep(t *testing.T) {
	g := NewRect(4, 2)
	g.SetFillGradient(NewLinearGradient(Pt(0, 0), Pt(1, 0)).AddStop(0.5, Black))

	c := g.Clone()
	c.TranslateBy(Pt(10, 10))
	c.FillGradient().Stops[0].Offset = 0.9
	c.SetFill(Black)
	c.Hide()

	assert.True(t, g.Outline().Min.Near(Pt(-2, -1), 1e-12))
	assert.InDelta(t, 0.5, g.FillGradient().Stops[0].Offset, 1e-12)
	assert.Equal(t, White, g.Fill())
	assert.False(t, g.Hidden())
}

func TestInterpolatePathPreservesCurve(t *testing.T) {
	g := NewCircle(3)
	before := g.Paths()[0]
	seg := before.Segment(2)

	require.NoError(t, g.InterpolatePath(0, 2))
	after := g.Paths()[0]

	require.Len(t, after, len(before)+3)
	assert.True(t, after.Valid())
	assert.True(t, EvalCubic(seg, 0.5).Near(after[9], 1e-12))
	assert.Equal(t, before[0], after[0])
	assert.Equal(t, before[len(before)-1], after[len(after)-1])
}

func TestInterpolateRejectsDegeneratePath(t *testing.T) {
	g := New()
	g.AddPath()
	require.NoError(t, g.AddPoint(Pt(1, 1)))

	err := g.InterpolateRandomSegment(0, rand.New(rand.NewPCG(1, 2)))
	assert.ErrorIs(t, err, ErrUnsupportedShape)
	assert.ErrorIs(t, g.InterpolatePath(3, 0), ErrUnsupportedShape)
}

func TestDuplicatePath(t *testing.T) {
	g := NewRect(2, 2)
	g.AppendPath(Path{Pt(9, 9)})

	require.NoError(t, g.DuplicatePath(0))
	require.Equal(t, 3, g.PathCount())
	assert.Equal(t, g.Paths()[0], g.Paths()[1])
	assert.Equal(t, Path{Pt(9, 9)}, g.Paths()[2])

	g.Paths()[0][0] = Pt(100, 100)
	assert.NotEqual(t, g.Paths()[0][0], g.Paths()[1][0])

	assert.ErrorIs(t, New().DuplicateRandomPath(rand.New(rand.NewPCG(1, 2))), ErrUnsupportedShape)
}

func TestOutline(t *testing.T) {
	g := NewRect(20, 10)
	r := g.Outline()
	assert.True(t, r.Min.Near(Pt(-10, -5), 1e-12))
	assert.True(t, r.Max.Near(Pt(10, 5), 1e-12))
	assert.True(t, New().Outline().IsEmpty())
}

func TestTranslatePoints(t *testing.T) {
	g := NewLine(Pt(0, 0), Pt(3, 0))
	err := g.TranslatePoints([]Point{{1, 1}})
	require.ErrorIs(t, err, ErrInvalidState)

	require.NoError(t, g.TranslatePoints([]Point{{0, 1}, {0, 2}, {0, 3}, {0, 4}}))
	assert.Equal(t, []Point{{0, 1}, {1, 2}, {2, 3}, {3, 4}}, g.Points())
}

func TestRotateAndScaleAboutCenter(t *testing.T) {
	g := NewRect(4, 2)
	g.TranslateBy(Pt(5, 5))

	g.RotateBy(math.Pi/2, ByOutline)
	r := g.Outline()
	assert.True(t, r.Center().Near(Pt(5, 5), 1e-9))
	assert.InDelta(t, 2, r.Width(), 1e-9)
	assert.InDelta(t, 4, r.Height(), 1e-9)

	g.ScaleBy(2, ByOutline)
	r = g.Outline()
	assert.True(t, r.Center().Near(Pt(5, 5), 1e-9))
	assert.InDelta(t, 4, r.Width(), 1e-9)

	line := NewLine(Pt(0, 0), Pt(3, 0))
	assert.Equal(t, Pt(1.5, 0), line.Center(ByPoints))
	line.ScaleBy(2, ByPoints)
	assert.True(t, line.Points()[3].Near(Pt(4.5, 0), 1e-12))
}

func TestSolidPaintClearsGradient(t *testing.T) {
	g := New()
	g.SetFillGradient(NewLinearGradient(Pt(0, 0), Pt(1, 0)))
	g.SetStrokeGradient(NewLinearGradient(Pt(0, 0), Pt(1, 0)))
	g.SetFill(Black)
	assert.Nil(t, g.FillGradient())
	assert.NotNil(t, g.StrokeGradient())
	g.SetStroke(Black)
	assert.Nil(t, g.StrokeGradient())
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
		err  bool
	}{
		{in: "#FFFFFF", want: White},
		{in: "#000", want: Black},
		{in: "#FFFFFF00", want: Transparent},
		{in: "blue_e", want: Color{0x1C / 255.0, 0x75 / 255.0, 0x8A / 255.0, 1}},
		{in: "nope", err: true},
		{in: "#12345", err: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.err {
				assert.ErrorIs(t, err, ErrInvalidColor)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Near(tt.want, 1e-9), "got %v", got)
		})
	}
	assert.Equal(t, "#1C758AFF", Color{0x1C / 255.0, 0x75 / 255.0, 0x8A / 255.0, 1}.Hex())
}

func TestShapesSatisfyPathLayout(t *testing.T) {
	poly, err := NewPolyline(Pt(0, 0), Pt(1, 1), Pt(2, 0))
	require.NoError(t, err)
	for name, g := range map[string]*Geometry{
		"rect":     NewRect(2, 1),
		"circle":   NewCircle(1),
		"ellipse":  NewEllipse(2, 1),
		"line":     NewLine(Pt(0, 0), Pt(1, 1)),
		"polygon":  NewPolygon(Pt(0, 0), Pt(1, 0), Pt(0, 1)),
		"polyline": poly,
	} {
		for i, p := range g.Paths() {
			assert.True(t, p.Valid(), "%s path %d has %d points", name, i, len(p))
		}
	}
	assert.True(t, NewRect(2, 1).Paths()[0].Closed())
	assert.Equal(t, Transparent, NewLine(Pt(0, 0), Pt(1, 1)).Fill())

	_, err = NewPolyline(Pt(0, 0))
	assert.ErrorIs(t, err, ErrUnsupportedShape)
}

func TestMatrixInvert(t *testing.T) {
	m := FromPlacement(Pt(3, -2), 2, 0.5, 30)
	p := Pt(1.5, 4)
	assert.True(t, m.Invert().Apply(m.Apply(p)).Near(p, 1e-9))
	assert.True(t, m.Multiply(m.Invert()).IsIdentity())
}
