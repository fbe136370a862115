package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/animlib/internal/geometry"
)

var red = geometry.Color{R: 1, A: 1}

func square(t *testing.T, fill geometry.Color) *geometry.Geometry {
	t.Helper()
	g := geometry.NewSquare(2)
	g.SetFill(fill)
	g.SetStrokeWidth(0)
	return g
}

func rgbaAt(img *image.RGBA, x, y int) color.RGBA {
	return img.RGBAAt(x, y)
}

func TestNewRejectsBadSize(t *testing.T) {
	_, err := New(0, 10, 1, geometry.Black)
	assert.ErrorIs(t, err, ErrInvalidSize)
	_, err = New(10, 10, 0, geometry.Black)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestToPixel(t *testing.T) {
	r, err := New(40, 20, 10, geometry.Black)
	require.NoError(t, err)

	x, y := r.ToPixel(geometry.Point{})
	assert.Equal(t, 20.0, x)
	assert.Equal(t, 10.0, y)

	x, y = r.ToPixel(geometry.Pt(1, 1))
	assert.Equal(t, 30.0, x)
	assert.Equal(t, 0.0, y)
}

func TestRasterizeSolid(t *testing.T) {
	r, err := New(40, 40, 10, geometry.Black)
	require.NoError(t, err)

	img, err := r.Rasterize([]*geometry.Geometry{square(t, red)})
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 40, 40), img.Bounds())

	center := rgbaAt(img, 20, 20)
	assert.Greater(t, center.R, uint8(240))
	assert.Less(t, center.G, uint8(15))

	corner := rgbaAt(img, 2, 2)
	assert.Less(t, corner.R, uint8(15))
	assert.Equal(t, uint8(255), corner.A)
}

func TestRasterizeSkipsHidden(t *testing.T) {
	r, err := New(40, 40, 10, geometry.Black)
	require.NoError(t, err)

	g := square(t, red)
	g.Hide()
	img, err := r.Rasterize([]*geometry.Geometry{g})
	require.NoError(t, err)
	assert.Less(t, rgbaAt(img, 20, 20).R, uint8(15))
}

func TestRasterizeOrder(t *testing.T) {
	r, err := New(40, 40, 10, geometry.Black)
	require.NoError(t, err)

	blue := square(t, geometry.Color{B: 1, A: 1})
	img, err := r.Rasterize([]*geometry.Geometry{square(t, red), blue})
	require.NoError(t, err)

	c := rgbaAt(img, 20, 20)
	assert.Greater(t, c.B, uint8(240))
	assert.Less(t, c.R, uint8(15))
}

func TestRasterizeHardEdgeGradient(t *testing.T) {
	r, err := New(40, 40, 10, geometry.Black)
	require.NoError(t, err)

	g := square(t, red)
	g.SetFillGradient(geometry.NewLinearGradient(geometry.Pt(-1, 0), geometry.Pt(1, 0)).
		AddStop(0, red).
		AddStop(0.5, red).
		AddStop(0.5, geometry.Transparent).
		AddStop(1, geometry.Transparent))

	img, err := r.Rasterize([]*geometry.Geometry{g})
	require.NoError(t, err)

	assert.Greater(t, rgbaAt(img, 14, 20).R, uint8(240), "revealed side")
	assert.Less(t, rgbaAt(img, 26, 20).R, uint8(15), "hidden side")
}

func TestBrushNudgesCoincidentStops(t *testing.T) {
	r, err := New(10, 10, 1, geometry.Black)
	require.NoError(t, err)

	grad := geometry.NewLinearGradient(geometry.Pt(0, 0), geometry.Pt(1, 0)).
		AddStop(0.5, red).
		AddStop(0.5, geometry.Transparent)
	b, ok := r.brush(geometry.White, grad).(*gg.LinearGradientBrush)
	require.True(t, ok)
	require.Len(t, b.Stops, 2)
	assert.Equal(t, 0.5, b.Stops[0].Offset)
	assert.Greater(t, b.Stops[1].Offset, b.Stops[0].Offset)
	assert.Equal(t, 1.0, b.Stops[0].Color.R)
	assert.Equal(t, 0.0, b.Stops[1].Color.A)

	_, ok = r.brush(red, nil).(gg.SolidBrush)
	assert.True(t, ok)
}

func TestThumbnail(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 200, 100))
	thumb := Thumbnail(src, 50, 50)
	assert.Equal(t, image.Rect(0, 0, 50, 25), thumb.Bounds())

	small := Thumbnail(image.NewRGBA(image.Rect(0, 0, 10, 10)), 50, 50)
	assert.Equal(t, image.Rect(0, 0, 10, 10), small.Bounds())
}
