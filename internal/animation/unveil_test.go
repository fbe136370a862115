package animation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/animlib/internal/geometry"
)

func TestSweepAxis(t *testing.T) {
	r := geometry.Rect{Min: geometry.Pt(-10, -5), Max: geometry.Pt(10, 5)}
	tests := []struct {
		dir        Direction
		start, end geometry.Point
	}{
		{Left, geometry.Pt(-10, 0), geometry.Pt(10, 0)},
		{Right, geometry.Pt(10, 0), geometry.Pt(-10, 0)},
		{Top, geometry.Pt(0, 5), geometry.Pt(0, -5)},
		{Bottom, geometry.Pt(0, -5), geometry.Pt(0, 5)},
		{TopLeft, geometry.Pt(-10, 5), geometry.Pt(10, -5)},
		{BottomRight, geometry.Pt(10, -5), geometry.Pt(-10, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			start, end := SweepAxis(r, tt.dir, 0)
			assert.True(t, start.Near(tt.start, 1e-12), "start %v", start)
			assert.True(t, end.Near(tt.end, 1e-12), "end %v", end)
		})
	}

	start, end := SweepAxis(r, Left, 1)
	assert.Equal(t, geometry.Pt(-11, 0), start)
	assert.Equal(t, geometry.Pt(11, 0), end)
}

func TestUnveilAxisLeft(t *testing.T) {
	target := geometry.NewRect(20, 10)
	target.SetStrokeWidth(0)
	a, err := NewUnveil(Config{Targets: []*geometry.Geometry{target}, Direction: Left})
	require.NoError(t, err)
	_, err = a.Begin()
	require.NoError(t, err)

	u := a.effect.(*unveil)
	assert.True(t, u.start.Near(geometry.Pt(-10, 0), 1e-12))
	assert.True(t, u.end.Near(geometry.Pt(10, 0), 1e-12))
}

func TestUnveilGradientEdge(t *testing.T) {
	target := geometry.NewRect(4, 4)
	target.SetFill(geometry.Color{R: 1, A: 1})
	a, err := NewUnveil(Config{Targets: []*geometry.Geometry{target}, Duration: 0.5, FPS: 10})
	require.NoError(t, err)
	_, err = a.Begin()
	require.NoError(t, err)
	stand := a.Animated()[0]

	var last *geometry.LinearGradient
	for i := 0; i < a.FrameCount(); i++ {
		_, err := a.Next()
		require.NoError(t, err)
		g := stand.FillGradient()
		require.NotNil(t, g)
		require.Len(t, g.Stops, 2)
		assert.Equal(t, g.Stops[0].Offset, g.Stops[1].Offset)
		assert.Equal(t, geometry.Color{R: 1, A: 1}, g.Stops[0].Color)
		assert.Zero(t, g.Stops[1].Color.A)
		assert.NotSame(t, last, g, "gradient is rebuilt every frame")
		require.NotNil(t, stand.StrokeGradient())
		last = g
	}
}

func TestUnveilAndHideFinalOpacity(t *testing.T) {
	target := geometry.NewCircle(2)
	target.SetFillOpacity(0.7)
	unv, err := NewUnveil(Config{Targets: []*geometry.Geometry{target}})
	require.NoError(t, err)
	_, err = unv.Begin()
	require.NoError(t, err)
	drive(t, unv)

	assert.InDelta(t, 0.7, target.FillOpacity(), 1e-12)
	assert.False(t, target.Hidden())
	assert.True(t, unv.Animated()[0].Hidden())

	hide, err := NewHide(Config{Targets: []*geometry.Geometry{target}, Direction: Right})
	require.NoError(t, err)
	_, err = hide.Begin()
	require.NoError(t, err)
	drive(t, hide)

	stand := hide.Animated()[0]
	assert.Zero(t, stand.FillOpacity())
	assert.Zero(t, stand.StrokeOpacity())
	assert.Zero(t, target.FillOpacity())
	assert.Zero(t, target.StrokeOpacity())
}

func TestHideSweepsBackwards(t *testing.T) {
	target := geometry.NewRect(2, 2)
	a, err := NewHide(Config{Targets: []*geometry.Geometry{target}, Duration: 0.5, FPS: 10})
	require.NoError(t, err)
	_, err = a.Begin()
	require.NoError(t, err)
	stand := a.Animated()[0]

	prev := 2.0
	for i := 0; i < a.FrameCount(); i++ {
		_, err := a.Next()
		require.NoError(t, err)
		off := stand.FillGradient().Stops[0].Offset
		assert.Less(t, off, prev)
		prev = off
	}
	assert.Zero(t, prev)
}

func TestParseDirection(t *testing.T) {
	for _, in := range []string{"top_right", "TopRight", "top-right", "topright"} {
		d, err := ParseDirection(in)
		require.NoError(t, err)
		assert.Equal(t, TopRight, d)
	}
	d, err := ParseDirection("")
	require.NoError(t, err)
	assert.Equal(t, Left, d)
	_, err = ParseDirection("up")
	assert.ErrorIs(t, err, ErrConfiguration)
}
