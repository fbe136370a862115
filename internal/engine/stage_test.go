package engine

import (
	"context"
	"image"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/animlib/internal/animation"
	"github.com/inamate/animlib/internal/document"
	"github.com/inamate/animlib/internal/export"
	"github.com/inamate/animlib/internal/geometry"
)

// fakeRasterizer records what each frame contained.
type fakeRasterizer struct {
	calls  int
	frames [][]frameEntry
}

type frameEntry struct {
	g      *geometry.Geometry
	hidden bool
}

func (f *fakeRasterizer) Rasterize(geoms []*geometry.Geometry) (*image.RGBA, error) {
	f.calls++
	entries := make([]frameEntry, len(geoms))
	for i, g := range geoms {
		entries[i] = frameEntry{g: g, hidden: g.Hidden()}
	}
	f.frames = append(f.frames, entries)
	return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
}

func newTestStage(t *testing.T, fps int) (*Stage, *fakeRasterizer, *export.MemorySink) {
	t.Helper()
	r := &fakeRasterizer{}
	sink := &export.MemorySink{Limit: 1}
	s, err := NewStage(Options{FPS: fps, Rasterizer: r, Sink: sink})
	require.NoError(t, err)
	return s, r, sink
}

func TestStageOrdering(t *testing.T) {
	s, _, _ := newTestStage(t, 10)
	a, b, c := geometry.NewSquare(1), geometry.NewCircle(1), geometry.NewSquare(2)

	s.Add(a, b)
	s.Add(a)
	assert.Equal(t, []*geometry.Geometry{a, b}, s.Geometries())

	require.NoError(t, s.AddBehind(b, c))
	assert.Equal(t, []*geometry.Geometry{a, c, b}, s.Geometries())

	require.NoError(t, s.BringToFront(a))
	assert.Equal(t, []*geometry.Geometry{c, b, a}, s.Geometries())

	s.Remove(b, geometry.New())
	assert.Equal(t, []*geometry.Geometry{c, a}, s.Geometries())

	assert.ErrorIs(t, s.AddBehind(b, geometry.New()), ErrNotOnStage)
	assert.ErrorIs(t, s.BringToFront(b), ErrNotOnStage)
}

func TestNewStageDefaults(t *testing.T) {
	s, err := NewStage(Options{})
	require.NoError(t, err)
	assert.Equal(t, animation.DefaultFPS, s.FPS())

	_, err = NewStage(Options{FPS: -1})
	assert.ErrorIs(t, err, animation.ErrConfiguration)

	_, err = s.Snapshot()
	assert.ErrorIs(t, err, ErrNoRasterizer)
}

func TestAnimateFadeIn(t *testing.T) {
	s, r, sink := newTestStage(t, 10)
	target := geometry.NewSquare(1)

	a, err := animation.NewFadeIn(animation.Config{Targets: []*geometry.Geometry{target}, FPS: 10})
	require.NoError(t, err)
	require.NoError(t, s.Animate(context.Background(), a))

	assert.Equal(t, 10, sink.Count())
	assert.Equal(t, 10, r.calls)
	assert.Equal(t, 10, s.Frames())

	// The stand-in sits behind the hidden target during the animation.
	first := r.frames[0]
	require.Len(t, first, 2)
	assert.Same(t, target, first[1].g)
	assert.True(t, first[1].hidden)
	assert.False(t, first[0].hidden)

	// The last frame shows the target alone.
	last := r.frames[len(r.frames)-1]
	assert.Same(t, target, last[1].g)
	assert.False(t, last[1].hidden)
	assert.True(t, last[0].hidden)

	assert.Equal(t, []*geometry.Geometry{target}, s.Geometries())
	assert.False(t, target.Hidden())
	assert.Equal(t, 1.0, target.FillOpacity())
}

func TestAnimateParallelRunsLongest(t *testing.T) {
	s, _, sink := newTestStage(t, 10)
	short, err := animation.NewFadeIn(animation.Config{Targets: []*geometry.Geometry{geometry.NewSquare(1)}, FPS: 10, Duration: 0.5})
	require.NoError(t, err)
	long, err := animation.NewUnveil(animation.Config{Targets: []*geometry.Geometry{geometry.NewCircle(1)}, FPS: 10, Duration: 2})
	require.NoError(t, err)

	require.NoError(t, s.Animate(context.Background(), short, long))
	assert.Equal(t, 20, sink.Count())
	assert.True(t, short.Done())
	assert.True(t, long.Done())
	assert.Len(t, s.Geometries(), 2)
}

func TestAnimateCanceled(t *testing.T) {
	s, _, sink := newTestStage(t, 10)
	target := geometry.NewSquare(1)
	a, err := animation.NewFadeIn(animation.Config{Targets: []*geometry.Geometry{target}, FPS: 10})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = s.Animate(ctx, a)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Zero(t, sink.Count())
	assert.True(t, a.Done())
	assert.False(t, target.Hidden())
	assert.Equal(t, []*geometry.Geometry{target}, s.Geometries())
}

func TestAnimateBeginFailure(t *testing.T) {
	s, _, _ := newTestStage(t, 10)
	ok := geometry.NewSquare(1)
	first, err := animation.NewFadeIn(animation.Config{Targets: []*geometry.Geometry{ok}, FPS: 10})
	require.NoError(t, err)
	bad, err := animation.NewUnveil(animation.Config{Targets: []*geometry.Geometry{geometry.New()}, FPS: 10})
	require.NoError(t, err)

	err = s.Animate(context.Background(), first, bad)
	assert.ErrorIs(t, err, animation.ErrUnsupportedShape)
	assert.True(t, first.Done())
	assert.False(t, ok.Hidden())
	assert.Equal(t, []*geometry.Geometry{ok}, s.Geometries())
}

func TestAnimateTransformHidesStart(t *testing.T) {
	s, r, _ := newTestStage(t, 10)
	circle, square := geometry.NewCircle(1), geometry.NewSquare(2)
	s.Add(circle)

	a, err := animation.NewTransform(animation.Config{
		Start:   []*geometry.Geometry{circle},
		Targets: []*geometry.Geometry{square},
		FPS:     10,
		Seed:    7,
	})
	require.NoError(t, err)
	require.NoError(t, s.Animate(context.Background(), a))

	// circle, stand-in, square
	require.Len(t, r.frames[0], 3)
	assert.True(t, r.frames[0][0].hidden)
	assert.False(t, r.frames[0][1].hidden)
	assert.True(t, r.frames[0][2].hidden)

	assert.Equal(t, []*geometry.Geometry{circle, square}, s.Geometries())
	assert.True(t, circle.Hidden())
	assert.False(t, square.Hidden())
}

func TestWait(t *testing.T) {
	s, r, sink := newTestStage(t, 10)
	s.Add(geometry.NewSquare(1))

	require.NoError(t, s.Wait(context.Background(), 0.55))
	assert.Equal(t, 5, sink.Count())
	assert.Equal(t, 1, r.calls)

	require.NoError(t, s.Wait(context.Background(), 0.05))
	assert.Equal(t, 5, sink.Count())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Wait(ctx, 1), context.Canceled)
}

func TestProgress(t *testing.T) {
	var calls [][2]int
	s, err := NewStage(Options{FPS: 10, Progress: func(done, total int) {
		calls = append(calls, [2]int{done, total})
	}})
	require.NoError(t, err)
	s.SetTotal(3)

	require.NoError(t, s.Wait(context.Background(), 0.3))
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, calls)
}

func TestRunSampleScene(t *testing.T) {
	sc := document.NewSampleScene()
	var last [2]int
	s, err := NewStage(Options{FPS: sc.FPS, Progress: func(done, total int) { last = [2]int{done, total} }})
	require.NoError(t, err)

	require.NoError(t, s.Run(context.Background(), sc, nil))

	want := EstimateFrames(sc, sc.FPS)
	assert.Equal(t, 135, want)
	assert.Equal(t, want, s.Frames())
	assert.Equal(t, [2]int{want, want}, last)

	// circle morphed into the square and stays hidden.
	for _, g := range s.Geometries() {
		if s.ID(g) == "circle" {
			assert.True(t, g.Hidden())
		}
	}
	assert.Len(t, s.Geometries(), 4)
}

func TestRunUnknownAsset(t *testing.T) {
	sc := &document.Scene{
		Objects: []document.Object{{ID: "logo", Kind: document.ObjectSVG, Asset: "logo.svg"}},
	}
	s, err := NewStage(Options{FPS: 10})
	require.NoError(t, err)
	assert.ErrorIs(t, s.Run(context.Background(), sc, nil), ErrNoAssets)
	assert.Error(t, s.Run(context.Background(), sc, fstest.MapFS{}))
}

func TestHitTest(t *testing.T) {
	s, _, _ := newTestStage(t, 10)
	back, front := geometry.NewSquare(4), geometry.NewSquare(1)
	s.Add(back, front)

	assert.Same(t, front, s.HitTest(geometry.Pt(0, 0)))
	assert.Same(t, back, s.HitTest(geometry.Pt(1.5, 1.5)))
	assert.Nil(t, s.HitTest(geometry.Pt(5, 5)))

	front.Hide()
	assert.Same(t, back, s.HitTest(geometry.Pt(0, 0)))
}
