package engine

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/inamate/animlib/internal/document"
	"github.com/inamate/animlib/internal/geometry"
)

// Recording is a scene compiled to draw commands, one list per frame,
// for playback by a front end that draws with Canvas2D.
type Recording struct {
	FPS      int
	Viewport Viewport
	Frames   [][]DrawCommand
	// Stage holds the scene's final state.
	Stage *Stage
}

// SceneViewport returns the canvas a scene is rendered to.
func SceneViewport(sc *document.Scene) (Viewport, error) {
	bg, err := geometry.ParseColor(sc.Background)
	if err != nil {
		return Viewport{}, fmt.Errorf("background: %w", err)
	}
	return Viewport{Width: sc.Width, Height: sc.Height, Scale: sc.Scale, Background: bg}, nil
}

// Record runs a scene without rasterizing and keeps the draw commands of
// every frame.
func Record(ctx context.Context, sc *document.Scene, assets fs.FS) (*Recording, error) {
	vp, err := SceneViewport(sc)
	if err != nil {
		return nil, err
	}
	rec := &Recording{FPS: sc.FPS, Viewport: vp}

	var stage *Stage
	stage, err = NewStage(Options{
		FPS: sc.FPS,
		Progress: func(int, int) {
			rec.Frames = append(rec.Frames, stage.Compile(vp))
		},
	})
	if err != nil {
		return nil, err
	}
	if err := stage.Run(ctx, sc, assets); err != nil {
		return nil, err
	}
	rec.Stage = stage
	return rec, nil
}

// FrameJSON returns the draw commands of frame i, clamped to the
// recorded range.
func (r *Recording) FrameJSON(i int) (string, error) {
	if len(r.Frames) == 0 {
		return DrawCommandsToJSON(r.Stage.Compile(r.Viewport))
	}
	i = max(0, min(i, len(r.Frames)-1))
	return DrawCommandsToJSON(r.Frames[i])
}

// HitTest returns the id of the front-most object at canvas pixel
// (x, y) in the final state, or "".
func (r *Recording) HitTest(x, y float64) string {
	p := r.Viewport.Matrix().Invert().Apply(geometry.Pt(x, y))
	if g := r.Stage.HitTest(p); g != nil {
		return r.Stage.ID(g)
	}
	return ""
}
