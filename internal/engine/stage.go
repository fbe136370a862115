// Package engine owns the stage: the z-ordered geometries of a scene, the
// loop that drives animations frame by frame, and the conversion of scene
// scripts into geometries and animations.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"slices"

	"github.com/inamate/animlib/internal/animation"
	"github.com/inamate/animlib/internal/geometry"
)

var (
	ErrNoRasterizer = errors.New("stage has no rasterizer")
	ErrNotOnStage   = errors.New("geometry is not on the stage")
)

// Rasterizer draws geometries, back to front, into a frame.
type Rasterizer interface {
	Rasterize(geoms []*geometry.Geometry) (*image.RGBA, error)
}

// FrameSink receives every frame the stage produces.
type FrameSink interface {
	WriteFrame(ctx context.Context, frame *image.RGBA) error
}

// ProgressFunc is called after each written frame. total is an estimate
// and zero when unknown.
type ProgressFunc func(done, total int)

// Options configures a Stage. Zero values select defaults except
// Rasterizer and Sink: without both, frames are counted but not drawn.
type Options struct {
	FPS        int
	Rasterizer Rasterizer
	Sink       FrameSink
	Progress   ProgressFunc
	Logger     *slog.Logger
}

// Stage holds the geometries of a scene in drawing order.
type Stage struct {
	fps        int
	rasterizer Rasterizer
	sink       FrameSink
	progress   ProgressFunc
	logger     *slog.Logger

	geoms []*geometry.Geometry
	ids   map[*geometry.Geometry]string

	frames int
	total  int
}

// NewStage creates an empty stage.
func NewStage(opts Options) (*Stage, error) {
	if opts.FPS < 0 {
		return nil, fmt.Errorf("fps %d: %w", opts.FPS, animation.ErrConfiguration)
	}
	if opts.FPS == 0 {
		opts.FPS = animation.DefaultFPS
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Stage{
		fps:        opts.FPS,
		rasterizer: opts.Rasterizer,
		sink:       opts.Sink,
		progress:   opts.Progress,
		logger:     opts.Logger,
		ids:        make(map[*geometry.Geometry]string),
	}, nil
}

func (s *Stage) FPS() int { return s.fps }

// Frames returns the number of frames produced so far.
func (s *Stage) Frames() int { return s.frames }

// SetTotal sets the frame estimate passed to the progress callback.
func (s *Stage) SetTotal(n int) { s.total = n }

// Geometries returns the stage contents, first drawn first. The slice is
// owned by the stage.
func (s *Stage) Geometries() []*geometry.Geometry { return s.geoms }

// Name associates an id with g for draw commands and hit testing.
func (s *Stage) Name(g *geometry.Geometry, id string) { s.ids[g] = id }

// ID returns the id given to g with Name.
func (s *Stage) ID(g *geometry.Geometry) string { return s.ids[g] }

// Contains reports whether g is on the stage.
func (s *Stage) Contains(g *geometry.Geometry) bool {
	return slices.Contains(s.geoms, g)
}

// Add puts geometries in front of everything. Geometries already on the
// stage keep their place.
func (s *Stage) Add(gs ...*geometry.Geometry) {
	for _, g := range gs {
		if g != nil && !s.Contains(g) {
			s.geoms = append(s.geoms, g)
		}
	}
}

// AddBehind inserts geometries directly behind ref.
func (s *Stage) AddBehind(ref *geometry.Geometry, gs ...*geometry.Geometry) error {
	for _, g := range gs {
		s.remove(g)
	}
	i := slices.Index(s.geoms, ref)
	if i < 0 {
		return ErrNotOnStage
	}
	s.geoms = slices.Insert(s.geoms, i, gs...)
	return nil
}

// BringToFront moves g in front of everything.
func (s *Stage) BringToFront(g *geometry.Geometry) error {
	if !s.remove(g) {
		return ErrNotOnStage
	}
	s.geoms = append(s.geoms, g)
	return nil
}

// Remove takes geometries off the stage. Unknown geometries are ignored.
func (s *Stage) Remove(gs ...*geometry.Geometry) {
	for _, g := range gs {
		s.remove(g)
	}
}

func (s *Stage) remove(g *geometry.Geometry) bool {
	i := slices.Index(s.geoms, g)
	if i < 0 {
		return false
	}
	s.geoms = slices.Delete(s.geoms, i, i+1)
	return true
}

// Snapshot renders the current state.
func (s *Stage) Snapshot() (*image.RGBA, error) {
	if s.rasterizer == nil {
		return nil, ErrNoRasterizer
	}
	return s.rasterizer.Rasterize(s.geoms)
}

// HitTest returns the front-most visible geometry whose outline contains p.
func (s *Stage) HitTest(p geometry.Point) *geometry.Geometry {
	for i := len(s.geoms) - 1; i >= 0; i-- {
		g := s.geoms[i]
		if g.Hidden() {
			continue
		}
		if g.Outline().Contains(p) {
			return g
		}
	}
	return nil
}

// emit produces one frame from the current state.
func (s *Stage) emit(ctx context.Context) error {
	if s.rasterizer != nil && s.sink != nil {
		img, err := s.rasterizer.Rasterize(s.geoms)
		if err != nil {
			return fmt.Errorf("render frame %d: %w", s.frames, err)
		}
		if err := s.sink.WriteFrame(ctx, img); err != nil {
			return fmt.Errorf("write frame %d: %w", s.frames, err)
		}
	}
	s.frames++
	if s.progress != nil {
		s.progress(s.frames, s.total)
	}
	return nil
}
