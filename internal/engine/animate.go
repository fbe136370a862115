package engine

import (
	"context"
	"fmt"

	"github.com/inamate/animlib/internal/animation"
)

// Animate plays animations in parallel until every one is exhausted. Each
// frame advances all of them before the frame is produced. Targets join
// the stage; animated stand-ins are drawn right behind their targets and
// leave the stage at the end.
//
// If ctx is canceled every animation is finished, so targets end up in
// their final state, and ctx.Err() is returned.
func (s *Stage) Animate(ctx context.Context, anims ...*animation.Animation) error {
	if len(anims) == 0 {
		return nil
	}

	longest := 0
	for i, a := range anims {
		n, err := a.Begin()
		if err != nil {
			for _, prev := range anims[:i] {
				prev.Finish()
			}
			s.cleanup(anims[:i])
			return err
		}
		longest = max(longest, n)

		s.Add(a.Targets()...)
		for j, o := range a.Animated() {
			ref := a.Targets()[min(j, len(a.Targets())-1)]
			if err := s.AddBehind(ref, o); err != nil {
				s.finish(anims[:i+1])
				return fmt.Errorf("place %s stand-in: %w", a.Kind(), err)
			}
		}
		s.logger.Debug("animation begun", "kind", a.Kind(), "frames", n, "targets", len(a.Targets()))
	}
	s.logger.Debug("animate", "animations", len(anims), "frames", longest, "at_frame", s.frames)

	for {
		if err := ctx.Err(); err != nil {
			s.finish(anims)
			return err
		}

		more := false
		for _, a := range anims {
			ok, err := a.Next()
			if err != nil {
				s.finish(anims)
				return err
			}
			more = more || ok
		}
		if !more {
			break
		}

		if err := s.emit(ctx); err != nil {
			s.finish(anims)
			return err
		}
	}

	s.cleanup(anims)
	return nil
}

func (s *Stage) finish(anims []*animation.Animation) {
	for _, a := range anims {
		a.Finish()
	}
	s.cleanup(anims)
}

// cleanup takes animated stand-ins off the stage.
func (s *Stage) cleanup(anims []*animation.Animation) {
	for _, a := range anims {
		s.Remove(a.Animated()...)
	}
}

// Wait holds the current state for seconds, producing int(fps*seconds)
// identical frames.
func (s *Stage) Wait(ctx context.Context, seconds float64) error {
	n := int(float64(s.fps) * seconds)
	if n <= 0 {
		return nil
	}
	s.logger.Debug("wait", "seconds", seconds, "frames", n, "at_frame", s.frames)

	if s.rasterizer == nil || s.sink == nil {
		for range n {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := s.emit(ctx); err != nil {
				return err
			}
		}
		return nil
	}

	img, err := s.rasterizer.Rasterize(s.geoms)
	if err != nil {
		return fmt.Errorf("render frame %d: %w", s.frames, err)
	}
	for range n {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.sink.WriteFrame(ctx, img); err != nil {
			return fmt.Errorf("write frame %d: %w", s.frames, err)
		}
		s.frames++
		if s.progress != nil {
			s.progress(s.frames, s.total)
		}
	}
	return nil
}
