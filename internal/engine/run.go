package engine

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/inamate/animlib/internal/animation"
	"github.com/inamate/animlib/internal/document"
	"github.com/inamate/animlib/internal/geometry"
)

// Run builds the scene's objects and executes its steps in order. The
// stage's FPS is used for every animation. Objects enter the stage when
// an add step names them or an animation targets them.
func (s *Stage) Run(ctx context.Context, sc *document.Scene, assets fs.FS) error {
	objs, err := BuildScene(sc, assets)
	if err != nil {
		return err
	}
	for id, g := range objs {
		s.Name(g, id)
	}
	if s.total == 0 {
		s.SetTotal(EstimateFrames(sc, s.fps))
	}

	for i, st := range sc.Steps {
		if err := s.runStep(ctx, i, st, objs, sc.Seed); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, st.Action, err)
		}
	}
	s.logger.Info("scene rendered", "scene", sc.Name, "frames", s.frames)
	return nil
}

func (s *Stage) runStep(ctx context.Context, i int, st document.Step, objs map[string]*geometry.Geometry, seed uint64) error {
	switch st.Action {
	case document.ActionAdd:
		for _, id := range st.Objects {
			s.Add(objs[id])
		}
	case document.ActionRemove:
		for _, id := range st.Objects {
			s.Remove(objs[id])
		}
	case document.ActionWait:
		return s.Wait(ctx, st.Seconds)
	case document.ActionAnimate:
		anims := make([]*animation.Animation, 0, len(st.Animations))
		for j, spec := range st.Animations {
			a, err := BuildAnimation(spec, objs, s.fps, stepSeed(seed, i, j))
			if err != nil {
				return err
			}
			anims = append(anims, a)
		}
		return s.Animate(ctx, anims...)
	default:
		return fmt.Errorf("unknown action %q: %w", st.Action, document.ErrInvalidScene)
	}
	return nil
}

// stepSeed derives a distinct seed per animation so equal morphs in
// different steps do not share random choices.
func stepSeed(seed uint64, step, anim int) uint64 {
	return seed ^ uint64(step)<<32 ^ uint64(anim)
}

// EstimateFrames predicts how many frames Run will produce at fps.
func EstimateFrames(sc *document.Scene, fps int) int {
	total := 0
	for _, st := range sc.Steps {
		switch st.Action {
		case document.ActionWait:
			total += int(float64(fps) * st.Seconds)
		case document.ActionAnimate:
			longest := 0
			for _, a := range st.Animations {
				d := a.Duration
				if d == 0 {
					d = animation.DefaultDuration
				}
				longest = max(longest, animation.FrameCount(fps, d)+1)
			}
			total += longest
		}
	}
	return total
}
