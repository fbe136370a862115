package animation

import (
	"fmt"
	"math/rand/v2"

	"github.com/inamate/animlib/internal/geometry"
)

// seedStream decorrelates the two PCG words derived from Config.Seed.
const seedStream = 0x9E3779B97F4A7C15

type transform struct {
	starts []*geometry.Geometry
	rng    *rand.Rand

	pointDelta  []geometry.Point
	fillDelta   geometry.Color
	strokeDelta geometry.Color
	widthDelta  float64

	// applied is the sum of eased deltas already added.
	applied float64
}

// NewTransform morphs one start object into one target object. The start
// object is left untouched: a copy of it is animated and the original is
// hidden for the duration.
func NewTransform(cfg Config) (*Animation, error) {
	if len(cfg.Start) != 1 || len(cfg.Targets) != 1 {
		return nil, fmt.Errorf("%s: %d start and %d target objects, want 1 and 1: %w",
			KindTransform, len(cfg.Start), len(cfg.Targets), ErrCardinalityMismatch)
	}
	eff := &transform{
		starts: cfg.Start,
		rng:    rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^seedStream)),
	}
	a, err := newAnimation(KindTransform, cfg, eff, false)
	if err != nil {
		return nil, err
	}
	a.animated = []*geometry.Geometry{cfg.Start[0].Clone()}
	return a, nil
}

func (tr *transform) begin(a *Animation) error {
	src, dst := a.animated[0], a.targets[0]
	if err := equalize(src, dst, tr.rng); err != nil {
		return err
	}

	from, to := src.Points(), dst.Points()
	tr.pointDelta = make([]geometry.Point, len(from))
	for i := range from {
		tr.pointDelta[i] = to[i].Sub(from[i])
	}
	tr.fillDelta = dst.Fill().Sub(src.Fill())
	tr.strokeDelta = dst.Stroke().Sub(src.Stroke())
	tr.widthDelta = dst.StrokeWidth() - src.StrokeWidth()
	tr.applied = 0

	for _, s := range tr.starts {
		s.Hide()
	}
	return nil
}

func (tr *transform) apply(a *Animation, i int) {
	tr.step(a.animated[0], a.easeDelta(i))
}

// finish adds the remaining progress so the stand-in ends exactly on the target.
func (tr *transform) finish(a *Animation) {
	tr.step(a.animated[0], 1-tr.applied)
}

func (tr *transform) step(g *geometry.Geometry, d float64) {
	if d == 0 {
		return
	}
	scaled := make([]geometry.Point, len(tr.pointDelta))
	for i, p := range tr.pointDelta {
		scaled[i] = p.Scale(d)
	}
	// Point counts were equalized in begin, so this cannot fail.
	_ = g.TranslatePoints(scaled)
	g.SetFill(g.Fill().Add(tr.fillDelta.Scale(d)))
	g.SetStroke(g.Stroke().Add(tr.strokeDelta.Scale(d)))
	g.SetStrokeWidth(g.StrokeWidth() + tr.widthDelta*d)
	tr.applied += d
}

// equalize makes a and b structurally identical: same path count and, per
// path, same point count. The side with fewer paths duplicates a random
// path; the side with fewer points bisects a random segment. Both edits
// preserve the traced shape.
func equalize(a, b *geometry.Geometry, rng *rand.Rand) error {
	if a.PathCount() == 0 || b.PathCount() == 0 {
		return fmt.Errorf("equalize: empty geometry: %w", ErrUnsupportedShape)
	}
	for _, g := range []*geometry.Geometry{a, b} {
		for i, p := range g.Paths() {
			if !p.Valid() {
				return fmt.Errorf("equalize: path %d has %d points: %w", i, len(p), ErrUnsupportedShape)
			}
		}
	}
	for a.PathCount() != b.PathCount() {
		fewer := a
		if b.PathCount() < a.PathCount() {
			fewer = b
		}
		if err := fewer.DuplicateRandomPath(rng); err != nil {
			return fmt.Errorf("equalize paths: %w", err)
		}
	}
	for i := range a.PathCount() {
		for a.PointCount(i) != b.PointCount(i) {
			fewer := a
			if b.PointCount(i) < a.PointCount(i) {
				fewer = b
			}
			if err := fewer.InterpolateRandomSegment(i, rng); err != nil {
				return fmt.Errorf("equalize path %d: %w", i, err)
			}
		}
	}
	return nil
}
