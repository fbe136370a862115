// Package animation implements the frame-by-frame animation protocol:
// Begin computes the timing tables, Next advances one output frame and
// reports whether it produced one, Finish swaps animated stand-ins for
// their targets.
//
// Every kind shares one Animation type. What differs per kind is an
// effect strategy plus two independent options: whether the stand-ins
// are copies of the targets, and whether the timing tables run in reverse.
package animation

import (
	"fmt"

	"github.com/inamate/animlib/internal/geometry"
)

// Kind names an animation flavour.
type Kind string

const (
	KindFadeIn    Kind = "fadeIn"
	KindFadeOut   Kind = "fadeOut"
	KindTransform Kind = "transform"
	KindUnveil    Kind = "unveil"
	KindHide      Kind = "hide"
)

// effect is the per-kind behaviour driven by Animation.
type effect interface {
	// begin runs once the animated objects and timing tables exist.
	begin(a *Animation) error
	// apply updates the animated objects for frame i.
	apply(a *Animation, i int)
	// finish runs after the animated objects are hidden and the targets shown.
	finish(a *Animation)
}

// Animation binds target objects to the animated objects that stand in for
// them while frames are produced. It is single use and not safe for
// concurrent use.
type Animation struct {
	kind   Kind
	cfg    Config
	effect effect

	// reverse traverses the timing tables back to front.
	reverse bool

	targets  []*geometry.Geometry
	animated []*geometry.Geometry

	frames  int
	timing  timing
	counter int

	begun    bool
	finished bool
}

func newAnimation(k Kind, cfg Config, eff effect, reverse bool) (*Animation, error) {
	if err := cfg.validate(k); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	return &Animation{
		kind:    k,
		cfg:     cfg,
		effect:  eff,
		reverse: reverse,
		targets: append([]*geometry.Geometry(nil), cfg.Targets...),
	}, nil
}

// Kind returns the animation flavour.
func (a *Animation) Kind() Kind { return a.kind }

// Duration returns the configured duration in seconds.
func (a *Animation) Duration() float64 { return a.cfg.Duration }

// Targets returns the target objects.
func (a *Animation) Targets() []*geometry.Geometry { return a.targets }

// Animated returns the animated stand-ins. It is empty before Begin for
// every kind except Transform.
func (a *Animation) Animated() []*geometry.Geometry { return a.animated }

// FrameCount returns the number of update frames, excluding the finishing
// frame. It is zero before Begin.
func (a *Animation) FrameCount() int { return a.frames }

// Begin prepares the animation and returns the number of Next calls that
// will return true. Targets are hidden until the finishing frame.
func (a *Animation) Begin() (int, error) {
	if a.begun || a.finished {
		return 0, fmt.Errorf("%s: begin called twice: %w", a.kind, ErrInvalidState)
	}

	if len(a.animated) == 0 {
		a.animated = make([]*geometry.Geometry, len(a.targets))
		for i, t := range a.targets {
			a.animated[i] = t.Clone()
		}
	}

	a.frames = FrameCount(a.cfg.FPS, a.cfg.Duration)
	a.timing = newTiming(a.cfg.Easing, a.frames)
	if a.reverse {
		a.timing = a.timing.reversed()
	}

	if err := a.effect.begin(a); err != nil {
		return 0, fmt.Errorf("%s: begin: %w", a.kind, err)
	}

	a.counter = 0
	for _, t := range a.targets {
		t.Hide()
	}
	for _, o := range a.animated {
		o.Show()
	}
	a.begun = true
	return a.frames + 1, nil
}

// Next advances one frame. It returns false once the animation is exhausted.
// The call that reaches the end performs Finish and still returns true.
func (a *Animation) Next() (bool, error) {
	if !a.begun {
		return false, fmt.Errorf("%s: next before begin: %w", a.kind, ErrInvalidState)
	}
	if a.counter > a.frames {
		return false, nil
	}
	if a.counter == a.frames {
		a.Finish()
		return true, nil
	}
	a.effect.apply(a, a.counter)
	a.counter++
	return true, nil
}

// Finish hides the animated objects and shows the targets. It may be called
// early to cancel cleanly; afterwards Next returns false. Repeated calls are
// no-ops.
func (a *Animation) Finish() {
	if a.finished {
		return
	}
	a.finished = true
	a.counter = a.frames + 1
	for _, o := range a.animated {
		o.Hide()
	}
	for _, t := range a.targets {
		t.Show()
	}
	if a.begun {
		a.effect.finish(a)
	}
}

// Done reports whether Finish has run.
func (a *Animation) Done() bool { return a.finished }

// easeVal returns the eased value for frame i.
func (a *Animation) easeVal(i int) float64 { return a.timing.vals[i] }

// easeDelta returns the eased delta for frame i.
func (a *Animation) easeDelta(i int) float64 { return a.timing.deltas[i] }
