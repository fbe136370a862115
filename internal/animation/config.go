package animation

import (
	"fmt"
	"math"

	"github.com/inamate/animlib/internal/ease"
	"github.com/inamate/animlib/internal/geometry"
)

const (
	DefaultDuration = 1.0
	DefaultFPS      = 60
)

// Config enumerates every construction option. Zero values select defaults.
type Config struct {
	// Targets are the end-state objects, already part of the scene.
	Targets []*geometry.Geometry
	// Start supplies the objects a Transform morphs from. Other kinds
	// animate copies of their targets and reject Start.
	Start []*geometry.Geometry
	// Duration in seconds. Defaults to 1.
	Duration float64
	// FPS is the output frame rate. Defaults to 60.
	FPS int
	// Easing drives progress. Defaults to ease.Default.
	Easing ease.Easing
	// Direction is the sweep direction of Unveil and Hide. Defaults to Left.
	Direction Direction
	// Seed feeds the random choices of Transform's structure equalization.
	Seed uint64
}

func (c Config) withDefaults() Config {
	if c.Duration == 0 {
		c.Duration = DefaultDuration
	}
	if c.FPS == 0 {
		c.FPS = DefaultFPS
	}
	c.Easing = c.Easing.Resolve()
	if c.Direction == 0 {
		c.Direction = Left
	}
	return c
}

func (c Config) validate(k Kind) error {
	if len(c.Targets) == 0 {
		return fmt.Errorf("%s: no target objects: %w", k, ErrConfiguration)
	}
	if c.Duration < 0 || math.IsNaN(c.Duration) || math.IsInf(c.Duration, 0) {
		return fmt.Errorf("%s: duration %v: %w", k, c.Duration, ErrConfiguration)
	}
	if c.FPS < 0 {
		return fmt.Errorf("%s: fps %d: %w", k, c.FPS, ErrConfiguration)
	}
	if !c.Easing.Valid() {
		return fmt.Errorf("%s: easing %s: %w", k, c.Easing, ErrConfiguration)
	}
	if c.Direction != 0 && !c.Direction.Valid() {
		return fmt.Errorf("%s: direction %d: %w", k, c.Direction, ErrConfiguration)
	}
	if c.Direction != 0 && k != KindUnveil && k != KindHide {
		return fmt.Errorf("%s: direction only applies to unveil and hide: %w", k, ErrConfiguration)
	}
	if len(c.Start) > 0 && k != KindTransform {
		return fmt.Errorf("%s: start objects only apply to transform: %w", k, ErrConfiguration)
	}

	seen := make(map[*geometry.Geometry]bool, len(c.Targets)+len(c.Start))
	for _, group := range [][]*geometry.Geometry{c.Targets, c.Start} {
		for _, g := range group {
			if g == nil {
				return fmt.Errorf("%s: nil object: %w", k, ErrConfiguration)
			}
			if seen[g] {
				return fmt.Errorf("%s: object passed twice: %w", k, ErrConfiguration)
			}
			seen[g] = true
		}
	}
	return nil
}
