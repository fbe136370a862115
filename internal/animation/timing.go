package animation

import (
	"math"
	"slices"

	"github.com/inamate/animlib/internal/ease"
)

// MinFrameCount is used when fps·duration rounds to a single frame or less,
// so every animation has at least one update frame before its finishing frame.
const MinFrameCount = 1

// FrameCount returns the number of update frames for a duration:
// round(fps·duration) - 1, floored at MinFrameCount.
func FrameCount(fps int, duration float64) int {
	n := int(math.Round(float64(fps)*duration)) - 1
	if n < MinFrameCount {
		return MinFrameCount
	}
	return n
}

// timing holds the per-frame eased values and their first differences.
type timing struct {
	vals   []float64
	deltas []float64
}

// newTiming samples e at i/n for i in [0, n).
func newTiming(e ease.Easing, n int) timing {
	t := timing{
		vals:   make([]float64, n),
		deltas: make([]float64, n),
	}
	for i := range n {
		t.vals[i] = e.Ease(float64(i) / float64(n))
		if i > 0 {
			t.deltas[i] = t.vals[i] - t.vals[i-1]
		}
	}
	return t
}

// reversed returns the tables traversed back to front.
func (t timing) reversed() timing {
	out := timing{
		vals:   slices.Clone(t.vals),
		deltas: slices.Clone(t.deltas),
	}
	slices.Reverse(out.vals)
	slices.Reverse(out.deltas)
	return out
}
