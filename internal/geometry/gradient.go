package geometry

// ColorStop is a color at a position along a gradient axis.
type ColorStop struct {
	Offset float64 `json:"offset"`
	Color  Color   `json:"color"`
}

// LinearGradient paints along the axis Start→End. Stops are kept in the
// order they were added; equal offsets form a hard edge.
type LinearGradient struct {
	Start Point       `json:"start"`
	End   Point       `json:"end"`
	Stops []ColorStop `json:"stops"`
}

// NewLinearGradient creates a gradient with no stops.
func NewLinearGradient(start, end Point) *LinearGradient {
	return &LinearGradient{Start: start, End: end}
}

// AddStop appends a color stop and returns the gradient for chaining.
func (g *LinearGradient) AddStop(offset float64, c Color) *LinearGradient {
	g.Stops = append(g.Stops, ColorStop{Offset: offset, Color: c})
	return g
}

func (g *LinearGradient) clone() *LinearGradient {
	if g == nil {
		return nil
	}
	out := *g
	out.Stops = append([]ColorStop(nil), g.Stops...)
	return &out
}
