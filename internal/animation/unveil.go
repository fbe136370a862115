package animation

import (
	"fmt"
	"strings"

	"github.com/inamate/animlib/internal/geometry"
)

// Direction selects where a reveal starts. The zero value means Left.
type Direction uint8

const (
	Left Direction = iota + 1
	TopLeft
	Top
	TopRight
	Right
	BottomRight
	Bottom
	BottomLeft
)

var directionNames = [...]string{
	Left:        "left",
	TopLeft:     "topLeft",
	Top:         "top",
	TopRight:    "topRight",
	Right:       "right",
	BottomRight: "bottomRight",
	Bottom:      "bottom",
	BottomLeft:  "bottomLeft",
}

// signs are (sx1, sy1, sx2, sy2): the sign pattern of the sweep's start and
// end anchors relative to the outline. Positive x points away from the
// left edge, positive y away from the top edge.
var directionSigns = [...][4]float64{
	Left:        {1, 0, 1, 0},
	TopLeft:     {1, 1, 1, 1},
	Top:         {0, 1, 0, 1},
	TopRight:    {-1, 1, -1, 1},
	Right:       {-1, 0, -1, 0},
	BottomRight: {-1, -1, -1, -1},
	Bottom:      {0, -1, 0, -1},
	BottomLeft:  {1, -1, 1, -1},
}

func (d Direction) Valid() bool {
	return d >= Left && d <= BottomLeft
}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Direction(%d)", d)
	}
	return directionNames[d]
}

// Signs returns the direction's (sx1, sy1, sx2, sy2) tuple.
func (d Direction) Signs() [4]float64 {
	if d == 0 {
		d = Left
	}
	return directionSigns[d]
}

// ParseDirection resolves names such as "left", "top_right" or "BottomLeft".
func ParseDirection(s string) (Direction, error) {
	key := strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(s))
	if key == "" {
		return Left, nil
	}
	for d := Left; d <= BottomLeft; d++ {
		if strings.ToLower(directionNames[d]) == key {
			return d, nil
		}
	}
	return 0, fmt.Errorf("parse direction %q: %w", s, ErrConfiguration)
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	if d == 0 {
		return []byte{}, nil
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(b []byte) error {
	parsed, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// SweepAxis returns the gradient axis for a reveal of outline r in direction
// d, pushed outward by strokeOffset so stroke overdraw is covered at both
// ends. Scene y grows upward, so the top edge is r.Max.Y.
func SweepAxis(r geometry.Rect, d Direction, strokeOffset float64) (start, end geometry.Point) {
	s := d.Signs()
	c := r.Center()
	hx := r.Width()/2 + strokeOffset
	hy := r.Height()/2 + strokeOffset
	start = geometry.Pt(c.X-s[0]*hx, c.Y+s[1]*hy)
	end = geometry.Pt(c.X+s[2]*hx, c.Y-s[3]*hy)
	return start, end
}

type unveil struct {
	// hide leaves the targets fully transparent when the sweep ends.
	hide bool

	start, end   geometry.Point
	fillColors   []geometry.Color
	strokeColors []geometry.Color
}

// NewUnveil reveals copies of the targets behind a hard edge sweeping
// across their joint outline.
func NewUnveil(cfg Config) (*Animation, error) {
	return newAnimation(KindUnveil, cfg, &unveil{}, false)
}

// NewHide runs Unveil backwards. The targets are left fully transparent.
func NewHide(cfg Config) (*Animation, error) {
	return newAnimation(KindHide, cfg, &unveil{hide: true}, true)
}

func (u *unveil) begin(a *Animation) error {
	outline := geometry.EmptyRect()
	maxWidth := 0.0
	u.fillColors = make([]geometry.Color, len(a.targets))
	u.strokeColors = make([]geometry.Color, len(a.targets))
	for i, t := range a.targets {
		outline = outline.Union(t.Outline())
		maxWidth = max(maxWidth, t.StrokeWidth())
		u.fillColors[i] = t.Fill()
		u.strokeColors[i] = t.Stroke()
	}
	if outline.IsEmpty() {
		return fmt.Errorf("unveil: targets have no points: %w", ErrUnsupportedShape)
	}
	u.start, u.end = SweepAxis(outline, a.cfg.Direction, maxWidth/2)

	for _, o := range a.animated {
		o.SetOpacity(0)
	}
	return nil
}

func (u *unveil) apply(a *Animation, i int) {
	at := a.easeVal(i)
	for j, o := range a.animated {
		o.SetFillGradient(u.edge(u.fillColors[j], at))
		o.SetStrokeGradient(u.edge(u.strokeColors[j], at))
	}
}

// edge builds a gradient that is c before offset and transparent after it.
func (u *unveil) edge(c geometry.Color, offset float64) *geometry.LinearGradient {
	return geometry.NewLinearGradient(u.start, u.end).
		AddStop(offset, c).
		AddStop(offset, c.WithAlpha(0))
}

func (u *unveil) finish(a *Animation) {
	if !u.hide {
		return
	}
	for _, t := range a.targets {
		t.SetOpacity(0)
	}
}
