package engine

import (
	"encoding/json"

	"github.com/inamate/animlib/internal/geometry"
)

// DrawCommand is one drawing operation for a Canvas2D front end. The
// front end executes the commands in order.
type DrawCommand struct {
	Op             string         `json:"op"`                       // "clear" or "path"
	ObjectID       string         `json:"objectId,omitempty"`       // For hit correlation
	Transform      []float64      `json:"transform,omitempty"`      // [a, b, c, d, e, f] scene to canvas
	Path           []PathCommand  `json:"path,omitempty"`           // Path data for "path" ops
	Fill           string         `json:"fill,omitempty"`           // Solid fill color
	Stroke         string         `json:"stroke,omitempty"`         // Solid stroke color
	FillGradient   *GradientPaint `json:"fillGradient,omitempty"`   // Replaces Fill when set
	StrokeGradient *GradientPaint `json:"strokeGradient,omitempty"` // Replaces Stroke when set
	StrokeWidth    float64        `json:"strokeWidth,omitempty"`    // In scene units
}

// PathCommand is a Canvas2D path segment: ["M", x, y], ["C", x1, y1, x2, y2, x, y] or ["Z"].
type PathCommand []any

// GradientPaint is a linear gradient in scene units.
type GradientPaint struct {
	X0    float64     `json:"x0"`
	Y0    float64     `json:"y0"`
	X1    float64     `json:"x1"`
	Y1    float64     `json:"y1"`
	Stops []StopPaint `json:"stops"`
}

type StopPaint struct {
	Offset float64 `json:"offset"`
	Color  string  `json:"color"`
}

// Viewport maps scene units onto a canvas.
type Viewport struct {
	Width      int
	Height     int
	Scale      float64
	Background geometry.Color
}

// Matrix returns the scene to canvas transform: origin at the center, y down.
func (v Viewport) Matrix() geometry.Matrix2D {
	return geometry.Matrix2D{v.Scale, 0, 0, -v.Scale, float64(v.Width) / 2, float64(v.Height) / 2}
}

// Compile generates draw commands for the visible geometries, back to front.
func (s *Stage) Compile(vp Viewport) []DrawCommand {
	commands := []DrawCommand{{Op: "clear", Fill: vp.Background.Hex()}}
	m := vp.Matrix()
	for _, g := range s.geoms {
		if g.Hidden() || g.PathCount() == 0 {
			continue
		}
		commands = append(commands, compileGeometry(g, s.ids[g], m))
	}
	return commands
}

func compileGeometry(g *geometry.Geometry, id string, m geometry.Matrix2D) DrawCommand {
	cmd := DrawCommand{
		Op:          "path",
		ObjectID:    id,
		Transform:   m[:],
		Fill:        g.Fill().Hex(),
		Stroke:      g.Stroke().Hex(),
		StrokeWidth: g.StrokeWidth(),
	}
	if grad := g.FillGradient(); grad != nil {
		cmd.FillGradient = gradientPaint(grad)
		cmd.Fill = ""
	}
	if grad := g.StrokeGradient(); grad != nil {
		cmd.StrokeGradient = gradientPaint(grad)
		cmd.Stroke = ""
	}

	for _, p := range g.Paths() {
		if len(p) == 0 {
			continue
		}
		cmd.Path = append(cmd.Path, PathCommand{"M", p[0].X, p[0].Y})
		for i := 0; i < p.Segments(); i++ {
			seg := p.Segment(i)
			cmd.Path = append(cmd.Path, PathCommand{"C", seg[1].X, seg[1].Y, seg[2].X, seg[2].Y, seg[3].X, seg[3].Y})
		}
		if p.Closed() {
			cmd.Path = append(cmd.Path, PathCommand{"Z"})
		}
	}
	return cmd
}

func gradientPaint(g *geometry.LinearGradient) *GradientPaint {
	out := &GradientPaint{X0: g.Start.X, Y0: g.Start.Y, X1: g.End.X, Y1: g.End.Y}
	for _, s := range g.Stops {
		out.Stops = append(out.Stops, StopPaint{Offset: s.Offset, Color: s.Color.Hex()})
	}
	return out
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// Bounds is an outline in scene units.
type Bounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// SelectionBounds returns the combined outline of the named objects.
func (s *Stage) SelectionBounds(ids []string) Bounds {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	r := geometry.EmptyRect()
	for _, g := range s.geoms {
		if want[s.ids[g]] && !g.Hidden() {
			r = r.Union(g.Outline())
		}
	}
	if r.IsEmpty() {
		return Bounds{}
	}
	return Bounds{X: r.Min.X, Y: r.Min.Y, Width: r.Width(), Height: r.Height()}
}
