// Package render rasterizes geometries into RGBA frames with gg.
package render

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"

	"github.com/inamate/animlib/internal/geometry"
)

var ErrInvalidSize = errors.New("invalid frame size")

// stopNudge separates coincident gradient stops so the hard edge keeps its
// order after gg sorts the stops.
const stopNudge = 1e-6

// Renderer draws scene geometries onto a fixed size canvas. Scene units
// are scaled by Scale pixels, the origin sits at the canvas center and y
// points up.
type Renderer struct {
	width, height int
	scale         float64
	background    geometry.Color
}

// New creates a renderer. Dimensions must be positive.
func New(width, height int, scale float64, background geometry.Color) (*Renderer, error) {
	if width <= 0 || height <= 0 || scale <= 0 {
		return nil, fmt.Errorf("%dx%d at scale %v: %w", width, height, scale, ErrInvalidSize)
	}
	return &Renderer{width: width, height: height, scale: scale, background: background}, nil
}

// SetLogger routes gg's internal diagnostics to l.
func SetLogger(l *slog.Logger) {
	gg.SetLogger(l)
}

func (r *Renderer) Width() int  { return r.width }
func (r *Renderer) Height() int { return r.height }

// ToPixel maps a scene point to canvas coordinates.
func (r *Renderer) ToPixel(p geometry.Point) (float64, float64) {
	return float64(r.width)/2 + p.X*r.scale, float64(r.height)/2 - p.Y*r.scale
}

// Rasterize draws the visible geometries in order, first at the back.
func (r *Renderer) Rasterize(geoms []*geometry.Geometry) (*image.RGBA, error) {
	ctx := gg.NewContext(r.width, r.height)
	defer ctx.Close()
	ctx.ClearWithColor(toRGBA(r.background))
	ctx.SetLineCap(gg.LineCapRound)
	ctx.SetLineJoin(gg.LineJoinRound)

	for _, g := range geoms {
		if g.Hidden() {
			continue
		}
		if err := r.draw(ctx, g); err != nil {
			return nil, fmt.Errorf("draw %s: %w", g, err)
		}
	}
	return toImageRGBA(ctx.Image()), nil
}

func (r *Renderer) draw(ctx *gg.Context, g *geometry.Geometry) error {
	if g.FillGradient() != nil || g.Fill().A > 0 {
		r.trace(ctx, g)
		ctx.SetFillBrush(r.brush(g.Fill(), g.FillGradient()))
		if err := ctx.Fill(); err != nil {
			return fmt.Errorf("fill: %w", err)
		}
	}
	if g.StrokeWidth() > 0 && (g.StrokeGradient() != nil || g.Stroke().A > 0) {
		r.trace(ctx, g)
		ctx.SetStrokeBrush(r.brush(g.Stroke(), g.StrokeGradient()))
		ctx.SetLineWidth(g.StrokeWidth() * r.scale)
		if err := ctx.Stroke(); err != nil {
			return fmt.Errorf("stroke: %w", err)
		}
	}
	return nil
}

func (r *Renderer) trace(ctx *gg.Context, g *geometry.Geometry) {
	ctx.ClearPath()
	for _, p := range g.Paths() {
		if len(p) == 0 {
			continue
		}
		ctx.MoveTo(r.ToPixel(p[0]))
		for i := 0; i < p.Segments(); i++ {
			seg := p.Segment(i)
			c1x, c1y := r.ToPixel(seg[1])
			c2x, c2y := r.ToPixel(seg[2])
			x, y := r.ToPixel(seg[3])
			ctx.CubicTo(c1x, c1y, c2x, c2y, x, y)
		}
		if p.Closed() {
			ctx.ClosePath()
		}
	}
}

func (r *Renderer) brush(c geometry.Color, grad *geometry.LinearGradient) gg.Brush {
	if grad == nil {
		return gg.Solid(toRGBA(c))
	}
	x0, y0 := r.ToPixel(grad.Start)
	x1, y1 := r.ToPixel(grad.End)
	b := gg.NewLinearGradientBrush(x0, y0, x1, y1)
	prev := -1.0
	for _, s := range grad.Stops {
		off := s.Offset
		if off <= prev {
			off = prev + stopNudge
		}
		b.AddColorStop(off, toRGBA(s.Color))
		prev = off
	}
	return b
}

func toRGBA(c geometry.Color) gg.RGBA {
	c = c.Clamped()
	return gg.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func toImageRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// Thumbnail scales img to fit within maxW by maxH, keeping its aspect.
func Thumbnail(img image.Image, maxW, maxH int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 || maxW <= 0 || maxH <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	f := min(float64(maxW)/float64(w), float64(maxH)/float64(h), 1)
	tw, th := max(1, int(float64(w)*f)), max(1, int(float64(h)*f))
	out := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(out, out.Bounds(), img, b, draw.Src, nil)
	return out
}
