// Package glyph converts text into outline geometries using HarfBuzz
// shaping and TrueType glyph outlines.
package glyph

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"

	"github.com/inamate/animlib/internal/geometry"
)

var (
	ErrEmptyText = errors.New("text has no visible glyphs")
	ErrBadFont   = errors.New("invalid font")
)

// LineSpacing is the baseline distance as a multiple of the font size.
const LineSpacing = 1.2

// Font is a parsed TrueType or OpenType font. It is safe for concurrent use.
type Font struct {
	outlines *sfnt.Font
	shaping  *font.Font
	upem     float64

	mu     sync.Mutex
	buf    sfnt.Buffer
	shaper shaping.HarfbuzzShaper
}

// ParseFont parses font file data.
func ParseFont(data []byte) (*Font, error) {
	outlines, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse outlines: %w: %w", ErrBadFont, err)
	}
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse shaping tables: %w: %w", ErrBadFont, err)
	}
	return &Font{
		outlines: outlines,
		shaping:  face.Font,
		upem:     float64(outlines.UnitsPerEm()),
	}, nil
}

var defaultFont = sync.OnceValues(func() (*Font, error) {
	return ParseFont(goregular.TTF)
})

// Default returns the built-in Go Regular font.
func Default() (*Font, error) {
	return defaultFont()
}

// Text returns the outlines of s with an em size of size scene units,
// centered on the origin. Lines are separated by newlines.
func Text(s string, size float64) (*geometry.Geometry, error) {
	f, err := Default()
	if err != nil {
		return nil, err
	}
	return f.Text(s, size)
}

// Text returns the outlines of s set in f. See the package level Text.
func (f *Font) Text(s string, size float64) (*geometry.Geometry, error) {
	if size <= 0 {
		return nil, fmt.Errorf("text size %v: %w", size, geometry.ErrInvalidState)
	}
	s = norm.NFC.String(s)

	f.mu.Lock()
	defer f.mu.Unlock()

	g := geometry.New()
	scale := size / f.upem
	for i, line := range strings.Split(s, "\n") {
		baseline := -float64(i) * LineSpacing * size
		if err := f.appendLine(g, line, scale, baseline); err != nil {
			return nil, err
		}
	}
	if g.PathCount() == 0 {
		return nil, ErrEmptyText
	}
	g.MoveTo(geometry.Point{}, geometry.ByOutline)
	return g, nil
}

func (f *Font) appendLine(g *geometry.Geometry, line string, scale, baseline float64) error {
	runes := []rune(line)
	if len(runes) == 0 {
		return nil
	}
	out := f.shaper.Shape(shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      font.NewFace(f.shaping),
		Size:      fixed.Int26_6(f.upem * 64),
		Script:    script(runes),
		Language:  language.NewLanguage("en"),
	})

	pen := 0.0
	for _, gl := range out.Glyphs {
		origin := geometry.Pt(
			(pen+fixedToFloat(gl.XOffset))*scale,
			baseline+fixedToFloat(gl.YOffset)*scale,
		)
		if err := f.appendGlyph(g, sfnt.GlyphIndex(gl.GlyphID), origin, scale); err != nil {
			return err
		}
		pen += fixedToFloat(gl.Advance)
	}
	return nil
}

// appendGlyph loads a glyph in font units and adds one path per contour.
func (f *Font) appendGlyph(g *geometry.Geometry, gid sfnt.GlyphIndex, origin geometry.Point, scale float64) error {
	segs, err := f.outlines.LoadGlyph(&f.buf, gid, fixed.Int26_6(f.upem*64), nil)
	if err != nil {
		if errors.Is(err, sfnt.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load glyph %d: %w", gid, err)
	}

	// sfnt outlines grow downwards.
	pt := func(p fixed.Point26_6) geometry.Point {
		return origin.Add(geometry.Pt(fixedToFloat(p.X)*scale, -fixedToFloat(p.Y)*scale))
	}

	var path geometry.Path
	flush := func() {
		if len(path) >= 4 {
			if !path[len(path)-1].Near(path[0], 1e-12) {
				seg := geometry.LineSegment(path[len(path)-1], path[0])
				path = append(path, seg[:]...)
			}
			g.AppendPath(path)
		}
		path = nil
	}

	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			flush()
			path = geometry.Path{pt(seg.Args[0])}
		case sfnt.SegmentOpLineTo:
			s := geometry.LineSegment(path[len(path)-1], pt(seg.Args[0]))
			path = append(path, s[:]...)
		case sfnt.SegmentOpQuadTo:
			s := geometry.QuadSegment(path[len(path)-1], pt(seg.Args[0]), pt(seg.Args[1]))
			path = append(path, s[:]...)
		case sfnt.SegmentOpCubeTo:
			path = append(path, pt(seg.Args[0]), pt(seg.Args[1]), pt(seg.Args[2]))
		}
	}
	flush()
	return nil
}

func script(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
