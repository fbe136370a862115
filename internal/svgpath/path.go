package svgpath

import (
	"fmt"
	"unicode"

	"github.com/inamate/animlib/internal/geometry"
)

// pathParser turns path data into cubic paths, in SVG user space.
type pathParser struct {
	toks []token
	pos  int

	paths []geometry.Path
	cur   geometry.Point
	start geometry.Point
	// prevCubic and prevQuad hold the reflected control point sources of
	// the smooth commands S and T.
	prevCubic, prevQuad *geometry.Point
	open                bool
}

// ParsePathData parses the d attribute of a path element. Arcs are not
// supported.
func ParsePathData(d string) ([]geometry.Path, error) {
	toks, err := tokenize("d", d)
	if err != nil {
		return nil, err
	}
	p := &pathParser{toks: toks}
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.paths, nil
}

func (p *pathParser) run() error {
	var cmd rune
	for p.pos < len(p.toks) {
		t := p.toks[p.pos]
		if !t.isNum {
			cmd = t.letter
			p.pos++
		} else if cmd == 0 {
			return fmt.Errorf("path data starts with a number: %w", ErrSyntax)
		}
		next, err := p.command(cmd)
		if err != nil {
			return err
		}
		cmd = next
	}
	return nil
}

// command consumes the arguments of one command and returns the command
// implied by further bare numbers.
func (p *pathParser) command(cmd rune) (rune, error) {
	rel := unicode.IsLower(cmd)
	abs := func(x, y float64) geometry.Point {
		if rel {
			return p.cur.Add(geometry.Pt(x, y))
		}
		return geometry.Pt(x, y)
	}

	switch unicode.ToUpper(cmd) {
	case 'M':
		a, err := p.args(2)
		if err != nil {
			return 0, err
		}
		p.moveTo(abs(a[0], a[1]))
		if rel {
			return 'l', nil
		}
		return 'L', nil
	case 'L':
		a, err := p.args(2)
		if err != nil {
			return 0, err
		}
		p.lineTo(abs(a[0], a[1]))
	case 'H':
		a, err := p.args(1)
		if err != nil {
			return 0, err
		}
		x := a[0]
		if rel {
			x += p.cur.X
		}
		p.lineTo(geometry.Pt(x, p.cur.Y))
	case 'V':
		a, err := p.args(1)
		if err != nil {
			return 0, err
		}
		y := a[0]
		if rel {
			y += p.cur.Y
		}
		p.lineTo(geometry.Pt(p.cur.X, y))
	case 'C':
		a, err := p.args(6)
		if err != nil {
			return 0, err
		}
		c1, c2, end := abs(a[0], a[1]), abs(a[2], a[3]), abs(a[4], a[5])
		p.cubicTo(c1, c2, end)
	case 'S':
		a, err := p.args(4)
		if err != nil {
			return 0, err
		}
		c1 := p.cur
		if p.prevCubic != nil {
			c1 = p.cur.Add(p.cur.Sub(*p.prevCubic))
		}
		c2, end := abs(a[0], a[1]), abs(a[2], a[3])
		p.cubicTo(c1, c2, end)
	case 'Q':
		a, err := p.args(4)
		if err != nil {
			return 0, err
		}
		c, end := abs(a[0], a[1]), abs(a[2], a[3])
		p.quadTo(c, end)
	case 'T':
		a, err := p.args(2)
		if err != nil {
			return 0, err
		}
		c := p.cur
		if p.prevQuad != nil {
			c = p.cur.Add(p.cur.Sub(*p.prevQuad))
		}
		p.quadTo(c, abs(a[0], a[1]))
	case 'Z':
		p.closePath()
		if p.pos < len(p.toks) && p.toks[p.pos].isNum {
			return 0, fmt.Errorf("numbers after close: %w", ErrSyntax)
		}
	case 'A':
		return 0, fmt.Errorf("arc command: %w", ErrUnsupported)
	default:
		return 0, fmt.Errorf("unknown command %q: %w", cmd, ErrSyntax)
	}
	return cmd, nil
}

func (p *pathParser) args(n int) ([]float64, error) {
	if p.pos+n > len(p.toks) {
		return nil, fmt.Errorf("expected %d numbers: %w", n, ErrSyntax)
	}
	out := make([]float64, n)
	for i := range n {
		t := p.toks[p.pos+i]
		if !t.isNum {
			return nil, fmt.Errorf("expected %d numbers, got %q: %w", n, t.letter, ErrSyntax)
		}
		out[i] = t.num
	}
	p.pos += n
	return out, nil
}

func (p *pathParser) moveTo(pt geometry.Point) {
	p.paths = append(p.paths, geometry.Path{pt})
	p.cur, p.start = pt, pt
	p.open = true
	p.prevCubic, p.prevQuad = nil, nil
}

// ensureOpen starts a new subpath at the last start point when drawing
// continues after a close.
func (p *pathParser) ensureOpen() {
	if !p.open {
		p.moveTo(p.start)
	}
}

func (p *pathParser) appendSeg(seg [3]geometry.Point) {
	p.ensureOpen()
	last := len(p.paths) - 1
	p.paths[last] = append(p.paths[last], seg[:]...)
	p.cur = seg[2]
}

func (p *pathParser) lineTo(pt geometry.Point) {
	p.appendSeg(geometry.LineSegment(p.cur, pt))
	p.prevCubic, p.prevQuad = nil, nil
}

func (p *pathParser) cubicTo(c1, c2, end geometry.Point) {
	p.appendSeg([3]geometry.Point{c1, c2, end})
	p.prevCubic, p.prevQuad = &c2, nil
}

func (p *pathParser) quadTo(c, end geometry.Point) {
	p.appendSeg(geometry.QuadSegment(p.cur, c, end))
	p.prevCubic, p.prevQuad = nil, &c
}

func (p *pathParser) closePath() {
	if !p.open {
		return
	}
	if !p.cur.Near(p.start, 1e-12) {
		p.lineTo(p.start)
	}
	p.cur = p.start
	p.open = false
	p.prevCubic, p.prevQuad = nil, nil
}
