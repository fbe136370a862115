package svgpath

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	gl "github.com/rustyoz/genericlexer"
)

// token is a command letter or a number of an attribute value.
type token struct {
	letter rune
	num    float64
	isNum  bool
}

// tokenize lexes an attribute value into letters and numbers, dropping
// separators.
func tokenize(name, s string) ([]token, error) {
	in, err := lexable(name, s)
	if err != nil {
		return nil, err
	}
	l, items := gl.Lex(name, in)
	// The lexer sends a second EOS before closing its channel.
	defer func() {
		for range items {
		}
	}()

	var out []token
	for {
		i := l.NextItem()
		switch i.Type {
		case gl.ItemEOS:
			return out, nil
		case gl.ItemError:
			return nil, fmt.Errorf("lex %s: %s: %w", name, i.Value, ErrSyntax)
		case gl.ItemLetter, gl.ItemWord:
			for _, r := range i.Value {
				out = append(out, token{letter: fromLexer(r)})
			}
		case gl.ItemNumber:
			v, err := strconv.ParseFloat(i.Value, 64)
			if err != nil {
				return nil, fmt.Errorf("lex %s: number %q: %w", name, i.Value, ErrSyntax)
			}
			out = append(out, token{num: v, isNum: true})
		}
	}
}

// lexable rewrites s into the subset the lexer accepts. The lexer has no
// v in its letter set, stops at a number starting with a dot and only
// knows a lower case exponent. u never occurs in path data, so it stands
// in for v.
func lexable(name, s string) (string, error) {
	var (
		b      strings.Builder
		inNum  bool
		numDot bool
		prev   rune
	)
	b.Grow(len(s) + 8)
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			if !inNum {
				inNum, numDot = true, false
			}
			b.WriteRune(r)
		case r == '.':
			switch {
			case !inNum:
				b.WriteString("0.")
			case numDot:
				b.WriteString(" 0.")
			default:
				b.WriteRune(r)
			}
			inNum, numDot = true, true
		case r == '-' || r == '+':
			b.WriteRune(r)
			if !inNum || prev != 'e' {
				inNum, numDot = true, false
			}
		case (r == 'e' || r == 'E') && inNum && (prev >= '0' && prev <= '9' || prev == '.'):
			b.WriteRune('e')
			numDot = true
			r = 'e'
		case r == 'u' || r == 'U' || r > unicode.MaxASCII:
			return "", fmt.Errorf("lex %s: unexpected %q: %w", name, r, ErrSyntax)
		case r == 'v':
			b.WriteRune('u')
			inNum = false
		case r == 'V':
			b.WriteRune('U')
			inNum = false
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == ',' || r == '(' || r == ')':
			b.WriteRune(r)
			inNum = false
		case unicode.IsSpace(r):
			b.WriteRune(' ')
			inNum = false
		default:
			return "", fmt.Errorf("lex %s: unexpected %q: %w", name, r, ErrSyntax)
		}
		prev = r
	}
	return b.String(), nil
}

func fromLexer(r rune) rune {
	switch r {
	case 'u':
		return 'v'
	case 'U':
		return 'V'
	}
	return r
}

// numbers lexes a list of numbers such as a points attribute.
func numbers(name, s string) ([]float64, error) {
	toks, err := tokenize(name, s)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(toks))
	for _, t := range toks {
		if !t.isNum {
			return nil, fmt.Errorf("%s: unexpected %q: %w", name, t.letter, ErrSyntax)
		}
		out = append(out, t.num)
	}
	return out, nil
}
