// Package ease provides the fixed catalog of easing curves that drive
// every animation. An Easing is a comparable value: two references to the
// same named curve are equal, and evaluation is a separate call.
package ease

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrUnknownEasing = errors.New("unknown easing")

type kind uint8

const (
	// zero is reserved so that the zero Easing resolves to Default.
	kindUnset kind = iota
	kindLinear
	kindInQuad
	kindOutQuad
	kindInOutQuad
	kindInCubic
	kindOutCubic
	kindInOutCubic
	kindInQuart
	kindOutQuart
	kindInOutQuart
	kindInOrder
	kindOutOrder
	kindInOutOrder
)

var names = map[kind]string{
	kindLinear:     "linear",
	kindInQuad:     "inQuad",
	kindOutQuad:    "outQuad",
	kindInOutQuad:  "inOutQuad",
	kindInCubic:    "inCubic",
	kindOutCubic:   "outCubic",
	kindInOutCubic: "inOutCubic",
	kindInQuart:    "inQuart",
	kindOutQuart:   "outQuart",
	kindInOutQuart: "inOutQuart",
	kindInOrder:    "inOrder",
	kindOutOrder:   "outOrder",
	kindInOutOrder: "inOutOrder",
}

// Easing names one curve of the catalog. The zero value behaves as Default.
type Easing struct {
	kind  kind
	order float64
}

var (
	Linear     = Easing{kind: kindLinear}
	InQuad     = Easing{kind: kindInQuad}
	OutQuad    = Easing{kind: kindOutQuad}
	InOutQuad  = Easing{kind: kindInOutQuad}
	InCubic    = Easing{kind: kindInCubic}
	OutCubic   = Easing{kind: kindOutCubic}
	InOutCubic = Easing{kind: kindInOutCubic}
	InQuart    = Easing{kind: kindInQuart}
	OutQuart   = Easing{kind: kindOutQuart}
	InOutQuart = Easing{kind: kindInOutQuart}

	Default = InOutQuad
)

// Catalog lists every fixed curve, in declaration order.
var Catalog = []Easing{
	Linear,
	InQuad, OutQuad, InOutQuad,
	InCubic, OutCubic, InOutCubic,
	InQuart, OutQuart, InOutQuart,
}

// InOrder is the power curve p^order.
func InOrder(order float64) Easing { return Easing{kind: kindInOrder, order: order} }

// OutOrder mirrors InOrder: 1 - |p-1|^order.
func OutOrder(order float64) Easing { return Easing{kind: kindOutOrder, order: order} }

// InOutOrder joins InOrder and OutOrder at p = 0.5.
func InOutOrder(order float64) Easing { return Easing{kind: kindInOutOrder, order: order} }

// Resolve returns e, or Default for the zero value.
func (e Easing) Resolve() Easing {
	if e.kind == kindUnset {
		return Default
	}
	return e
}

// IsZero reports whether e is the unset value.
func (e Easing) IsZero() bool { return e.kind == kindUnset }

// Order returns the exponent of the parametrized family, or 0.
func (e Easing) Order() float64 { return e.order }

// Valid reports whether e names a catalog curve with a usable order.
func (e Easing) Valid() bool {
	switch e.kind {
	case kindInOrder, kindOutOrder, kindInOutOrder:
		return e.order > 0 && !math.IsInf(e.order, 0) && !math.IsNaN(e.order)
	default:
		_, ok := names[e.Resolve().kind]
		return ok
	}
}

// Ease maps progress p in [0, 1] to eased progress.
func (e Easing) Ease(p float64) float64 {
	switch e.Resolve().kind {
	case kindLinear:
		return p
	case kindInQuad:
		return p * p
	case kindOutQuad:
		return p * (2 - p)
	case kindInOutQuad:
		if p < 0.5 {
			return 2 * p * p
		}
		return (4-2*p)*p - 1
	case kindInCubic:
		return p * p * p
	case kindOutCubic:
		return p * (p*(p-3) + 3)
	case kindInOutCubic:
		if p < 0.5 {
			return 4 * p * p * p
		}
		return p*(p*(4*p-12)+12) - 3
	case kindInQuart:
		return p * p * p * p
	case kindOutQuart:
		return p * (p*(p*(4-p)-6) + 4)
	case kindInOutQuart:
		if p < 0.5 {
			return 8 * p * p * p * p
		}
		return p*(p*(p*(32-8*p)-48)+32) - 7
	case kindInOrder:
		return math.Pow(p, e.order)
	case kindOutOrder:
		return 1 - math.Pow(math.Abs(p-1), e.order)
	case kindInOutOrder:
		if p <= 0 || p >= 1 {
			return math.Max(0, math.Min(1, p))
		}
		if p < 0.5 {
			return p * math.Pow(2*p, e.order-1)
		}
		return 1 - math.Abs(p-1)*math.Pow(math.Abs(2*p-2), e.order-1)
	}
	return p
}

// Name returns the catalog name, with the order in parentheses for the
// parametrized family, e.g. "inOutQuad" or "inOrder(2.5)".
func (e Easing) Name() string {
	e = e.Resolve()
	name, ok := names[e.kind]
	if !ok {
		return "unknown"
	}
	switch e.kind {
	case kindInOrder, kindOutOrder, kindInOutOrder:
		return name + "(" + strconv.FormatFloat(e.order, 'g', -1, 64) + ")"
	}
	return name
}

func (e Easing) String() string { return e.Name() }

// Parse resolves a curve by name. Matching ignores case, '_' and '-', so
// "IN_OUT_QUAD", "in-out-quad" and "inOutQuad" are the same curve.
// The parametrized family takes its order in parentheses: "outOrder(3)".
// An empty name yields the zero Easing, which resolves to Default.
func Parse(s string) (Easing, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Easing{}, nil
	}
	base, arg, hasArg := strings.Cut(raw, "(")
	key := normalize(base)
	for k, name := range names {
		if normalize(name) != key {
			continue
		}
		e := Easing{kind: k}
		switch k {
		case kindInOrder, kindOutOrder, kindInOutOrder:
			if !hasArg || !strings.HasSuffix(arg, ")") {
				return Easing{}, fmt.Errorf("parse easing %q: missing order: %w", s, ErrUnknownEasing)
			}
			order, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(arg, ")")), 64)
			if err != nil {
				return Easing{}, fmt.Errorf("parse easing %q: %w", s, err)
			}
			e.order = order
			if !e.Valid() {
				return Easing{}, fmt.Errorf("parse easing %q: order must be positive: %w", s, ErrUnknownEasing)
			}
		default:
			if hasArg {
				return Easing{}, fmt.Errorf("parse easing %q: unexpected order: %w", s, ErrUnknownEasing)
			}
		}
		return e, nil
	}
	return Easing{}, fmt.Errorf("parse easing %q: %w", s, ErrUnknownEasing)
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)
}

// MarshalText implements encoding.TextMarshaler.
func (e Easing) MarshalText() ([]byte, error) {
	if e.IsZero() {
		return []byte{}, nil
	}
	return []byte(e.Name()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Easing) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
