package document

import (
	"github.com/inamate/animlib/internal/animation"
	"github.com/inamate/animlib/internal/ease"
	"github.com/inamate/animlib/internal/geometry"
)

// Scene is a render script: the stage settings, the objects it may show
// and the steps that animate them.
type Scene struct {
	Name       string   `json:"name" yaml:"name"`
	Width      int      `json:"width" yaml:"width"`
	Height     int      `json:"height" yaml:"height"`
	FPS        int      `json:"fps" yaml:"fps"`
	Scale      float64  `json:"scale" yaml:"scale"` // pixels per scene unit
	Background string   `json:"background" yaml:"background"`
	Seed       uint64   `json:"seed,omitempty" yaml:"seed,omitempty"`
	Objects    []Object `json:"objects" yaml:"objects"`
	Steps      []Step   `json:"steps" yaml:"steps"`
}

type ObjectKind string

const (
	ObjectRect     ObjectKind = "rect"
	ObjectCircle   ObjectKind = "circle"
	ObjectEllipse  ObjectKind = "ellipse"
	ObjectLine     ObjectKind = "line"
	ObjectPolygon  ObjectKind = "polygon"
	ObjectPolyline ObjectKind = "polyline"
	ObjectSVG      ObjectKind = "svg"
	ObjectText     ObjectKind = "text"
)

// Transform places an object after it is built around the origin.
type Transform struct {
	X  float64 `json:"x" yaml:"x"`
	Y  float64 `json:"y" yaml:"y"`
	SX float64 `json:"sx,omitempty" yaml:"sx,omitempty"`
	SY float64 `json:"sy,omitempty" yaml:"sy,omitempty"`
	R  float64 `json:"r,omitempty" yaml:"r,omitempty"` // degrees, counter-clockwise
}

// Style overrides the default paint. Empty fields keep the default.
type Style struct {
	Fill        string   `json:"fill,omitempty" yaml:"fill,omitempty"`
	Stroke      string   `json:"stroke,omitempty" yaml:"stroke,omitempty"`
	StrokeWidth *float64 `json:"strokeWidth,omitempty" yaml:"strokeWidth,omitempty"`
	Opacity     *float64 `json:"opacity,omitempty" yaml:"opacity,omitempty"`
}

// Object describes one geometry. Which shape fields apply depends on Kind.
type Object struct {
	ID   string     `json:"id" yaml:"id"`
	Kind ObjectKind `json:"kind" yaml:"kind"`

	Width  float64          `json:"width,omitempty" yaml:"width,omitempty"`
	Height float64          `json:"height,omitempty" yaml:"height,omitempty"`
	Radius float64          `json:"radius,omitempty" yaml:"radius,omitempty"`
	RX     float64          `json:"rx,omitempty" yaml:"rx,omitempty"`
	RY     float64          `json:"ry,omitempty" yaml:"ry,omitempty"`
	Points []geometry.Point `json:"points,omitempty" yaml:"points,omitempty"`

	// SVG holds inline markup; Asset names an uploaded or on-disk file: an
	// SVG document for svg objects, a TrueType font for text.
	SVG   string `json:"svg,omitempty" yaml:"svg,omitempty"`
	Asset string `json:"asset,omitempty" yaml:"asset,omitempty"`
	// Size is the target height in scene units for svg and text objects.
	Size float64 `json:"size,omitempty" yaml:"size,omitempty"`

	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	Transform Transform `json:"transform" yaml:"transform"`
	Style     Style     `json:"style" yaml:"style"`
}

type StepAction string

const (
	ActionAnimate StepAction = "animate"
	ActionWait    StepAction = "wait"
	ActionAdd     StepAction = "add"
	ActionRemove  StepAction = "remove"
)

// Step is one instruction for the stage.
type Step struct {
	Action     StepAction      `json:"action" yaml:"action"`
	Animations []AnimationSpec `json:"animations,omitempty" yaml:"animations,omitempty"`
	Seconds    float64         `json:"seconds,omitempty" yaml:"seconds,omitempty"`
	Objects    []string        `json:"objects,omitempty" yaml:"objects,omitempty"`
}

// AnimationSpec references scene objects by id.
type AnimationSpec struct {
	Kind      animation.Kind      `json:"kind" yaml:"kind"`
	Targets   []string            `json:"targets" yaml:"targets"`
	Start     []string            `json:"start,omitempty" yaml:"start,omitempty"`
	Duration  float64             `json:"duration,omitempty" yaml:"duration,omitempty"`
	Easing    ease.Easing         `json:"easing,omitempty" yaml:"easing,omitempty"`
	Direction animation.Direction `json:"direction,omitempty" yaml:"direction,omitempty"`
	Seed      uint64              `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// TotalSeconds estimates the running time: the longest animation of every
// animate step plus every wait.
func (s *Scene) TotalSeconds() float64 {
	total := 0.0
	for _, st := range s.Steps {
		switch st.Action {
		case ActionWait:
			total += st.Seconds
		case ActionAnimate:
			longest := 0.0
			for _, a := range st.Animations {
				d := a.Duration
				if d == 0 {
					d = animation.DefaultDuration
				}
				longest = max(longest, d)
			}
			total += longest
		}
	}
	return total
}
