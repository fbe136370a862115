package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/inamate/animlib/internal/animation"
	"github.com/inamate/animlib/internal/geometry"
)

var ErrInvalidScene = errors.New("invalid scene")

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

const (
	DefaultWidth      = 1280
	DefaultHeight     = 720
	DefaultScale      = 80.0
	DefaultBackground = "#000000"
)

// FormatFromPath picks a format from a file extension. Unknown
// extensions are treated as YAML, which also accepts JSON.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// FormatFromContentType maps an HTTP content type to a format.
func FormatFromContentType(ct string) Format {
	if strings.Contains(ct, "json") {
		return FormatJSON
	}
	return FormatYAML
}

// Decode parses, defaults and validates a scene script.
func Decode(data []byte, format Format) (*Scene, error) {
	return DecodeWithFPS(data, format, 0)
}

// DecodeWithFPS is Decode with a caller-chosen frame rate for scripts
// that set none. fps <= 0 selects the package default.
func DecodeWithFPS(data []byte, format Format, fps int) (*Scene, error) {
	var s Scene
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("decode json scene: %w: %w", ErrInvalidScene, err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("decode yaml scene: %w: %w", ErrInvalidScene, err)
		}
	default:
		return nil, fmt.Errorf("decode scene: unknown format %q: %w", format, ErrInvalidScene)
	}
	if s.FPS == 0 && fps > 0 {
		s.FPS = fps
	}
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Encode serializes the scene in the given format.
func Encode(s *Scene, format Format) ([]byte, error) {
	if format == FormatJSON {
		return json.MarshalIndent(s, "", "  ")
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode yaml scene: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml scene: %w", err)
	}
	return buf.Bytes(), nil
}

// ApplyDefaults fills unset stage settings.
func (s *Scene) ApplyDefaults() {
	if s.Width == 0 {
		s.Width = DefaultWidth
	}
	if s.Height == 0 {
		s.Height = DefaultHeight
	}
	if s.FPS == 0 {
		s.FPS = animation.DefaultFPS
	}
	if s.Scale == 0 {
		s.Scale = DefaultScale
	}
	if s.Background == "" {
		s.Background = DefaultBackground
	}
}

// Validate checks stage settings, object parameters and every reference a
// step makes.
func (s *Scene) Validate() error {
	if s.Width <= 0 || s.Height <= 0 || s.Width%2 != 0 || s.Height%2 != 0 {
		return invalid("size %dx%d must be positive and even", s.Width, s.Height)
	}
	if s.FPS <= 0 {
		return invalid("fps %d", s.FPS)
	}
	if s.Scale <= 0 {
		return invalid("scale %v", s.Scale)
	}
	if _, err := geometry.ParseColor(s.Background); err != nil {
		return invalid("background: %v", err)
	}

	ids := make(map[string]bool, len(s.Objects))
	for i, o := range s.Objects {
		if o.ID == "" {
			return invalid("object %d has no id", i)
		}
		if ids[o.ID] {
			return invalid("duplicate object id %q", o.ID)
		}
		ids[o.ID] = true
		if err := o.validate(); err != nil {
			return err
		}
	}

	for i, st := range s.Steps {
		if err := st.validate(ids); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

func (o Object) validate() error {
	switch o.Kind {
	case ObjectRect:
		if o.Width <= 0 || o.Height <= 0 {
			return invalid("%s: rect needs positive width and height", o.ID)
		}
	case ObjectCircle:
		if o.Radius <= 0 {
			return invalid("%s: circle needs a positive radius", o.ID)
		}
	case ObjectEllipse:
		if o.RX <= 0 || o.RY <= 0 {
			return invalid("%s: ellipse needs positive rx and ry", o.ID)
		}
	case ObjectLine:
		if len(o.Points) != 2 {
			return invalid("%s: line needs exactly 2 points", o.ID)
		}
	case ObjectPolygon, ObjectPolyline:
		if len(o.Points) < 2 {
			return invalid("%s: %s needs at least 2 points", o.ID, o.Kind)
		}
	case ObjectSVG:
		if (o.SVG == "") == (o.Asset == "") {
			return invalid("%s: svg needs exactly one of svg or asset", o.ID)
		}
	case ObjectText:
		if strings.TrimSpace(o.Text) == "" {
			return invalid("%s: text is empty", o.ID)
		}
	default:
		return invalid("%s: unknown kind %q", o.ID, o.Kind)
	}
	if o.Size < 0 {
		return invalid("%s: negative size", o.ID)
	}
	for name, c := range map[string]string{"fill": o.Style.Fill, "stroke": o.Style.Stroke} {
		if c == "" {
			continue
		}
		if _, err := geometry.ParseColor(c); err != nil {
			return invalid("%s: %s: %v", o.ID, name, err)
		}
	}
	if w := o.Style.StrokeWidth; w != nil && *w < 0 {
		return invalid("%s: negative stroke width", o.ID)
	}
	if op := o.Style.Opacity; op != nil && (*op < 0 || *op > 1) {
		return invalid("%s: opacity %v outside [0, 1]", o.ID, *op)
	}
	return nil
}

func (st Step) validate(ids map[string]bool) error {
	known := func(refs []string) error {
		for _, id := range refs {
			if !ids[id] {
				return invalid("unknown object %q", id)
			}
		}
		return nil
	}
	switch st.Action {
	case ActionAnimate:
		if len(st.Animations) == 0 {
			return invalid("animate step without animations")
		}
		for _, a := range st.Animations {
			if err := a.validate(); err != nil {
				return err
			}
			if err := known(a.Targets); err != nil {
				return err
			}
			if err := known(a.Start); err != nil {
				return err
			}
		}
	case ActionWait:
		if st.Seconds <= 0 {
			return invalid("wait needs positive seconds")
		}
	case ActionAdd, ActionRemove:
		if len(st.Objects) == 0 {
			return invalid("%s step without objects", st.Action)
		}
		return known(st.Objects)
	default:
		return invalid("unknown action %q", st.Action)
	}
	return nil
}

func (a AnimationSpec) validate() error {
	if len(a.Targets) == 0 {
		return invalid("%s without targets", a.Kind)
	}
	if a.Duration < 0 {
		return invalid("%s: negative duration", a.Kind)
	}
	if !a.Easing.Valid() {
		return invalid("%s: easing %s", a.Kind, a.Easing)
	}
	switch a.Kind {
	case animation.KindTransform:
		if len(a.Start) != 1 || len(a.Targets) != 1 {
			return invalid("transform needs one start and one target")
		}
	case animation.KindFadeIn, animation.KindFadeOut, animation.KindUnveil, animation.KindHide:
		if len(a.Start) > 0 {
			return invalid("%s does not take start objects", a.Kind)
		}
	default:
		return invalid("unknown animation kind %q", a.Kind)
	}
	if a.Direction != 0 && a.Kind != animation.KindUnveil && a.Kind != animation.KindHide {
		return invalid("%s does not take a direction", a.Kind)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidScene, fmt.Sprintf(format, args...))
}
