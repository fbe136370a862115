package document

import (
	"github.com/inamate/animlib/internal/animation"
	"github.com/inamate/animlib/internal/ease"
	"github.com/inamate/animlib/internal/geometry"
)

// NewSampleScene returns a short scene exercising every animation kind.
func NewSampleScene() *Scene {
	width := 0.08
	s := &Scene{
		Name:       "Sample",
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		FPS:        30,
		Scale:      DefaultScale,
		Background: "#1a1a2e",
		Objects: []Object{
			{
				ID:        "circle",
				Kind:      ObjectCircle,
				Radius:    1.5,
				Transform: Transform{X: -3},
				Style:     Style{Fill: "BLUE_E", Stroke: "BLUE_A", StrokeWidth: &width},
			},
			{
				ID:        "square",
				Kind:      ObjectRect,
				Width:     3,
				Height:    3,
				Transform: Transform{X: 3, R: 15},
				Style:     Style{Fill: "GOLD_D", Stroke: "GOLD_A", StrokeWidth: &width},
			},
			{
				ID:        "underline",
				Kind:      ObjectLine,
				Points:    []geometry.Point{{X: -5, Y: -3}, {X: 5, Y: -3}},
				Style:     Style{Stroke: "WHITE", StrokeWidth: &width},
			},
			{
				ID:        "title",
				Kind:      ObjectText,
				Text:      "animlib",
				Size:      1,
				Transform: Transform{Y: 3},
				Style:     Style{Fill: "WHITE"},
			},
		},
		Steps: []Step{
			{Action: ActionAnimate, Animations: []AnimationSpec{
				{Kind: animation.KindFadeIn, Targets: []string{"circle"}, Easing: ease.OutQuad},
				{Kind: animation.KindUnveil, Targets: []string{"title"}, Direction: animation.Left},
			}},
			{Action: ActionWait, Seconds: 0.5},
			{Action: ActionAnimate, Animations: []AnimationSpec{
				{Kind: animation.KindTransform, Start: []string{"circle"}, Targets: []string{"square"}, Duration: 1.5},
				{Kind: animation.KindUnveil, Targets: []string{"underline"}, Direction: animation.Right},
			}},
			{Action: ActionWait, Seconds: 0.5},
			{Action: ActionAnimate, Animations: []AnimationSpec{
				{Kind: animation.KindHide, Targets: []string{"title"}, Direction: animation.Top},
				{Kind: animation.KindFadeOut, Targets: []string{"square", "underline"}},
			}},
		},
	}
	return s
}
