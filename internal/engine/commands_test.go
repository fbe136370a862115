package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/animlib/internal/geometry"
)

func TestCompile(t *testing.T) {
	s, err := NewStage(Options{})
	require.NoError(t, err)

	sq := geometry.NewSquare(2)
	sq.SetFillGradient(geometry.NewLinearGradient(geometry.Pt(-1, 0), geometry.Pt(1, 0)).
		AddStop(0, geometry.White).
		AddStop(1, geometry.Transparent))
	line := geometry.NewLine(geometry.Pt(0, 0), geometry.Pt(1, 0))
	hidden := geometry.NewCircle(1)
	hidden.Hide()

	s.Add(sq, line, hidden)
	s.Name(sq, "sq")

	vp := Viewport{Width: 100, Height: 50, Scale: 10, Background: geometry.Black}
	cmds := s.Compile(vp)
	require.Len(t, cmds, 3)

	assert.Equal(t, "clear", cmds[0].Op)
	assert.Equal(t, "#000000FF", cmds[0].Fill)

	assert.Equal(t, "sq", cmds[1].ObjectID)
	assert.Equal(t, []float64{10, 0, 0, -10, 50, 25}, cmds[1].Transform)
	assert.Empty(t, cmds[1].Fill)
	require.NotNil(t, cmds[1].FillGradient)
	assert.Len(t, cmds[1].FillGradient.Stops, 2)
	// M, four C, Z
	assert.Len(t, cmds[1].Path, 6)
	assert.Equal(t, PathCommand{"Z"}, cmds[1].Path[5])

	// open line: M and C without Z
	assert.Len(t, cmds[2].Path, 2)
	assert.Equal(t, "#FFFFFF00", cmds[2].Fill)

	out, err := DrawCommandsToJSON(cmds)
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "path", decoded[1]["op"])
}

func TestSelectionBounds(t *testing.T) {
	s, err := NewStage(Options{})
	require.NoError(t, err)

	a := geometry.NewSquare(2)
	b := geometry.NewSquare(2)
	b.TranslateBy(geometry.Pt(4, 0))
	s.Add(a, b)
	s.Name(a, "a")
	s.Name(b, "b")

	assert.Equal(t, Bounds{X: -1, Y: -1, Width: 6, Height: 2}, s.SelectionBounds([]string{"a", "b"}))
	assert.Equal(t, Bounds{}, s.SelectionBounds([]string{"nope"}))
}
