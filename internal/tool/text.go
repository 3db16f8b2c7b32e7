package tool

import (
	"github.com/inamate/sceneview/internal/fonts"
	"github.com/inamate/sceneview/internal/geom"
	"github.com/inamate/sceneview/internal/input"
	"github.com/inamate/sceneview/internal/scene"
)

// DefaultText is the string placed by a new text tool.
const DefaultText = "Text"

// TextTool places a text item at every click. It has no gesture state.
type TextTool struct {
	scene *scene.Scene

	Text  string
	Font  fonts.Spec
	Color string
}

// NewText returns the text tool with the default text and font.
func NewText(s *scene.Scene) *TextTool {
	return &TextTool{
		scene: s,
		Text:  DefaultText,
		Font:  fonts.Spec{Size: fonts.DefaultSize},
		Color: scene.Black,
	}
}

func (t *TextTool) Name() string  { return NameText }
func (t *TextTool) Drawing() bool { return false }

func (t *TextTool) OnPointerDown(p geom.Point, _ input.Modifiers) {
	txt := scene.NewText(t.Text)
	txt.Font = t.Font
	txt.Color = t.Color

	it := scene.NewItem(txt)
	it.SetPosition(p)
	it.SetZValue(CommittedZ)
	t.scene.AddItem(it)
}

func (t *TextTool) OnPointerMove(geom.Point) {}
func (t *TextTool) OnPointerUp(geom.Point)   {}
func (t *TextTool) Cancel()                  {}
