package tool

import (
	"github.com/inamate/sceneview/internal/geom"
	"github.com/inamate/sceneview/internal/input"
	"github.com/inamate/sceneview/internal/scene"
)

// boxStyle pairs the preview and committed styles of a box tool.
type boxStyle struct {
	preview   scene.Style
	committed scene.Style
}

var (
	rectangleStyle = boxStyle{
		preview:   scene.Style{Fill: "#ff000064", Stroke: "#ff0000", StrokeWidth: strokeWidth},
		committed: scene.Style{Fill: scene.Transparent, Stroke: "#ff0000", StrokeWidth: strokeWidth},
	}
	ellipseStyle = boxStyle{
		preview:   scene.Style{Fill: "#0000ff64", Stroke: "#0000ff", StrokeWidth: strokeWidth},
		committed: scene.Style{Fill: scene.Transparent, Stroke: "#0000ff", StrokeWidth: strokeWidth},
	}
)

// BoxTool draws an axis-aligned rectangle or ellipse with two clicks: the
// first click anchors one corner, the second commits the box spanned by the
// anchor and the click.
type BoxTool struct {
	name  string
	scene *scene.Scene
	style boxStyle
	build func(w, h float64, style scene.Style) scene.Shape

	anchor  geom.Point
	preview *scene.Item
}

// NewRectangle returns the rectangle tool.
func NewRectangle(s *scene.Scene) *BoxTool {
	return &BoxTool{
		name:  NameRectangle,
		scene: s,
		style: rectangleStyle,
		build: func(w, h float64, style scene.Style) scene.Shape {
			r := scene.NewRectangle(w, h)
			r.Style = style
			return r
		},
	}
}

// NewEllipse returns the ellipse tool.
func NewEllipse(s *scene.Scene) *BoxTool {
	return &BoxTool{
		name:  NameEllipse,
		scene: s,
		style: ellipseStyle,
		build: func(w, h float64, style scene.Style) scene.Shape {
			e := scene.NewEllipse(w, h)
			e.Style = style
			return e
		},
	}
}

func (t *BoxTool) Name() string  { return t.name }
func (t *BoxTool) Drawing() bool { return t.preview != nil }

func (t *BoxTool) OnPointerDown(p geom.Point, _ input.Modifiers) {
	if t.preview == nil {
		t.anchor = p
		t.preview = scene.NewItem(t.build(0, 0, t.style.preview))
		t.preview.SetPosition(p)
		t.preview.SetZValue(PreviewZ)
		t.scene.AddItem(t.preview)
		return
	}

	box := span(t.anchor, p)
	if box.Width >= MinExtent && box.Height >= MinExtent && geom.Finite(box.Width, box.Height) {
		it := scene.NewItem(t.build(box.Width, box.Height, t.style.committed))
		it.SetPosition(box.TopLeft())
		it.SetZValue(CommittedZ)
		t.scene.AddItem(it)
	}
	t.Cancel()
}

func (t *BoxTool) OnPointerMove(p geom.Point) {
	if t.preview == nil {
		return
	}
	box := span(t.anchor, p)
	t.preview.Update(func(it *scene.Item) {
		it.SetPosition(box.TopLeft())
		switch sh := it.Shape().(type) {
		case *scene.Rectangle:
			sh.Width, sh.Height = box.Width, box.Height
		case *scene.Ellipse:
			sh.Width, sh.Height = box.Width, box.Height
		}
	})
}

func (t *BoxTool) OnPointerUp(geom.Point) {}

func (t *BoxTool) Cancel() {
	if t.preview != nil {
		t.scene.RemoveItem(t.preview)
		t.preview = nil
	}
	t.anchor = geom.Point{}
}
