package tool

import (
	"github.com/inamate/sceneview/internal/geom"
	"github.com/inamate/sceneview/internal/input"
	"github.com/inamate/sceneview/internal/scene"
)

var linePen = scene.Pen{Color: "#008000", Width: strokeWidth}

// LineTool draws a segment with two clicks. Items are positioned at the
// first click with the segment starting at their local origin.
type LineTool struct {
	scene *scene.Scene

	anchor  geom.Point
	preview *scene.Item
}

// NewLine returns the line tool.
func NewLine(s *scene.Scene) *LineTool {
	return &LineTool{scene: s}
}

func (t *LineTool) Name() string  { return NameLine }
func (t *LineTool) Drawing() bool { return t.preview != nil }

func newLineItem(at, end geom.Point, pen scene.Pen, z float64) *scene.Item {
	l := scene.NewLine(geom.Point{}, end)
	l.Pen = pen
	it := scene.NewItem(l)
	it.SetPosition(at)
	it.SetZValue(z)
	return it
}

func (t *LineTool) OnPointerDown(p geom.Point, _ input.Modifiers) {
	if t.preview == nil {
		t.anchor = p
		t.preview = newLineItem(p, geom.Point{}, linePen, PreviewZ)
		t.scene.AddItem(t.preview)
		return
	}

	d := p.Sub(t.anchor)
	if l := d.Len(); l >= MinExtent && geom.Finite(l) {
		t.scene.AddItem(newLineItem(t.anchor, d, linePen, CommittedZ))
	}
	t.Cancel()
}

func (t *LineTool) OnPointerMove(p geom.Point) {
	if t.preview == nil {
		return
	}
	d := p.Sub(t.anchor)
	t.preview.Update(func(it *scene.Item) {
		it.Shape().(*scene.Line).End = d
	})
}

func (t *LineTool) OnPointerUp(geom.Point) {}

func (t *LineTool) Cancel() {
	if t.preview != nil {
		t.scene.RemoveItem(t.preview)
		t.preview = nil
	}
	t.anchor = geom.Point{}
}
