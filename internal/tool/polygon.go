package tool

import (
	"github.com/inamate/sceneview/internal/geom"
	"github.com/inamate/sceneview/internal/input"
	"github.com/inamate/sceneview/internal/scene"
)

var (
	polygonStyle = scene.Style{Fill: scene.Transparent, Stroke: "#800080", StrokeWidth: strokeWidth}
	rubberBand   = scene.Pen{Color: "#80008080", Width: strokeWidth}
)

// PolygonTool builds a polygon one click per vertex. A click with the finish
// modifier held adds a last vertex and closes the polygon.
//
// The polygon item lives in the scene while it is being built; only the
// rubber band from the last vertex to the pointer is a preview.
type PolygonTool struct {
	scene  *scene.Scene
	finish input.Modifiers

	polygon *scene.Item
	band    *scene.Item
	first   geom.Point
	last    geom.Point
}

// NewPolygon returns the polygon tool, finishing on Control-click.
func NewPolygon(s *scene.Scene) *PolygonTool {
	return &PolygonTool{scene: s, finish: input.ModControl}
}

// SetFinishModifier changes the modifier set that closes the polygon. The
// pressed modifiers must match it exactly.
func (t *PolygonTool) SetFinishModifier(m input.Modifiers) { t.finish = m }

func (t *PolygonTool) Name() string  { return NamePolygon }
func (t *PolygonTool) Drawing() bool { return t.polygon != nil }

func (t *PolygonTool) OnPointerDown(p geom.Point, mods input.Modifiers) {
	if mods == t.finish {
		if t.polygon != nil {
			t.addVertex(p)
		}
		t.complete()
		return
	}

	if t.polygon == nil {
		t.start(p)
		return
	}

	if !t.addVertex(p) {
		return
	}
	t.last = p
	t.band.Update(func(it *scene.Item) {
		it.SetPosition(p)
		it.Shape().(*scene.Line).End = geom.Point{}
	})
}

func (t *PolygonTool) start(p geom.Point) {
	t.first, t.last = p, p

	pg := scene.NewPolygon(geom.Point{})
	pg.Closed = false
	pg.Style = polygonStyle
	t.polygon = scene.NewItem(pg)
	t.polygon.SetPosition(p)
	t.polygon.SetZValue(CommittedZ)
	t.scene.AddItem(t.polygon)

	t.band = newLineItem(p, geom.Point{}, rubberBand, PreviewZ)
	t.scene.AddItem(t.band)
}

// addVertex appends p relative to the first vertex. Offsets that overflow
// are refused.
func (t *PolygonTool) addVertex(p geom.Point) bool {
	rel := p.Sub(t.first)
	if !geom.Finite(rel.X, rel.Y) {
		return false
	}
	t.polygon.Update(func(it *scene.Item) {
		it.Shape().(*scene.Polygon).AddPoint(rel)
	})
	return true
}

func (t *PolygonTool) OnPointerMove(p geom.Point) {
	if t.band == nil {
		return
	}
	d := p.Sub(t.last)
	t.band.Update(func(it *scene.Item) {
		it.Shape().(*scene.Line).End = d
	})
}

func (t *PolygonTool) OnPointerUp(geom.Point) {}

// complete closes the polygon and leaves it in the scene.
func (t *PolygonTool) complete() {
	if t.polygon != nil {
		t.polygon.Update(func(it *scene.Item) {
			it.Shape().(*scene.Polygon).Closed = true
		})
	}
	t.reset()
}

// Cancel removes the rubber band and the unfinished polygon.
func (t *PolygonTool) Cancel() {
	if t.polygon != nil {
		t.scene.RemoveItem(t.polygon)
	}
	t.reset()
}

func (t *PolygonTool) reset() {
	if t.band != nil {
		t.scene.RemoveItem(t.band)
	}
	t.polygon, t.band = nil, nil
	t.first, t.last = geom.Point{}, geom.Point{}
}
