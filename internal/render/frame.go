// Package render walks a scene onto a drawing surface and provides a surface
// that records the walk as draw commands for a browser canvas.
package render

import (
	"github.com/inamate/sceneview/internal/geom"
	"github.com/inamate/sceneview/internal/scene"
)

// ItemTracker is implemented by surfaces that want to know which item the
// following primitives belong to.
type ItemTracker interface {
	BeginItem(id string)
	EndItem()
}

// Frame paints every visible item of sc onto s in ascending z-order, each
// under its composed scene transform, inside the view transform.
func Frame(s scene.Surface, view geom.Matrix2D, sc *scene.Scene) {
	tracker, _ := s.(ItemTracker)

	s.PushTransform(view)
	for _, it := range sc.Items() {
		if !it.IsVisible() {
			continue
		}
		if tracker != nil {
			tracker.BeginItem(it.ID())
		}
		s.PushTransform(it.SceneTransform())
		it.Paint(s)
		s.Pop()
		if tracker != nil {
			tracker.EndItem()
		}
	}
	s.Pop()
}
