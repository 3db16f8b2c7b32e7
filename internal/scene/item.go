package scene

import (
	"errors"

	"github.com/inamate/sceneview/internal/geom"
	"github.com/inamate/sceneview/internal/typeid"
)

// ErrParentCycle is returned when a parent assignment would make an item its
// own ancestor.
var ErrParentCycle = errors.New("parent assignment creates a cycle")

// maxParentDepth bounds every walk up the parent chain.
const maxParentDepth = 1024

// Item is a positioned, transformable shape. The local transform scales the
// shape uniformly, rotates it about the local origin and translates it to
// Position in the parent's space.
//
// Setters notify the owning scene. Changes to the shape's own fields must be
// made inside Update (or Scene.Mutate) so the scene hears about them.
type Item struct {
	id string

	position geom.Point
	rotation float64
	scale    float64
	zValue   float64

	visible  bool
	enabled  bool
	selected bool

	parent *Item
	scene  *Scene
	shape  Shape

	// seq orders items with equal z by insertion.
	seq      uint64
	updating int
	zDirty   bool
}

// NewItem wraps shape in a visible, enabled item at the origin.
func NewItem(shape Shape) *Item {
	return &Item{
		id:      typeid.NewItemID(),
		scale:   1,
		visible: true,
		enabled: true,
		shape:   shape,
	}
}

func (it *Item) ID() string           { return it.id }
func (it *Item) Shape() Shape         { return it.shape }
func (it *Item) Kind() Kind           { return it.shape.Kind() }
func (it *Item) Scene() *Scene        { return it.scene }
func (it *Item) Parent() *Item        { return it.parent }
func (it *Item) Position() geom.Point { return it.position }
func (it *Item) Rotation() float64    { return it.rotation }
func (it *Item) Scale() float64       { return it.scale }
func (it *Item) ZValue() float64      { return it.zValue }
func (it *Item) IsVisible() bool      { return it.visible }
func (it *Item) IsEnabled() bool      { return it.enabled }
func (it *Item) IsSelected() bool     { return it.selected }

func (it *Item) SetPosition(p geom.Point) {
	if it.position != p {
		it.position = p
		it.changed()
	}
}

// SetRotation sets the rotation in degrees.
func (it *Item) SetRotation(degrees float64) {
	if it.rotation != degrees {
		it.rotation = degrees
		it.changed()
	}
}

func (it *Item) SetScale(s float64) {
	if it.scale != s {
		it.scale = s
		it.changed()
	}
}

func (it *Item) SetZValue(z float64) {
	if it.zValue != z {
		it.zValue = z
		it.zDirty = true
		it.changed()
	}
}

func (it *Item) SetVisible(v bool) {
	if it.visible != v {
		it.visible = v
		it.changed()
	}
}

func (it *Item) SetEnabled(v bool) {
	if it.enabled != v {
		it.enabled = v
		it.changed()
	}
}

func (it *Item) SetSelected(v bool) {
	if it.selected != v {
		it.selected = v
		it.changed()
	}
}

// SetParent makes p the transform ancestor of it. A nil parent detaches.
func (it *Item) SetParent(p *Item) error {
	for anc, depth := p, 0; anc != nil; anc, depth = anc.parent, depth+1 {
		if anc == it || depth >= maxParentDepth {
			return ErrParentCycle
		}
	}
	if it.parent != p {
		it.parent = p
		it.changed()
	}
	return nil
}

// Update runs fn and then notifies the scene once. Use it to change shape
// geometry or several properties together.
func (it *Item) Update(fn func(it *Item)) {
	it.updating++
	fn(it)
	it.updating--
	it.changed()
}

func (it *Item) changed() {
	if it.updating > 0 {
		return
	}
	if it.scene != nil {
		it.scene.itemChanged(it)
	}
	it.zDirty = false
}

// LocalTransform maps local coordinates into the parent's space.
func (it *Item) LocalTransform() geom.Matrix2D {
	return geom.FromTransform(it.position.X, it.position.Y, it.scale, it.rotation)
}

// SceneTransform composes the local transform with every ancestor's, nearest
// ancestor first.
func (it *Item) SceneTransform() geom.Matrix2D {
	m := it.LocalTransform()
	for p, depth := it.parent, 0; p != nil && depth < maxParentDepth; p, depth = p.parent, depth+1 {
		m = p.LocalTransform().Multiply(m)
	}
	return m
}

// ScenePosition is the local origin in scene coordinates.
func (it *Item) ScenePosition() geom.Point {
	if it.parent == nil {
		return it.position
	}
	return it.parent.MapToScene(it.position)
}

// BoundingRect is the shape's bounds in local coordinates.
func (it *Item) BoundingRect() geom.Rect {
	return it.shape.LocalBounds()
}

// SceneBoundingRect is the axis-aligned envelope of the local bounds mapped to
// the scene.
func (it *Item) SceneBoundingRect() geom.Rect {
	return it.SceneTransform().TransformRect(it.BoundingRect())
}

// Contains hit tests a local point against the shape.
func (it *Item) Contains(local geom.Point) bool {
	return it.shape.ContainsLocal(local)
}

func (it *Item) MapToScene(p geom.Point) geom.Point {
	return it.SceneTransform().TransformPoint(p)
}

// MapFromScene returns p unchanged when the scene transform is singular.
func (it *Item) MapFromScene(p geom.Point) geom.Point {
	inv, ok := it.SceneTransform().Invert()
	if !ok {
		return p
	}
	return inv.TransformPoint(p)
}

func (it *Item) MapRectToScene(r geom.Rect) geom.Rect {
	return it.SceneTransform().TransformRect(r)
}

func (it *Item) MapRectFromScene(r geom.Rect) geom.Rect {
	inv, ok := it.SceneTransform().Invert()
	if !ok {
		return r
	}
	return inv.TransformRect(r)
}

func (it *Item) MapToParent(p geom.Point) geom.Point {
	return it.LocalTransform().TransformPoint(p)
}

func (it *Item) MapFromParent(p geom.Point) geom.Point {
	inv, ok := it.LocalTransform().Invert()
	if !ok {
		return p
	}
	return inv.TransformPoint(p)
}

func (it *Item) MapRectToParent(r geom.Rect) geom.Rect {
	return it.LocalTransform().TransformRect(r)
}

func (it *Item) MapRectFromParent(r geom.Rect) geom.Rect {
	inv, ok := it.LocalTransform().Invert()
	if !ok {
		return r
	}
	return inv.TransformRect(r)
}

// MapToItem maps a local point into other's local space; a nil other means
// the scene.
func (it *Item) MapToItem(other *Item, p geom.Point) geom.Point {
	sp := it.MapToScene(p)
	if other == nil {
		return sp
	}
	return other.MapFromScene(sp)
}

// MapFromItem maps a point in other's local space into it's local space; a
// nil other means the scene.
func (it *Item) MapFromItem(other *Item, p geom.Point) geom.Point {
	if other == nil {
		return it.MapFromScene(p)
	}
	return it.MapFromScene(other.MapToScene(p))
}

func (it *Item) MapRectToItem(other *Item, r geom.Rect) geom.Rect {
	sr := it.MapRectToScene(r)
	if other == nil {
		return sr
	}
	return other.MapRectFromScene(sr)
}

func (it *Item) MapRectFromItem(other *Item, r geom.Rect) geom.Rect {
	if other == nil {
		return it.MapRectFromScene(r)
	}
	return it.MapRectFromScene(other.MapRectToScene(r))
}

// Paint draws the shape in local coordinates, followed by a dashed outline
// when the item is selected.
func (it *Item) Paint(s Surface) {
	it.shape.Paint(s)

	if it.selected {
		bounds := it.BoundingRect()
		if !bounds.IsEmpty() {
			s.FillAndStrokeRect(bounds.Inflate(SelectionMargin, SelectionMargin), selectionStyle)
		}
	}
}
