// Package view implements a viewport over a scene: an independent
// scale, rotate, translate stack that maps between view space (pointer and
// screen pixels) and scene space.
package view

import (
	"math"

	"github.com/inamate/sceneview/internal/geom"
	"github.com/inamate/sceneview/internal/scene"
)

// DefaultZoomSpeed converts a wheel delta into a zoom factor of 1 + delta*speed.
const DefaultZoomSpeed = 0.001

// DefaultEnsureMargin is the view-space margin used by EnsureVisibleItem.
const DefaultEnsureMargin = 50.0

// Anchor selects the view point that stays fixed when rotating without an
// explicit anchor.
type Anchor int

const (
	// AnchorNone rotates about the view origin.
	AnchorNone Anchor = iota
	// AnchorViewCenter rotates about the center of the view.
	AnchorViewCenter
	// AnchorUnderMouse rotates about the last known pointer position, or the
	// center when no pointer position has been seen.
	AnchorUnderMouse
)

// State is a snapshot of the viewport factors.
type State struct {
	ScaleX     float64 `json:"scaleX"`
	ScaleY     float64 `json:"scaleY"`
	Rotation   float64 `json:"rotation"`
	TranslateX float64 `json:"translateX"`
	TranslateY float64 `json:"translateY"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Panning    bool    `json:"panning"`
}

// Viewport maps scene space into view space through
// Translate(tx, ty) · Rotate(rotation) · Scale(sx, sy).
// It is not safe for concurrent use.
type Viewport struct {
	sx, sy   float64
	rotation float64
	tx, ty   float64

	width, height float64

	anchor    Anchor
	zoomSpeed float64

	panning bool
	lastPan geom.Point

	pointer    geom.Point
	hasPointer bool

	listeners map[int]func()
	nextSub   int
}

// Option configures a Viewport.
type Option func(*Viewport)

// WithSize sets the view size in pixels.
func WithSize(w, h float64) Option {
	return func(v *Viewport) { v.width, v.height = w, h }
}

// WithZoomSpeed sets the wheel zoom speed.
func WithZoomSpeed(speed float64) Option {
	return func(v *Viewport) { v.zoomSpeed = speed }
}

// WithAnchor sets the rotation anchor policy.
func WithAnchor(a Anchor) Option {
	return func(v *Viewport) { v.anchor = a }
}

// New creates a viewport with the identity transform.
func New(opts ...Option) *Viewport {
	v := &Viewport{
		sx:        1,
		sy:        1,
		zoomSpeed: DefaultZoomSpeed,
		listeners: make(map[int]func()),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Subscribe registers fn to run after every transform change. The returned
// function removes the subscription.
func (v *Viewport) Subscribe(fn func()) (cancel func()) {
	id := v.nextSub
	v.nextSub++
	v.listeners[id] = fn
	return func() { delete(v.listeners, id) }
}

func (v *Viewport) invalidate() {
	for _, fn := range v.listeners {
		fn()
	}
}

func (v *Viewport) Size() (w, h float64)         { return v.width, v.height }
func (v *Viewport) Anchor() Anchor               { return v.anchor }
func (v *Viewport) SetAnchor(a Anchor)           { v.anchor = a }
func (v *Viewport) ZoomSpeed() float64           { return v.zoomSpeed }
func (v *Viewport) SetZoomSpeed(s float64)       { v.zoomSpeed = s }
func (v *Viewport) Panning() bool                { return v.panning }
func (v *Viewport) Rotation() float64            { return v.rotation }
func (v *Viewport) ScaleFactors() (x, y float64) { return v.sx, v.sy }

// Center is the center of the view in view coordinates.
func (v *Viewport) Center() geom.Point {
	return geom.Pt(v.width/2, v.height/2)
}

// Resize changes the view size. The transform is unchanged.
func (v *Viewport) Resize(w, h float64) {
	if v.width == w && v.height == h {
		return
	}
	v.width, v.height = w, h
	v.invalidate()
}

// State returns the current factors.
func (v *Viewport) State() State {
	return State{
		ScaleX:     v.sx,
		ScaleY:     v.sy,
		Rotation:   v.rotation,
		TranslateX: v.tx,
		TranslateY: v.ty,
		Width:      v.width,
		Height:     v.height,
		Panning:    v.panning,
	}
}

// Transform returns the scene-to-view matrix.
func (v *Viewport) Transform() geom.Matrix2D {
	return geom.Translate(v.tx, v.ty).
		Multiply(geom.RotateDegrees(v.rotation)).
		Multiply(geom.Scale(v.sx, v.sy))
}

// SetTransform decomposes m into scale, rotation and translation. Shear is
// discarded.
func (v *Viewport) SetTransform(m geom.Matrix2D) {
	a, b, c, d := m[0], m[1], m[2], m[3]
	sx := math.Hypot(a, b)
	sy := math.Hypot(c, d)
	if a*d-b*c < 0 {
		sy = -sy
	}
	v.sx, v.sy = sx, sy
	v.rotation = math.Atan2(b, a) * 180 / math.Pi
	v.tx, v.ty = m[4], m[5]
	v.invalidate()
}

// ResetTransform returns to the identity transform.
func (v *Viewport) ResetTransform() {
	v.sx, v.sy = 1, 1
	v.rotation = 0
	v.tx, v.ty = 0, 0
	v.invalidate()
}

// Scale multiplies the current scale factors.
func (v *Viewport) Scale(sx, sy float64) {
	v.sx *= sx
	v.sy *= sy
	v.invalidate()
}

// Translate shifts the view by dx, dy view units.
func (v *Viewport) Translate(dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	v.tx += dx
	v.ty += dy
	v.invalidate()
}

// Rotate adds degrees to the rotation, keeping the anchor chosen by the
// anchor policy fixed on screen.
func (v *Viewport) Rotate(degrees float64) {
	v.RotateAt(degrees, v.anchorPoint())
}

// RotateAt adds degrees to the rotation and then translates so the scene
// point that was under anchor stays under it. The rotation is kept within
// (-360, 360); non-finite input is ignored.
func (v *Viewport) RotateAt(degrees float64, anchor geom.Point) {
	if !geom.Finite(degrees, anchor.X, anchor.Y) {
		return
	}
	sceneAnchor := v.MapToScene(anchor)
	old := v.rotation
	v.rotation = math.Mod(v.rotation+degrees, 360)
	moved := v.MapFromScene(sceneAnchor)
	tx, ty := v.tx+anchor.X-moved.X, v.ty+anchor.Y-moved.Y
	if !geom.Finite(tx, ty) {
		v.rotation = old
		return
	}
	v.tx, v.ty = tx, ty
	v.invalidate()
}

func (v *Viewport) anchorPoint() geom.Point {
	switch v.anchor {
	case AnchorViewCenter:
		return v.Center()
	case AnchorUnderMouse:
		if v.hasPointer {
			return v.pointer
		}
		return v.Center()
	default:
		return geom.Point{}
	}
}

// TrackPointer records the latest pointer position for AnchorUnderMouse.
func (v *Viewport) TrackPointer(p geom.Point) {
	v.pointer = p
	v.hasPointer = true
}

// MapToScene maps a view point into the scene. The point is returned
// unchanged when the transform is not invertible.
func (v *Viewport) MapToScene(p geom.Point) geom.Point {
	inv, ok := v.Transform().Invert()
	if !ok {
		return p
	}
	return inv.TransformPoint(p)
}

// MapFromScene maps a scene point into the view.
func (v *Viewport) MapFromScene(p geom.Point) geom.Point {
	return v.Transform().TransformPoint(p)
}

// MapRectToScene maps the four corners of r and returns their envelope.
func (v *Viewport) MapRectToScene(r geom.Rect) geom.Rect {
	inv, ok := v.Transform().Invert()
	if !ok {
		return r
	}
	return inv.TransformRect(r)
}

// MapRectFromScene maps the four corners of r and returns their envelope.
func (v *Viewport) MapRectFromScene(r geom.Rect) geom.Rect {
	return v.Transform().TransformRect(r)
}

// VisibleSceneRect is the scene area covered by the view.
func (v *Viewport) VisibleSceneRect() geom.Rect {
	return v.MapRectToScene(geom.R(0, 0, v.width, v.height))
}

// Zoom limits applied by ZoomAt to the magnitude of each scale factor.
const (
	MinZoom = 1e-6
	MaxZoom = 1e6
)

func zoomInRange(s float64) bool {
	s = math.Abs(s)
	return s >= MinZoom && s <= MaxZoom
}

// ZoomAt scales by factor while keeping the scene point under p fixed.
// Factors that are not positive, that take the scale outside MinZoom and
// MaxZoom, or that would leave the translation non-finite are ignored.
func (v *Viewport) ZoomAt(p geom.Point, factor float64) bool {
	if !(factor > 0) || !geom.Finite(factor) {
		return false
	}
	sx, sy := v.sx*factor, v.sy*factor
	if !zoomInRange(sx) || !zoomInRange(sy) {
		return false
	}

	sp := v.MapToScene(p)
	oldX, oldY := v.sx, v.sy
	v.sx, v.sy = sx, sy
	moved := v.MapFromScene(sp)
	tx, ty := v.tx+p.X-moved.X, v.ty+p.Y-moved.Y
	if !geom.Finite(tx, ty) {
		v.sx, v.sy = oldX, oldY
		return false
	}
	v.tx, v.ty = tx, ty
	v.invalidate()
	return true
}

// Wheel zooms at p by 1 + delta*zoomSpeed. It reports whether the view
// changed.
func (v *Viewport) Wheel(p geom.Point, delta float64) bool {
	v.TrackPointer(p)
	return v.ZoomAt(p, 1+delta*v.zoomSpeed)
}

// BeginPan starts a drag pan at view point p.
func (v *Viewport) BeginPan(p geom.Point) {
	v.panning = true
	v.lastPan = p
}

// MovePan translates by the movement since the previous pan position. It
// reports false when no pan is active.
func (v *Viewport) MovePan(p geom.Point) bool {
	if !v.panning {
		return false
	}
	d := p.Sub(v.lastPan)
	v.lastPan = p
	v.Translate(d.X, d.Y)
	return true
}

// EndPan stops panning.
func (v *Viewport) EndPan() {
	v.panning = false
}

// CaptureLost ends a pan the host could not finish with a release.
func (v *Viewport) CaptureLost() {
	v.EndPan()
}

// CenterOn translates so the scene point p appears at the view center.
func (v *Viewport) CenterOn(p geom.Point) {
	c := v.Center()
	cur := v.MapFromScene(p)
	v.Translate(c.X-cur.X, c.Y-cur.Y)
}

// CenterOnItem centers on the middle of the item's scene bounds.
func (v *Viewport) CenterOnItem(it *scene.Item) {
	r := it.SceneBoundingRect()
	if r.IsEmpty() {
		v.CenterOn(it.ScenePosition())
		return
	}
	v.CenterOn(r.Center())
}

// EnsureVisible scrolls so the scene rect r lies inside the view with the
// given margins. A rect entirely outside the view is centered; otherwise
// each axis is nudged only when one of its edges crosses its margin.
func (v *Viewport) EnsureVisible(r geom.Rect, marginX, marginY float64) {
	if r.IsEmpty() {
		return
	}
	viewRect := geom.R(0, 0, v.width, v.height)
	mapped := v.MapRectFromScene(r)

	if !viewRect.Intersects(mapped) {
		v.CenterOn(r.Center())
		return
	}

	var dx, dy float64
	switch {
	case mapped.Left() < marginX:
		dx = marginX - mapped.Left()
	case mapped.Right() > v.width-marginX:
		dx = v.width - marginX - mapped.Right()
	}
	switch {
	case mapped.Top() < marginY:
		dy = marginY - mapped.Top()
	case mapped.Bottom() > v.height-marginY:
		dy = v.height - marginY - mapped.Bottom()
	}
	v.Translate(dx, dy)
}

// EnsureVisibleItem makes the item's scene bounds visible with the default
// margins.
func (v *Viewport) EnsureVisibleItem(it *scene.Item) {
	v.EnsureVisible(it.SceneBoundingRect(), DefaultEnsureMargin, DefaultEnsureMargin)
}

// FitInView resets rotation and scales uniformly so r fills fill (0..1] of
// the view, then centers it. It reports false when r or the view has no
// area.
func (v *Viewport) FitInView(r geom.Rect, fill float64) bool {
	if r.IsEmpty() || r.Width <= 0 || r.Height <= 0 || v.width <= 0 || v.height <= 0 {
		return false
	}
	if fill <= 0 || fill > 1 {
		fill = 1
	}
	s := math.Min(v.width/r.Width, v.height/r.Height) * fill

	v.sx, v.sy = s, s
	v.rotation = 0
	v.tx, v.ty = 0, 0
	v.CenterOn(r.Center())
	v.invalidate()
	return true
}
