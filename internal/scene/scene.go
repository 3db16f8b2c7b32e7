// Package scene implements a retained 2D scene: an owned set of shape items
// kept in z-order, with hit testing, spatial queries, auto-fitted bounds and
// a synchronous change signal.
//
// A Scene is not safe for concurrent use; hosts that touch it from several
// goroutines must serialize access themselves.
package scene

import (
	"log/slog"
	"slices"

	"github.com/inamate/sceneview/internal/geom"
)

const (
	// DefaultMargin pads the union of item bounds when the scene rect is
	// recomputed.
	DefaultMargin = 50.0
	// DefaultSize is the side of the square scene rect of an empty scene.
	DefaultSize = 2000.0
)

// Scene owns a set of items ordered by ascending z.
type Scene struct {
	items []*Item
	byID  map[string]*Item
	seq   uint64

	sceneRect   geom.Rect
	margin      float64
	defaultRect geom.Rect

	listeners map[int]func()
	nextSub   int
}

// Option configures a Scene.
type Option func(*Scene)

// WithMargin sets the padding added around item bounds by UpdateSceneRect.
func WithMargin(m float64) Option {
	return func(s *Scene) { s.margin = m }
}

// WithDefaultRect sets the scene rect used when the scene has no items.
func WithDefaultRect(r geom.Rect) Option {
	return func(s *Scene) { s.defaultRect = r }
}

// New creates an empty scene.
func New(opts ...Option) *Scene {
	s := &Scene{
		byID:        make(map[string]*Item),
		margin:      DefaultMargin,
		defaultRect: geom.R(0, 0, DefaultSize, DefaultSize),
		listeners:   make(map[int]func()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sceneRect = s.defaultRect
	return s
}

// Subscribe registers fn to run synchronously after every change. The returned
// function removes the subscription. fn must not mutate the scene.
func (s *Scene) Subscribe(fn func()) (cancel func()) {
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	return func() { delete(s.listeners, id) }
}

func (s *Scene) notify() {
	for _, fn := range s.listeners {
		fn()
	}
}

// Items returns the items in ascending z-order. The slice is a copy.
func (s *Scene) Items() []*Item {
	return slices.Clone(s.items)
}

// Len returns the number of items.
func (s *Scene) Len() int {
	return len(s.items)
}

// Lookup returns the item with the given id.
func (s *Scene) Lookup(id string) (*Item, bool) {
	it, ok := s.byID[id]
	return it, ok
}

// Contains reports whether it belongs to s.
func (s *Scene) Contains(it *Item) bool {
	return it != nil && it.scene == s
}

// AddItem inserts it. Nil items and items already in s are ignored; an item
// owned by another scene is removed from it first. It reports whether the
// item was added.
func (s *Scene) AddItem(it *Item) bool {
	if it == nil || it.scene == s {
		return false
	}
	if it.scene != nil {
		it.scene.RemoveItem(it)
	}

	s.seq++
	it.seq = s.seq
	it.scene = s
	it.zDirty = false
	s.items = append(s.items, it)
	s.byID[it.id] = it
	s.sortItems()
	s.UpdateSceneRect()

	slog.Debug("scene item added", "item", it.id, "kind", it.Kind(), "count", len(s.items))
	s.notify()
	return true
}

// RemoveItem detaches it. It reports false when it is not in s.
func (s *Scene) RemoveItem(it *Item) bool {
	if it == nil || it.scene != s {
		return false
	}

	idx := slices.Index(s.items, it)
	if idx < 0 {
		return false
	}
	s.items = slices.Delete(s.items, idx, idx+1)
	delete(s.byID, it.id)
	it.scene = nil
	s.UpdateSceneRect()

	slog.Debug("scene item removed", "item", it.id, "count", len(s.items))
	s.notify()
	return true
}

// Clear detaches every item and resets the scene rect to the default.
func (s *Scene) Clear() {
	for _, it := range s.items {
		it.scene = nil
	}
	s.items = nil
	clear(s.byID)
	s.sceneRect = s.defaultRect
	s.notify()
}

// Mutate applies fn to the item with the given id and fires a single change
// notification. It reports false when no such item exists.
func (s *Scene) Mutate(id string, fn func(it *Item)) bool {
	it, ok := s.byID[id]
	if !ok {
		return false
	}
	it.Update(fn)
	return true
}

func (s *Scene) itemChanged(it *Item) {
	if it.zDirty {
		s.sortItems()
	}
	s.notify()
}

func (s *Scene) sortItems() {
	slices.SortStableFunc(s.items, func(a, b *Item) int {
		switch {
		case a.zValue < b.zValue:
			return -1
		case a.zValue > b.zValue:
			return 1
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		default:
			return 0
		}
	})
}

func hittable(it *Item) bool {
	return it.visible && it.enabled
}

// ItemAt returns the first visible, enabled item in ascending z-order whose
// shape contains the scene point. Lower z wins over higher z.
func (s *Scene) ItemAt(p geom.Point) *Item {
	for _, it := range s.items {
		if hittable(it) && it.Contains(it.MapFromScene(p)) {
			return it
		}
	}
	return nil
}

// ItemsAt returns every visible, enabled item containing the scene point, in
// ascending z-order.
func (s *Scene) ItemsAt(p geom.Point) []*Item {
	var result []*Item
	for _, it := range s.items {
		if hittable(it) && it.Contains(it.MapFromScene(p)) {
			result = append(result, it)
		}
	}
	return result
}

// ItemsInRect returns every visible, enabled item whose scene bounding rect
// intersects r, in ascending z-order.
func (s *Scene) ItemsInRect(r geom.Rect) []*Item {
	var result []*Item
	for _, it := range s.items {
		if hittable(it) && it.SceneBoundingRect().Intersects(r) {
			result = append(result, it)
		}
	}
	return result
}

// SceneBoundingRect is the union of the scene bounds of all visible, enabled
// items, or geom.Empty when there are none.
func (s *Scene) SceneBoundingRect() geom.Rect {
	result := geom.Empty
	for _, it := range s.items {
		if hittable(it) {
			result = result.Union(it.SceneBoundingRect())
		}
	}
	return result
}

// UpdateSceneRect recomputes the scene rect from the current items.
func (s *Scene) UpdateSceneRect() {
	bounds := s.SceneBoundingRect()
	if bounds.IsEmpty() {
		s.sceneRect = s.defaultRect
		return
	}
	s.sceneRect = bounds.Inflate(s.margin, s.margin)
}

// SceneRect returns the current scene rect.
func (s *Scene) SceneRect() geom.Rect {
	return s.sceneRect
}

// SetSceneRect overrides the scene rect until the next recomputation.
func (s *Scene) SetSceneRect(r geom.Rect) {
	if s.sceneRect != r {
		s.sceneRect = r
		s.notify()
	}
}
