// Package editor ties a scene, a viewport and the active drawing tool
// together. It receives host pointer input and answers render queries.
package editor

import (
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"math"

	"github.com/inamate/sceneview/internal/geom"
	"github.com/inamate/sceneview/internal/input"
	"github.com/inamate/sceneview/internal/render"
	"github.com/inamate/sceneview/internal/scene"
	"github.com/inamate/sceneview/internal/tool"
	"github.com/inamate/sceneview/internal/view"
)

// Mode is the interaction mode.
type Mode string

const (
	ModeView Mode = "view"
	ModeDraw Mode = "draw"
)

// BackgroundZ keeps the background image under every other item.
const BackgroundZ = -math.MaxFloat64

// FitFill is the share of the view a fitted rect fills.
const FitFill = 0.9

// ZoomStep is the factor applied by ZoomIn and ZoomOut.
const ZoomStep = 1.2

// Editor is the host-facing controller for one view onto a scene.
type Editor struct {
	scene *scene.Scene
	view  *view.Viewport

	// Active tool; nil in view mode
	tool tool.Tool

	// Selection state (backend owns this)
	selection []string

	images render.ImageResolver

	// Dirty flag - something visible changed since the last TakeDirty
	dirty bool

	unsubscribe []func()
}

// Option configures an Editor.
type Option func(*Editor)

// WithImageResolver names decoded images in rendered draw commands.
func WithImageResolver(r render.ImageResolver) Option {
	return func(e *Editor) { e.images = r }
}

// New creates an editor over sc seen through v. The editor starts in view
// mode and dirty.
func New(sc *scene.Scene, v *view.Viewport, opts ...Option) *Editor {
	e := &Editor{
		scene: sc,
		view:  v,
		dirty: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	markDirty := func() { e.dirty = true }
	e.unsubscribe = append(e.unsubscribe, sc.Subscribe(markDirty), v.Subscribe(markDirty))
	return e
}

// Close cancels the active tool and detaches from the scene and viewport.
func (e *Editor) Close() {
	if e.tool != nil {
		e.tool.Cancel()
		e.tool = nil
	}
	for _, fn := range e.unsubscribe {
		fn()
	}
	e.unsubscribe = nil
}

func (e *Editor) Scene() *scene.Scene  { return e.scene }
func (e *Editor) View() *view.Viewport { return e.view }
func (e *Editor) Tool() tool.Tool      { return e.tool }

// Background returns the scene's background image item, or nil. It is the
// item at BackgroundZ, so every editor sharing the scene sees the same one.
func (e *Editor) Background() *scene.Item {
	items := e.scene.Items()
	if len(items) > 0 && isBackground(items[0]) {
		return items[0]
	}
	return nil
}

func isBackground(it *scene.Item) bool {
	return it.ZValue() == BackgroundZ
}

// Mode reports draw mode while a tool is active.
func (e *Editor) Mode() Mode {
	if e.tool == nil {
		return ModeView
	}
	return ModeDraw
}

// ToolName returns the active tool's name, or "" in view mode.
func (e *Editor) ToolName() string {
	if e.tool == nil {
		return ""
	}
	return e.tool.Name()
}

// --- Commands (host → editor) ---

// SetTool activates the named tool. "" or "view" returns to view mode. The
// outgoing tool is cancelled first.
func (e *Editor) SetTool(name string) error {
	var next tool.Tool
	if name != "" && name != string(ModeView) {
		t, err := tool.New(name, e.scene)
		if err != nil {
			return fmt.Errorf("set tool: %w", err)
		}
		next = t
	}
	if e.tool != nil {
		e.tool.Cancel()
	}
	e.tool = next
	e.dirty = true
	slog.Debug("tool selected", "tool", e.ToolName())
	return nil
}

// HandlePointer routes a view-space pointer event. The pan button drags the
// view. In draw mode the primary button goes to the tool in scene
// coordinates; in view mode a primary press selects the item under it.
// Moves pan while a pan is active and otherwise feed the tool.
// Events whose view or scene position lies beyond geom.MaxCoord are dropped.
func (e *Editor) HandlePointer(ev input.PointerEvent) {
	if ev.Kind == input.PointerCaptureLost {
		e.view.CaptureLost()
		return
	}
	if ev.Kind == input.PointerUp && ev.Button == input.ButtonPan {
		e.view.EndPan()
		return
	}
	sp := e.view.MapToScene(ev.Pos)
	if !ev.Pos.InRange() || !sp.InRange() {
		return
	}
	e.view.TrackPointer(ev.Pos)

	switch ev.Kind {
	case input.PointerDown:
		switch {
		case ev.Button == input.ButtonPan:
			e.view.BeginPan(ev.Pos)
		case ev.Button != input.ButtonPrimary:
		case e.tool != nil:
			e.tool.OnPointerDown(sp, ev.Mods)
		default:
			e.selectAt(ev.Pos, ev.Mods.Has(input.ModShift))
		}

	case input.PointerMove:
		if e.view.MovePan(ev.Pos) {
			return
		}
		if e.tool != nil {
			e.tool.OnPointerMove(sp)
		}

	case input.PointerUp:
		if ev.Button == input.ButtonPrimary && e.tool != nil {
			e.tool.OnPointerUp(sp)
		}
	}
}

// HandleWheel zooms about the cursor.
func (e *Editor) HandleWheel(ev input.WheelEvent) {
	e.view.Wheel(ev.Pos, ev.Delta)
}

func (e *Editor) selectAt(p geom.Point, extend bool) {
	id := e.HitTest(p)
	switch {
	case id == "" && !extend:
		e.SetSelection(nil)
	case id == "":
	case extend:
		e.SetSelection(append(e.Selection(), id))
	default:
		e.SetSelection([]string{id})
	}
}

// SetSelection selects exactly the given items. Unknown ids are dropped.
func (e *Editor) SetSelection(ids []string) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	for _, id := range e.selection {
		if !want[id] {
			e.scene.Mutate(id, func(it *scene.Item) { it.SetSelected(false) })
		}
	}

	e.selection = e.selection[:0]
	for _, id := range ids {
		it, ok := e.scene.Lookup(id)
		if !ok || !want[id] {
			continue
		}
		delete(want, id)
		it.SetSelected(true)
		e.selection = append(e.selection, id)
	}
	e.dirty = true
}

// Selection returns the selected ids that are still in the scene.
func (e *Editor) Selection() []string {
	out := make([]string, 0, len(e.selection))
	for _, id := range e.selection {
		if _, ok := e.scene.Lookup(id); ok {
			out = append(out, id)
		}
	}
	return out
}

// AddImage inserts img with its top-left corner at the scene point at. Its z is
// the current item count, so it stacks over earlier images and samples but
// under items committed by the drawing tools.
func (e *Editor) AddImage(img image.Image, at geom.Point) *scene.Item {
	it := scene.NewItem(scene.NewImage(img))
	it.SetPosition(at)
	it.SetZValue(float64(e.scene.Len()))
	e.scene.AddItem(it)
	return it
}

// SetBackground shows img under every other item at the scene origin and
// fits the view to it. A nil img removes the background.
func (e *Editor) SetBackground(img image.Image) {
	if bg := e.Background(); bg != nil {
		e.scene.RemoveItem(bg)
	}
	if img == nil {
		return
	}
	it := scene.NewItem(scene.NewImage(img))
	it.SetZValue(BackgroundZ)
	e.scene.AddItem(it)
	e.FitBackground()
}

// FitBackground fits the view to the background image.
func (e *Editor) FitBackground() bool {
	bg := e.Background()
	if bg == nil {
		return false
	}
	return e.view.FitInView(bg.SceneBoundingRect(), FitFill)
}

// FitScene fits the view to the items' bounds.
func (e *Editor) FitScene() bool {
	return e.view.FitInView(e.scene.SceneBoundingRect(), FitFill)
}

// ZoomIn zooms about the view center.
func (e *Editor) ZoomIn() { e.view.ZoomAt(e.view.Center(), ZoomStep) }

// ZoomOut zooms out about the view center.
func (e *Editor) ZoomOut() { e.view.ZoomAt(e.view.Center(), 1/ZoomStep) }

// ResetView shows the scene at actual size.
func (e *Editor) ResetView() { e.view.ResetTransform() }

// RemoveItem removes an item by id. The background cannot be removed this way.
func (e *Editor) RemoveItem(id string) bool {
	it, ok := e.scene.Lookup(id)
	if !ok || isBackground(it) {
		return false
	}
	return e.scene.RemoveItem(it)
}

// Clear cancels the tool and empties the scene.
func (e *Editor) Clear() {
	if e.tool != nil {
		e.tool.Cancel()
	}
	e.scene.Clear()
	e.selection = nil
}

// TakeDirty reports whether anything visible changed since the previous
// call, and resets the flag.
func (e *Editor) TakeDirty() bool {
	d := e.dirty
	e.dirty = false
	return d
}

// --- Queries (host ← editor) ---

// HitTest returns the id of the topmost item under the view point p, or ""
// when nothing but the background is there.
func (e *Editor) HitTest(p geom.Point) string {
	sp := e.view.MapToScene(p)
	items := e.scene.ItemsAt(sp)
	for i := len(items) - 1; i >= 0; i-- {
		it := items[i]
		if isBackground(it) || it.ZValue() == tool.PreviewZ {
			continue
		}
		return it.ID()
	}
	return ""
}

// SelectionBounds is the union of the selected items' scene bounds.
func (e *Editor) SelectionBounds() geom.Rect {
	bounds := geom.Empty
	for _, id := range e.selection {
		if it, ok := e.scene.Lookup(id); ok {
			bounds = bounds.Union(it.SceneBoundingRect())
		}
	}
	return bounds
}

// Commands paints the scene through the current view into draw commands.
func (e *Editor) Commands() []render.DrawCommand {
	rec := render.NewRecorder(e.images)
	render.Frame(rec, e.view.Transform(), e.scene)
	return rec.Commands()
}

// Render evaluates the scene and returns draw commands as JSON.
func (e *Editor) Render() string {
	result, err := render.DrawCommandsToJSON(e.Commands())
	if err != nil {
		slog.Error("encode draw commands", "error", err)
		return "[]"
	}
	return result
}

// ViewState returns the viewport factors.
func (e *Editor) ViewState() view.State {
	return e.view.State()
}

// SceneRect is the scene's padded extent.
func (e *Editor) SceneRect() geom.Rect {
	return e.scene.SceneRect()
}

// FrameState is everything a host needs to redraw one view.
type FrameState struct {
	Commands  []render.DrawCommand `json:"commands"`
	View      view.State           `json:"view"`
	SceneRect geom.Rect            `json:"sceneRect"`
	Selection []string             `json:"selection"`
	Tool      string               `json:"tool"`
	Mode      Mode                 `json:"mode"`
}

// Frame snapshots the current view for a host redraw.
func (e *Editor) Frame() FrameState {
	cmds := e.Commands()
	if cmds == nil {
		cmds = []render.DrawCommand{}
	}
	return FrameState{
		Commands:  cmds,
		View:      e.ViewState(),
		SceneRect: e.SceneRect(),
		Selection: e.Selection(),
		Tool:      e.ToolName(),
		Mode:      e.Mode(),
	}
}

// ViewStateJSON returns the viewport factors as JSON.
func (e *Editor) ViewStateJSON() string {
	data, _ := json.Marshal(e.ViewState())
	return string(data)
}
