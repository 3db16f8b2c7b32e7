package editor

import (
	"encoding/json"
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/sceneview/internal/geom"
	"github.com/inamate/sceneview/internal/input"
	"github.com/inamate/sceneview/internal/render"
	"github.com/inamate/sceneview/internal/scene"
	"github.com/inamate/sceneview/internal/tool"
	"github.com/inamate/sceneview/internal/view"
)

func newEditor() *Editor {
	return New(scene.New(), view.New(view.WithSize(800, 600)))
}

func down(x, y float64, b input.Button) input.PointerEvent {
	return input.PointerEvent{Kind: input.PointerDown, Pos: geom.Pt(x, y), Button: b}
}

func move(x, y float64) input.PointerEvent {
	return input.PointerEvent{Kind: input.PointerMove, Pos: geom.Pt(x, y)}
}

func up(x, y float64, b input.Button) input.PointerEvent {
	return input.PointerEvent{Kind: input.PointerUp, Pos: geom.Pt(x, y), Button: b}
}

func addRect(e *Editor, x, y, w, h, z float64) *scene.Item {
	it := scene.NewItem(scene.NewRectangle(w, h))
	it.SetPosition(geom.Pt(x, y))
	it.SetZValue(z)
	e.Scene().AddItem(it)
	return it
}

func TestSetTool(t *testing.T) {
	e := newEditor()
	assert.Equal(t, ModeView, e.Mode())

	require.NoError(t, e.SetTool(tool.NameRectangle))
	assert.Equal(t, ModeDraw, e.Mode())
	assert.Equal(t, tool.NameRectangle, e.ToolName())

	err := e.SetTool("spray")
	assert.ErrorIs(t, err, tool.ErrUnknownTool)
	assert.Equal(t, tool.NameRectangle, e.ToolName())

	require.NoError(t, e.SetTool("view"))
	assert.Equal(t, ModeView, e.Mode())
	assert.Nil(t, e.Tool())
}

func TestSwitchingToolsCancelsPreview(t *testing.T) {
	e := newEditor()
	require.NoError(t, e.SetTool(tool.NameEllipse))

	e.HandlePointer(down(10, 10, input.ButtonPrimary))
	e.HandlePointer(move(60, 60))
	require.Equal(t, 1, e.Scene().Len())

	require.NoError(t, e.SetTool(tool.NameLine))
	assert.Equal(t, 0, e.Scene().Len())
}

func TestDrawModeMapsPointsToScene(t *testing.T) {
	e := newEditor()
	e.View().Scale(2, 2)
	require.NoError(t, e.SetTool(tool.NameRectangle))

	e.HandlePointer(down(20, 40, input.ButtonPrimary))
	e.HandlePointer(move(120, 140))
	e.HandlePointer(up(120, 140, input.ButtonPrimary))
	e.HandlePointer(down(120, 140, input.ButtonPrimary))

	items := e.Scene().Items()
	require.Len(t, items, 1)
	assert.Equal(t, geom.Pt(10, 20), items[0].Position())
	assert.Equal(t, geom.R(0, 0, 50, 50), items[0].BoundingRect())
	assert.Equal(t, tool.CommittedZ, items[0].ZValue())
}

func TestPanButtonPans(t *testing.T) {
	e := newEditor()
	require.NoError(t, e.SetTool(tool.NameRectangle))

	e.HandlePointer(down(100, 100, input.ButtonPan))
	assert.True(t, e.View().Panning())
	e.HandlePointer(move(130, 90))
	e.HandlePointer(up(130, 90, input.ButtonPan))
	assert.False(t, e.View().Panning())

	st := e.ViewState()
	assert.Equal(t, 30.0, st.TranslateX)
	assert.Equal(t, -10.0, st.TranslateY)
	assert.Equal(t, 0, e.Scene().Len(), "moves during a pan must not reach the tool")
}

func TestCaptureLostEndsPan(t *testing.T) {
	e := newEditor()
	e.HandlePointer(down(0, 0, input.ButtonPan))
	e.HandlePointer(input.PointerEvent{Kind: input.PointerCaptureLost})
	assert.False(t, e.View().Panning())
}

func TestWheelZoomsAtCursor(t *testing.T) {
	e := newEditor()
	p := geom.Pt(200, 150)
	before := e.View().MapToScene(p)

	e.HandleWheel(input.WheelEvent{Pos: p, Delta: 500})

	sx, _ := e.View().ScaleFactors()
	assert.InDelta(t, 1.5, sx, 1e-9)
	after := e.View().MapToScene(p)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
}

func TestOutOfRangePointsAreDropped(t *testing.T) {
	e := newEditor()
	require.NoError(t, e.SetTool(tool.NameRectangle))

	e.HandlePointer(down(1.7e308, 1.7e308, input.ButtonPrimary))
	e.HandlePointer(down(-1.7e308, -1.7e308, input.ButtonPrimary))
	e.HandlePointer(down(math.Inf(1), 0, input.ButtonPrimary))
	e.HandlePointer(move(math.NaN(), 0))
	assert.Equal(t, 0, e.Scene().Len())
	assert.False(t, e.Tool().Drawing())

	e.HandlePointer(down(0, 0, input.ButtonPan))
	e.HandlePointer(move(1.7e308, 0))
	e.HandlePointer(up(1.7e308, 0, input.ButtonPan))
	assert.Equal(t, 0.0, e.ViewState().TranslateX)
	assert.False(t, e.View().Panning())

	e.HandleWheel(input.WheelEvent{Pos: geom.Pt(10, 10), Delta: 1e308})
	e.HandleWheel(input.WheelEvent{Pos: geom.Pt(10, 10), Delta: 1e308})

	_, err := json.Marshal(e.Frame())
	assert.NoError(t, err)
}

func TestHitTestReturnsTopmost(t *testing.T) {
	e := newEditor()
	bottom := addRect(e, 0, 0, 100, 100, 0)
	top := addRect(e, 50, 50, 100, 100, 1)

	assert.Equal(t, top.ID(), e.HitTest(geom.Pt(75, 75)))
	assert.Equal(t, bottom.ID(), e.HitTest(geom.Pt(10, 10)))
	assert.Empty(t, e.HitTest(geom.Pt(500, 500)))

	e.View().Translate(100, 0)
	assert.Equal(t, bottom.ID(), e.HitTest(geom.Pt(110, 10)))
}

func TestClickSelects(t *testing.T) {
	e := newEditor()
	a := addRect(e, 0, 0, 50, 50, 0)
	b := addRect(e, 100, 0, 50, 50, 0)

	e.HandlePointer(down(10, 10, input.ButtonPrimary))
	assert.Equal(t, []string{a.ID()}, e.Selection())
	assert.True(t, a.IsSelected())

	e.HandlePointer(input.PointerEvent{Kind: input.PointerDown, Pos: geom.Pt(110, 10), Button: input.ButtonPrimary, Mods: input.ModShift})
	assert.Equal(t, []string{a.ID(), b.ID()}, e.Selection())

	e.HandlePointer(down(400, 400, input.ButtonPrimary))
	assert.Empty(t, e.Selection())
	assert.False(t, a.IsSelected())
	assert.False(t, b.IsSelected())
}

func TestSetSelectionAndBounds(t *testing.T) {
	e := newEditor()
	a := addRect(e, 0, 0, 50, 50, 0)
	b := addRect(e, 100, 20, 50, 50, 0)

	assert.True(t, e.SelectionBounds().IsEmpty())

	e.SetSelection([]string{a.ID(), "item_missing", b.ID(), a.ID()})
	assert.Equal(t, []string{a.ID(), b.ID()}, e.Selection())
	assert.Equal(t, geom.R(0, 0, 150, 70), e.SelectionBounds())

	e.SetSelection([]string{b.ID()})
	assert.False(t, a.IsSelected())
	assert.True(t, b.IsSelected())

	e.RemoveItem(b.ID())
	assert.Empty(t, e.Selection())
}

func TestBackground(t *testing.T) {
	e := newEditor()
	rect := addRect(e, 10, 10, 20, 20, 0)

	e.SetBackground(image.NewRGBA(image.Rect(0, 0, 400, 300)))
	bg := e.Background()
	require.NotNil(t, bg)
	assert.Equal(t, BackgroundZ, bg.ZValue())
	assert.Equal(t, bg, e.Scene().Items()[0])

	sx, sy := e.View().ScaleFactors()
	assert.InDelta(t, 1.8, sx, 1e-9)
	assert.InDelta(t, 1.8, sy, 1e-9)

	assert.Equal(t, rect.ID(), e.HitTest(e.View().MapFromScene(geom.Pt(15, 15))))
	assert.Empty(t, e.HitTest(e.View().MapFromScene(geom.Pt(200, 200))))
	assert.False(t, e.RemoveItem(bg.ID()))

	e.SetBackground(nil)
	assert.Nil(t, e.Background())
	assert.Equal(t, 1, e.Scene().Len())
}

func TestZoomStepsAndReset(t *testing.T) {
	e := newEditor()
	e.ZoomIn()
	sx, _ := e.View().ScaleFactors()
	assert.InDelta(t, ZoomStep, sx, 1e-9)

	e.ZoomOut()
	sx, _ = e.View().ScaleFactors()
	assert.InDelta(t, 1, sx, 1e-9)

	e.View().Translate(40, 40)
	e.ResetView()
	assert.True(t, e.View().Transform().IsIdentity())
}

func TestAddImageZIsItemCount(t *testing.T) {
	e := newEditor()
	addRect(e, 0, 0, 10, 10, 0)
	addRect(e, 0, 0, 10, 10, 0)

	it := e.AddImage(image.NewRGBA(image.Rect(0, 0, 8, 4)), geom.Pt(5, 6))
	assert.Equal(t, 2.0, it.ZValue())
	assert.Equal(t, geom.R(5, 6, 8, 4), it.SceneBoundingRect())
}

func TestDirtyTracking(t *testing.T) {
	e := newEditor()
	assert.True(t, e.TakeDirty())
	assert.False(t, e.TakeDirty())

	addRect(e, 0, 0, 10, 10, 0)
	assert.True(t, e.TakeDirty())

	e.View().Translate(5, 0)
	assert.True(t, e.TakeDirty())

	e.Close()
	addRect(e, 0, 0, 10, 10, 0)
	assert.False(t, e.TakeDirty())
}

func TestClear(t *testing.T) {
	e := newEditor()
	a := addRect(e, 0, 0, 10, 10, 0)
	e.SetSelection([]string{a.ID()})
	e.SetBackground(image.NewRGBA(image.Rect(0, 0, 4, 4)))

	e.Clear()
	assert.Equal(t, 0, e.Scene().Len())
	assert.Nil(t, e.Background())
	assert.Empty(t, e.Selection())
}

func TestRenderAndFrame(t *testing.T) {
	e := newEditor()
	it := addRect(e, 0, 0, 10, 10, 0)

	var cmds []render.DrawCommand
	require.NoError(t, json.Unmarshal([]byte(e.Render()), &cmds))
	require.NotEmpty(t, cmds)
	assert.Equal(t, render.OpSave, cmds[0].Op)

	fs := e.Frame()
	assert.Equal(t, e.ViewState(), fs.View)
	assert.Equal(t, e.SceneRect(), fs.SceneRect)
	assert.Equal(t, ModeView, fs.Mode)

	var rectID string
	for _, c := range fs.Commands {
		if c.Op == render.OpRect {
			rectID = c.ObjectID
		}
	}
	assert.Equal(t, it.ID(), rectID)

	var st view.State
	require.NoError(t, json.Unmarshal([]byte(e.ViewStateJSON()), &st))
	assert.Equal(t, e.ViewState(), st)
}
