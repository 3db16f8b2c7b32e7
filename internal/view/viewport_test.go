package view

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/sceneview/internal/geom"
	"github.com/inamate/sceneview/internal/scene"
)

const tol = 1e-9

func assertPoint(t *testing.T, want, got geom.Point) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, tol, "x")
	assert.InDelta(t, want.Y, got.Y, tol, "y")
}

func TestTransformOrder(t *testing.T) {
	v := New()
	v.Scale(2, 2)
	v.Rotate(90)
	v.Translate(10, 0)

	// scale first: (1,0) -> (2,0); rotate 90: (0,2); translate: (10,2)
	assertPoint(t, geom.Pt(10, 2), v.MapFromScene(geom.Pt(1, 0)))
	assertPoint(t, geom.Pt(1, 0), v.MapToScene(geom.Pt(10, 2)))
}

func TestScaleIsCumulative(t *testing.T) {
	v := New()
	v.Scale(2, 3)
	v.Scale(2, 0.5)
	sx, sy := v.ScaleFactors()
	assert.InDelta(t, 4, sx, tol)
	assert.InDelta(t, 1.5, sy, tol)
}

func TestZoomKeepsPointUnderCursor(t *testing.T) {
	factors := []float64{0.5, 0.75, 1, 1.1, 1.5, 2}
	cursors := []geom.Point{{X: 0, Y: 0}, {X: 400, Y: 300}, {X: 13, Y: 577}, {X: 799, Y: 1}}

	for _, f := range factors {
		for _, p := range cursors {
			v := New(WithSize(800, 600))
			v.Scale(1.3, 1.3)
			v.Rotate(17)
			v.Translate(-45, 120)

			before := v.MapToScene(p)
			require.True(t, v.ZoomAt(p, f))
			assertPoint(t, before, v.MapToScene(p))
		}
	}
}

func TestWheel(t *testing.T) {
	v := New(WithSize(800, 600))
	p := geom.Pt(200, 100)
	before := v.MapToScene(p)

	assert.True(t, v.Wheel(p, 120))
	sx, _ := v.ScaleFactors()
	assert.InDelta(t, 1.12, sx, tol)
	assertPoint(t, before, v.MapToScene(p))

	// a factor of zero or less is ignored
	assert.False(t, v.Wheel(p, -1000))
	assert.False(t, v.Wheel(p, -5000))
	sx, _ = v.ScaleFactors()
	assert.InDelta(t, 1.12, sx, tol)
}

func TestZoomIgnoresOverflow(t *testing.T) {
	v := New(WithSize(800, 600))
	p := geom.Pt(200, 100)

	assert.False(t, v.Wheel(p, 1e308))
	assert.False(t, v.Wheel(p, 1e308))
	assert.False(t, v.ZoomAt(p, math.Inf(1)))
	assert.False(t, v.ZoomAt(p, math.NaN()))
	assert.False(t, v.ZoomAt(p, 1e-320))
	assert.False(t, v.ZoomAt(geom.Pt(math.Inf(1), 0), 2))

	st := v.State()
	assert.Equal(t, 1.0, st.ScaleX)
	assert.Equal(t, 1.0, st.ScaleY)
	assert.Equal(t, 0.0, st.TranslateX)
	assert.Equal(t, 0.0, st.TranslateY)

	// repeated zooms stop at the limit and keep the mapping usable
	for i := 0; i < 200; i++ {
		v.ZoomAt(p, 2)
	}
	st = v.State()
	assert.LessOrEqual(t, st.ScaleX, MaxZoom)
	assert.Greater(t, st.ScaleX, MaxZoom/2)
	assert.True(t, geom.Finite(st.TranslateX, st.TranslateY))
	assertPoint(t, geom.Pt(200, 100), v.MapToScene(p))
}

func TestRotateWrapsAndIgnoresOverflow(t *testing.T) {
	v := New(WithSize(800, 600))
	v.Rotate(350)
	v.Rotate(30)
	assert.InDelta(t, 20, v.Rotation(), tol)

	v.Rotate(1.7e308)
	v.Rotate(1.7e308)
	v.Rotate(math.Inf(1))
	st := v.State()
	assert.True(t, geom.Finite(st.Rotation, st.TranslateX, st.TranslateY))
	assert.Less(t, math.Abs(st.Rotation), 360.0)
}

func TestRotateKeepsAnchor(t *testing.T) {
	tests := []struct {
		name   string
		anchor Anchor
		track  *geom.Point
		fixed  geom.Point
	}{
		{"none", AnchorNone, nil, geom.Pt(0, 0)},
		{"center", AnchorViewCenter, nil, geom.Pt(400, 300)},
		{"mouse without pointer", AnchorUnderMouse, nil, geom.Pt(400, 300)},
		{"mouse", AnchorUnderMouse, &geom.Point{X: 120, Y: 80}, geom.Pt(120, 80)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(WithSize(800, 600), WithAnchor(tt.anchor))
			v.Scale(1.5, 1.5)
			v.Translate(30, -20)
			if tt.track != nil {
				v.TrackPointer(*tt.track)
			}

			before := v.MapToScene(tt.fixed)
			v.Rotate(33)
			assert.InDelta(t, 33, v.Rotation(), tol)
			assertPoint(t, before, v.MapToScene(tt.fixed))
		})
	}
}

func TestRotateAt(t *testing.T) {
	v := New(WithSize(100, 100))
	anchor := geom.Pt(50, 50)
	v.RotateAt(90, anchor)
	assertPoint(t, anchor, v.MapToScene(anchor))
	assertPoint(t, geom.Pt(50, 40), v.MapFromScene(geom.Pt(40, 50)))
}

func TestSetTransformRoundTrip(t *testing.T) {
	src := New()
	src.Scale(2, 3)
	src.Rotate(30)
	src.Translate(5, -7)

	v := New()
	v.SetTransform(src.Transform())
	want, got := src.Transform(), v.Transform()
	for i := range want {
		assert.InDelta(t, want[i], got[i], tol, "element %d", i)
	}
	assert.InDelta(t, 30, v.Rotation(), tol)

	v.ResetTransform()
	assert.True(t, v.Transform().IsIdentity())
}

func TestMapToSceneSingularReturnsInput(t *testing.T) {
	v := New()
	v.Scale(0, 1)
	p := geom.Pt(3, 4)
	assert.Equal(t, p, v.MapToScene(p))

	r := geom.R(1, 2, 3, 4)
	assert.Equal(t, r, v.MapRectToScene(r))
}

func TestMapRectUsesEnvelope(t *testing.T) {
	v := New()
	v.Rotate(90)
	got := v.MapRectFromScene(geom.R(0, 0, 10, 20))
	assert.InDelta(t, -20, got.X, tol)
	assert.InDelta(t, 0, got.Y, tol)
	assert.InDelta(t, 20, got.Width, tol)
	assert.InDelta(t, 10, got.Height, tol)
}

func TestPan(t *testing.T) {
	v := New()
	assert.False(t, v.MovePan(geom.Pt(10, 10)))

	v.BeginPan(geom.Pt(100, 100))
	assert.True(t, v.Panning())
	assert.True(t, v.MovePan(geom.Pt(110, 95)))
	assert.True(t, v.MovePan(geom.Pt(130, 95)))
	assert.Equal(t, 30.0, v.State().TranslateX)
	assert.Equal(t, -5.0, v.State().TranslateY)

	v.CaptureLost()
	assert.False(t, v.Panning())
	assert.False(t, v.MovePan(geom.Pt(500, 500)))
	assert.Equal(t, 30.0, v.State().TranslateX)
}

func TestCenterOn(t *testing.T) {
	v := New(WithSize(800, 600))
	v.Scale(2, 2)
	v.CenterOn(geom.Pt(100, 50))
	assertPoint(t, geom.Pt(400, 300), v.MapFromScene(geom.Pt(100, 50)))

	it := scene.NewItem(scene.NewRectangle(40, 20))
	it.SetPosition(geom.Pt(-100, -100))
	v.CenterOnItem(it)
	assertPoint(t, geom.Pt(400, 300), v.MapFromScene(geom.Pt(-80, -90)))
}

func TestEnsureVisible(t *testing.T) {
	tests := []struct {
		name   string
		rect   geom.Rect
		wantDX float64
		wantDY float64
	}{
		{"inside", geom.R(100, 100, 50, 50), 0, 0},
		{"left edge", geom.R(10, 100, 50, 50), 40, 0},
		{"right edge", geom.R(780, 100, 50, 50), -80, 0},
		{"top edge", geom.R(100, 20, 50, 50), 0, 30},
		{"bottom edge", geom.R(100, 580, 50, 50), 0, -80},
		{"corner", geom.R(-10, 590, 50, 50), 60, -90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(WithSize(800, 600))
			v.EnsureVisible(tt.rect, 50, 50)
			assert.InDelta(t, tt.wantDX, v.State().TranslateX, tol)
			assert.InDelta(t, tt.wantDY, v.State().TranslateY, tol)
		})
	}
}

func TestEnsureVisibleCentersDistantRect(t *testing.T) {
	v := New(WithSize(800, 600))
	v.EnsureVisible(geom.R(5000, 5000, 100, 100), 50, 50)
	assertPoint(t, geom.Pt(400, 300), v.MapFromScene(geom.Pt(5050, 5050)))
}

func TestFitInView(t *testing.T) {
	v := New(WithSize(800, 600))
	v.Rotate(45)
	require.True(t, v.FitInView(geom.R(0, 0, 400, 100), 0.9))

	sx, sy := v.ScaleFactors()
	assert.InDelta(t, 1.8, sx, tol)
	assert.InDelta(t, 1.8, sy, tol)
	assert.Zero(t, v.Rotation())
	assertPoint(t, geom.Pt(400, 300), v.MapFromScene(geom.Pt(200, 50)))

	assert.False(t, v.FitInView(geom.Empty, 1))
	assert.False(t, New().FitInView(geom.R(0, 0, 10, 10), 1))
}

func TestSubscribe(t *testing.T) {
	v := New()
	n := 0
	cancel := v.Subscribe(func() { n++ })
	v.Translate(1, 0)
	v.Translate(0, 0)
	v.Scale(2, 2)
	assert.Equal(t, 2, n)
	cancel()
	v.ResetTransform()
	assert.Equal(t, 2, n)
}
