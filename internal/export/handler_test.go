package export

import (
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/sceneview/internal/geom"
	"github.com/inamate/sceneview/internal/scene"
)

type fakeSource map[string]*scene.Scene

func (f fakeSource) WithScene(canvasID string, fn func(sc *scene.Scene)) bool {
	sc, ok := f[canvasID]
	if !ok {
		return false
	}
	fn(sc)
	return true
}

func newRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/export/{canvasId}.png", h.ExportPNG).Methods("GET")
	return r
}

func redScene() *scene.Scene {
	sc := scene.New(scene.WithMargin(0))
	r := scene.NewRectangle(100, 50)
	r.Style = scene.Style{Fill: "#ff0000"}
	sc.AddItem(scene.NewItem(r))
	return sc
}

func get(t *testing.T, h http.Handler, url string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	return rec
}

func TestExportPNG(t *testing.T) {
	router := newRouter(NewHandler(fakeSource{"canvas_1": redScene()}, 4096))

	rec := get(t, router, "/export/canvas_1.png?name=my%20scene")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="my-scene.png"`)

	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())

	c := color.RGBAModel.Convert(img.At(50, 25)).(color.RGBA)
	assert.Greater(t, c.R, uint8(200))
	assert.Less(t, c.G, uint8(50))
}

func TestExportSizes(t *testing.T) {
	router := newRouter(NewHandler(fakeSource{"canvas_1": redScene()}, 80))

	cases := []struct {
		query string
		w, h  int
	}{
		{"", 80, 40},
		{"?width=40", 40, 20},
		{"?height=10", 20, 10},
		{"?width=30&height=30", 30, 30},
	}
	for _, tc := range cases {
		rec := get(t, router, "/export/canvas_1.png"+tc.query)
		require.Equal(t, http.StatusOK, rec.Code, tc.query)
		img, err := png.Decode(rec.Body)
		require.NoError(t, err)
		assert.Equal(t, tc.w, img.Bounds().Dx(), tc.query)
		assert.Equal(t, tc.h, img.Bounds().Dy(), tc.query)
	}
}

func TestExportErrors(t *testing.T) {
	router := newRouter(NewHandler(fakeSource{"canvas_1": redScene()}, 100))

	assert.Equal(t, http.StatusNotFound, get(t, router, "/export/canvas_2.png").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/export/canvas_1.png?width=abc").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/export/canvas_1.png?height=101").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, router, "/export/canvas_1.png?background=red").Code)
}

func TestExportEmptySceneUsesDefaultRect(t *testing.T) {
	sc := scene.New(scene.WithDefaultRect(geom.R(0, 0, 300, 200)))
	router := newRouter(NewHandler(fakeSource{"c": sc}, 150))

	rec := get(t, router, "/export/c.png?background=%23000")
	require.Equal(t, http.StatusOK, rec.Code)
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 150, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())

	c := color.RGBAModel.Convert(img.At(10, 10)).(color.RGBA)
	assert.Equal(t, uint8(0), c.R)
}

func TestValidHex(t *testing.T) {
	for _, s := range []string{"#fff", "#ffff", "#a0b1c2", "a0b1c2ff"} {
		assert.True(t, validHex(s), s)
	}
	for _, s := range []string{"", "#ff", "#ggg", "red"} {
		assert.False(t, validHex(s), s)
	}
}
