package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/inamate/sceneview/internal/render/raster"
	"github.com/inamate/sceneview/internal/scene"
	"github.com/inamate/sceneview/internal/view"
)

const defaultBackground = "#ffffff"

// SceneSource gives locked access to an open canvas's scene.
type SceneSource interface {
	WithScene(canvasID string, fn func(sc *scene.Scene)) bool
}

type Handler struct {
	scenes  SceneSource
	maxSize int
}

func NewHandler(scenes SceneSource, maxSize int) *Handler {
	return &Handler{scenes: scenes, maxSize: maxSize}
}

// ExportPNG handles GET /export/{canvasId}.png. The whole scene rect is fitted
// into the image. Query parameters: width, height (pixels; default is the
// scene rect size, capped at the configured maximum), background (hex color)
// and name (download file name).
func (h *Handler) ExportPNG(w http.ResponseWriter, r *http.Request) {
	canvasID := mux.Vars(r)["canvasId"]
	q := r.URL.Query()

	reqW, err := dimension(q.Get("width"), h.maxSize)
	if err != nil {
		http.Error(w, "invalid width: "+err.Error(), http.StatusBadRequest)
		return
	}
	reqH, err := dimension(q.Get("height"), h.maxSize)
	if err != nil {
		http.Error(w, "invalid height: "+err.Error(), http.StatusBadRequest)
		return
	}

	background := q.Get("background")
	if background == "" {
		background = defaultBackground
	}
	if !validHex(background) {
		http.Error(w, "invalid background color", http.StatusBadRequest)
		return
	}

	var surface *raster.Surface
	found := h.scenes.WithScene(canvasID, func(sc *scene.Scene) {
		rect := sc.SceneRect()
		width, height := h.size(rect.Width, rect.Height, reqW, reqH)

		v := view.New(view.WithSize(float64(width), float64(height)))
		v.FitInView(rect, 1)
		surface = raster.Snapshot(sc, v.Transform(), width, height, background)
	})
	if !found {
		http.Error(w, "canvas not open", http.StatusNotFound)
		return
	}
	defer surface.Close()

	var buf bytes.Buffer
	if err := surface.EncodePNG(&buf); err != nil {
		slog.Error("export png", "error", err, "canvas", canvasID)
		http.Error(w, "failed to encode image", http.StatusInternalServerError)
		return
	}

	name := sanitize(q.Get("name"))
	if name == "" {
		name = canvasID
	}

	slog.Info("scene exported", "canvas", canvasID, "bytes", buf.Len())

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.png"`, name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

// size picks the output size. A missing dimension follows the scene's aspect
// ratio; the result is scaled down uniformly to fit maxSize.
func (h *Handler) size(sceneW, sceneH float64, reqW, reqH int) (int, int) {
	w, ht := float64(reqW), float64(reqH)
	switch {
	case reqW == 0 && reqH == 0:
		w, ht = sceneW, sceneH
	case reqW == 0:
		w = ht * sceneW / sceneH
	case reqH == 0:
		ht = w * sceneH / sceneW
	}

	limit := float64(h.maxSize)
	if over := math.Max(w, ht) / limit; over > 1 {
		w /= over
		ht /= over
	}
	return max1(int(math.Round(w))), max1(int(math.Round(ht)))
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// dimension parses an optional pixel size. Empty means 0 (unset).
func dimension(s string, limit int) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 || n > limit {
		return 0, fmt.Errorf("must be between 1 and %d", limit)
	}
	return n, nil
}

func validHex(s string) bool {
	s = strings.TrimPrefix(s, "#")
	switch len(s) {
	case 3, 4, 6, 8:
	default:
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

// sanitize keeps file names to letters, digits, dashes and underscores.
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}
