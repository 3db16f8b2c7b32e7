package render

import (
	"encoding/json"
	"image"

	"github.com/inamate/sceneview/internal/fonts"
	"github.com/inamate/sceneview/internal/geom"
	"github.com/inamate/sceneview/internal/scene"
)

// Draw command ops.
const (
	OpSave      = "save"
	OpTransform = "transform"
	OpRestore   = "restore"
	OpRect      = "rect"
	OpEllipse   = "ellipse"
	OpLine      = "line"
	OpPath      = "path"
	OpText      = "text"
	OpImage     = "image"
)

// DrawCommand represents a single drawing operation for the frontend to execute.
// The frontend receives a list of these and executes them on a Canvas2D context.
type DrawCommand struct {
	Op       string `json:"op"`
	ObjectID string `json:"objectId,omitempty"` // For hit correlation

	Transform []float64 `json:"transform,omitempty"` // [a, b, c, d, e, f] for "transform"

	// Box geometry for "rect" and "image"; the ellipse's bounding box for "ellipse".
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	Points []geom.Point `json:"points,omitempty"` // "line" endpoints and "path" vertices
	Closed bool         `json:"closed,omitempty"`

	Fill        string    `json:"fill,omitempty"`
	Stroke      string    `json:"stroke,omitempty"`
	StrokeWidth float64   `json:"strokeWidth,omitempty"`
	Dash        []float64 `json:"dash,omitempty"`

	Text   string      `json:"text,omitempty"`
	Font   *fonts.Spec `json:"font,omitempty"`
	Ascent float64     `json:"ascent,omitempty"`

	ImageAssetID string `json:"imageAssetId,omitempty"` // Asset ID for image lookup
}

// ImageResolver names a decoded image so the frontend can fetch it. An empty
// name drops the draw.
type ImageResolver func(img image.Image) string

// Recorder is a scene.Surface that records draw commands.
type Recorder struct {
	commands []DrawCommand
	object   string
	images   ImageResolver
}

// NewRecorder returns an empty recorder. images may be nil, in which case
// image draws are skipped.
func NewRecorder(images ImageResolver) *Recorder {
	return &Recorder{images: images}
}

// Commands returns the recorded commands in painter's order.
func (r *Recorder) Commands() []DrawCommand {
	return r.commands
}

// Reset discards recorded commands.
func (r *Recorder) Reset() {
	r.commands = r.commands[:0]
	r.object = ""
}

func (r *Recorder) emit(cmd DrawCommand) {
	cmd.ObjectID = r.object
	r.commands = append(r.commands, cmd)
}

func (r *Recorder) BeginItem(id string) { r.object = id }
func (r *Recorder) EndItem()            { r.object = "" }

func (r *Recorder) PushTransform(m geom.Matrix2D) {
	r.emit(DrawCommand{Op: OpSave})
	r.emit(DrawCommand{Op: OpTransform, Transform: m.ToSlice()})
}

func (r *Recorder) Pop() {
	r.emit(DrawCommand{Op: OpRestore})
}

func (r *Recorder) FillAndStrokeRect(rect geom.Rect, style scene.Style) {
	r.emit(DrawCommand{
		Op:          OpRect,
		X:           rect.X,
		Y:           rect.Y,
		Width:       rect.Width,
		Height:      rect.Height,
		Fill:        style.Fill,
		Stroke:      style.Stroke,
		StrokeWidth: style.StrokeWidth,
		Dash:        style.Dash,
	})
}

func (r *Recorder) FillAndStrokeEllipse(center geom.Point, rx, ry float64, style scene.Style) {
	r.emit(DrawCommand{
		Op:          OpEllipse,
		X:           center.X - rx,
		Y:           center.Y - ry,
		Width:       2 * rx,
		Height:      2 * ry,
		Fill:        style.Fill,
		Stroke:      style.Stroke,
		StrokeWidth: style.StrokeWidth,
		Dash:        style.Dash,
	})
}

func (r *Recorder) StrokeLine(p1, p2 geom.Point, pen scene.Pen) {
	r.emit(DrawCommand{
		Op:          OpLine,
		Points:      []geom.Point{p1, p2},
		Stroke:      pen.Color,
		StrokeWidth: pen.Width,
		Dash:        pen.Dash,
	})
}

func (r *Recorder) FillAndStrokePath(points []geom.Point, closed bool, style scene.Style) {
	r.emit(DrawCommand{
		Op:          OpPath,
		Points:      append([]geom.Point(nil), points...),
		Closed:      closed,
		Fill:        style.Fill,
		Stroke:      style.Stroke,
		StrokeWidth: style.StrokeWidth,
		Dash:        style.Dash,
	})
}

func (r *Recorder) DrawText(ft scene.FormattedText, origin geom.Point) {
	font := ft.Font
	r.emit(DrawCommand{
		Op:     OpText,
		X:      origin.X,
		Y:      origin.Y,
		Width:  ft.Width,
		Height: ft.Height,
		Text:   ft.Text,
		Font:   &font,
		Ascent: ft.Ascent,
		Fill:   ft.Color,
	})
}

func (r *Recorder) DrawImage(img image.Image, dest geom.Rect) {
	if r.images == nil {
		return
	}
	id := r.images(img)
	if id == "" {
		return
	}
	r.emit(DrawCommand{
		Op:           OpImage,
		X:            dest.X,
		Y:            dest.Y,
		Width:        dest.Width,
		Height:       dest.Height,
		ImageAssetID: id,
	})
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	if len(commands) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}
