package scene

import (
	"image"

	"github.com/inamate/sceneview/internal/fonts"
	"github.com/inamate/sceneview/internal/geom"
)

// Surface is the immediate-mode canvas items paint onto. Geometry is given in
// the coordinate space established by the pushed transforms.
type Surface interface {
	// PushTransform saves the current state and concatenates m to the
	// current transform.
	PushTransform(m geom.Matrix2D)
	// Pop restores the state saved by the matching PushTransform.
	Pop()

	FillAndStrokeRect(r geom.Rect, style Style)
	FillAndStrokeEllipse(center geom.Point, rx, ry float64, style Style)
	StrokeLine(p1, p2 geom.Point, pen Pen)
	FillAndStrokePath(points []geom.Point, closed bool, style Style)
	DrawText(ft FormattedText, origin geom.Point)
	DrawImage(img image.Image, dest geom.Rect)
}

// Style describes how a closed shape is filled and outlined.
// Colors are hex strings ("#rrggbb" or "#rrggbbaa"); an empty color paints nothing.
type Style struct {
	Fill        string    `json:"fill,omitempty"`
	Stroke      string    `json:"stroke,omitempty"`
	StrokeWidth float64   `json:"strokeWidth,omitempty"`
	Dash        []float64 `json:"dash,omitempty"`
}

// Pen describes how an open path is stroked.
type Pen struct {
	Color string    `json:"color,omitempty"`
	Width float64   `json:"width,omitempty"`
	Dash  []float64 `json:"dash,omitempty"`
}

// Pen returns the stroke half of the style.
func (s Style) Pen() Pen {
	return Pen{Color: s.Stroke, Width: s.StrokeWidth, Dash: s.Dash}
}

// FormattedText is a measured run of text ready to draw. The origin passed to
// DrawText is the top-left corner of the layout box.
type FormattedText struct {
	Text   string     `json:"text"`
	Font   fonts.Spec `json:"font"`
	Color  string     `json:"color,omitempty"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Ascent float64    `json:"ascent"`
}

// Selection outline drawn around selected items.
const (
	SelectionMargin = 2.0
	selectionColor  = "#0000ff"
	selectionWidth  = 2.0
)

var selectionStyle = Style{
	Stroke:      selectionColor,
	StrokeWidth: selectionWidth,
	Dash:        []float64{4, 2},
}

// Well-known colors.
const (
	Transparent = ""
	Black       = "#000000"
)
