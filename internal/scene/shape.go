package scene

import (
	"image"
	"log/slog"
	"math"

	"github.com/inamate/sceneview/internal/fonts"
	"github.com/inamate/sceneview/internal/geom"
)

// Kind names a shape variant.
type Kind string

const (
	KindRectangle Kind = "rectangle"
	KindEllipse   Kind = "ellipse"
	KindLine      Kind = "line"
	KindPolygon   Kind = "polygon"
	KindText      Kind = "text"
	KindImage     Kind = "image"
)

// Shape is the geometry and style of an item, in the item's local space.
// The set of variants is closed: *Rectangle, *Ellipse, *Line, *Polygon,
// *Text and *Image.
type Shape interface {
	Kind() Kind
	LocalBounds() geom.Rect
	ContainsLocal(p geom.Point) bool
	Paint(s Surface)

	shape()
}

// Rectangle is an axis-aligned box anchored at the local origin.
type Rectangle struct {
	Width  float64
	Height float64
	Style  Style
}

// NewRectangle returns a w×h rectangle with the default style.
func NewRectangle(w, h float64) *Rectangle {
	return &Rectangle{
		Width:  w,
		Height: h,
		Style:  Style{Fill: "#add8e6", Stroke: Black, StrokeWidth: 1},
	}
}

func (r *Rectangle) Kind() Kind { return KindRectangle }
func (r *Rectangle) shape()     {}

func (r *Rectangle) LocalBounds() geom.Rect {
	return geom.R(0, 0, r.Width, r.Height)
}

func (r *Rectangle) ContainsLocal(p geom.Point) bool {
	return r.LocalBounds().Contains(p)
}

func (r *Rectangle) Paint(s Surface) {
	s.FillAndStrokeRect(r.LocalBounds(), r.Style)
}

// Ellipse is the ellipse inscribed in the box (0, 0, Width, Height).
type Ellipse struct {
	Width  float64
	Height float64
	Style  Style
}

// NewEllipse returns a w×h ellipse with the default style.
func NewEllipse(w, h float64) *Ellipse {
	return &Ellipse{
		Width:  w,
		Height: h,
		Style:  Style{Fill: "#90ee90", Stroke: Black, StrokeWidth: 1},
	}
}

func (e *Ellipse) Kind() Kind { return KindEllipse }
func (e *Ellipse) shape()     {}

func (e *Ellipse) LocalBounds() geom.Rect {
	return geom.R(0, 0, e.Width, e.Height)
}

func (e *Ellipse) ContainsLocal(p geom.Point) bool {
	rx, ry := e.Width/2, e.Height/2
	if rx <= 0 || ry <= 0 {
		return false
	}
	nx := (p.X - rx) / rx
	ny := (p.Y - ry) / ry
	return nx*nx+ny*ny <= 1
}

func (e *Ellipse) Paint(s Surface) {
	rx, ry := e.Width/2, e.Height/2
	s.FillAndStrokeEllipse(geom.Pt(rx, ry), rx, ry, e.Style)
}

// Line is a segment between two local points.
type Line struct {
	Start geom.Point
	End   geom.Point
	Pen   Pen
}

// lineHitSlop is added to the stroke width when hit testing a line.
const lineHitSlop = 2.0

// NewLine returns a segment from start to end with the default pen.
func NewLine(start, end geom.Point) *Line {
	return &Line{Start: start, End: end, Pen: Pen{Color: Black, Width: 2}}
}

func (l *Line) Kind() Kind { return KindLine }
func (l *Line) shape()     {}

func (l *Line) LocalBounds() geom.Rect {
	return geom.RectFromPoints(l.Start, l.End)
}

func (l *Line) ContainsLocal(p geom.Point) bool {
	return distanceToSegment(p, l.Start, l.End) <= l.Pen.Width+lineHitSlop
}

func (l *Line) Paint(s Surface) {
	s.StrokeLine(l.Start, l.End, l.Pen)
}

// distanceToSegment projects p onto the segment a-b, clamps the projection to
// the segment and returns the distance to the clamped point.
func distanceToSegment(p, a, b geom.Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	if dx == 0 && dy == 0 {
		return p.Sub(a).Len()
	}

	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / (dx*dx + dy*dy)
	t = math.Max(0, math.Min(1, t))

	closest := geom.Pt(a.X+t*dx, a.Y+t*dy)
	return p.Sub(closest).Len()
}

// Polygon is an ordered list of local vertices.
type Polygon struct {
	Points []geom.Point
	Closed bool
	Style  Style
}

// NewPolygon returns a closed polygon over points with the default style.
func NewPolygon(points ...geom.Point) *Polygon {
	return &Polygon{
		Points: append([]geom.Point(nil), points...),
		Closed: true,
		Style:  Style{Fill: "#ffff00", Stroke: Black, StrokeWidth: 1},
	}
}

func (pg *Polygon) Kind() Kind { return KindPolygon }
func (pg *Polygon) shape()     {}

// AddPoint appends a vertex.
func (pg *Polygon) AddPoint(p geom.Point) {
	pg.Points = append(pg.Points, p)
}

// AddPoints appends several vertices.
func (pg *Polygon) AddPoints(points ...geom.Point) {
	pg.Points = append(pg.Points, points...)
}

// ClearPoints removes every vertex.
func (pg *Polygon) ClearPoints() {
	pg.Points = pg.Points[:0]
}

func (pg *Polygon) LocalBounds() geom.Rect {
	return geom.Envelope(pg.Points...)
}

// ContainsLocal uses the even-odd ray casting rule. Fewer than three vertices
// never contain a point.
func (pg *Polygon) ContainsLocal(p geom.Point) bool {
	n := len(pg.Points)
	if n < 3 {
		return false
	}

	crossings := 0
	for i := 0; i < n; i++ {
		p1 := pg.Points[i]
		p2 := pg.Points[(i+1)%n]
		if (p1.Y > p.Y) != (p2.Y > p.Y) &&
			p.X < (p2.X-p1.X)*(p.Y-p1.Y)/(p2.Y-p1.Y)+p1.X {
			crossings++
		}
	}
	return crossings%2 == 1
}

func (pg *Polygon) Paint(s Surface) {
	switch len(pg.Points) {
	case 0, 1:
		return
	case 2:
		s.StrokeLine(pg.Points[0], pg.Points[1], pg.Style.Pen())
	default:
		style := pg.Style
		if !pg.Closed {
			// An unfinished outline is not filled.
			style.Fill = Transparent
		}
		s.FillAndStrokePath(pg.Points, pg.Closed, style)
	}
}

// Text is a single line of text whose layout box starts at the local origin.
type Text struct {
	Text  string
	Font  fonts.Spec
	Color string

	measuredFor struct {
		text string
		font fonts.Spec
	}
	measured fonts.Measurement
}

// NewText returns a text shape set in the default font.
func NewText(s string) *Text {
	return &Text{
		Text:  s,
		Font:  fonts.Spec{Size: fonts.DefaultSize},
		Color: Black,
	}
}

func (t *Text) Kind() Kind { return KindText }
func (t *Text) shape()     {}

func (t *Text) measure() fonts.Measurement {
	if t.measuredFor.text == t.Text && t.measuredFor.font == t.Font {
		return t.measured
	}
	m, err := fonts.Measure(t.Text, t.Font)
	if err != nil {
		slog.Warn("measure text", "error", err)
		m = fonts.Measurement{}
	}
	t.measured = m
	t.measuredFor.text = t.Text
	t.measuredFor.font = t.Font
	return m
}

// Formatted returns the measured text as handed to Surface.DrawText.
func (t *Text) Formatted() FormattedText {
	m := t.measure()
	return FormattedText{
		Text:   t.Text,
		Font:   t.Font,
		Color:  t.Color,
		Width:  m.Width,
		Height: m.Height,
		Ascent: m.Ascent,
	}
}

func (t *Text) LocalBounds() geom.Rect {
	if t.Text == "" {
		return geom.Empty
	}
	m := t.measure()
	return geom.R(0, 0, m.Width, m.Height)
}

func (t *Text) ContainsLocal(p geom.Point) bool {
	return t.LocalBounds().Contains(p)
}

func (t *Text) Paint(s Surface) {
	if t.Text == "" {
		return
	}
	s.DrawText(t.Formatted(), geom.Pt(0, 0))
}

// Image draws a decoded bitmap into the box (0, 0, Width, Height).
type Image struct {
	source image.Image
	width  float64
	height float64
	sized  bool
}

// NewImage returns an image shape sized to src's pixel dimensions.
func NewImage(src image.Image) *Image {
	return &Image{source: src}
}

func (im *Image) Kind() Kind { return KindImage }
func (im *Image) shape()     {}

// Source returns the backing image, or nil.
func (im *Image) Source() image.Image { return im.source }

// SetSource replaces the backing image.
func (im *Image) SetSource(src image.Image) { im.source = src }

// SetSize overrides the natural pixel size.
func (im *Image) SetSize(w, h float64) {
	im.width, im.height, im.sized = w, h, true
}

// ResetSize returns to the natural pixel size of the source.
func (im *Image) ResetSize() {
	im.width, im.height, im.sized = 0, 0, false
}

// Size returns the drawn size.
func (im *Image) Size() (w, h float64) {
	if im.sized {
		return im.width, im.height
	}
	if im.source == nil {
		return 0, 0
	}
	b := im.source.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

func (im *Image) LocalBounds() geom.Rect {
	w, h := im.Size()
	return geom.R(0, 0, w, h)
}

func (im *Image) ContainsLocal(p geom.Point) bool {
	return im.LocalBounds().Contains(p)
}

func (im *Image) Paint(s Surface) {
	if im.source == nil {
		return
	}
	s.DrawImage(im.source, im.LocalBounds())
}
