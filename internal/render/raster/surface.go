// Package raster paints scenes into bitmaps with gogpu/gg.
package raster

import (
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/gogpu/gg"

	"github.com/inamate/sceneview/internal/fonts"
	"github.com/inamate/sceneview/internal/geom"
	"github.com/inamate/sceneview/internal/render"
	"github.com/inamate/sceneview/internal/scene"
)

// Surface is a scene.Surface backed by a gg drawing context.
type Surface struct {
	dc *gg.Context
}

// NewSurface allocates a w×h surface cleared to background (a hex color; empty
// leaves it transparent).
func NewSurface(w, h int, background string) *Surface {
	dc := gg.NewContext(w, h)
	if background != "" {
		dc.ClearWithColor(gg.Hex(background))
	}
	return &Surface{dc: dc}
}

// Context exposes the underlying gg context.
func (s *Surface) Context() *gg.Context { return s.dc }

// Image returns the rendered pixels.
func (s *Surface) Image() image.Image { return s.dc.Image() }

// EncodePNG writes the surface as PNG.
func (s *Surface) EncodePNG(w io.Writer) error {
	if err := s.dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Close releases the drawing context.
func (s *Surface) Close() error {
	return s.dc.Close()
}

// toMatrix converts the canvas layout [a b c d e f] to gg's row-major form.
func toMatrix(m geom.Matrix2D) gg.Matrix {
	return gg.Matrix{
		A: m[0], B: m[2], C: m[4],
		D: m[1], E: m[3], F: m[5],
	}
}

func (s *Surface) PushTransform(m geom.Matrix2D) {
	s.dc.Push()
	s.dc.Transform(toMatrix(m))
}

func (s *Surface) Pop() {
	s.dc.Pop()
}

func (s *Surface) setDash(dash []float64) {
	if len(dash) == 0 {
		s.dc.ClearDash()
		return
	}
	s.dc.SetDash(dash...)
}

// paint fills and then strokes the current path according to style.
func (s *Surface) paint(style scene.Style) {
	if style.Fill != "" {
		s.dc.SetHexColor(style.Fill)
		if err := s.dc.FillPreserve(); err != nil {
			slog.Debug("raster fill failed", "error", err)
		}
	}
	if style.Stroke != "" && style.StrokeWidth > 0 {
		s.dc.SetHexColor(style.Stroke)
		s.dc.SetLineWidth(style.StrokeWidth)
		s.setDash(style.Dash)
		if err := s.dc.StrokePreserve(); err != nil {
			slog.Debug("raster stroke failed", "error", err)
		}
	}
	s.dc.ClearPath()
}

func (s *Surface) FillAndStrokeRect(r geom.Rect, style scene.Style) {
	s.dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	s.paint(style)
}

func (s *Surface) FillAndStrokeEllipse(center geom.Point, rx, ry float64, style scene.Style) {
	if rx <= 0 || ry <= 0 {
		return
	}
	s.dc.DrawEllipse(center.X, center.Y, rx, ry)
	s.paint(style)
}

func (s *Surface) StrokeLine(p1, p2 geom.Point, pen scene.Pen) {
	s.dc.DrawLine(p1.X, p1.Y, p2.X, p2.Y)
	s.paint(scene.Style{Stroke: pen.Color, StrokeWidth: pen.Width, Dash: pen.Dash})
}

func (s *Surface) FillAndStrokePath(points []geom.Point, closed bool, style scene.Style) {
	if len(points) == 0 {
		return
	}
	s.dc.MoveTo(points[0].X, points[0].Y)
	for _, p := range points[1:] {
		s.dc.LineTo(p.X, p.Y)
	}
	if closed {
		s.dc.ClosePath()
	}
	s.paint(style)
}

// DrawText draws at the transformed origin. gg renders glyphs in device
// space, so rotation and scale of the current transform only move the origin;
// the face is sized by the transform's scale along x.
func (s *Surface) DrawText(ft scene.FormattedText, origin geom.Point) {
	if ft.Text == "" {
		return
	}

	spec := ft.Font
	x0, y0 := s.dc.TransformPoint(0, 0)
	x1, y1 := s.dc.TransformPoint(1, 0)
	if scale := geom.Pt(x1-x0, y1-y0).Len(); scale > 0 {
		if spec.Size <= 0 {
			spec.Size = fonts.DefaultSize
		}
		spec.Size *= scale
	}

	face, err := fonts.Face(spec)
	if err != nil {
		slog.Warn("raster text skipped", "error", err)
		return
	}

	color := ft.Color
	if color == "" {
		color = scene.Black
	}
	x, y := s.dc.TransformPoint(origin.X, origin.Y+ft.Ascent)
	s.dc.SetFont(face)
	s.dc.SetHexColor(color)
	s.dc.DrawString(ft.Text, x, y)
}

func (s *Surface) DrawImage(img image.Image, dest geom.Rect) {
	if img == nil || dest.Width <= 0 || dest.Height <= 0 {
		return
	}
	s.dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
		X:         dest.X,
		Y:         dest.Y,
		DstWidth:  dest.Width,
		DstHeight: dest.Height,
	})
}

// Snapshot renders sc through view into a new w×h surface.
func Snapshot(sc *scene.Scene, view geom.Matrix2D, w, h int, background string) *Surface {
	s := NewSurface(w, h, background)
	render.Frame(s, view, sc)
	return s
}
