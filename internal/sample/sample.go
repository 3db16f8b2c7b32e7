// Package sample fills scenes with demo content.
package sample

import (
	"fmt"
	"image"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/gogpu/gg"

	"github.com/inamate/sceneview/internal/fonts"
	"github.com/inamate/sceneview/internal/geom"
	"github.com/inamate/sceneview/internal/scene"
)

// Title is the caption of the demo scene.
const Title = "Retained Scene Graph"

// Populate adds the demo scene to sc and returns the new items in insertion
// order.
func Populate(sc *scene.Scene) []*scene.Item {
	rect1 := scene.NewRectangle(150, 100)
	rect1.Style = scene.Style{Fill: "#add8e6", Stroke: "#00008b", StrokeWidth: 2}

	ellipse1 := scene.NewEllipse(120, 120)
	ellipse1.Style = scene.Style{Fill: "#90ee90", Stroke: "#006400", StrokeWidth: 2}

	line1 := scene.NewLine(geom.Pt(0, 0), geom.Pt(100, 150))
	line1.Pen = scene.Pen{Color: "#ff0000", Width: 3}

	rect2 := scene.NewRectangle(100, 80)
	rect2.Style = scene.Style{Fill: "#ffa500", Stroke: "#ff8c00", StrokeWidth: 2}

	triangle := scene.NewPolygon(geom.Pt(50, 0), geom.Pt(100, 86), geom.Pt(0, 86))
	triangle.Style = scene.Style{Fill: "#ffc0cb", Stroke: "#800080", StrokeWidth: 2}

	title := scene.NewText(Title)
	title.Font = fonts.Spec{Size: 32, Bold: true}
	title.Color = "#00008b"

	items := []*scene.Item{
		place(rect1, 100, 100, 0),
		place(ellipse1, 300, 150, 0),
		place(line1, 450, 100, 0),
		place(rect2, 200, 300, 1),
		place(triangle, 550, 300, 2),
		place(title, 50, 450, 3),
	}
	items[3].SetRotation(45)

	for _, it := range items {
		sc.AddItem(it)
	}
	slog.Debug("sample scene populated", "items", len(items))
	return items
}

func place(sh scene.Shape, x, y, z float64) *scene.Item {
	it := scene.NewItem(sh)
	it.SetPosition(geom.Pt(x, y))
	it.SetZValue(z)
	return it
}

// Kinds lists what Generator.Add can create.
func Kinds() []string {
	return []string{"rectangle", "ellipse", "line", "triangle", "pentagon", "star", "text", "image"}
}

// Generator adds randomized shapes to a scene. Each new item is stacked on
// top with a z-value equal to the item count before it was added.
type Generator struct {
	scene *scene.Scene
	rng   *rand.Rand
}

// NewGenerator creates a generator for sc seeded with seed.
func NewGenerator(sc *scene.Scene, seed uint64) *Generator {
	return &Generator{
		scene: sc,
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// between returns an integer in [lo, hi).
func (g *Generator) between(lo, hi int) float64 {
	return float64(lo + g.rng.IntN(hi-lo))
}

func (g *Generator) color(lo, hi int) string {
	return fmt.Sprintf("#%02x%02x%02x", int(g.between(lo, hi)), int(g.between(lo, hi)), int(g.between(lo, hi)))
}

func (g *Generator) add(sh scene.Shape) *scene.Item {
	it := place(sh, g.between(50, 600), g.between(50, 400), float64(g.scene.Len()))
	g.scene.AddItem(it)
	return it
}

// Add creates one item of the named kind.
func (g *Generator) Add(kind string) (*scene.Item, error) {
	switch kind {
	case "rectangle":
		return g.Rectangle(), nil
	case "ellipse":
		return g.Ellipse(), nil
	case "line":
		return g.Line(), nil
	case "triangle":
		return g.Triangle(), nil
	case "pentagon":
		return g.Pentagon(), nil
	case "star":
		return g.Star(), nil
	case "text":
		return g.Text(), nil
	case "image":
		return g.Image(), nil
	default:
		return nil, fmt.Errorf("unknown sample kind %q", kind)
	}
}

func (g *Generator) Rectangle() *scene.Item {
	r := scene.NewRectangle(g.between(50, 150), g.between(50, 150))
	r.Style = scene.Style{Fill: g.color(100, 255), Stroke: scene.Black, StrokeWidth: 2}
	return g.add(r)
}

func (g *Generator) Ellipse() *scene.Item {
	e := scene.NewEllipse(g.between(50, 150), g.between(50, 150))
	e.Style = scene.Style{Fill: g.color(100, 255), Stroke: scene.Black, StrokeWidth: 2}
	return g.add(e)
}

func (g *Generator) Line() *scene.Item {
	l := scene.NewLine(geom.Pt(0, 0), geom.Pt(g.between(0, 150), g.between(0, 150)))
	l.Pen = scene.Pen{Color: g.color(0, 255), Width: g.between(2, 5)}
	return g.add(l)
}

func (g *Generator) Triangle() *scene.Item {
	base := g.between(60, 120)
	h := base * math.Sqrt(3) / 2
	pg := scene.NewPolygon(geom.Pt(base/2, 0), geom.Pt(base, h), geom.Pt(0, h))
	pg.Style = scene.Style{Fill: g.color(100, 255), Stroke: scene.Black, StrokeWidth: 2}
	return g.add(pg)
}

func (g *Generator) Pentagon() *scene.Item {
	r := g.between(40, 80)
	pg := scene.NewPolygon(RegularPolygon(5, r)...)
	pg.Style = scene.Style{Fill: g.color(100, 255), Stroke: scene.Black, StrokeWidth: 2}
	return g.add(pg)
}

func (g *Generator) Star() *scene.Item {
	outer := g.between(50, 80)
	pg := scene.NewPolygon(StarPoints(5, outer, outer*0.4)...)
	fill := fmt.Sprintf("#%02x%02x%02x", int(g.between(200, 255)), int(g.between(200, 255)), int(g.between(100, 255)))
	pg.Style = scene.Style{Fill: fill, Stroke: "#ff8c00", StrokeWidth: 2}
	return g.add(pg)
}

func (g *Generator) Text() *scene.Item {
	t := scene.NewText("Hello")
	t.Font = fonts.Spec{Size: g.between(16, 48), Bold: g.rng.Float64() > 0.5}
	t.Color = g.color(0, 200)
	return g.add(t)
}

func (g *Generator) Image() *scene.Item {
	img := GradientImage(int(g.between(80, 150)), int(g.between(80, 150)), g.color(100, 255), g.color(100, 255))
	return g.add(scene.NewImage(img))
}

// RegularPolygon returns n vertices on a circle of radius r, first vertex at
// the top, translated so the circle's box starts at the origin.
func RegularPolygon(n int, r float64) []geom.Point {
	pts := make([]geom.Point, n)
	for i := range pts {
		a := float64(i)*2*math.Pi/float64(n) - math.Pi/2
		pts[i] = geom.Pt(r*math.Cos(a)+r, r*math.Sin(a)+r)
	}
	return pts
}

// StarPoints alternates between outer and inner radius for a star with n
// tips.
func StarPoints(n int, outer, inner float64) []geom.Point {
	pts := make([]geom.Point, 2*n)
	for i := range pts {
		a := float64(i)*math.Pi/float64(n) - math.Pi/2
		r := outer
		if i%2 == 1 {
			r = inner
		}
		pts[i] = geom.Pt(r*math.Cos(a)+outer, r*math.Sin(a)+outer)
	}
	return pts
}

// GradientImage renders a w×h diagonal gradient between two hex colors with
// a white "IMG" label in the middle.
func GradientImage(w, h int, from, to string) image.Image {
	dc := gg.NewContext(w, h)
	defer dc.Close()

	grad := gg.NewLinearGradientBrush(0, 0, float64(w), float64(h)).
		AddColorStop(0, gg.Hex(from)).
		AddColorStop(1, gg.Hex(to))
	dc.SetFillBrush(grad)
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	if err := dc.Fill(); err != nil {
		slog.Debug("sample gradient fill failed", "error", err)
	}

	face, err := fonts.Face(fonts.Spec{Size: float64(w) / 4, Bold: true})
	if err != nil {
		slog.Warn("sample image label skipped", "error", err)
		return dc.Image()
	}
	dc.SetFont(face)
	dc.SetHexColor("#ffffff")
	dc.DrawStringAnchored("IMG", float64(w)/2, float64(h)/2, 0.5, 0.5)
	return dc.Image()
}
