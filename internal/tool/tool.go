// Package tool implements the interactive drawing tools. Tools receive pointer
// events already mapped into scene space, build shapes through preview items
// and commit finished items into the scene they were created for.
package tool

import (
	"errors"
	"fmt"
	"math"

	"github.com/inamate/sceneview/internal/geom"
	"github.com/inamate/sceneview/internal/input"
	"github.com/inamate/sceneview/internal/scene"
)

// ErrUnknownTool is returned by New for names it does not know.
var ErrUnknownTool = errors.New("unknown tool")

// Tool names.
const (
	NameRectangle = "rectangle"
	NameEllipse   = "ellipse"
	NameLine      = "line"
	NamePolygon   = "polygon"
	NameText      = "text"
)

// Z-values of tool-created items. Previews sit above everything else.
const (
	PreviewZ   = math.MaxFloat64
	CommittedZ = 100.0
)

// MinExtent is the smallest width, height or length a drawn shape may have
// to be committed.
const MinExtent = 2.0

// Stroke width of every tool-drawn outline.
const strokeWidth = 2.0

// Tool is an interactive shape constructor.
type Tool interface {
	Name() string
	OnPointerDown(p geom.Point, mods input.Modifiers)
	OnPointerMove(p geom.Point)
	OnPointerUp(p geom.Point)
	// Cancel abandons any gesture in progress and removes its preview items.
	Cancel()
	// Drawing reports whether a gesture is in progress.
	Drawing() bool
}

// Names lists the tools New can build.
func Names() []string {
	return []string{NameRectangle, NameEllipse, NameLine, NamePolygon, NameText}
}

// New builds the named tool bound to s.
func New(name string, s *scene.Scene) (Tool, error) {
	switch name {
	case NameRectangle:
		return NewRectangle(s), nil
	case NameEllipse:
		return NewEllipse(s), nil
	case NameLine:
		return NewLine(s), nil
	case NamePolygon:
		return NewPolygon(s), nil
	case NameText:
		return NewText(s), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
}

// span returns the box between the anchor and the current point.
func span(anchor, p geom.Point) geom.Rect {
	return geom.RectFromPoints(anchor, p)
}
