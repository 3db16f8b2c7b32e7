// Package input describes the pointer and wheel events a host delivers to a
// viewport, in view-space coordinates.
package input

import (
	"strings"

	"github.com/inamate/sceneview/internal/geom"
)

// Button identifies the pointer button that changed state.
type Button int

const (
	ButtonNone Button = iota
	ButtonPrimary
	ButtonPan
	ButtonSecondary
)

// Modifiers is a bit set of held modifier keys.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModControl
	ModAlt
	ModMeta
)

// Has reports whether all bits of m are set.
func (mods Modifiers) Has(m Modifiers) bool {
	return m != 0 && mods&m == m
}

// ParseModifiers converts names like "ctrl", "shift" into a bit set.
// Unknown names are ignored.
func ParseModifiers(names []string) Modifiers {
	var mods Modifiers
	for _, n := range names {
		switch strings.ToLower(n) {
		case "shift":
			mods |= ModShift
		case "ctrl", "control":
			mods |= ModControl
		case "alt", "option":
			mods |= ModAlt
		case "meta", "cmd", "super":
			mods |= ModMeta
		}
	}
	return mods
}

// ParseButton maps a DOM-style button index (0 primary, 1 middle, 2 secondary).
func ParseButton(index int) Button {
	switch index {
	case 0:
		return ButtonPrimary
	case 1:
		return ButtonPan
	case 2:
		return ButtonSecondary
	default:
		return ButtonNone
	}
}

// PointerKind is the phase of a pointer event.
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
	// PointerCaptureLost is delivered when the host loses pointer capture
	// involuntarily. It is handled like a release of every button.
	PointerCaptureLost
)

// PointerEvent is a pointer state change at a view-space position.
type PointerEvent struct {
	Kind   PointerKind
	Pos    geom.Point
	Button Button
	Mods   Modifiers
}

// WheelEvent is a zoom gesture at a view-space position. Positive deltas zoom in.
type WheelEvent struct {
	Pos   geom.Point
	Delta float64
	Mods  Modifiers
}
