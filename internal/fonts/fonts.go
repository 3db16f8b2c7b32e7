// Package fonts provides the font faces used to measure and draw text items.
// Faces come from the Go font family bundled with golang.org/x/image and are
// shaped by gogpu/gg's text package.
package fonts

import (
	"fmt"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultSize is the font size used when a spec does not set one.
const DefaultSize = 24

// Spec selects a face from the bundled family.
type Spec struct {
	Size   float64 `json:"size"`
	Bold   bool    `json:"bold,omitempty"`
	Italic bool    `json:"italic,omitempty"`
}

type variant int

const (
	regular variant = iota
	bold
	italic
	boldItalic
)

var variantData = [...][]byte{
	regular:    goregular.TTF,
	bold:       gobold.TTF,
	italic:     goitalic.TTF,
	boldItalic: gobolditalic.TTF,
}

var (
	sourcesOnce sync.Once
	sources     [len(variantData)]*text.FontSource
	sourcesErr  error
)

func loadSources() {
	for v, data := range variantData {
		src, err := text.NewFontSource(data)
		if err != nil {
			sourcesErr = fmt.Errorf("parse font variant %d: %w", v, err)
			return
		}
		sources[v] = src
	}
}

func (s Spec) variant() variant {
	switch {
	case s.Bold && s.Italic:
		return boldItalic
	case s.Bold:
		return bold
	case s.Italic:
		return italic
	default:
		return regular
	}
}

func (s Spec) size() float64 {
	if s.Size <= 0 {
		return DefaultSize
	}
	return s.Size
}

// Face returns the face for spec.
func Face(spec Spec) (text.Face, error) {
	sourcesOnce.Do(loadSources)
	if sourcesErr != nil {
		return nil, sourcesErr
	}
	return sources[spec.variant()].Face(spec.size()), nil
}

// Measurement is the laid-out size of a single line of text.
type Measurement struct {
	Width  float64
	Height float64
	Ascent float64
}

// Measure returns the advance width and line height of s set in spec.
// Empty strings measure as zero.
func Measure(s string, spec Spec) (Measurement, error) {
	if s == "" {
		return Measurement{}, nil
	}
	face, err := Face(spec)
	if err != nil {
		return Measurement{}, err
	}
	w, h := text.Measure(s, face)
	return Measurement{Width: w, Height: h, Ascent: face.Metrics().Ascent}, nil
}
