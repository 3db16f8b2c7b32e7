//go:build js && wasm

package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"syscall/js"

	"github.com/inamate/sceneview/internal/editor"
	"github.com/inamate/sceneview/internal/geom"
	"github.com/inamate/sceneview/internal/input"
	"github.com/inamate/sceneview/internal/sample"
	"github.com/inamate/sceneview/internal/scene"
	"github.com/inamate/sceneview/internal/tool"
	"github.com/inamate/sceneview/internal/view"
)

var (
	ed      *editor.Editor
	samples *sample.Generator
	images  = newImageTable()
)

func main() {
	sc := scene.New()
	sample.Populate(sc)
	samples = sample.NewGenerator(sc, 1)
	ed = editor.New(sc, view.New(view.WithSize(800, 600)), editor.WithImageResolver(images.name))

	sceneviewEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	sceneviewEngine.Set("resize", js.FuncOf(resize))
	sceneviewEngine.Set("pointerDown", js.FuncOf(pointer(input.PointerDown)))
	sceneviewEngine.Set("pointerMove", js.FuncOf(pointer(input.PointerMove)))
	sceneviewEngine.Set("pointerUp", js.FuncOf(pointer(input.PointerUp)))
	sceneviewEngine.Set("captureLost", js.FuncOf(pointer(input.PointerCaptureLost)))
	sceneviewEngine.Set("wheel", js.FuncOf(wheel))
	sceneviewEngine.Set("setTool", js.FuncOf(setTool))
	sceneviewEngine.Set("setSelection", js.FuncOf(setSelection))
	sceneviewEngine.Set("removeItem", js.FuncOf(removeItem))
	sceneviewEngine.Set("clear", js.FuncOf(clearScene))
	sceneviewEngine.Set("addSample", js.FuncOf(addSample))
	sceneviewEngine.Set("addImage", js.FuncOf(addImage))
	sceneviewEngine.Set("setBackground", js.FuncOf(setBackground))
	sceneviewEngine.Set("fitScene", js.FuncOf(fitScene))
	sceneviewEngine.Set("fitBackground", js.FuncOf(fitBackground))
	sceneviewEngine.Set("zoomIn", js.FuncOf(zoomIn))
	sceneviewEngine.Set("zoomOut", js.FuncOf(zoomOut))
	sceneviewEngine.Set("rotate", js.FuncOf(rotate))
	sceneviewEngine.Set("resetView", js.FuncOf(resetView))

	// --- Queries (frontend ← engine) ---
	sceneviewEngine.Set("render", js.FuncOf(render))
	sceneviewEngine.Set("getFrame", js.FuncOf(getFrame))
	sceneviewEngine.Set("isDirty", js.FuncOf(isDirty))
	sceneviewEngine.Set("hitTest", js.FuncOf(hitTest))
	sceneviewEngine.Set("getSelection", js.FuncOf(getSelection))
	sceneviewEngine.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	sceneviewEngine.Set("getViewState", js.FuncOf(getViewState))
	sceneviewEngine.Set("mapToScene", js.FuncOf(mapToScene))
	sceneviewEngine.Set("getTools", js.FuncOf(getTools))
	sceneviewEngine.Set("getSamples", js.FuncOf(getSamples))
	sceneviewEngine.Set("getImageURL", js.FuncOf(getImageURL))

	js.Global().Set("sceneviewEngine", sceneviewEngine)

	// Signal that WASM is ready
	js.Global().Set("sceneviewWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func done() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func fail(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func point(args []js.Value) (geom.Point, bool) {
	if len(args) < 2 {
		return geom.Point{}, false
	}
	return geom.Pt(args[0].Float(), args[1].Float()), true
}

// modifiers reads an optional array of modifier names ("shift", "ctrl", ...).
func modifiers(v js.Value) input.Modifiers {
	if v.Type() != js.TypeObject {
		return 0
	}
	names := make([]string, v.Length())
	for i := range names {
		names[i] = v.Index(i).String()
	}
	return input.ParseModifiers(names)
}

func stringArray(v js.Value) []string {
	if v.Type() != js.TypeObject {
		return nil
	}
	out := make([]string, v.Length())
	for i := range out {
		out[i] = v.Index(i).String()
	}
	return out
}

func toJSON(v any) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return js.ValueOf("null")
	}
	return js.ValueOf(string(data))
}

// --- Command Handlers ---

func resize(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || args[0].Float() <= 0 || args[1].Float() <= 0 {
		return fail(fmt.Errorf("resize needs a positive width and height"))
	}
	ed.View().Resize(args[0].Float(), args[1].Float())
	return done()
}

// pointer handles (x, y, button, mods) where button is the DOM button index.
func pointer(kind input.PointerKind) func(js.Value, []js.Value) interface{} {
	return func(this js.Value, args []js.Value) interface{} {
		ev := input.PointerEvent{Kind: kind}
		if p, ok := point(args); ok {
			ev.Pos = p
		}
		if len(args) > 2 {
			ev.Button = input.ParseButton(args[2].Int())
		}
		if len(args) > 3 {
			ev.Mods = modifiers(args[3])
		}
		ed.HandlePointer(ev)
		return nil
	}
}

func wheel(this js.Value, args []js.Value) interface{} {
	p, ok := point(args)
	if !ok || len(args) < 3 {
		return nil
	}
	ev := input.WheelEvent{Pos: p, Delta: args[2].Float()}
	if len(args) > 3 {
		ev.Mods = modifiers(args[3])
	}
	ed.HandleWheel(ev)
	return nil
}

func setTool(this js.Value, args []js.Value) interface{} {
	name := ""
	if len(args) > 0 && args[0].Type() == js.TypeString {
		name = args[0].String()
	}
	if err := ed.SetTool(name); err != nil {
		return fail(err)
	}
	return done()
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		ed.SetSelection(nil)
		return nil
	}
	ed.SetSelection(stringArray(args[0]))
	return nil
}

func removeItem(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail(fmt.Errorf("missing item id"))
	}
	if !ed.RemoveItem(args[0].String()) {
		return fail(fmt.Errorf("item %q not found", args[0].String()))
	}
	return done()
}

func clearScene(this js.Value, args []js.Value) interface{} {
	ed.Clear()
	return nil
}

func addSample(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail(fmt.Errorf("missing sample kind"))
	}
	it, err := samples.Add(args[0].String())
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "id": it.ID()})
}

// decodeImage reads encoded image bytes from a Uint8Array.
func decodeImage(v js.Value) (image.Image, error) {
	if v.Type() != js.TypeObject {
		return nil, fmt.Errorf("expected image bytes")
	}
	buf := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(buf, v)
	img, _, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// addImage handles (bytes, x, y) with x, y in view coordinates.
func addImage(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return fail(fmt.Errorf("addImage needs bytes, x and y"))
	}
	img, err := decodeImage(args[0])
	if err != nil {
		return fail(err)
	}
	at := ed.View().MapToScene(geom.Pt(args[1].Float(), args[2].Float()))
	it := ed.AddImage(images.add(img), at)
	return js.ValueOf(map[string]interface{}{"ok": true, "id": it.ID()})
}

// setBackground handles (bytes); null removes the background.
func setBackground(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].IsNull() || args[0].IsUndefined() {
		ed.SetBackground(nil)
		return done()
	}
	img, err := decodeImage(args[0])
	if err != nil {
		return fail(err)
	}
	ed.SetBackground(images.add(img))
	return done()
}

func fitScene(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.FitScene())
}

func fitBackground(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.FitBackground())
}

func zoomIn(this js.Value, args []js.Value) interface{} {
	ed.ZoomIn()
	return nil
}

func zoomOut(this js.Value, args []js.Value) interface{} {
	ed.ZoomOut()
	return nil
}

func rotate(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	ed.View().Rotate(args[0].Float())
	return nil
}

func resetView(this js.Value, args []js.Value) interface{} {
	ed.ResetView()
	return nil
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.Render())
}

func getFrame(this js.Value, args []js.Value) interface{} {
	return toJSON(ed.Frame())
}

// isDirty reports and clears the redraw flag, so a requestAnimationFrame loop
// only renders after a change.
func isDirty(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.TakeDirty())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	p, ok := point(args)
	if !ok {
		return js.ValueOf("")
	}
	return js.ValueOf(ed.HitTest(p))
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return toJSON(ed.Selection())
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	r := ed.SelectionBounds()
	if r.IsEmpty() {
		return js.ValueOf("null")
	}
	return toJSON(r)
}

func getViewState(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.ViewStateJSON())
}

func mapToScene(this js.Value, args []js.Value) interface{} {
	p, ok := point(args)
	if !ok {
		return js.ValueOf("null")
	}
	return toJSON(ed.View().MapToScene(p))
}

func getTools(this js.Value, args []js.Value) interface{} {
	return toJSON(tool.Names())
}

func getSamples(this js.Value, args []js.Value) interface{} {
	return toJSON(sample.Kinds())
}

// getImageURL returns a PNG data URL for an image name found in draw commands.
func getImageURL(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf("")
	}
	url, err := images.dataURL(args[0].String())
	if err != nil {
		return js.ValueOf("")
	}
	return js.ValueOf(url)
}

// imageTable names images decoded in the browser. Draw commands carry the
// name; the frontend resolves it once through getImageURL and caches it.
type imageTable struct {
	byName map[string]image.Image
	names  map[image.Image]string
	next   int
}

func newImageTable() *imageTable {
	return &imageTable{
		byName: make(map[string]image.Image),
		names:  make(map[image.Image]string),
	}
}

// add registers img. Decoded images are pointer types, so they key the
// reverse map.
func (t *imageTable) add(img image.Image) image.Image {
	if _, ok := t.names[img]; ok {
		return img
	}
	t.next++
	name := fmt.Sprintf("local-%d", t.next)
	t.byName[name] = img
	t.names[img] = name
	return img
}

func (t *imageTable) name(img image.Image) string {
	if name, ok := t.names[img]; ok {
		return name
	}
	// Sample images come from the generator and are registered lazily.
	t.add(img)
	return t.names[img]
}

func (t *imageTable) dataURL(name string) (string, error) {
	img, ok := t.byName[name]
	if !ok {
		return "", fmt.Errorf("unknown image %q", name)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
