package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/inamate/sceneview/internal/editor"
	"github.com/inamate/sceneview/internal/geom"
	"github.com/inamate/sceneview/internal/input"
)

var (
	ErrUnknownType  = errors.New("unknown message type")
	ErrBadPayload   = errors.New("invalid payload")
	ErrItemNotFound = errors.New("item not found")
	ErrNoImages     = errors.New("image store not configured")
)

func decode(msg *Message, v any) error {
	if len(msg.Payload) == 0 || string(msg.Payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}

// viewPoint checks a client view position: it and the scene point it maps
// to must lie within geom.MaxCoord.
func viewPoint(ed *editor.Editor, x, y float64) (geom.Point, error) {
	p := geom.Pt(x, y)
	if !p.InRange() || !ed.View().MapToScene(p).InRange() {
		return p, fmt.Errorf("%w: position out of range", ErrBadPayload)
	}
	return p, nil
}

var pointerKinds = map[string]input.PointerKind{
	TypePointerDown: input.PointerDown,
	TypePointerMove: input.PointerMove,
	TypePointerUp:   input.PointerUp,
}

// apply runs one client message against the room. Callers hold room.mu.
func (h *Hub) apply(room *Room, sender *Client, msg *Message) error {
	ed := sender.editor

	switch msg.Type {
	case TypePointerDown, TypePointerMove, TypePointerUp:
		var p PointerPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		pos, err := viewPoint(ed, p.X, p.Y)
		if err != nil {
			return err
		}
		ed.HandlePointer(input.PointerEvent{
			Kind:   pointerKinds[msg.Type],
			Pos:    pos,
			Button: input.ParseButton(p.Button),
			Mods:   input.ParseModifiers(p.Mods),
		})

	case TypeWheel:
		var p WheelPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		pos, err := viewPoint(ed, p.X, p.Y)
		if err != nil {
			return err
		}
		if !geom.Finite(p.Delta) {
			return fmt.Errorf("%w: wheel delta out of range", ErrBadPayload)
		}
		ed.HandleWheel(input.WheelEvent{
			Pos:   pos,
			Delta: p.Delta,
			Mods:  input.ParseModifiers(p.Mods),
		})

	case TypeToolSelect:
		var p ToolSelectPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		if err := ed.SetTool(p.Tool); err != nil {
			return err
		}
		presence := room.presence.SetTool(sender.ClientID, sender.DisplayName, ed.ToolName())
		h.broadcastPresence(room, sender, &presence)

	case TypeSelectionSet:
		var p SelectionPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		ed.SetSelection(p.IDs)

	case TypeViewReset:
		ed.ResetView()

	case TypeViewFit:
		var p ViewFitPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		switch p.Target {
		case "", "scene":
			ed.FitScene()
		case "background":
			ed.FitBackground()
		default:
			return fmt.Errorf("%w: unknown fit target %q", ErrBadPayload, p.Target)
		}

	case TypeViewResize:
		var p ViewResizePayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		if p.Width <= 0 || p.Height <= 0 || p.Width > geom.MaxCoord || p.Height > geom.MaxCoord {
			return fmt.Errorf("%w: view size out of range", ErrBadPayload)
		}
		ed.View().Resize(p.Width, p.Height)

	case TypeViewRotate:
		var p ViewRotatePayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		if !geom.Finite(p.Degrees) {
			return fmt.Errorf("%w: rotation out of range", ErrBadPayload)
		}
		ed.View().Rotate(p.Degrees)

	case TypeViewZoom:
		var p ViewZoomPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		switch p.Direction {
		case "in":
			ed.ZoomIn()
		case "out":
			ed.ZoomOut()
		default:
			return fmt.Errorf("%w: zoom direction must be in or out", ErrBadPayload)
		}

	case TypeItemRemove:
		var p ItemPayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		if !ed.RemoveItem(p.ID) {
			return fmt.Errorf("%w: %s", ErrItemNotFound, p.ID)
		}

	case TypeSceneClear:
		// Tools of other clients may hold previews that are about to go.
		for _, c := range room.clients {
			if t := c.editor.Tool(); t != nil {
				t.Cancel()
			}
		}
		ed.Clear()

	case TypeImageAdd:
		var p ImagePayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		// x, y is where the image was dropped in the sender's view.
		at, err := viewPoint(ed, p.X, p.Y)
		if err != nil {
			return err
		}
		img, err := h.image(p.AssetID)
		if err != nil {
			return err
		}
		ed.AddImage(img, ed.View().MapToScene(at))

	case TypeBackgroundSet:
		var p ImagePayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		if p.AssetID == "" {
			ed.SetBackground(nil)
			return nil
		}
		img, err := h.image(p.AssetID)
		if err != nil {
			return err
		}
		ed.SetBackground(img)

	case TypeSampleAdd:
		var p SamplePayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		if _, err := room.samples.Add(p.Kind); err != nil {
			return fmt.Errorf("%w: %v", ErrBadPayload, err)
		}

	case TypePresenceUpdate:
		var p PresencePayload
		if err := decode(msg, &p); err != nil {
			return err
		}
		p.DisplayName = sender.DisplayName
		p.Tool = ed.ToolName()
		p.Selection = ed.Selection()
		room.presence.Update(sender.ClientID, &p)
		h.broadcastPresence(room, sender, &p)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, msg.Type)
	}
	return nil
}

func (h *Hub) image(assetID string) (image.Image, error) {
	if h.images == nil {
		return nil, ErrNoImages
	}
	img, err := h.images.Get(assetID)
	if err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}
	return img, nil
}

// broadcastPresence relays a client's presence to the rest of the room.
// Callers hold room.mu.
func (h *Hub) broadcastPresence(room *Room, sender *Client, p *PresencePayload) {
	payload, err := json.Marshal(p)
	if err != nil {
		return
	}
	room.broadcast(&Message{
		Type:     TypePresenceUpdate,
		UserID:   sender.UserID,
		ClientID: sender.ClientID,
		Payload:  payload,
	}, sender.ClientID)
}
