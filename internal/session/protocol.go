package session

import (
	"encoding/json"

	"github.com/inamate/sceneview/internal/editor"
)

type Message struct {
	Type     string          `json:"type"`
	CanvasID string          `json:"canvasId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	UserID   string          `json:"userId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Connection
	TypeWelcome = "welcome"

	// Rendering
	TypeFrame = "frame"

	// Input
	TypePointerDown = "pointer.down"
	TypePointerMove = "pointer.move"
	TypePointerUp   = "pointer.up"
	TypeWheel       = "wheel"

	// Tools and selection
	TypeToolSelect   = "tool.select"
	TypeSelectionSet = "selection.set"

	// View
	TypeViewReset  = "view.reset"
	TypeViewFit    = "view.fit"
	TypeViewResize = "view.resize"
	TypeViewRotate = "view.rotate"
	TypeViewZoom   = "view.zoom"

	// Scene edits
	TypeItemRemove    = "item.remove"
	TypeSceneClear    = "scene.clear"
	TypeImageAdd      = "image.add"
	TypeBackgroundSet = "background.set"
	TypeSampleAdd     = "sample.add"
)

// --- Presence ---

type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"` // scene coordinates
	Tool        string     `json:"tool,omitempty"`
	Selection   []string   `json:"selection,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"` // keyed by client id
}

type PresenceJoinPayload struct {
	ClientID    string `json:"clientId"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	ClientID string `json:"clientId"`
	UserID   string `json:"userId"`
}

// --- Server → client ---

type WelcomePayload struct {
	ClientID string   `json:"clientId"`
	UserID   string   `json:"userId"`
	CanvasID string   `json:"canvasId"`
	Tools    []string `json:"tools"`
	Samples  []string `json:"samples"`
}

type FramePayload = editor.FrameState

type ErrorPayload struct {
	Message string `json:"message"`
	Ref     string `json:"ref,omitempty"` // type of the message that failed
}

// --- Client → server ---

// PointerPayload carries a view-space point. Button is a DOM button index
// (0 primary, 1 middle, 2 secondary).
type PointerPayload struct {
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Button int      `json:"button"`
	Mods   []string `json:"mods,omitempty"`
}

type WheelPayload struct {
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	Delta float64  `json:"delta"`
	Mods  []string `json:"mods,omitempty"`
}

type ToolSelectPayload struct {
	Tool string `json:"tool"`
}

type SelectionPayload struct {
	IDs []string `json:"ids"`
}

type ViewFitPayload struct {
	Target string `json:"target,omitempty"` // "scene" (default) or "background"
}

type ViewResizePayload struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type ViewRotatePayload struct {
	Degrees float64 `json:"degrees"`
}

type ViewZoomPayload struct {
	Direction string `json:"direction"` // "in" or "out"
}

type ItemPayload struct {
	ID string `json:"id"`
}

type ImagePayload struct {
	AssetID string  `json:"assetId"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

type SamplePayload struct {
	Kind string `json:"kind"`
}
