package session

import (
	"encoding/json"
	"image"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/inamate/sceneview/internal/editor"
	"github.com/inamate/sceneview/internal/sample"
	"github.com/inamate/sceneview/internal/scene"
	"github.com/inamate/sceneview/internal/tool"
	"github.com/inamate/sceneview/internal/view"
)

// ImageStore resolves uploaded images by asset id and names decoded images
// for draw commands.
type ImageStore interface {
	Get(id string) (image.Image, error)
	Name(img image.Image) string
}

// SceneFactory builds the scene of a canvas when its first client joins.
type SceneFactory func(canvasID string) *scene.Scene

// Room is one canvas. Every client in it edits the same scene through its own
// editor; mu serializes all access to the scene, the editors and the client
// set.
type Room struct {
	canvasID string

	mu       sync.Mutex
	scene    *scene.Scene
	samples  *sample.Generator
	clients  map[string]*Client // clientID -> client
	frameSeq int64

	presence *PresenceManager
}

func NewRoom(canvasID string, sc *scene.Scene) *Room {
	return &Room{
		canvasID: canvasID,
		scene:    sc,
		samples:  sample.NewGenerator(sc, rand.Uint64()),
		clients:  make(map[string]*Client),
		presence: NewPresenceManager(),
	}
}

// flushFrames sends a fresh frame to every client whose view changed.
// Callers hold r.mu.
func (r *Room) flushFrames() {
	for _, c := range r.clients {
		if c.editor == nil || !c.editor.TakeDirty() {
			continue
		}
		payload, err := json.Marshal(c.editor.Frame())
		if err != nil {
			slog.Error("marshal frame", "error", err, "canvas", r.canvasID)
			continue
		}
		r.frameSeq++
		c.Send(&Message{
			Type:     TypeFrame,
			CanvasID: r.canvasID,
			Seq:      r.frameSeq,
			Payload:  payload,
		})
	}
}

// broadcast sends msg to every client except excludeClientID. Callers hold
// r.mu.
func (r *Room) broadcast(msg *Message, excludeClientID string) {
	for id, c := range r.clients {
		if id != excludeClientID {
			c.Send(msg)
		}
	}
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // canvasID -> room
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
	stopOnce   sync.Once

	newScene SceneFactory
	images   ImageStore
	viewOpts []view.Option
}

// Option configures a Hub.
type Option func(*Hub)

// WithSceneFactory sets how new canvases are populated.
func WithSceneFactory(f SceneFactory) Option {
	return func(h *Hub) { h.newScene = f }
}

// WithImages enables image.add and background.set.
func WithImages(s ImageStore) Option {
	return func(h *Hub) { h.images = s }
}

// WithViewOptions configures every client's viewport.
func WithViewOptions(opts ...view.Option) Option {
	return func(h *Hub) { h.viewOpts = append(h.viewOpts, opts...) }
}

func NewHub(opts ...Option) *Hub {
	h := &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		newScene:   func(string) *scene.Scene { return scene.New() },
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.quit:
			return
		}
	}
}

// Stop ends Run. Register and Unregister become no-ops.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

func (h *Hub) room(canvasID string) *Room {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[canvasID]
}

// WithScene runs fn on the canvas's scene under the room lock. It reports
// false when no client has the canvas open.
func (h *Hub) WithScene(canvasID string, fn func(sc *scene.Scene)) bool {
	room := h.room(canvasID)
	if room == nil {
		return false
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	fn(room.scene)
	return true
}

func (h *Hub) newEditor(sc *scene.Scene) *editor.Editor {
	var opts []editor.Option
	if h.images != nil {
		opts = append(opts, editor.WithImageResolver(h.images.Name))
	}
	return editor.New(sc, view.New(h.viewOpts...), opts...)
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.CanvasID]
	if !ok {
		room = NewRoom(client.CanvasID, h.newScene(client.CanvasID))
		h.rooms[client.CanvasID] = room
	}
	h.mu.Unlock()

	room.mu.Lock()
	defer room.mu.Unlock()

	welcome, _ := json.Marshal(WelcomePayload{
		ClientID: client.ClientID,
		UserID:   client.UserID,
		CanvasID: client.CanvasID,
		Tools:    tool.Names(),
		Samples:  sample.Kinds(),
	})
	client.Send(&Message{Type: TypeWelcome, CanvasID: client.CanvasID, Payload: welcome})

	// Send current presence state to new client
	if stateMsg := room.presence.StateMessage(); stateMsg != nil {
		client.Send(stateMsg)
	}

	client.editor = h.newEditor(room.scene)
	room.clients[client.ClientID] = client
	room.flushFrames()

	// Broadcast join to other clients
	joinPayload, _ := json.Marshal(PresenceJoinPayload{
		ClientID:    client.ClientID,
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	})
	room.broadcast(&Message{
		Type:    TypePresenceJoin,
		UserID:  client.UserID,
		Payload: joinPayload,
	}, client.ClientID)

	slog.Info("client joined", "user", client.UserID, "client", client.ClientID, "canvas", client.CanvasID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[client.CanvasID]
	if !ok {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if _, ok := room.clients[client.ClientID]; !ok {
		return
	}
	delete(room.clients, client.ClientID)
	close(client.send)
	room.presence.Remove(client.ClientID)

	// Dropping the editor cancels its tool, which may remove preview items
	// the other clients can see.
	client.editor.Close()
	client.editor = nil

	if len(room.clients) == 0 {
		delete(h.rooms, client.CanvasID)
		slog.Info("canvas closed", "canvas", client.CanvasID)
	} else {
		room.flushFrames()

		leavePayload, _ := json.Marshal(PresenceLeavePayload{
			ClientID: client.ClientID,
			UserID:   client.UserID,
		})
		room.broadcast(&Message{
			Type:    TypePresenceLeave,
			UserID:  client.UserID,
			Payload: leavePayload,
		}, "")
	}

	slog.Info("client left", "user", client.UserID, "client", client.ClientID, "canvas", client.CanvasID)
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	room := h.room(sender.CanvasID)
	if room == nil {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if sender.editor == nil {
		sender.sendError(msg.Type, "not joined")
		return
	}

	if err := h.apply(room, sender, msg); err != nil {
		slog.Warn("message rejected", "type", msg.Type, "client", sender.ClientID, "error", err)
		sender.sendError(msg.Type, err.Error())
	}
	room.flushFrames()
}
