package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/coder/websocket"

	"github.com/inamate/sceneview/internal/editor"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
	sendBuffer = 256
)

// Client is one websocket connection viewing a canvas. Its editor holds the
// client's own viewport and tool over the room's shared scene; it is only
// touched while the room lock is held.
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	editor      *editor.Editor
	UserID      string
	DisplayName string
	CanvasID    string
	ClientID    string
}

func NewClient(hub *Hub, conn *websocket.Conn, userID, displayName, canvasID, clientID string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		UserID:      userID,
		DisplayName: displayName,
		CanvasID:    canvasID,
		ClientID:    clientID,
	}
}

// ReadPump hands every incoming frame to receive until the connection ends,
// then leaves the room.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				slog.Debug("read error", "error", err, "client", c.ClientID)
			}
			return
		}
		c.receive(data)
	}
}

// receive decodes one client frame, stamps it with the connection's identity
// and runs it against the room.
func (c *Client) receive(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Warn("invalid message", "error", err, "client", c.ClientID)
		c.sendError("", "invalid message")
		return
	}
	msg.UserID, msg.ClientID, msg.CanvasID = c.UserID, c.ClientID, c.CanvasID
	c.hub.handleMessage(c, &msg)
}

// WritePump drains the send queue onto the connection and keeps it alive
// with pings. It returns when the queue is closed or a write fails.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var err error
		select {
		case data, open := <-c.send:
			if !open {
				return
			}
			err = c.withDeadline(ctx, func(ctx context.Context) error {
				return c.conn.Write(ctx, websocket.MessageText, data)
			})
		case <-ticker.C:
			err = c.withDeadline(ctx, c.conn.Ping)
		case <-ctx.Done():
			return
		}
		if err != nil {
			slog.Debug("write error", "error", err, "client", c.ClientID)
			return
		}
	}
}

func (c *Client) withDeadline(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return fn(ctx)
}

// Send queues msg. A full queue drops it; the next frame carries the state.
func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err, "type", msg.Type)
		return
	}
	select {
	case c.send <- data:
	default:
		slog.Warn("client send buffer full, dropping message", "client", c.ClientID, "type", msg.Type)
	}
}

func (c *Client) sendError(ref, message string) {
	payload, _ := json.Marshal(ErrorPayload{Message: message, Ref: ref})
	c.Send(&Message{Type: TypeError, Payload: payload})
}
