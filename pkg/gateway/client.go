package gateway

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/loomhq/loom/pkg/events"
	"github.com/loomhq/loom/pkg/hub"
	"github.com/loomhq/loom/pkg/log"
	"github.com/loomhq/loom/pkg/types"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 64 * 1024
)

var errConnClosed = errors.New("connection closed")

// clientMessage is the wire shape of client-originated messages:
// subscribe, unsubscribe and presence.
type clientMessage struct {
	Type       string         `json:"type"`
	Resource   string         `json:"resource,omitempty"`
	ResourceID string         `json:"resourceId,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
}

// serverMessage is the wire shape of server-originated messages other
// than events (events are encoded by the broadcaster).
type serverMessage struct {
	Type         string `json:"type"`
	ConnectionID string `json:"connectionId,omitempty"`
	UserID       string `json:"userId,omitempty"`
	WorkspaceID  string `json:"workspaceId,omitempty"`
	Message      string `json:"message,omitempty"`
}

type client struct {
	gateway  *Gateway
	conn     *websocket.Conn
	id       string
	identity types.Identity
	send     chan []byte

	mu     sync.Mutex
	closed bool
}

func (c *client) hubConn() *hub.Conn {
	return &hub.Conn{
		ID:       c.id,
		Identity: c.identity,
		Send:     c.enqueue,
	}
}

// enqueue hands a payload to the write pump. A full buffer drops the
// message rather than blocking a broadcast on one slow consumer. The
// closed flag guards against a broadcast racing the disconnect path.
func (c *client) enqueue(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errConnClosed
	}

	select {
	case c.send <- payload:
		return nil
	default:
		logger := log.WithComponent("gateway")
		logger.Debug().
			Str("connection_id", c.id).
			Msg("send buffer full, dropping message")
		return nil
	}
}

func (c *client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// sendMessage marshals and queues a server-originated message.
func (c *client) sendMessage(msg serverMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	_ = c.enqueue(payload)
}

func (c *client) sendError(message string) {
	c.sendMessage(serverMessage{Type: "error", Message: message})
}

func (c *client) readPump() {
	defer func() {
		c.gateway.hub.Unregister(c.id)
		c.closeSend()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger := log.WithComponent("gateway")
				logger.Debug().
					Err(err).
					Str("connection_id", c.id).
					Msg("read failed")
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError("malformed message")
			continue
		}
		c.handle(msg)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) handle(msg clientMessage) {
	switch msg.Type {
	case "subscribe":
		room, ok := c.resourceRoom(msg)
		if !ok {
			return
		}
		if err := c.gateway.hub.Join(c.id, room); err != nil {
			c.sendError("subscribe failed")
		}
	case "unsubscribe":
		room, ok := c.resourceRoom(msg)
		if !ok {
			return
		}
		c.gateway.hub.Leave(c.id, room)
	case "presence":
		if msg.Resource == "" || msg.ResourceID == "" {
			c.sendError("presence requires resource and resourceId")
			return
		}
		c.gateway.broadcaster.PublishPresence(events.NewPresence(events.Fields{
			Resource:    types.ResourceType(msg.Resource),
			ResourceID:  msg.ResourceID,
			Data:        msg.Data,
			UserID:      c.identity.UserID,
			WorkspaceID: c.identity.WorkspaceID,
		}))
	default:
		c.sendError("unknown message type: " + msg.Type)
	}
}

func (c *client) resourceRoom(msg clientMessage) (string, bool) {
	if msg.Resource == "" || msg.ResourceID == "" {
		c.sendError(msg.Type + " requires resource and resourceId")
		return "", false
	}
	return hub.RoomForResource(types.ResourceType(msg.Resource), msg.ResourceID), true
}
