package hub

import (
	"fmt"
	"sync"

	"github.com/loomhq/loom/pkg/log"
	"github.com/loomhq/loom/pkg/metrics"
	"github.com/loomhq/loom/pkg/types"
)

// Conn is one live realtime connection. Send is supplied by the
// transport; the hub never touches sockets directly.
type Conn struct {
	ID       string
	Identity types.Identity
	Send     func(payload []byte) error
}

// RoomForResource names the broadcast room of one specific entity.
func RoomForResource(resourceType types.ResourceType, resourceID string) string {
	return fmt.Sprintf("%s:%s", resourceType, resourceID)
}

// RoomForWorkspace names the workspace-wide audience room.
func RoomForWorkspace(workspaceID string) string {
	return "workspace:" + workspaceID
}

// RoomForUser names a user's personal room, reaching all their sessions.
func RoomForUser(userID string) string {
	return "user:" + userID
}

type room struct {
	members map[string]*Conn
}

// Hub tracks live connections and their room membership. Connect,
// disconnect and publish all run concurrently on this shared state, so
// every access goes through the mutex.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*Conn
	rooms map[string]*room
}

// New creates an empty hub.
func New() *Hub {
	return &Hub{
		conns: make(map[string]*Conn),
		rooms: make(map[string]*room),
	}
}

// Register adds a connection. The gateway calls this after the handshake
// authenticates.
func (h *Hub) Register(conn *Conn) {
	h.mu.Lock()
	h.conns[conn.ID] = conn
	total := len(h.conns)
	h.mu.Unlock()

	metrics.ConnectionsActive.Set(float64(total))
	logger := log.WithComponent("hub")
	logger.Info().
		Str("connection_id", conn.ID).
		Str("user_id", conn.Identity.UserID).
		Int("connections", total).
		Msg("connection registered")
}

// Unregister drops a connection and all of its room membership.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	delete(h.conns, connID)
	for name, r := range h.rooms {
		delete(r.members, connID)
		if len(r.members) == 0 {
			delete(h.rooms, name)
		}
	}
	total := len(h.conns)
	roomCount := len(h.rooms)
	h.mu.Unlock()

	metrics.ConnectionsActive.Set(float64(total))
	metrics.RoomsActive.Set(float64(roomCount))
	logger := log.WithComponent("hub")
	logger.Info().
		Str("connection_id", connID).
		Int("connections", total).
		Msg("connection unregistered")
}

// Lookup returns the identity bound to a connection.
func (h *Hub) Lookup(connID string) (types.Identity, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conn, ok := h.conns[connID]
	if !ok {
		return types.Identity{}, false
	}
	return conn.Identity, true
}

// Join adds a connection to a room, creating the room if needed.
func (h *Hub) Join(connID, roomName string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.conns[connID]
	if !ok {
		return fmt.Errorf("connection not found: %s", connID)
	}

	r, exists := h.rooms[roomName]
	if !exists {
		r = &room{members: make(map[string]*Conn)}
		h.rooms[roomName] = r
	}
	r.members[connID] = conn
	metrics.RoomsActive.Set(float64(len(h.rooms)))
	return nil
}

// Leave removes a connection from a room; empty rooms are dropped.
func (h *Hub) Leave(connID, roomName string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, exists := h.rooms[roomName]
	if !exists {
		return
	}
	delete(r.members, connID)
	if len(r.members) == 0 {
		delete(h.rooms, roomName)
	}
	metrics.RoomsActive.Set(float64(len(h.rooms)))
}

// BroadcastRoom delivers a payload to every member of a room. Delivery
// is best effort: a failed send drops silently, the connection's own
// read loop notices the dead socket and unregisters it.
func (h *Hub) BroadcastRoom(roomName string, payload []byte) {
	h.mu.RLock()
	r, exists := h.rooms[roomName]
	if !exists {
		h.mu.RUnlock()
		return
	}
	members := make([]*Conn, 0, len(r.members))
	for _, conn := range r.members {
		members = append(members, conn)
	}
	h.mu.RUnlock()

	logger := log.WithComponent("hub")
	for _, conn := range members {
		if err := conn.Send(payload); err != nil {
			logger.Debug().
				Err(err).
				Str("connection_id", conn.ID).
				Str("room", roomName).
				Msg("send failed")
		}
	}
}

// Stats returns the number of live connections and rooms.
func (h *Hub) Stats() (conns, rooms int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns), len(h.rooms)
}
