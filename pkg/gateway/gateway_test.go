package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/loomhq/loom/pkg/auth"
	"github.com/loomhq/loom/pkg/events"
	"github.com/loomhq/loom/pkg/hub"
	"github.com/loomhq/loom/pkg/log"
	"github.com/loomhq/loom/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wsFixture struct {
	server      *httptest.Server
	hub         *hub.Hub
	broadcaster *events.Broadcaster
	verifier    *auth.HMACVerifier
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	log.Init(log.Config{Level: log.ErrorLevel, Output: os.Stderr})

	verifier := auth.NewHMACVerifier("ws-test-secret")
	chain := auth.NewChain(auth.NewSessionStrategy(verifier))

	h := hub.New()
	broadcaster := events.NewBroadcaster(h)
	gw := New(chain, h, broadcaster)

	server := httptest.NewServer(gw)
	t.Cleanup(server.Close)

	return &wsFixture{server: server, hub: h, broadcaster: broadcaster, verifier: verifier}
}

func (f *wsFixture) dial(t *testing.T, userID, workspaceID string) *websocket.Conn {
	t.Helper()
	token := f.verifier.Sign(userID, workspaceID, time.Hour)
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "?token=" + token

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readWire(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg map[string]any
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func sendWire(t *testing.T, conn *websocket.Conn, msg clientMessage) {
	t.Helper()
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func waitForRooms(t *testing.T, h *hub.Hub, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		_, rooms := h.Stats()
		return rooms == want
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandshakeRequiresAuth(t *testing.T) {
	f := newWSFixture(t)

	url := "ws" + strings.TrimPrefix(f.server.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, _, err = websocket.DefaultDialer.Dial(url+"?token=garbage", nil)
	require.Error(t, err)
}

func TestConnectedAck(t *testing.T) {
	f := newWSFixture(t)

	conn := f.dial(t, "u1", "w1")
	ack := readWire(t, conn)

	assert.Equal(t, "connected", ack["type"])
	assert.Equal(t, "u1", ack["userId"])
	assert.Equal(t, "w1", ack["workspaceId"])
	assert.NotEmpty(t, ack["connectionId"])
}

func TestSubscribeReceivesResourceEvents(t *testing.T) {
	f := newWSFixture(t)

	conn := f.dial(t, "u1", "w1")
	readWire(t, conn) // ack

	sendWire(t, conn, clientMessage{Type: "subscribe", Resource: "page", ResourceID: "p1"})
	// Workspace and user rooms are joined on connect; the page room is
	// the third.
	waitForRooms(t, f.hub, 3)

	f.broadcaster.Publish(events.NewUpdated(events.Fields{
		Resource:   types.ResourcePage,
		ResourceID: "p1",
		Data:       map[string]any{"title": "Renamed"},
	}))

	msg := readWire(t, conn)
	assert.Equal(t, "event", msg["type"])

	event, ok := msg["event"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "updated", event["type"])
	assert.Equal(t, "p1", event["resourceId"])
}

func TestWorkspaceFanOut(t *testing.T) {
	f := newWSFixture(t)

	member := f.dial(t, "u1", "w1")
	readWire(t, member)
	outsider := f.dial(t, "u2", "w2")
	readWire(t, outsider)

	f.broadcaster.Publish(events.NewCreated(events.Fields{
		Resource:    types.ResourcePage,
		ResourceID:  "p9",
		UserID:      "u1",
		WorkspaceID: "w1",
	}))

	msg := readWire(t, member)
	assert.Equal(t, "event", msg["type"])

	// The other workspace never sees it.
	require.NoError(t, outsider.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, _, err := outsider.ReadMessage()
	assert.Error(t, err)
}

func TestUnsubscribeStopsEvents(t *testing.T) {
	f := newWSFixture(t)

	conn := f.dial(t, "u1", "w1")
	readWire(t, conn)

	sendWire(t, conn, clientMessage{Type: "subscribe", Resource: "page", ResourceID: "p1"})
	waitForRooms(t, f.hub, 3)
	sendWire(t, conn, clientMessage{Type: "unsubscribe", Resource: "page", ResourceID: "p1"})
	waitForRooms(t, f.hub, 2)

	// Event has no workspace or user audience, so nothing reaches the
	// unsubscribed connection.
	f.broadcaster.Publish(events.NewDeleted(events.Fields{
		Resource:   types.ResourcePage,
		ResourceID: "p1",
	}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestPresenceReachesResourceRoomOnly(t *testing.T) {
	f := newWSFixture(t)

	viewer := f.dial(t, "u1", "w1")
	readWire(t, viewer)
	sendWire(t, viewer, clientMessage{Type: "subscribe", Resource: "page", ResourceID: "p1"})
	waitForRooms(t, f.hub, 3)

	// A second session in the same workspace sends presence on the page.
	sender := f.dial(t, "u2", "w1")
	readWire(t, sender)
	sendWire(t, sender, clientMessage{
		Type:       "presence",
		Resource:   "page",
		ResourceID: "p1",
		Data:       map[string]any{"cursor": "block-3"},
	})

	msg := readWire(t, viewer)
	event, ok := msg["event"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "presence", event["type"])
	assert.Equal(t, "u2", event["userId"])

	// Presence skips the sender's workspace room: the sender itself,
	// joined to workspace:w1 but not page:p1, receives nothing.
	require.NoError(t, sender.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, _, err := sender.ReadMessage()
	assert.Error(t, err)
}

func TestUnknownMessageType(t *testing.T) {
	f := newWSFixture(t)

	conn := f.dial(t, "u1", "w1")
	readWire(t, conn)

	sendWire(t, conn, clientMessage{Type: "frobnicate"})
	msg := readWire(t, conn)
	assert.Equal(t, "error", msg["type"])
	assert.Contains(t, msg["message"], "unknown message type")
}

func TestDisconnectCleansUp(t *testing.T) {
	f := newWSFixture(t)

	conn := f.dial(t, "u1", "w1")
	readWire(t, conn)

	conns, _ := f.hub.Stats()
	require.Equal(t, 1, conns)

	conn.Close()
	require.Eventually(t, func() bool {
		conns, rooms := f.hub.Stats()
		return conns == 0 && rooms == 0
	}, 2*time.Second, 10*time.Millisecond)
}
