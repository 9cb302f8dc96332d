package gateway

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/loomhq/loom/pkg/auth"
	"github.com/loomhq/loom/pkg/events"
	"github.com/loomhq/loom/pkg/hub"
	"github.com/loomhq/loom/pkg/log"
	"github.com/loomhq/loom/pkg/types"
)

// Gateway serves the realtime channel: a persistent websocket per caller
// under /ws. The handshake authenticates through the same chain as the
// RPC path; an unauthenticated upgrade attempt is rejected before the
// socket is established.
type Gateway struct {
	chain       *auth.Chain
	hub         *hub.Hub
	broadcaster *events.Broadcaster
	upgrader    websocket.Upgrader
}

// New creates a gateway over the authentication chain and the hub.
func New(chain *auth.Chain, h *hub.Hub, broadcaster *events.Broadcaster) *Gateway {
	return &Gateway{
		chain:       chain,
		hub:         h,
		broadcaster: broadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Origin policy is enforced by the fronting proxy.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades an authenticated caller to a websocket connection.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, err := g.chain.Authenticate(r.Context(), credentialsFrom(r))
	if err != nil {
		logger := log.WithComponent("gateway")
		logger.Debug().Err(err).Msg("handshake rejected")
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger := log.WithComponent("gateway")
		logger.Warn().Err(err).Msg("upgrade failed")
		return
	}

	c := newClient(g, conn, identity)
	g.hub.Register(c.hubConn())

	// Identity-derived rooms are joined implicitly; resource rooms only
	// on explicit subscribe.
	_ = g.hub.Join(c.id, hub.RoomForWorkspace(identity.WorkspaceID))
	_ = g.hub.Join(c.id, hub.RoomForUser(identity.UserID))

	c.sendMessage(serverMessage{
		Type:         "connected",
		ConnectionID: c.id,
		UserID:       identity.UserID,
		WorkspaceID:  identity.WorkspaceID,
	})

	go c.writePump()
	go c.readPump()
}

// credentialsFrom pulls the bearer token or API key off the handshake
// request. Browser clients cannot set headers on websocket upgrades, so
// query parameters are accepted as well.
func credentialsFrom(r *http.Request) auth.Credentials {
	creds := auth.Credentials{
		BearerToken: r.URL.Query().Get("token"),
		APIKey:      r.URL.Query().Get("api_key"),
	}

	if header := r.Header.Get("Authorization"); header != "" {
		value := strings.TrimPrefix(header, "Bearer ")
		if value != header {
			// A prefixed value is an API key; anything else is treated
			// as a session token.
			if strings.HasPrefix(value, "loom_sk_") {
				creds.APIKey = value
			} else {
				creds.BearerToken = value
			}
		}
	}
	return creds
}

func newClient(g *Gateway, conn *websocket.Conn, identity types.Identity) *client {
	return &client{
		gateway:  g,
		conn:     conn,
		id:       uuid.New().String(),
		identity: identity,
		send:     make(chan []byte, 64),
	}
}
