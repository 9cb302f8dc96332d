/*
Package gateway serves the realtime websocket channel.

The gateway upgrades authenticated callers to persistent websocket
connections, registers them with the hub, and pumps messages in both
directions. Inbound messages are subscription management and presence;
outbound messages are the events the broadcaster fans out to rooms.

# Architecture

	┌──────────────────── REALTIME CHANNEL ────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │         Handshake (/ws)                     │          │
	│  │  - auth chain: token or api_key             │          │
	│  │  - query params for browser clients         │          │
	│  │  - 401 before upgrade on failure            │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Client                              │          │
	│  │  - readPump: deadlines, pong handler        │          │
	│  │  - writePump: pings, buffered sends         │          │
	│  │  - full buffer drops, never blocks          │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │         Hub Rooms                           │          │
	│  │  - workspace:{id} and user:{id} on connect  │          │
	│  │  - {resource}:{id} on subscribe             │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Client Protocol

After the "connected" acknowledgement, clients send:

	{"type":"subscribe","resource":"page","resourceId":"p1"}
	{"type":"unsubscribe","resource":"page","resourceId":"p1"}
	{"type":"presence","resource":"page","resourceId":"p1","data":{...}}

and receive event envelopes:

	{"type":"event","event":{"type":"updated","resource":"page",...}}

Presence is ephemeral: it reaches the resource room only and is never
persisted or replayed.

# Integration Points

This package integrates with:

  - pkg/auth: the same chain as the RPC path authenticates handshakes
  - pkg/hub: connection registry and room membership
  - pkg/events: presence publication and the event wire format
*/
package gateway
