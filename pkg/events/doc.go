/*
Package events defines typed state-change notifications and their
fan-out to realtime audiences.

An Event records what happened (type and operation), to what (resource
and id) and by whom (user and workspace). The Broadcaster publishes
each event to up to three rooms: the resource's own room, the owning
workspace's room, and the acting user's personal room. Subscribers in
any of them receive the same payload; publishers never know who is
listening.

# Delivery Semantics

Delivery is at-most-once. There is no replay log and no offline queue:
a client that reconnects missed whatever was published while it was
away and is expected to re-read current state over RPC.

Presence events are narrower still: resource room only, never
persisted. They carry live cursors and online status, which are
worthless a second after they are sent.

# Integration Points

This package integrates with:

  - pkg/hub: room naming and the RoomSender delivery interface
  - pkg/gateway: presence publication from client messages
  - RPC handlers: Publisher is the only interface they depend on
*/
package events
