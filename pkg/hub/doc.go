/*
Package hub tracks live realtime connections and their room membership.

The hub is a transport-agnostic registry: it knows connection ids,
identities and rooms, and delivers payloads through a send function the
transport supplies. It never touches sockets, so tests drive it with
plain functions and the gateway plugs in websocket writes.

# Rooms

Room names are plain strings with three conventions:

  - {resource}:{id}  one entity's audience (e.g. "page:p1")
  - workspace:{id}   everyone connected under a workspace
  - user:{id}        all sessions of one user

Identity rooms are joined when the gateway registers a connection;
resource rooms only on explicit subscribe. Empty rooms are dropped
eagerly so the room map never accumulates garbage.

# Concurrency

Register, Unregister, Join, Leave and BroadcastRoom all run from
different goroutines. State is guarded by a single RWMutex; broadcasts
copy the member list under the read lock and send outside it, so one
slow consumer cannot stall the registry.

Delivery is best effort. A failed send is logged and dropped; the dead
connection's own read loop notices and unregisters it.
*/
package hub
