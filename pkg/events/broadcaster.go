package events

import (
	"encoding/json"

	"github.com/loomhq/loom/pkg/hub"
	"github.com/loomhq/loom/pkg/log"
	"github.com/loomhq/loom/pkg/metrics"
)

// RoomSender delivers a payload to every member of a named room. The hub
// satisfies it; tests substitute a recorder.
type RoomSender interface {
	BroadcastRoom(room string, payload []byte)
}

// envelope is the wire shape of a server-originated event message.
type envelope struct {
	Type  string `json:"type"`
	Event *Event `json:"event"`
}

// Broadcaster fans events out to the three audience classes: the
// resource's own room, the owning workspace's room, and the acting
// user's personal room. Delivery is at-most-once with no replay log.
type Broadcaster struct {
	sender RoomSender
}

// NewBroadcaster creates a broadcaster over a room sender.
func NewBroadcaster(sender RoomSender) *Broadcaster {
	return &Broadcaster{sender: sender}
}

var _ Publisher = (*Broadcaster)(nil)

// Publish emits an event to its resource, workspace and user rooms. The
// publisher never needs to know who is subscribed.
func (b *Broadcaster) Publish(event *Event) {
	payload, err := b.encode(event)
	if err != nil {
		return
	}

	b.sender.BroadcastRoom(hub.RoomForResource(event.Resource, event.ResourceID), payload)
	if event.WorkspaceID != "" {
		b.sender.BroadcastRoom(hub.RoomForWorkspace(event.WorkspaceID), payload)
	}
	if event.UserID != "" {
		b.sender.BroadcastRoom(hub.RoomForUser(event.UserID), payload)
	}

	metrics.EventsPublishedTotal.WithLabelValues(string(event.Type)).Inc()
}

// PublishPresence is the narrower broadcast used for live cursors and
// online status: resource room only.
func (b *Broadcaster) PublishPresence(event *Event) {
	payload, err := b.encode(event)
	if err != nil {
		return
	}

	b.sender.BroadcastRoom(hub.RoomForResource(event.Resource, event.ResourceID), payload)
	metrics.EventsPublishedTotal.WithLabelValues(string(EventPresence)).Inc()
}

func (b *Broadcaster) encode(event *Event) ([]byte, error) {
	payload, err := json.Marshal(envelope{Type: "event", Event: event})
	if err != nil {
		logger := log.WithComponent("events")
		logger.Error().Err(err).Msg("failed to encode event")
		return nil, err
	}
	return payload, nil
}
