package events

import (
	"time"

	"github.com/loomhq/loom/pkg/types"
)

// EventType represents the type of event
type EventType string

const (
	EventCreated           EventType = "created"
	EventUpdated           EventType = "updated"
	EventDeleted           EventType = "deleted"
	EventMoved             EventType = "moved"
	EventPermissionChanged EventType = "permission_changed"
	EventPresence          EventType = "presence"
)

// Event is one typed state-change notification. ResourceID is stable and
// is used verbatim to compute the resource's broadcast room.
type Event struct {
	Type        EventType           `json:"type"`
	Resource    types.ResourceType  `json:"resource"`
	Operation   types.OperationType `json:"operation"`
	ResourceID  string              `json:"resourceId"`
	Timestamp   time.Time           `json:"timestamp"`
	Data        map[string]any      `json:"data,omitempty"`
	UserID      string              `json:"userId"`
	WorkspaceID string              `json:"workspaceId"`
	SpaceID     string              `json:"spaceId,omitempty"`
}

// Publisher is the narrow interface the RPC layer depends on. The
// gateway side implements it; neither layer holds a concrete reference
// to the other.
type Publisher interface {
	Publish(event *Event)
	PublishPresence(event *Event)
}

// Fields carries the caller-supplied parts of an event.
type Fields struct {
	Resource    types.ResourceType
	ResourceID  string
	Data        map[string]any
	UserID      string
	WorkspaceID string
	SpaceID     string
}

// NewCreated builds a created event, stamping the timestamp at call time.
func NewCreated(f Fields) *Event {
	return newEvent(EventCreated, types.OperationCreate, f)
}

// NewUpdated builds an updated event.
func NewUpdated(f Fields) *Event {
	return newEvent(EventUpdated, types.OperationUpdate, f)
}

// NewDeleted builds a deleted event.
func NewDeleted(f Fields) *Event {
	return newEvent(EventDeleted, types.OperationDelete, f)
}

// NewMoved builds a moved event.
func NewMoved(f Fields) *Event {
	return newEvent(EventMoved, types.OperationMove, f)
}

// NewPermissionChanged builds a permission-changed event.
func NewPermissionChanged(f Fields, operation types.OperationType) *Event {
	return newEvent(EventPermissionChanged, operation, f)
}

// NewPresence builds a presence event. Presence is broadcast to the
// resource room only and never persisted.
func NewPresence(f Fields) *Event {
	return newEvent(EventPresence, types.OperationNavigate, f)
}

func newEvent(t EventType, op types.OperationType, f Fields) *Event {
	return &Event{
		Type:        t,
		Resource:    f.Resource,
		Operation:   op,
		ResourceID:  f.ResourceID,
		Timestamp:   time.Now(),
		Data:        f.Data,
		UserID:      f.UserID,
		WorkspaceID: f.WorkspaceID,
		SpaceID:     f.SpaceID,
	}
}
