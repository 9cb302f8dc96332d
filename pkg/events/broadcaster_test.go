package events

import (
	"encoding/json"
	"os"
	"sync"
	"testing"

	"github.com/loomhq/loom/pkg/log"
	"github.com/loomhq/loom/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.Init(log.Config{Level: log.ErrorLevel, Output: os.Stderr})
}

// roomRecorder records which rooms received which payloads.
type roomRecorder struct {
	mu    sync.Mutex
	rooms []string
	last  []byte
}

func (r *roomRecorder) BroadcastRoom(room string, payload []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms = append(r.rooms, room)
	r.last = payload
}

func TestPublishFansOutToThreeRooms(t *testing.T) {
	rec := &roomRecorder{}
	b := NewBroadcaster(rec)

	b.Publish(NewUpdated(Fields{
		Resource:    types.ResourcePage,
		ResourceID:  "r1",
		UserID:      "u1",
		WorkspaceID: "w1",
		Data:        map[string]any{"title": "Roadmap"},
	}))

	// The resource room, the workspace room, the user room, and no others.
	assert.Equal(t, []string{"page:r1", "workspace:w1", "user:u1"}, rec.rooms)
}

func TestPublishSkipsEmptyAudiences(t *testing.T) {
	rec := &roomRecorder{}
	b := NewBroadcaster(rec)

	b.Publish(NewDeleted(Fields{
		Resource:   types.ResourcePage,
		ResourceID: "r1",
	}))

	assert.Equal(t, []string{"page:r1"}, rec.rooms)
}

func TestPublishPresenceResourceRoomOnly(t *testing.T) {
	rec := &roomRecorder{}
	b := NewBroadcaster(rec)

	b.PublishPresence(NewPresence(Fields{
		Resource:    types.ResourcePage,
		ResourceID:  "r1",
		UserID:      "u1",
		WorkspaceID: "w1",
	}))

	assert.Equal(t, []string{"page:r1"}, rec.rooms)
}

func TestEventWireShape(t *testing.T) {
	rec := &roomRecorder{}
	b := NewBroadcaster(rec)

	b.Publish(NewCreated(Fields{
		Resource:    types.ResourcePage,
		ResourceID:  "r1",
		UserID:      "u1",
		WorkspaceID: "w1",
		SpaceID:     "s1",
	}))

	var msg struct {
		Type  string `json:"type"`
		Event Event  `json:"event"`
	}
	require.NoError(t, json.Unmarshal(rec.last, &msg))
	assert.Equal(t, "event", msg.Type)
	assert.Equal(t, EventCreated, msg.Event.Type)
	assert.Equal(t, types.OperationCreate, msg.Event.Operation)
	assert.Equal(t, "r1", msg.Event.ResourceID)
	assert.Equal(t, "s1", msg.Event.SpaceID)
	assert.False(t, msg.Event.Timestamp.IsZero())
}

func TestConstructors(t *testing.T) {
	fields := Fields{Resource: types.ResourcePage, ResourceID: "r1", UserID: "u1", WorkspaceID: "w1"}

	tests := []struct {
		name      string
		event     *Event
		eventType EventType
		operation types.OperationType
	}{
		{name: "created", event: NewCreated(fields), eventType: EventCreated, operation: types.OperationCreate},
		{name: "updated", event: NewUpdated(fields), eventType: EventUpdated, operation: types.OperationUpdate},
		{name: "deleted", event: NewDeleted(fields), eventType: EventDeleted, operation: types.OperationDelete},
		{name: "moved", event: NewMoved(fields), eventType: EventMoved, operation: types.OperationMove},
		{name: "presence", event: NewPresence(fields), eventType: EventPresence, operation: types.OperationNavigate},
		{name: "permission changed", event: NewPermissionChanged(fields, types.OperationAddMember), eventType: EventPermissionChanged, operation: types.OperationAddMember},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.eventType, tt.event.Type)
			assert.Equal(t, tt.operation, tt.event.Operation)
			assert.False(t, tt.event.Timestamp.IsZero())
		})
	}
}
