package handlers

import (
	"context"
	"time"

	"github.com/loomhq/loom/pkg/dispatcher"
	"github.com/loomhq/loom/pkg/protocol"
	"github.com/loomhq/loom/pkg/session"
	"github.com/loomhq/loom/pkg/types"
)

// ContextHandlers owns the context.* operations over the session
// context store.
type ContextHandlers struct {
	store *session.ContextStore
}

// NewContextHandlers creates the context handler set.
func NewContextHandlers(store *session.ContextStore) *ContextHandlers {
	return &ContextHandlers{store: store}
}

// Table returns the dispatch table for the context resource.
func (h *ContextHandlers) Table() dispatcher.HandlerTable {
	return dispatcher.HandlerTable{
		"get":    h.get,
		"set":    h.set,
		"delete": h.delete,
		"list":   h.list,
		"clear":  h.clear,
	}
}

// sessionIDFor derives the session scope for an RPC caller. The HTTP RPC
// path carries no transport session, so context is scoped per user.
func sessionIDFor(caller types.Identity) string {
	return "user:" + caller.UserID
}

func (h *ContextHandlers) ready() error {
	if !h.store.Ready() {
		return protocol.InternalError("context store is not ready")
	}
	return nil
}

func (h *ContextHandlers) get(ctx context.Context, params map[string]any, caller types.Identity) (any, error) {
	if err := h.ready(); err != nil {
		return nil, err
	}
	key := stringParam(params, "key")
	if key == "" {
		return nil, protocol.ValidationError("key is required")
	}

	var value any
	found, err := h.store.Get(sessionIDFor(caller), key, &value)
	if err != nil {
		return nil, err
	}
	if !found {
		return map[string]any{"key": key, "found": false}, nil
	}
	return map[string]any{"key": key, "found": true, "value": value}, nil
}

func (h *ContextHandlers) set(ctx context.Context, params map[string]any, caller types.Identity) (any, error) {
	if err := h.ready(); err != nil {
		return nil, err
	}
	key := stringParam(params, "key")
	if key == "" {
		return nil, protocol.ValidationError("key is required")
	}
	value, ok := params["value"]
	if !ok {
		return nil, protocol.ValidationError("value is required")
	}

	var ttl time.Duration
	if seconds, ok := params["ttlSeconds"].(float64); ok && seconds > 0 {
		ttl = time.Duration(seconds * float64(time.Second))
	}

	if err := h.store.Set(sessionIDFor(caller), key, value, ttl); err != nil {
		return nil, err
	}
	return map[string]any{"key": key, "stored": true}, nil
}

func (h *ContextHandlers) delete(ctx context.Context, params map[string]any, caller types.Identity) (any, error) {
	if err := h.ready(); err != nil {
		return nil, err
	}
	key := stringParam(params, "key")
	if key == "" {
		return nil, protocol.ValidationError("key is required")
	}

	if err := h.store.Delete(sessionIDFor(caller), key); err != nil {
		return nil, err
	}
	return map[string]any{"key": key, "deleted": true}, nil
}

func (h *ContextHandlers) list(ctx context.Context, params map[string]any, caller types.Identity) (any, error) {
	if err := h.ready(); err != nil {
		return nil, err
	}

	keys, err := h.store.List(sessionIDFor(caller))
	if err != nil {
		return nil, err
	}
	if keys == nil {
		keys = []string{}
	}
	return map[string]any{"keys": keys, "total": len(keys)}, nil
}

func (h *ContextHandlers) clear(ctx context.Context, params map[string]any, caller types.Identity) (any, error) {
	if err := h.ready(); err != nil {
		return nil, err
	}

	if err := h.store.Clear(sessionIDFor(caller)); err != nil {
		return nil, err
	}
	return map[string]any{"cleared": true}, nil
}
