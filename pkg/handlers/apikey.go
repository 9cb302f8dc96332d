package handlers

import (
	"context"

	"github.com/loomhq/loom/pkg/apikey"
	"github.com/loomhq/loom/pkg/dispatcher"
	"github.com/loomhq/loom/pkg/protocol"
	"github.com/loomhq/loom/pkg/types"
)

// APIKeyHandlers owns the apikey.* operations: the bridge's own
// credential lifecycle surface.
type APIKeyHandlers struct {
	keys *apikey.Service
}

// NewAPIKeyHandlers creates the apikey handler set.
func NewAPIKeyHandlers(keys *apikey.Service) *APIKeyHandlers {
	return &APIKeyHandlers{keys: keys}
}

// Table returns the dispatch table for the apikey resource.
func (h *APIKeyHandlers) Table() dispatcher.HandlerTable {
	return dispatcher.HandlerTable{
		"create": h.create,
		"list":   h.list,
		"revoke": h.revoke,
	}
}

func (h *APIKeyHandlers) create(ctx context.Context, params map[string]any, caller types.Identity) (any, error) {
	name := stringParam(params, "name")
	if name == "" {
		return nil, protocol.ValidationError("name is required")
	}

	plaintext, key, err := h.keys.Generate(caller.UserID, caller.WorkspaceID, name)
	if err != nil {
		return nil, err
	}

	// The plaintext key appears here and nowhere else.
	return map[string]any{
		"id":        key.ID,
		"name":      key.Name,
		"key":       plaintext,
		"createdAt": key.CreatedAt,
	}, nil
}

func (h *APIKeyHandlers) list(ctx context.Context, params map[string]any, caller types.Identity) (any, error) {
	keys, err := h.keys.ListByUser(caller.UserID)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"keys":  keys,
		"total": len(keys),
	}, nil
}

func (h *APIKeyHandlers) revoke(ctx context.Context, params map[string]any, caller types.Identity) (any, error) {
	keyID := stringParam(params, "keyId")
	if keyID == "" {
		return nil, protocol.ValidationError("keyId is required")
	}

	if err := h.keys.Revoke(keyID, caller.UserID); err != nil {
		return nil, protocol.ResourceNotFound(err.Error())
	}
	return map[string]any{"revoked": true}, nil
}

func stringParam(params map[string]any, name string) string {
	if params == nil {
		return ""
	}
	value, _ := params[name].(string)
	return value
}
