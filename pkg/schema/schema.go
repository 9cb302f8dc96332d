package schema

import (
	"fmt"
	"sort"
)

// Param describes one named parameter of a callable method.
type Param struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
}

// Method describes one callable resource.operation pair.
type Method struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Params      []Param `json:"params"`
}

// Catalog is the static table of every method the dispatcher serves. It
// drives the tool manifest, the documentation manifest, and the
// completeness check against registered handler tables.
type Catalog struct {
	methods map[string]Method
}

// NewCatalog creates the default catalog.
func NewCatalog() *Catalog {
	c := &Catalog{methods: make(map[string]Method)}
	for _, m := range defaultMethods() {
		c.methods[m.Name] = m
	}
	return c
}

// Lookup returns a method's description by name.
func (c *Catalog) Lookup(name string) (Method, bool) {
	m, ok := c.methods[name]
	return m, ok
}

// Methods returns all methods sorted by name.
func (c *Catalog) Methods() []Method {
	out := make([]Method, 0, len(c.methods))
	for _, m := range c.methods {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns all method names sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.methods))
	for name := range c.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func defaultMethods() []Method {
	pageID := Param{Name: "pageId", Type: "string", Required: true, Description: "Page identifier"}
	spaceID := Param{Name: "spaceId", Type: "string", Required: true, Description: "Space identifier"}
	workspaceID := Param{Name: "workspaceId", Type: "string", Required: true, Description: "Workspace identifier"}
	userID := Param{Name: "userId", Type: "string", Required: true, Description: "User identifier"}
	groupID := Param{Name: "groupId", Type: "string", Required: true, Description: "Group identifier"}

	return []Method{
		// Pages
		{Name: "page.create", Category: "pages", Description: "Create a page in a space",
			Params: []Param{spaceID, {Name: "title", Type: "string", Required: true}, {Name: "content", Type: "object"}}},
		{Name: "page.get", Category: "pages", Description: "Fetch a page by id",
			Params: []Param{pageID}},
		{Name: "page.list", Category: "pages", Description: "List pages in a space",
			Params: []Param{spaceID, {Name: "limit", Type: "number"}, {Name: "cursor", Type: "string"}}},
		{Name: "page.update", Category: "pages", Description: "Update a page's title or content",
			Params: []Param{pageID, {Name: "title", Type: "string"}, {Name: "content", Type: "object"}}},
		{Name: "page.delete", Category: "pages", Description: "Delete a page",
			Params: []Param{pageID}},
		{Name: "page.move", Category: "pages", Description: "Move a page to another space or parent",
			Params: []Param{pageID, {Name: "targetSpaceId", Type: "string", Required: true}, {Name: "parentId", Type: "string"}}},

		// Spaces
		{Name: "space.create", Category: "spaces", Description: "Create a space",
			Params: []Param{workspaceID, {Name: "name", Type: "string", Required: true}}},
		{Name: "space.get", Category: "spaces", Description: "Fetch a space by id",
			Params: []Param{spaceID}},
		{Name: "space.list", Category: "spaces", Description: "List spaces in a workspace",
			Params: []Param{workspaceID}},
		{Name: "space.update", Category: "spaces", Description: "Update a space",
			Params: []Param{spaceID, {Name: "name", Type: "string"}}},
		{Name: "space.delete", Category: "spaces", Description: "Delete a space",
			Params: []Param{spaceID}},
		{Name: "space.add_member", Category: "spaces", Description: "Add a member to a space",
			Params: []Param{spaceID, userID, {Name: "role", Type: "string"}}},
		{Name: "space.remove_member", Category: "spaces", Description: "Remove a member from a space",
			Params: []Param{spaceID, userID}},

		// Workspaces
		{Name: "workspace.get", Category: "workspaces", Description: "Fetch the current workspace",
			Params: []Param{workspaceID}},
		{Name: "workspace.update", Category: "workspaces", Description: "Update workspace settings",
			Params: []Param{workspaceID, {Name: "name", Type: "string"}}},
		{Name: "workspace.add_member", Category: "workspaces", Description: "Add a member to the workspace",
			Params: []Param{workspaceID, userID, {Name: "role", Type: "string"}}},
		{Name: "workspace.remove_member", Category: "workspaces", Description: "Remove a member from the workspace",
			Params: []Param{workspaceID, userID}},

		// Users and groups
		{Name: "user.get", Category: "users", Description: "Fetch a user profile",
			Params: []Param{userID}},
		{Name: "user.list", Category: "users", Description: "List workspace users",
			Params: []Param{workspaceID}},
		{Name: "group.create", Category: "groups", Description: "Create a group",
			Params: []Param{workspaceID, {Name: "name", Type: "string", Required: true}}},
		{Name: "group.get", Category: "groups", Description: "Fetch a group",
			Params: []Param{groupID}},
		{Name: "group.list", Category: "groups", Description: "List groups",
			Params: []Param{workspaceID}},
		{Name: "group.update", Category: "groups", Description: "Update a group",
			Params: []Param{groupID, {Name: "name", Type: "string"}}},
		{Name: "group.delete", Category: "groups", Description: "Delete a group",
			Params: []Param{groupID}},
		{Name: "group.add_member", Category: "groups", Description: "Add a user to a group",
			Params: []Param{groupID, userID}},
		{Name: "group.remove_member", Category: "groups", Description: "Remove a user from a group",
			Params: []Param{groupID, userID}},

		// Attachments and comments
		{Name: "attachment.create", Category: "attachments", Description: "Register an uploaded attachment",
			Params: []Param{pageID, {Name: "fileName", Type: "string", Required: true}, {Name: "fileId", Type: "string", Required: true}}},
		{Name: "attachment.get", Category: "attachments", Description: "Fetch attachment metadata",
			Params: []Param{{Name: "attachmentId", Type: "string", Required: true}}},
		{Name: "attachment.delete", Category: "attachments", Description: "Delete an attachment",
			Params: []Param{{Name: "attachmentId", Type: "string", Required: true}}},
		{Name: "comment.create", Category: "comments", Description: "Comment on a page",
			Params: []Param{pageID, {Name: "body", Type: "string", Required: true}}},
		{Name: "comment.get", Category: "comments", Description: "Fetch a comment",
			Params: []Param{{Name: "commentId", Type: "string", Required: true}}},
		{Name: "comment.list", Category: "comments", Description: "List comments on a page",
			Params: []Param{pageID}},
		{Name: "comment.update", Category: "comments", Description: "Edit a comment",
			Params: []Param{{Name: "commentId", Type: "string", Required: true}, {Name: "body", Type: "string", Required: true}}},
		{Name: "comment.delete", Category: "comments", Description: "Delete a comment",
			Params: []Param{{Name: "commentId", Type: "string", Required: true}}},

		// UI signalling
		{Name: "ui.navigate", Category: "ui", Description: "Ask the caller's other sessions to navigate",
			Params: []Param{{Name: "path", Type: "string", Required: true}}},

		// API keys
		{Name: "apikey.create", Category: "credentials", Description: "Create an API key; the plaintext is returned once",
			Params: []Param{{Name: "name", Type: "string", Required: true, Description: "Human label for the key"}}},
		{Name: "apikey.list", Category: "credentials", Description: "List the caller's API keys",
			Params: []Param{}},
		{Name: "apikey.revoke", Category: "credentials", Description: "Revoke one of the caller's API keys",
			Params: []Param{{Name: "keyId", Type: "string", Required: true}}},

		// Session context
		{Name: "context.get", Category: "context", Description: "Read a session context value",
			Params: []Param{{Name: "key", Type: "string", Required: true}}},
		{Name: "context.set", Category: "context", Description: "Store a session context value with optional TTL",
			Params: []Param{{Name: "key", Type: "string", Required: true}, {Name: "value", Type: "object", Required: true}, {Name: "ttlSeconds", Type: "number"}}},
		{Name: "context.delete", Category: "context", Description: "Delete a session context value",
			Params: []Param{{Name: "key", Type: "string", Required: true}}},
		{Name: "context.list", Category: "context", Description: "List the session's context keys",
			Params: []Param{}},
		{Name: "context.clear", Category: "context", Description: "Clear all session context values",
			Params: []Param{}},
	}
}

// paramSchema renders params as a JSON-schema-like object description.
func paramSchema(params []Param) map[string]any {
	properties := make(map[string]any, len(params))
	var required []string
	for _, p := range params {
		prop := map[string]any{"type": p.Type}
		if p.Description != "" {
			prop["description"] = p.Description
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// Tool is one entry of the AI-assistant tool manifest.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// ToolManifest derives a machine-discoverable tool list from the catalog.
func (c *Catalog) ToolManifest() []Tool {
	methods := c.Methods()
	tools := make([]Tool, 0, len(methods))
	for _, m := range methods {
		tools = append(tools, Tool{
			Name:        m.Name,
			Description: m.Description,
			InputSchema: paramSchema(m.Params),
		})
	}
	return tools
}

// OpenAPIDocument synthesizes one POST path per method for documentation.
// No per-method routes exist at runtime; all traffic goes through /rpc.
func (c *Catalog) OpenAPIDocument(title, version string) map[string]any {
	paths := make(map[string]any)
	for _, m := range c.Methods() {
		paths[fmt.Sprintf("/rpc/%s", m.Name)] = map[string]any{
			"post": map[string]any{
				"operationId": m.Name,
				"summary":     m.Description,
				"tags":        []string{m.Category},
				"requestBody": map[string]any{
					"content": map[string]any{
						"application/json": map[string]any{
							"schema": paramSchema(m.Params),
						},
					},
				},
				"responses": map[string]any{
					"200": map[string]any{
						"description": "JSON-RPC response envelope",
					},
				},
			},
		}
	}
	return map[string]any{
		"openapi": "3.0.0",
		"info": map[string]any{
			"title":   title,
			"version": version,
		},
		"paths": paths,
	}
}
