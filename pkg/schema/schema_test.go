package schema

import (
	"strings"
	"testing"

	"github.com/loomhq/loom/pkg/permission"
	"github.com/loomhq/loom/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogMethodNames(t *testing.T) {
	c := NewCatalog()

	names := c.Names()
	require.NotEmpty(t, names)

	// Every method is resource.operation.
	for _, name := range names {
		parts := strings.Split(name, ".")
		assert.Len(t, parts, 2, name)
		assert.NotEmpty(t, parts[0], name)
		assert.NotEmpty(t, parts[1], name)
	}
}

func TestLookup(t *testing.T) {
	c := NewCatalog()

	m, ok := c.Lookup("page.get")
	require.True(t, ok)
	assert.Equal(t, "pages", m.Category)
	assert.NotEmpty(t, m.Description)

	_, ok = c.Lookup("ghost.summon")
	assert.False(t, ok)
}

func TestToolManifest(t *testing.T) {
	c := NewCatalog()
	tools := c.ToolManifest()
	require.Len(t, tools, len(c.Names()))

	byName := make(map[string]Tool)
	for _, tool := range tools {
		byName[tool.Name] = tool
	}

	tool, ok := byName["page.create"]
	require.True(t, ok)
	assert.NotEmpty(t, tool.Description)
	assert.Equal(t, "object", tool.InputSchema["type"])

	properties, ok := tool.InputSchema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, properties, "spaceId")
	assert.Contains(t, properties, "title")

	required, ok := tool.InputSchema["required"].([]string)
	require.True(t, ok)
	assert.Contains(t, required, "spaceId")
	assert.Contains(t, required, "title")
}

func TestOpenAPIDocument(t *testing.T) {
	c := NewCatalog()
	doc := c.OpenAPIDocument("Loom Bridge API", "1.0.0")

	assert.Equal(t, "3.0.0", doc["openapi"])

	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, paths, len(c.Names()))
	assert.Contains(t, paths, "/rpc/page.get")
	assert.Contains(t, paths, "/rpc/apikey.create")
}

// Every catalog method must carry an explicit permission level; relying
// on the gate's default-admin fallback for a published method would be
// an oversight.
func TestCatalogCoveredByPermissionTable(t *testing.T) {
	c := NewCatalog()
	gate := permission.NewGate(allowAll{})

	for _, name := range c.Names() {
		assert.True(t, gate.Known(name), "method %s missing from permission table", name)
	}
}

type allowAll struct{}

func (allowAll) Can(caller types.Identity, action, subject string) bool { return true }
