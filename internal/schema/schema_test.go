package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type simpleInput struct {
	Name  string `json:"name" jsonschema:"required,description=The name"`
	Count int    `json:"count,omitempty" jsonschema:"description=How many"`
}

type nestedInput struct {
	Tags   []string `json:"tags,omitempty" jsonschema:"description=Tag list"`
	Nested struct {
		Inner string `json:"inner"`
	} `json:"nested,omitempty"`
}

func TestGenerate_Simple(t *testing.T) {
	s := Generate[simpleInput]()

	assert.Equal(t, "object", s["type"])

	props, ok := s["properties"].(map[string]any)
	require.True(t, ok)

	name, ok := props["name"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", name["type"])
	assert.Equal(t, "The name", name["description"])

	count, ok := props["count"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "integer", count["type"])

	required, ok := s["required"].([]string)
	require.True(t, ok)
	assert.Contains(t, required, "name")
	assert.NotContains(t, required, "count")
}

func TestGenerate_ArrayItems(t *testing.T) {
	s := Generate[nestedInput]()

	props := s["properties"].(map[string]any)
	tags := props["tags"].(map[string]any)
	assert.Equal(t, "array", tags["type"])

	items, ok := tags["items"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", items["type"])
}

func TestGenerate_EmptyStruct(t *testing.T) {
	s := Generate[struct{}]()
	assert.Equal(t, "object", s["type"])
}

func TestGenerateJSON(t *testing.T) {
	raw, err := GenerateJSON[simpleInput]()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"name"`)
}
