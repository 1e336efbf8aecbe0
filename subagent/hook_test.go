package subagent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	agentscope "github.com/wuji1428/agentscope-go"
)

func runInjection(t *testing.T, c *Context, toolUse *agentscope.ToolUseBlock) *agentscope.HookResult {
	t.Helper()
	matcher := InjectionHook(c)
	require.Equal(t, agentscope.HookPreActing, matcher.Event)
	require.Len(t, matcher.Hooks, 1)

	res, err := matcher.Hooks[0](context.Background(), &agentscope.HookInput{
		Event:   agentscope.HookPreActing,
		ToolUse: toolUse,
	})
	require.NoError(t, err)
	return res
}

func TestInjectionHook_RewritesPendingToolUse(t *testing.T) {
	c := NewContext()
	require.NoError(t, c.SetSessionID("outer-1", "sess-a"))
	require.NoError(t, c.SubmitResult("outer-1", textResult("inner-1", "approved")))

	original := &agentscope.ToolUseBlock{
		ID:    "outer-1",
		Name:  "call_worker",
		Input: map[string]any{"message": "do it"},
	}

	res := runInjection(t, c, original)
	require.NotNil(t, res)
	require.NotNil(t, res.UpdatedToolUse)

	rewritten := res.UpdatedToolUse
	assert.Equal(t, "outer-1", rewritten.ID)
	assert.Equal(t, "call_worker", rewritten.Name)
	assert.Equal(t, "sess-a", rewritten.Input[InputSessionID])
	assert.Equal(t, "do it", rewritten.Input["message"])

	injected, ok := rewritten.Metadata[MetadataPreviousToolResult].([]*agentscope.ToolResultBlock)
	require.True(t, ok)
	require.Len(t, injected, 1)
	assert.Equal(t, "inner-1", injected[0].ID)

	// The original block is untouched.
	assert.NotContains(t, original.Input, InputSessionID)
	assert.Nil(t, original.Metadata)

	// The pending entry is drained.
	assert.False(t, c.PendingStore().Contains("outer-1"))
}

func TestInjectionHook_NoOpWithoutPendingEntry(t *testing.T) {
	c := NewContext()

	original := &agentscope.ToolUseBlock{
		ID:       "outer-1",
		Name:     "call_worker",
		Input:    map[string]any{"message": "hi"},
		Metadata: map[string]any{"keep": "me"},
	}

	res := runInjection(t, c, original)
	assert.Nil(t, res)
	assert.Equal(t, map[string]any{"message": "hi"}, original.Input)
	assert.Equal(t, map[string]any{"keep": "me"}, original.Metadata)
}

func TestInjectionHook_PassThroughOnIncompleteToolUse(t *testing.T) {
	c := NewContext()
	require.NoError(t, c.SetSessionID("outer-1", "sess-a"))
	require.NoError(t, c.SubmitResult("outer-1", textResult("inner-1", "ok")))

	assert.Nil(t, runInjection(t, c, nil))
	assert.Nil(t, runInjection(t, c, &agentscope.ToolUseBlock{Name: "call_worker", Input: map[string]any{}}))
	assert.Nil(t, runInjection(t, c, &agentscope.ToolUseBlock{ID: "outer-1", Name: "call_worker"}))

	// None of the incomplete shapes consumed the entry.
	assert.True(t, c.PendingStore().Contains("outer-1"))
}

func TestInjectionHook_EmptyResultListStillInjectsSession(t *testing.T) {
	c := NewContext()
	require.NoError(t, c.SetSessionID("outer-1", "sess-a"))

	res := runInjection(t, c, &agentscope.ToolUseBlock{
		ID:    "outer-1",
		Name:  "call_worker",
		Input: map[string]any{},
	})
	require.NotNil(t, res)
	require.NotNil(t, res.UpdatedToolUse)
	assert.Equal(t, "sess-a", res.UpdatedToolUse.Input[InputSessionID])

	injected := res.UpdatedToolUse.Metadata[MetadataPreviousToolResult].([]*agentscope.ToolResultBlock)
	assert.Empty(t, injected)
}
