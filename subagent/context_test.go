package subagent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	agentscope "github.com/wuji1428/agentscope-go"
	"github.com/wuji1428/agentscope-go/session"
)

func TestContext_SetSessionID_SameSessionIsNoOp(t *testing.T) {
	c := NewContext()
	require.NoError(t, c.SetSessionID("tool-1", "sess-a"))
	require.NoError(t, c.SubmitResult("tool-1", textResult("r1", "ok")))

	// Re-registering the same session keeps staged results.
	require.NoError(t, c.SetSessionID("tool-1", "sess-a"))
	assert.True(t, c.HasPendingResult("tool-1"))

	// A different session restarts the lifecycle.
	require.NoError(t, c.SetSessionID("tool-1", "sess-b"))
	assert.False(t, c.HasPendingResult("tool-1"))
}

func TestContext_SubmitResult_UnknownOuterCall(t *testing.T) {
	c := NewContext()

	err := c.SubmitResult("tool-1", textResult("r1", "ok"))
	assert.ErrorIs(t, err, ErrUnknownOuterCall)
}

func TestContext_SubmitResults_InvalidArguments(t *testing.T) {
	c := NewContext()
	require.NoError(t, c.SetSessionID("tool-1", "sess-a"))

	assert.ErrorIs(t, c.SubmitResult("tool-1", nil), ErrInvalidArgument)
	assert.ErrorIs(t, c.SubmitResults("tool-1", nil), ErrInvalidArgument)
	assert.ErrorIs(t, c.SubmitResults("tool-1", []*agentscope.ToolResultBlock{}), ErrInvalidArgument)
}

func TestContext_ConsumePendingResult(t *testing.T) {
	c := NewContext()
	require.NoError(t, c.SetSessionID("tool-1", "sess-a"))
	require.NoError(t, c.SubmitResults("tool-1", []*agentscope.ToolResultBlock{
		textResult("r1", "first"),
		textResult("r2", "second"),
	}))

	pc, ok := c.ConsumePendingResult("tool-1")
	require.True(t, ok)
	assert.Equal(t, "sess-a", pc.SessionID)
	require.Len(t, pc.PendingResults, 2)
	assert.Equal(t, "r1", pc.PendingResults[0].ID)
	assert.Equal(t, "r2", pc.PendingResults[1].ID)

	// Consumed: nothing remains.
	assert.False(t, c.PendingStore().Contains("tool-1"))
	_, ok = c.ConsumePendingResult("tool-1")
	assert.False(t, ok)
}

func TestContext_ClearToolResult(t *testing.T) {
	c := NewContext()
	require.NoError(t, c.SetSessionID("tool-1", "sess-a"))

	c.ClearToolResult("tool-1")
	assert.False(t, c.PendingStore().Contains("tool-1"))
}

func TestContext_SaveLoadRoundTrip(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()

	c := NewContext()
	require.NoError(t, c.SetSessionID("tool-1", "sess-a"))
	require.NoError(t, c.SubmitResult("tool-1", textResult("r1", "ok")))
	require.NoError(t, c.SaveTo(ctx, store, "key-1"))

	restored := NewContext()
	require.NoError(t, restored.LoadFrom(ctx, store, "key-1"))

	id, ok := restored.SessionID("tool-1")
	assert.True(t, ok)
	assert.Equal(t, "sess-a", id)

	results, ok := restored.PendingResults("tool-1")
	require.True(t, ok)
	require.Len(t, results, 1)
	assert.Equal(t, "r1", results[0].ID)
}

func TestContext_LoadFrom_MissingStateLeavesEmpty(t *testing.T) {
	store := session.NewMemoryStore()

	c := NewContext()
	require.NoError(t, c.SetSessionID("tool-1", "sess-a"))
	require.NoError(t, c.LoadFrom(context.Background(), store, "unknown-key"))

	assert.True(t, c.PendingStore().IsEmpty())
}

func TestExtractSessionID(t *testing.T) {
	r := textResult("r1", "ok")
	_, ok := ExtractSessionID(r)
	assert.False(t, ok)
	assert.False(t, IsSubAgentResult(r))

	r.Metadata = map[string]any{agentscope.MetadataSubAgentSessionID: "sess-a"}
	id, ok := ExtractSessionID(r)
	assert.True(t, ok)
	assert.Equal(t, "sess-a", id)
	assert.True(t, IsSubAgentResult(r))

	r.Metadata[agentscope.MetadataSubAgentSessionID] = 42
	_, ok = ExtractSessionID(r)
	assert.False(t, ok)

	_, ok = ExtractSessionID(nil)
	assert.False(t, ok)
}

func TestGenerateReasonOf(t *testing.T) {
	r := textResult("r1", "ok")
	assert.Equal(t, agentscope.ReasonModelStop, GenerateReasonOf(r))

	r.Metadata = map[string]any{agentscope.MetadataGenerateReason: agentscope.ReasonActingStopRequested}
	assert.Equal(t, agentscope.ReasonActingStopRequested, GenerateReasonOf(r))

	// String form after a serialization round-trip.
	r.Metadata[agentscope.MetadataGenerateReason] = "tool_suspended"
	assert.Equal(t, agentscope.ReasonToolSuspended, GenerateReasonOf(r))

	r.Metadata[agentscope.MetadataGenerateReason] = "bogus"
	assert.Equal(t, agentscope.ReasonModelStop, GenerateReasonOf(r))
}
