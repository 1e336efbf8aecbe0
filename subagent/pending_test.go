package subagent

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	agentscope "github.com/wuji1428/agentscope-go"
)

func textResult(id, text string) *agentscope.ToolResultBlock {
	r := agentscope.TextResultBlock(text)
	r.ID = id
	return r
}

func TestPendingStore_SetSessionID(t *testing.T) {
	s := NewPendingStore()

	require.NoError(t, s.SetSessionID("tool-1", "sess-a"))

	id, ok := s.SessionID("tool-1")
	assert.True(t, ok)
	assert.Equal(t, "sess-a", id)
	assert.True(t, s.Contains("tool-1"))
	assert.False(t, s.HasPendingResults("tool-1"))
}

func TestPendingStore_SetSessionID_InvalidArguments(t *testing.T) {
	s := NewPendingStore()

	assert.ErrorIs(t, s.SetSessionID("", "sess-a"), ErrInvalidArgument)
	assert.ErrorIs(t, s.SetSessionID("tool-1", ""), ErrInvalidArgument)
	assert.False(t, s.Contains("tool-1"))
}

func TestPendingStore_AddResult_RequiresSession(t *testing.T) {
	s := NewPendingStore()

	err := s.AddResult("tool-1", textResult("r1", "ok"))
	assert.ErrorIs(t, err, ErrMissingSession)

	require.NoError(t, s.SetSessionID("tool-1", "sess-a"))
	assert.NoError(t, s.AddResult("tool-1", textResult("r1", "ok")))
	assert.True(t, s.HasPendingResults("tool-1"))
}

func TestPendingStore_AddResult_AfterRemove(t *testing.T) {
	s := NewPendingStore()
	require.NoError(t, s.SetSessionID("tool-1", "sess-a"))
	s.Remove("tool-1")

	err := s.AddResult("tool-1", textResult("r1", "ok"))
	assert.ErrorIs(t, err, ErrMissingSession)
}

func TestPendingStore_AddResults_PreservesOrder(t *testing.T) {
	s := NewPendingStore()
	require.NoError(t, s.SetSessionID("tool-1", "sess-a"))

	require.NoError(t, s.AddResult("tool-1", textResult("r1", "first")))
	require.NoError(t, s.AddResults("tool-1", []*agentscope.ToolResultBlock{
		textResult("r2", "second"),
		textResult("r3", "third"),
	}))

	results := s.PendingResults("tool-1")
	require.Len(t, results, 3)
	assert.Equal(t, "r1", results[0].ID)
	assert.Equal(t, "r2", results[1].ID)
	assert.Equal(t, "r3", results[2].ID)
}

func TestPendingStore_AddResults_InvalidArguments(t *testing.T) {
	s := NewPendingStore()
	require.NoError(t, s.SetSessionID("tool-1", "sess-a"))

	assert.ErrorIs(t, s.AddResult("tool-1", nil), ErrInvalidArgument)
	assert.ErrorIs(t, s.AddResults("tool-1", nil), ErrInvalidArgument)
	assert.ErrorIs(t, s.AddResults("", []*agentscope.ToolResultBlock{textResult("r1", "x")}), ErrInvalidArgument)
	assert.ErrorIs(t, s.AddResults("tool-1", []*agentscope.ToolResultBlock{nil}), ErrInvalidArgument)
	assert.False(t, s.HasPendingResults("tool-1"))
}

func TestPendingStore_PendingResults_DefensiveCopy(t *testing.T) {
	s := NewPendingStore()
	require.NoError(t, s.SetSessionID("tool-1", "sess-a"))
	require.NoError(t, s.AddResult("tool-1", textResult("r1", "ok")))

	first := s.PendingResults("tool-1")
	first[0] = textResult("mutated", "mutated")

	second := s.PendingResults("tool-1")
	require.Len(t, second, 1)
	assert.Equal(t, "r1", second[0].ID)
}

func TestPendingStore_PendingResults_UnknownID(t *testing.T) {
	s := NewPendingStore()
	assert.Empty(t, s.PendingResults("nope"))
}

func TestPendingStore_SetSessionID_ReplaceDiscardsResults(t *testing.T) {
	s := NewPendingStore()
	require.NoError(t, s.SetSessionID("tool-1", "sess-a"))
	require.NoError(t, s.AddResult("tool-1", textResult("r1", "ok")))

	require.NoError(t, s.SetSessionID("tool-1", "sess-b"))

	id, ok := s.SessionID("tool-1")
	assert.True(t, ok)
	assert.Equal(t, "sess-b", id)
	assert.Empty(t, s.PendingResults("tool-1"))
}

func TestPendingStore_Remove(t *testing.T) {
	s := NewPendingStore()
	require.NoError(t, s.SetSessionID("tool-1", "sess-a"))
	require.NoError(t, s.AddResult("tool-1", textResult("r1", "ok")))

	pc := s.Remove("tool-1")
	require.NotNil(t, pc)
	assert.Equal(t, "tool-1", pc.ToolID)
	assert.Equal(t, "sess-a", pc.SessionID)
	require.Len(t, pc.PendingResults, 1)

	assert.False(t, s.Contains("tool-1"))
	assert.Nil(t, s.Remove("tool-1"))
}

func TestPendingStore_ClearAll(t *testing.T) {
	s := NewPendingStore()
	require.NoError(t, s.SetSessionID("tool-1", "sess-a"))
	require.NoError(t, s.SetSessionID("tool-2", "sess-b"))

	s.ClearAll()

	assert.True(t, s.IsEmpty())
	assert.False(t, s.Contains("tool-1"))
	assert.False(t, s.Contains("tool-2"))
}

func TestPendingStore_JSONRoundTrip(t *testing.T) {
	s := NewPendingStore()
	require.NoError(t, s.SetSessionID("tool-1", "sess-a"))

	r := textResult("r1", "ok")
	r.Metadata = map[string]any{
		agentscope.MetadataSubAgentSessionID: "sess-a",
		agentscope.MetadataGenerateReason:    agentscope.ReasonToolSuspended,
	}
	require.NoError(t, s.AddResult("tool-1", r))
	require.NoError(t, s.AddResult("tool-1", textResult("r2", "later")))
	require.NoError(t, s.SetSessionID("tool-2", "sess-b"))

	data, err := json.Marshal(s)
	require.NoError(t, err)

	loaded := NewPendingStore()
	require.NoError(t, json.Unmarshal(data, loaded))

	id, ok := loaded.SessionID("tool-1")
	assert.True(t, ok)
	assert.Equal(t, "sess-a", id)

	results := loaded.PendingResults("tool-1")
	require.Len(t, results, 2)
	assert.Equal(t, "r1", results[0].ID)
	assert.Equal(t, "ok", results[0].Text())
	assert.Equal(t, "r2", results[1].ID)
	assert.Equal(t, "sess-a", results[0].Metadata[agentscope.MetadataSubAgentSessionID])
	assert.Equal(t, agentscope.ReasonToolSuspended, agentscope.GenerateReasonOf(results[0]))

	id2, ok := loaded.SessionID("tool-2")
	assert.True(t, ok)
	assert.Equal(t, "sess-b", id2)
	assert.Empty(t, loaded.PendingResults("tool-2"))
}

func TestPendingStore_ConcurrentAccess(t *testing.T) {
	s := NewPendingStore()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			toolID := fmt.Sprintf("tool-%d", n)
			require.NoError(t, s.SetSessionID(toolID, fmt.Sprintf("sess-%d", n)))
			for j := 0; j < 10; j++ {
				require.NoError(t, s.AddResult(toolID, textResult(fmt.Sprintf("r-%d-%d", n, j), "x")))
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 16; i++ {
		toolID := fmt.Sprintf("tool-%d", i)
		results := s.PendingResults(toolID)
		require.Len(t, results, 10)
		for j, r := range results {
			assert.Equal(t, fmt.Sprintf("r-%d-%d", i, j), r.ID)
		}
	}
}
