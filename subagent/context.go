package subagent

import (
	"context"
	"fmt"
	"sync"

	agentscope "github.com/wuji1428/agentscope-go"
)

// StateName is the logical name the coordinator state is stored under in a
// Session store.
const StateName = "subagent_context"

// Context coordinates suspended sub-agent tool calls: it owns a PendingStore
// and adds the submission checks and suspension-aware helpers around it.
// One Context serves one coordinator; callers that want sharing pass the
// same Context explicitly.
type Context struct {
	mu    sync.RWMutex
	store *PendingStore
}

// NewContext creates a Context with an empty pending store.
func NewContext() *Context {
	return &Context{store: NewPendingStore()}
}

// PendingStore exposes the underlying store for advanced use. Direct writes
// bypass the submission checks.
func (c *Context) PendingStore() *PendingStore {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store
}

// SetSessionID registers the session for an outer tool call. Registering the
// same session again is a no-op; a different session restarts the lifecycle
// and discards staged results.
func (c *Context) SetSessionID(toolID, sessionID string) error {
	if toolID == "" {
		return fmt.Errorf("%w: toolID is empty", ErrInvalidArgument)
	}
	store := c.PendingStore()
	if existing, ok := store.SessionID(toolID); ok && existing == sessionID {
		return nil
	}
	return store.SetSessionID(toolID, sessionID)
}

// SessionID returns the registered session for an outer tool call.
func (c *Context) SessionID(toolID string) (string, bool) {
	return c.PendingStore().SessionID(toolID)
}

// PendingResults returns the staged results for an outer tool call. The
// boolean is false when nothing is staged.
func (c *Context) PendingResults(toolID string) ([]*agentscope.ToolResultBlock, bool) {
	results := c.PendingStore().PendingResults(toolID)
	if len(results) == 0 {
		return nil, false
	}
	return results, true
}

// HasPendingResult reports whether any results are staged for the call.
func (c *Context) HasPendingResult(toolID string) bool {
	return c.PendingStore().HasPendingResults(toolID)
}

// ConsumePendingResult atomically removes and returns the pending context
// for an outer tool call. This is the resume entry point: once consumed,
// the store holds nothing for the id.
func (c *Context) ConsumePendingResult(toolID string) (*PendingContext, bool) {
	pc := c.PendingStore().Remove(toolID)
	if pc == nil {
		return nil, false
	}
	return pc, true
}

// ClearToolResult drops the pending context for an outer tool call.
func (c *Context) ClearToolResult(toolID string) {
	c.PendingStore().Remove(toolID)
}

// Clear drops every pending context.
func (c *Context) Clear() {
	c.PendingStore().ClearAll()
}

// SubmitResult stages a single human-provided result for a suspended outer
// tool call. The call must have a registered session.
func (c *Context) SubmitResult(toolID string, result *agentscope.ToolResultBlock) error {
	if result == nil {
		return fmt.Errorf("%w: result is nil", ErrInvalidArgument)
	}
	return c.SubmitResults(toolID, []*agentscope.ToolResultBlock{result})
}

// SubmitResults stages human-provided results for a suspended outer tool
// call, preserving order.
func (c *Context) SubmitResults(toolID string, results []*agentscope.ToolResultBlock) error {
	if len(results) == 0 {
		return fmt.Errorf("%w: results is empty", ErrInvalidArgument)
	}
	store := c.PendingStore()
	if !store.Contains(toolID) {
		return fmt.Errorf("%w: %s", ErrUnknownOuterCall, toolID)
	}
	return store.AddResults(toolID, results)
}

// SaveTo persists the pending store to a Session store under StateName.
func (c *Context) SaveTo(ctx context.Context, session agentscope.Session, key string) error {
	return session.Save(ctx, key, StateName, c.PendingStore())
}

// LoadFrom replaces the in-memory pending store with the one persisted under
// StateName. A missing blob leaves the store empty.
func (c *Context) LoadFrom(ctx context.Context, session agentscope.Session, key string) error {
	loaded := NewPendingStore()
	ok, err := session.Get(ctx, key, StateName, loaded)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ok {
		c.store = loaded
	} else {
		c.store = NewPendingStore()
	}
	return nil
}

// ExtractSessionID returns the sub-agent session id recorded on a tool
// result, if present.
func ExtractSessionID(result *agentscope.ToolResultBlock) (string, bool) {
	if result == nil || result.Metadata == nil {
		return "", false
	}
	id, ok := result.Metadata[agentscope.MetadataSubAgentSessionID].(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// IsSubAgentResult reports whether a tool result originates from a
// sub-agent.
func IsSubAgentResult(result *agentscope.ToolResultBlock) bool {
	_, ok := ExtractSessionID(result)
	return ok
}

// GenerateReasonOf reports the termination reason recorded on a sub-agent
// result; results without a valid reason classify as ReasonModelStop.
func GenerateReasonOf(result *agentscope.ToolResultBlock) agentscope.GenerateReason {
	return agentscope.GenerateReasonOf(result)
}
