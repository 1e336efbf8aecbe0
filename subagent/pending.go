package subagent

import (
	"encoding/json"
	"fmt"
	"sync"

	agentscope "github.com/wuji1428/agentscope-go"
)

// PendingContext is the complete pending state of one suspended outer tool
// call: the outer call id, the sub-agent session it belongs to, and the
// staged results waiting to be injected on resume. It is a value; the store
// replaces whole contexts rather than mutating them, so a context read out
// of the store stays a valid (possibly stale) snapshot.
type PendingContext struct {
	ToolID         string                        `json:"tool_id"`
	SessionID      string                        `json:"session_id"`
	PendingResults []*agentscope.ToolResultBlock `json:"pending_results"`
}

// newPendingContext copies the results slice so the context cannot be
// mutated through the caller's slice.
func newPendingContext(toolID, sessionID string, results []*agentscope.ToolResultBlock) *PendingContext {
	copied := make([]*agentscope.ToolResultBlock, len(results))
	copy(copied, results)
	return &PendingContext{
		ToolID:         toolID,
		SessionID:      sessionID,
		PendingResults: copied,
	}
}

// PendingStore maps outer tool call ids to their pending contexts. It
// enforces a sessionId-first lifecycle: a session id must be registered for
// an id before any results can be staged under it, so no staged result can
// ever exist without a session to resume.
//
// All public operations are atomic at method granularity, and every returned
// list is a defensive copy. The store serializes to JSON so it can be saved
// to a Session store as a single state unit; loading is a whole-state
// replace.
type PendingStore struct {
	mu       sync.RWMutex
	contexts map[string]*PendingContext
}

// NewPendingStore creates an empty PendingStore.
func NewPendingStore() *PendingStore {
	return &PendingStore{contexts: make(map[string]*PendingContext)}
}

// SetSessionID registers (or replaces) the session for an outer tool call,
// resetting its staged results. Replacing an id's session discards whatever
// was staged under the previous one.
func (s *PendingStore) SetSessionID(toolID, sessionID string) error {
	if toolID == "" {
		return fmt.Errorf("%w: toolID is empty", ErrInvalidArgument)
	}
	if sessionID == "" {
		return fmt.Errorf("%w: sessionID is empty", ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts[toolID] = newPendingContext(toolID, sessionID, nil)
	return nil
}

// SessionID returns the registered session for an outer tool call.
func (s *PendingStore) SessionID(toolID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pc, ok := s.contexts[toolID]
	if !ok {
		return "", false
	}
	return pc.SessionID, true
}

// AddResult stages a single result for an outer tool call.
func (s *PendingStore) AddResult(toolID string, result *agentscope.ToolResultBlock) error {
	if result == nil {
		return fmt.Errorf("%w: result is nil", ErrInvalidArgument)
	}
	return s.AddResults(toolID, []*agentscope.ToolResultBlock{result})
}

// AddResults stages results for an outer tool call, preserving order.
// The call's session id must have been registered first.
func (s *PendingStore) AddResults(toolID string, results []*agentscope.ToolResultBlock) error {
	if toolID == "" {
		return fmt.Errorf("%w: toolID is empty", ErrInvalidArgument)
	}
	if results == nil {
		return fmt.Errorf("%w: results is nil", ErrInvalidArgument)
	}
	for _, r := range results {
		if r == nil {
			return fmt.Errorf("%w: results contains nil", ErrInvalidArgument)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.contexts[toolID]
	if !ok {
		return fmt.Errorf("%w: %s (call SetSessionID first)", ErrMissingSession, toolID)
	}

	// Replace the whole context so snapshots handed out earlier stay valid.
	merged := make([]*agentscope.ToolResultBlock, 0, len(existing.PendingResults)+len(results))
	merged = append(merged, existing.PendingResults...)
	merged = append(merged, results...)
	s.contexts[toolID] = newPendingContext(toolID, existing.SessionID, merged)
	return nil
}

// PendingResults returns a defensive copy of the staged results for an outer
// tool call, in staging order. Unknown ids yield an empty slice.
func (s *PendingStore) PendingResults(toolID string) []*agentscope.ToolResultBlock {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pc, ok := s.contexts[toolID]
	if !ok {
		return []*agentscope.ToolResultBlock{}
	}
	out := make([]*agentscope.ToolResultBlock, len(pc.PendingResults))
	copy(out, pc.PendingResults)
	return out
}

// Contains reports whether the outer tool call has a registered session.
func (s *PendingStore) Contains(toolID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.contexts[toolID]
	return ok
}

// HasPendingResults reports whether any results are staged for the call.
func (s *PendingStore) HasPendingResults(toolID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pc, ok := s.contexts[toolID]
	return ok && len(pc.PendingResults) > 0
}

// Remove atomically deletes and returns the pending context for an outer
// tool call, or nil if none exists.
func (s *PendingStore) Remove(toolID string) *PendingContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	pc, ok := s.contexts[toolID]
	if !ok {
		return nil
	}
	delete(s.contexts, toolID)
	return pc
}

// IsEmpty reports whether the store holds no pending contexts.
func (s *PendingStore) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.contexts) == 0
}

// ClearAll drops every pending context.
func (s *PendingStore) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts = make(map[string]*PendingContext)
}

// MarshalJSON serializes the full store contents.
func (s *PendingStore) MarshalJSON() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(s.contexts)
}

// UnmarshalJSON replaces the store contents with the snapshot.
func (s *PendingStore) UnmarshalJSON(data []byte) error {
	contexts := make(map[string]*PendingContext)
	if err := json.Unmarshal(data, &contexts); err != nil {
		return err
	}
	for id, pc := range contexts {
		if pc == nil {
			delete(contexts, id)
			continue
		}
		if pc.ToolID == "" {
			pc.ToolID = id
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts = contexts
	return nil
}
