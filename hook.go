package agentscope

import (
	"context"
	"time"
)

// HookEvent identifies when a hook fires within the reasoning/acting loop.
type HookEvent string

const (
	HookPreReasoning  HookEvent = "PreReasoning"
	HookPostReasoning HookEvent = "PostReasoning"
	HookPreActing     HookEvent = "PreActing"
	HookPostActing    HookEvent = "PostActing"
)

// HookInput is passed to hook functions.
type HookInput struct {
	SessionID string
	AgentName string
	Event     HookEvent

	// Msg carries the reasoning message for PostReasoning.
	Msg *Msg

	// ToolUse carries the tool-use block about to be dispatched (PreActing)
	// or just dispatched (PostActing).
	ToolUse *ToolUseBlock

	// Result carries the tool result for PostActing.
	Result *ToolResultBlock
}

// HookResult is returned by hook functions. A nil or zero value means
// "no action".
type HookResult struct {
	// Block prevents the tool from executing (PreActing only).
	Block bool
	// Reason is the human-readable reason for blocking.
	Reason string
	// UpdatedToolUse replaces the tool-use block about to be dispatched
	// (PreActing only). The original block is never mutated.
	UpdatedToolUse *ToolUseBlock
}

// HookFunc is the signature for hook callbacks.
type HookFunc func(ctx context.Context, input *HookInput) (*HookResult, error)

// HookMatcher binds hook functions to an event and an optional tool-name
// regex pattern. Matchers with higher Priority run earlier.
type HookMatcher struct {
	Event    HookEvent
	Pattern  string // Regex pattern for tool name (empty = match all).
	Priority int
	Hooks    []HookFunc
	Timeout  time.Duration // Max time for all hooks in this matcher (0 = 30s default).
}
