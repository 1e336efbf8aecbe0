package subagent

import (
	"context"

	agentscope "github.com/wuji1428/agentscope-go"
)

// MetadataPreviousToolResult is the tool-use metadata key under which the
// injection hook stages previously pending results for resumption.
const MetadataPreviousToolResult = "previous_tool_result"

// InputSessionID is the tool input key the injection hook fills with the
// pending context's session id.
const InputSessionID = "session_id"

// injectionHookPriority puts the rewrite ahead of ordinary PreActing hooks
// so the injected results are visible to tool execution.
const injectionHookPriority = 10

// InjectionHook returns a PreActing hook matcher that resumes suspended
// sub-agent calls. For each tool use about to be dispatched it consumes the
// pending context staged under the tool-use id, if any, and replaces the
// block with a rewritten copy carrying the staged results in metadata and
// the session id in input. Tool uses without pending state pass through
// untouched; the original block is never mutated.
func InjectionHook(c *Context) agentscope.HookMatcher {
	return agentscope.HookMatcher{
		Event:    agentscope.HookPreActing,
		Priority: injectionHookPriority,
		Hooks: []agentscope.HookFunc{
			func(ctx context.Context, in *agentscope.HookInput) (*agentscope.HookResult, error) {
				toolUse := in.ToolUse
				if toolUse == nil || toolUse.ID == "" || toolUse.Input == nil {
					return nil, nil
				}

				pending, ok := c.ConsumePendingResult(toolUse.ID)
				if !ok {
					return nil, nil
				}

				rewritten := toolUse.Clone()
				if rewritten.Metadata == nil {
					rewritten.Metadata = make(map[string]any)
				}
				rewritten.Metadata[MetadataPreviousToolResult] = pending.PendingResults
				if rewritten.Input == nil {
					rewritten.Input = make(map[string]any)
				}
				rewritten.Input[InputSessionID] = pending.SessionID

				return &agentscope.HookResult{UpdatedToolUse: rewritten}, nil
			},
		},
	}
}
