package subagent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	agentscope "github.com/wuji1428/agentscope-go"
)

// Tool input parameter names.
const (
	paramSessionID = "session_id"
	paramMessage   = "message"
)

// Provider creates a fresh agent instance. It is a pure factory: the Tool
// calls it once per invocation and never shares instances, so conversation
// continuity comes entirely from the Session store.
type Provider func() agentscope.Agent

// Tool wraps a sub-agent for multi-turn conversation as a callable tool.
//
// The tool exposes two parameters: message (required) and session_id (omit
// to start a new session, provide to continue one). With HITL enabled,
// suspended sub-agent replies are returned with the metadata needed to
// resume them; with HITL disabled they are downgraded to normal text
// responses so the conversation continues without interruption.
type Tool struct {
	name        string
	description string
	provider    Provider
	cfg         config
}

var _ agentscope.AgentTool = (*Tool)(nil)

// New creates a sub-agent tool over the given provider. A sample agent is
// created once to derive the tool's name and description and to run the
// HITL compatibility checks.
func New(provider Provider, opts ...Option) (*Tool, error) {
	if provider == nil {
		return nil, fmt.Errorf("%w: provider is nil", ErrInvalidArgument)
	}
	cfg := resolveConfig(opts)

	sample := provider()
	if sample == nil {
		return nil, fmt.Errorf("%w: provider returned nil agent", ErrInvalidArgument)
	}

	t := &Tool{
		name:        resolveToolName(sample, cfg),
		description: resolveDescription(sample, cfg),
		provider:    provider,
		cfg:         cfg,
	}

	if cfg.enableHITL {
		if s, ok := sample.(agentscope.Suspender); !ok || !s.CanSuspend() {
			return nil, fmt.Errorf("%w: %s", ErrHITLUnsupported, sample.Name())
		}
		if r, ok := sample.(agentscope.SubAgentResumer); ok && !r.SubAgentHITLEnabled() {
			cfg.logger.Warn("sub-agent tool has HITL enabled but the parent side has sub-agent HITL disabled; "+
				"a suspended sub-agent cannot be resumed from the parent",
				"tool", t.name, "agent", sample.Name())
		}
	}

	cfg.logger.Debug("created sub-agent tool", "tool", t.name, "description", t.description)
	return t, nil
}

// Name returns the tool name.
func (t *Tool) Name() string { return t.name }

// Description returns the tool description.
func (t *Tool) Description() string { return t.description }

// Parameters returns the tool's input schema.
func (t *Tool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			paramSessionID: map[string]any{
				"type": "string",
				"description": "Session ID for multi-turn dialogue. Omit to start a NEW session." +
					" To CONTINUE an existing session and retain memory, you MUST extract" +
					" the session_id from the previous response and pass it here.",
			},
			paramMessage: map[string]any{
				"type":        "string",
				"description": "Message to send to the agent",
			},
		},
		"required": []string{paramMessage},
	}
}

// Call executes one conversation step with the sub-agent. It always returns
// a result: runtime failures are recovered into error-shaped results so the
// calling loop can continue.
func (t *Tool) Call(ctx context.Context, param *agentscope.ToolCallParam) (*agentscope.ToolResultBlock, error) {
	return t.execute(ctx, param), nil
}

// execute resolves session identity, branches between fresh call and
// resume-with-injection, and drives the sub-agent.
func (t *Tool) execute(ctx context.Context, param *agentscope.ToolCallParam) *agentscope.ToolResultBlock {
	var input map[string]any
	var toolUse *agentscope.ToolUseBlock
	if param != nil {
		input = param.Input
		toolUse = param.ToolUse
	}

	sessionID, _ := input[paramSessionID].(string)
	isNewSession := strings.TrimSpace(sessionID) == ""
	if isNewSession {
		sessionID = agentscope.GenerateID(agentscope.PrefixSession)
	}

	// Resume with results injected by the hook.
	if t.cfg.enableHITL && toolUse != nil && toolUse.Metadata != nil {
		if raw, ok := toolUse.Metadata[MetadataPreviousToolResult]; ok {
			return t.resume(ctx, sessionID, collectToolResults(raw), param)
		}
	}

	message, _ := input[paramMessage].(string)
	if message == "" {
		return agentscope.ErrorResultBlock("Message is required")
	}

	agent := t.provider()
	if agent == nil {
		return agentscope.ErrorResultBlock("Execution error: agent provider returned nil")
	}

	if !isNewSession {
		t.loadAgentState(ctx, sessionID, agent)
	}

	t.cfg.logger.Debug("sub-agent session step",
		"tool", t.name, "session_id", sessionID, "new", isNewSession)

	var emitter agentscope.Emitter
	if param != nil {
		emitter = param.Emitter
	}
	return t.drive(ctx, agent, []*agentscope.Msg{agentscope.UserMsg(message)}, sessionID, emitter)
}

// resume continues a suspended session with injected tool results. Each
// result becomes one tool message; an empty list (hook-triggered pause)
// simply re-enters the sub-agent's previous step.
func (t *Tool) resume(ctx context.Context, sessionID string, results []*agentscope.ToolResultBlock, param *agentscope.ToolCallParam) *agentscope.ToolResultBlock {
	t.cfg.logger.Debug("resuming sub-agent session",
		"tool", t.name, "session_id", sessionID, "results", len(results))

	agent := t.provider()
	if agent == nil {
		return agentscope.ErrorResultBlock("Execution error: agent provider returned nil")
	}

	t.loadAgentState(ctx, sessionID, agent)

	msgs := make([]*agentscope.Msg, 0, len(results))
	for _, r := range results {
		msgs = append(msgs, agentscope.ToolMsg(r))
	}

	var emitter agentscope.Emitter
	if param != nil {
		emitter = param.Emitter
	}
	return t.drive(ctx, agent, msgs, sessionID, emitter)
}

// drive runs the sub-agent (streaming or not), classifies the response, and
// persists agent state on the success path.
func (t *Tool) drive(ctx context.Context, agent agentscope.Agent, msgs []*agentscope.Msg, sessionID string, emitter agentscope.Emitter) *agentscope.ToolResultBlock {
	var response *agentscope.Msg
	var err error
	if t.cfg.forwardEvents {
		response, err = t.driveStreaming(ctx, agent, msgs, sessionID, emitter)
	} else {
		response, err = agent.Call(ctx, msgs)
	}
	if err != nil {
		t.cfg.logger.Error("sub-agent execution failed",
			"tool", t.name, "session_id", sessionID, "error", err)
		return agentscope.ErrorResultBlock(fmt.Sprintf("Execution error: %s", err.Error()))
	}

	result := t.buildResult(response, sessionID)
	t.saveAgentState(ctx, sessionID, agent)
	return result
}

// driveStreaming runs the sub-agent through its streaming entry point,
// forwarding every event to the emitter. The last event's message is the
// final response.
func (t *Tool) driveStreaming(ctx context.Context, agent agentscope.Agent, msgs []*agentscope.Msg, sessionID string, emitter agentscope.Emitter) (*agentscope.Msg, error) {
	opts := t.cfg.streamOptions
	if opts == nil {
		opts = agentscope.DefaultStreamOptions()
	}

	stream := agent.Stream(ctx, msgs, opts)
	var last *agentscope.Event
	for stream.Next() {
		event := stream.Current()
		t.forwardEvent(event, emitter, agent, sessionID)
		last = event
	}
	if err := stream.Err(); err != nil {
		return nil, err
	}
	if last == nil || last.Msg == nil {
		return &agentscope.Msg{Role: agentscope.RoleAssistant, GenerateReason: agentscope.ReasonModelStop}, nil
	}
	return last.Msg, nil
}

// forwardEvent serializes an event to JSON and emits it as a tool-result
// chunk. Serialization failures are logged and swallowed.
func (t *Tool) forwardEvent(event *agentscope.Event, emitter agentscope.Emitter, agent agentscope.Agent, sessionID string) {
	if emitter == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		t.cfg.logger.Warn("failed to serialize sub-agent event", "tool", t.name, "error", err)
		return
	}
	emitter.Emit(&agentscope.ToolResultBlock{
		Output: []agentscope.ContentBlock{&agentscope.TextBlock{Text: string(payload)}},
		Metadata: map[string]any{
			"subagent_event": event,
			"subagent_name":  agent.Name(),
			"subagent_id":    agent.ID(),
			agentscope.MetadataSubAgentSessionID: sessionID,
		},
	})
}

// buildResult classifies the response. Suspending reasons produce a
// suspended result when HITL is enabled; everything else becomes a text
// result prefixed with the session id so callers can continue the
// conversation.
func (t *Tool) buildResult(response *agentscope.Msg, sessionID string) *agentscope.ToolResultBlock {
	if t.cfg.enableHITL && response.GenerateReason.Suspending() {
		return t.buildSuspendedResult(response, sessionID)
	}

	text := response.TextContent()
	if text == "" {
		text = "(No response)"
	}
	return agentscope.TextResultBlock(fmt.Sprintf("session_id: %s\n\n%s", sessionID, text))
}

// buildSuspendedResult packages a paused reply: all text blocks followed by
// all pending tool-use blocks, plus the metadata needed to resume. The outer
// id and name are left unset; the dispatching loop fills them.
func (t *Tool) buildSuspendedResult(response *agentscope.Msg, sessionID string) *agentscope.ToolResultBlock {
	var content []agentscope.ContentBlock
	for _, tb := range response.TextBlocks() {
		content = append(content, tb)
	}
	for _, tu := range response.ToolUses() {
		content = append(content, tu)
	}

	return &agentscope.ToolResultBlock{
		Output: content,
		Metadata: map[string]any{
			agentscope.MetadataSuspended:         true,
			agentscope.MetadataSubAgentSessionID: sessionID,
			agentscope.MetadataGenerateReason:    response.GenerateReason,
		},
	}
}

// loadAgentState restores agent state from the session store. Failures are
// logged but never interrupt the invocation.
func (t *Tool) loadAgentState(ctx context.Context, sessionID string, agent agentscope.Agent) {
	sm, ok := agent.(agentscope.StateModule)
	if !ok {
		return
	}
	if err := sm.LoadFrom(ctx, t.cfg.session, sessionID); err != nil {
		t.cfg.logger.Warn("failed to load sub-agent state",
			"tool", t.name, "session_id", sessionID, "error", err)
	}
}

// saveAgentState persists agent state to the session store. Failures are
// logged but never interrupt the invocation.
func (t *Tool) saveAgentState(ctx context.Context, sessionID string, agent agentscope.Agent) {
	sm, ok := agent.(agentscope.StateModule)
	if !ok {
		return
	}
	if err := sm.SaveTo(ctx, t.cfg.session, sessionID); err != nil {
		t.cfg.logger.Warn("failed to save sub-agent state",
			"tool", t.name, "session_id", sessionID, "error", err)
	}
}

// collectToolResults extracts the injected results from the hook's metadata
// value, dropping entries that are not tool result blocks.
func collectToolResults(raw any) []*agentscope.ToolResultBlock {
	switch v := raw.(type) {
	case []*agentscope.ToolResultBlock:
		out := make([]*agentscope.ToolResultBlock, 0, len(v))
		for _, r := range v {
			if r != nil {
				out = append(out, r)
			}
		}
		return out
	case []any:
		var out []*agentscope.ToolResultBlock
		for _, item := range v {
			if r, ok := item.(*agentscope.ToolResultBlock); ok && r != nil {
				out = append(out, r)
			}
		}
		return out
	}
	return nil
}

// resolveToolName derives the tool name: config override first, then
// "call_" + the agent's lowercased name with non-alphanumerics replaced by
// underscores. Agents without a name yield "call_agent".
func resolveToolName(agent agentscope.Agent, cfg config) string {
	if cfg.toolName != "" {
		return cfg.toolName
	}
	name := agent.Name()
	if name == "" {
		return "call_agent"
	}
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return "call_" + b.String()
}

// resolveDescription derives the description: config override, then the
// agent's own description, then a generated default.
func resolveDescription(agent agentscope.Agent, cfg config) string {
	if cfg.description != "" {
		return cfg.description
	}
	if desc := agent.Description(); desc != "" {
		return desc
	}
	return fmt.Sprintf("Call %s to complete tasks", agent.Name())
}
