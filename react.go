package agentscope

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// ReActAgent is a reasoning/acting loop: it drives a ChatModel, dispatches
// the tool uses of every reply through hooks and the toolkit, and repeats
// until the model stops calling tools.
//
// An instance holds the conversation memory for one session. It can be
// persisted to a Session store (StateModule) and can suspend mid-acting
// (Suspender): dispatching a confirm-gated tool, receiving a stop request,
// or propagating a suspended sub-agent result all terminate the step with a
// suspending GenerateReason. A later Call with the answering tool results —
// or with no messages at all — re-enters the acting phase for whatever tool
// uses are still unanswered.
type ReActAgent struct {
	id   string
	opts reactOptions

	hooks *hookSet

	mu     sync.Mutex
	memory []*Msg
	usage  Usage

	stopReasoning atomic.Bool
	stopActing    atomic.Bool
}

// NewReActAgent creates an agent from the given options.
// A ChatModel is required.
func NewReActAgent(opts ...ReActOption) (*ReActAgent, error) {
	resolved := resolveReActOptions(opts)
	if resolved.model == nil {
		return nil, ErrNoModel
	}
	hooks, err := newHookSet(resolved.hookMatchers)
	if err != nil {
		return nil, err
	}
	return &ReActAgent{
		id:    GenerateID(PrefixAgent),
		opts:  resolved,
		hooks: hooks,
	}, nil
}

func (a *ReActAgent) ID() string          { return a.id }
func (a *ReActAgent) Name() string        { return a.opts.name }
func (a *ReActAgent) Description() string { return a.opts.description }

// CanSuspend reports that the reasoning/acting loop supports in-flight
// suspension.
func (a *ReActAgent) CanSuspend() bool { return true }

// SubAgentHITLEnabled reports whether suspended sub-agent results are
// propagated instead of being treated as ordinary tool output.
func (a *ReActAgent) SubAgentHITLEnabled() bool { return a.opts.subAgentHITL }

// RequestReasoningStop asks the loop to pause before the next model call.
func (a *ReActAgent) RequestReasoningStop() { a.stopReasoning.Store(true) }

// RequestActingStop asks the loop to pause before the next tool dispatch.
func (a *ReActAgent) RequestActingStop() { a.stopActing.Store(true) }

// Usage returns a snapshot of the accumulated token usage.
func (a *ReActAgent) Usage() Usage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.usage
}

// Memory returns a snapshot of the conversation history.
func (a *ReActAgent) Memory() []*Msg {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Msg, len(a.memory))
	copy(out, a.memory)
	return out
}

// Call runs one conversation step and returns the terminal reply.
// An empty msgs slice re-enters the previous step (used on resume).
func (a *ReActAgent) Call(ctx context.Context, msgs []*Msg) (*Msg, error) {
	return a.run(ctx, msgs, func(*Event) {})
}

// Stream runs one conversation step, delivering reasoning and acting events
// as they happen. The event marked Last carries the terminal reply.
func (a *ReActAgent) Stream(ctx context.Context, msgs []*Msg, opts *StreamOptions) *Stream {
	if opts == nil {
		opts = DefaultStreamOptions()
	}
	buf := opts.BufferSize
	if buf <= 0 {
		buf = DefaultStreamBufferSize
	}
	ch := make(chan *Event, buf)
	st := NewStream(ch)

	go func() {
		defer close(ch)
		emit := func(ev *Event) {
			ev.AgentName = a.opts.name
			if !opts.wants(ev) {
				return
			}
			select {
			case ch <- ev:
			case <-ctx.Done():
			}
		}
		final, err := a.run(ctx, msgs, emit)
		if err != nil {
			st.Fail(err)
			return
		}
		usage := a.Usage()
		emit(&Event{Type: EventReply, Msg: final, Usage: &usage, Last: true})
	}()

	return st
}

// run is the reasoning/acting loop shared by Call and Stream.
func (a *ReActAgent) run(ctx context.Context, msgs []*Msg, emit func(*Event)) (*Msg, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.memory = append(a.memory, msgs...)

	for turn := 0; turn < a.opts.maxTurns; turn++ {
		var reasoning *Msg

		// Re-enter the acting phase when the previous step left tool uses
		// unanswered (resume after a suspension).
		if turn == 0 {
			if pending, last := a.pendingToolUses(); len(pending) > 0 {
				reasoning = last
			}
		}

		if reasoning == nil {
			if a.stopReasoning.CompareAndSwap(true, false) {
				return &Msg{
					Role:           RoleAssistant,
					Name:           a.opts.name,
					GenerateReason: ReasonReasoningStopRequested,
				}, nil
			}

			resp, err := a.generate(ctx)
			if err != nil {
				return nil, err
			}
			reasoning = resp.Msg
			reasoning.Role = RoleAssistant
			reasoning.Name = a.opts.name
			a.usage.Add(resp.Usage)
			a.memory = append(a.memory, reasoning)

			emit(&Event{Type: EventReasoning, Msg: reasoning})
			if err := a.hooks.runPostReasoning(ctx, a.id, a.opts.name, reasoning); err != nil {
				a.opts.logger.Warn("post-reasoning hook failed", "agent", a.opts.name, "error", err)
			}
		}

		pending := a.unanswered(reasoning)
		if len(pending) == 0 {
			reasoning.GenerateReason = ReasonModelStop
			return reasoning, nil
		}

		for _, toolUse := range pending {
			if a.stopActing.CompareAndSwap(true, false) {
				return suspendReply(reasoning, ReasonActingStopRequested), nil
			}

			dispatch := toolUse
			res, err := a.hooks.runPreActing(ctx, a.id, a.opts.name, toolUse)
			if err != nil {
				a.opts.logger.Warn("pre-acting hook failed", "agent", a.opts.name, "tool", toolUse.Name, "error", err)
			} else if res != nil {
				if res.Block {
					blocked := ErrorResultBlock(fmt.Sprintf("tool blocked: %s", res.Reason))
					a.appendToolResult(toolUse, blocked, emit)
					continue
				}
				if res.UpdatedToolUse != nil {
					dispatch = res.UpdatedToolUse
				}
			}

			if a.opts.toolkit.NeedsConfirmation(dispatch.Name) {
				return suspendReply(reasoning, ReasonToolSuspended), nil
			}

			result := a.dispatch(ctx, dispatch, emit)

			if a.opts.subAgentHITL && result.Suspended() {
				// Surface the suspended result without answering the tool
				// use; the next step re-enters acting for it, where the
				// injection hook can stage the human-provided results.
				result.ID = toolUse.ID
				result.Name = toolUse.Name
				return &Msg{
					Role:           RoleAssistant,
					Name:           a.opts.name,
					Content:        []ContentBlock{result},
					GenerateReason: GenerateReasonOf(result),
				}, nil
			}

			a.appendToolResult(toolUse, result, emit)
			if err := a.hooks.runPostActing(ctx, a.id, a.opts.name, dispatch, result); err != nil {
				a.opts.logger.Warn("post-acting hook failed", "agent", a.opts.name, "tool", dispatch.Name, "error", err)
			}
		}
	}

	return nil, fmt.Errorf("%w: %d", ErrMaxTurns, a.opts.maxTurns)
}

// generate performs one model call with the current memory and tool schemas.
func (a *ReActAgent) generate(ctx context.Context) (*ModelResponse, error) {
	req := &ModelRequest{
		System:    a.opts.systemPrompt,
		Messages:  a.memory,
		Tools:     a.opts.toolkit.Schemas(),
		MaxTokens: a.opts.maxOutputTokens,
	}
	resp, err := a.opts.model.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.Msg == nil {
		return nil, fmt.Errorf("agentscope: model returned no message")
	}
	return resp, nil
}

// dispatch executes a single tool use and normalizes the result.
func (a *ReActAgent) dispatch(ctx context.Context, toolUse *ToolUseBlock, emit func(*Event)) *ToolResultBlock {
	param := &ToolCallParam{
		Input:   toolUse.Input,
		ToolUse: toolUse,
		Emitter: emitterFunc(func(chunk *ToolResultBlock) {
			emit(&Event{Type: EventActing, Msg: ToolMsg(chunk)})
		}),
	}
	result, err := a.opts.toolkit.Call(ctx, toolUse.Name, param)
	if err != nil {
		result = ErrorResultBlock(fmt.Sprintf("error: %s", err.Error()))
	}
	if result == nil {
		result = TextResultBlock("")
	}
	return result
}

// appendToolResult records a tool result in memory, filling in the id and
// name of the tool use it answers, and emits the acting event.
func (a *ReActAgent) appendToolResult(toolUse *ToolUseBlock, result *ToolResultBlock, emit func(*Event)) {
	result.ID = toolUse.ID
	result.Name = toolUse.Name
	msg := ToolMsg(result)
	a.memory = append(a.memory, msg)
	emit(&Event{Type: EventActing, Msg: msg})
}

// pendingToolUses scans memory from the tail for the last assistant message
// and returns its tool uses that have no answering tool result yet.
func (a *ReActAgent) pendingToolUses() ([]*ToolUseBlock, *Msg) {
	answered := make(map[string]bool)
	for i := len(a.memory) - 1; i >= 0; i-- {
		m := a.memory[i]
		if m.Role == RoleAssistant {
			var pending []*ToolUseBlock
			for _, tu := range m.ToolUses() {
				if !answered[tu.ID] {
					pending = append(pending, tu)
				}
			}
			if len(pending) > 0 {
				return pending, m
			}
			return nil, nil
		}
		for _, r := range m.ToolResults() {
			answered[r.ID] = true
		}
	}
	return nil, nil
}

// unanswered returns the tool uses of the reasoning message that have no
// answering result in memory.
func (a *ReActAgent) unanswered(reasoning *Msg) []*ToolUseBlock {
	answered := make(map[string]bool)
	seen := false
	for _, m := range a.memory {
		if m == reasoning {
			seen = true
			continue
		}
		if !seen {
			continue
		}
		for _, r := range m.ToolResults() {
			answered[r.ID] = true
		}
	}
	var pending []*ToolUseBlock
	for _, tu := range reasoning.ToolUses() {
		if !answered[tu.ID] {
			pending = append(pending, tu)
		}
	}
	return pending
}

// suspendReply freezes the reasoning message into a suspended terminal reply.
func suspendReply(reasoning *Msg, reason GenerateReason) *Msg {
	return &Msg{
		Role:           RoleAssistant,
		Name:           reasoning.Name,
		Content:        reasoning.Content,
		GenerateReason: reason,
	}
}

// emitterFunc adapts a function to the Emitter interface.
type emitterFunc func(chunk *ToolResultBlock)

func (f emitterFunc) Emit(chunk *ToolResultBlock) { f(chunk) }

// State persistence. The conversation memory and accumulated usage are the
// agent's whole durable state.

const (
	stateNameMemory = "react_memory"
	stateNameUsage  = "react_usage"
)

// SaveTo persists the agent state under the given session key.
func (a *ReActAgent) SaveTo(ctx context.Context, session Session, key string) error {
	a.mu.Lock()
	memory := make([]*Msg, len(a.memory))
	copy(memory, a.memory)
	usage := a.usage
	a.mu.Unlock()

	if err := session.Save(ctx, key, stateNameMemory, memory); err != nil {
		return fmt.Errorf("save memory: %w", err)
	}
	if err := session.Save(ctx, key, stateNameUsage, usage); err != nil {
		return fmt.Errorf("save usage: %w", err)
	}
	return nil
}

// LoadFrom restores the agent state from the given session key. Absent state
// leaves the agent empty; that is not an error.
func (a *ReActAgent) LoadFrom(ctx context.Context, session Session, key string) error {
	var memory []*Msg
	ok, err := session.Get(ctx, key, stateNameMemory, &memory)
	if err != nil {
		return fmt.Errorf("load memory: %w", err)
	}
	var usage Usage
	okUsage, err := session.Get(ctx, key, stateNameUsage, &usage)
	if err != nil {
		return fmt.Errorf("load usage: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if ok {
		a.memory = memory
	}
	if okUsage {
		a.usage = usage
	}
	return nil
}

var (
	_ Agent           = (*ReActAgent)(nil)
	_ StateModule     = (*ReActAgent)(nil)
	_ Suspender       = (*ReActAgent)(nil)
	_ SubAgentResumer = (*ReActAgent)(nil)
)
