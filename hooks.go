package agentscope

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"
)

const defaultHookTimeout = 30 * time.Second

// hookSet executes hook matchers by event and tool name, in priority order.
type hookSet struct {
	entries []hookEntry
}

type hookEntry struct {
	event    HookEvent
	pattern  *regexp.Regexp // nil = match all tools
	priority int
	hooks    []HookFunc
	timeout  time.Duration
}

// newHookSet compiles matcher patterns and orders entries by priority,
// highest first. Returns an error if any regex pattern is invalid.
func newHookSet(matchers []HookMatcher) (*hookSet, error) {
	entries := make([]hookEntry, 0, len(matchers))
	for i, m := range matchers {
		entry := hookEntry{
			event:    m.Event,
			priority: m.Priority,
			hooks:    m.Hooks,
			timeout:  m.Timeout,
		}
		if entry.timeout == 0 {
			entry.timeout = defaultHookTimeout
		}
		if m.Pattern != "" {
			re, err := regexp.Compile(m.Pattern)
			if err != nil {
				return nil, fmt.Errorf("%w: matcher[%d] pattern %q: %v", ErrInvalidMatcher, i, m.Pattern, err)
			}
			entry.pattern = re
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].priority > entries[j].priority
	})
	return &hookSet{entries: entries}, nil
}

// runPreActing runs all matching PreActing hooks. First block wins; the last
// non-nil UpdatedToolUse wins.
func (h *hookSet) runPreActing(ctx context.Context, sessionID, agentName string, toolUse *ToolUseBlock) (*HookResult, error) {
	return h.run(ctx, HookPreActing, toolUse.Name, &HookInput{
		SessionID: sessionID,
		AgentName: agentName,
		Event:     HookPreActing,
		ToolUse:   toolUse,
	})
}

// runPostActing runs all matching PostActing hooks.
func (h *hookSet) runPostActing(ctx context.Context, sessionID, agentName string, toolUse *ToolUseBlock, result *ToolResultBlock) error {
	_, err := h.run(ctx, HookPostActing, toolUse.Name, &HookInput{
		SessionID: sessionID,
		AgentName: agentName,
		Event:     HookPostActing,
		ToolUse:   toolUse,
		Result:    result,
	})
	return err
}

// runPostReasoning runs all matching PostReasoning hooks.
func (h *hookSet) runPostReasoning(ctx context.Context, sessionID, agentName string, msg *Msg) error {
	_, err := h.run(ctx, HookPostReasoning, "", &HookInput{
		SessionID: sessionID,
		AgentName: agentName,
		Event:     HookPostReasoning,
		Msg:       msg,
	})
	return err
}

// run is the internal dispatcher.
func (h *hookSet) run(ctx context.Context, event HookEvent, toolName string, input *HookInput) (*HookResult, error) {
	var combined *HookResult

	for _, entry := range h.entries {
		if entry.event != event {
			continue
		}
		if entry.pattern != nil && !entry.pattern.MatchString(toolName) {
			continue
		}

		tctx, cancel := context.WithTimeout(ctx, entry.timeout)
		res, err := runHookFuncs(tctx, entry.hooks, input)
		cancel()

		if err != nil {
			return combined, err
		}
		if res == nil {
			continue
		}

		if combined == nil {
			combined = &HookResult{}
		}
		if res.Block && !combined.Block {
			combined.Block = true
			combined.Reason = res.Reason
		}
		if res.UpdatedToolUse != nil {
			combined.UpdatedToolUse = res.UpdatedToolUse
			// Later matchers see the rewritten block.
			input.ToolUse = res.UpdatedToolUse
		}

		if combined.Block {
			break
		}
	}

	return combined, nil
}

// runHookFuncs executes a slice of hook functions in order.
// It stops early if a hook blocks or the context is cancelled.
func runHookFuncs(ctx context.Context, hooks []HookFunc, input *HookInput) (*HookResult, error) {
	var combined *HookResult

	for _, fn := range hooks {
		if err := ctx.Err(); err != nil {
			return combined, err
		}

		res, err := fn(ctx, input)
		if err != nil {
			return combined, err
		}
		if res == nil {
			continue
		}

		if combined == nil {
			combined = &HookResult{}
		}
		if res.Block {
			combined.Block = true
			combined.Reason = res.Reason
		}
		if res.UpdatedToolUse != nil {
			combined.UpdatedToolUse = res.UpdatedToolUse
			input.ToolUse = res.UpdatedToolUse
		}

		if combined.Block {
			return combined, nil
		}
	}

	return combined, nil
}
