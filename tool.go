package agentscope

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/wuji1428/agentscope-go/internal/schema"
)

// AgentTool is the interface for tools callable from the acting phase.
// Parameters returns a JSON-Schema-shaped map describing the input object.
type AgentTool interface {
	Name() string
	Description() string
	Parameters() map[string]any
	Call(ctx context.Context, param *ToolCallParam) (*ToolResultBlock, error)
}

// ToolCallParam carries everything a tool invocation receives: the decoded
// input map, the originating tool-use block, and an optional emitter for
// out-of-band result chunks.
type ToolCallParam struct {
	Input   map[string]any
	ToolUse *ToolUseBlock
	Emitter Emitter
}

// Emitter is an out-of-band sink for intermediate tool-result chunks,
// e.g. forwarded sub-agent events during streaming execution.
type Emitter interface {
	Emit(chunk *ToolResultBlock)
}

// toolEntry is the wrapper stored in the Toolkit.
type toolEntry struct {
	tool    AgentTool
	confirm bool
}

// Toolkit manages registered tools. It is concurrent-safe.
type Toolkit struct {
	mu    sync.RWMutex
	tools map[string]*toolEntry
	order []string // preserve registration order
}

// NewToolkit creates a new empty Toolkit.
func NewToolkit() *Toolkit {
	return &Toolkit{tools: make(map[string]*toolEntry)}
}

// Register adds a tool to the toolkit, replacing any tool of the same name.
func (t *Toolkit) Register(tool AgentTool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	name := tool.Name()
	if _, exists := t.tools[name]; !exists {
		t.order = append(t.order, name)
	}
	t.tools[name] = &toolEntry{tool: tool}
}

// RequireConfirmation marks tools whose dispatch must pause for human
// confirmation. Dispatching a marked tool suspends the agent instead of
// executing it.
func (t *Toolkit) RequireConfirmation(names ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, name := range names {
		if entry, ok := t.tools[name]; ok {
			entry.confirm = true
		}
	}
}

// NeedsConfirmation reports whether the named tool is confirm-gated.
func (t *Toolkit) NeedsConfirmation(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	entry, ok := t.tools[name]
	return ok && entry.confirm
}

// Call runs a tool by name.
func (t *Toolkit) Call(ctx context.Context, name string, param *ToolCallParam) (*ToolResultBlock, error) {
	t.mu.RLock()
	entry, ok := t.tools[name]
	t.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("agentscope: tool not found: %s", name)
	}
	return entry.tool.Call(ctx, param)
}

// Get returns a tool by name, or nil if not found.
func (t *Toolkit) Get(name string) AgentTool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if entry, ok := t.tools[name]; ok {
		return entry.tool
	}
	return nil
}

// Names returns the names of all registered tools in registration order.
func (t *Toolkit) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, len(t.order))
	copy(names, t.order)
	return names
}

// Schemas returns the registered tools as model-facing schemas, in
// registration order.
func (t *Toolkit) Schemas() []ToolSchema {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]ToolSchema, 0, len(t.order))
	for _, name := range t.order {
		entry := t.tools[name]
		out = append(out, ToolSchema{
			Name:        name,
			Description: entry.tool.Description(),
			Parameters:  entry.tool.Parameters(),
		})
	}
	return out
}

// funcTool adapts a typed Go function into an AgentTool with an
// auto-generated schema.
type funcTool[T any] struct {
	name        string
	description string
	params      map[string]any
	fn          func(ctx context.Context, input T) (*ToolResultBlock, error)
}

func (t *funcTool[T]) Name() string               { return t.name }
func (t *funcTool[T]) Description() string        { return t.description }
func (t *funcTool[T]) Parameters() map[string]any { return t.params }

func (t *funcTool[T]) Call(ctx context.Context, param *ToolCallParam) (*ToolResultBlock, error) {
	raw, err := json.Marshal(param.Input)
	if err != nil {
		return ErrorResultBlock(fmt.Sprintf("invalid input: %s", err.Error())), nil
	}
	var input T
	if err := json.Unmarshal(raw, &input); err != nil {
		return ErrorResultBlock(fmt.Sprintf("invalid input: %s", err.Error())), nil
	}
	return t.fn(ctx, input)
}

// RegisterFunc registers a typed function as a tool. The input type T is used
// to auto-generate a JSON Schema from struct tags.
func RegisterFunc[T any](tk *Toolkit, name, description string, fn func(ctx context.Context, input T) (*ToolResultBlock, error)) {
	tk.Register(&funcTool[T]{
		name:        name,
		description: description,
		params:      schema.Generate[T](),
		fn:          fn,
	})
}
