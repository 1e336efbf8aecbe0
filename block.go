package agentscope

import (
	"encoding/json"
	"fmt"
)

// Block type discriminators used by the JSON codec.
const (
	blockTypeText       = "text"
	blockTypeToolUse    = "tool_use"
	blockTypeToolResult = "tool_result"
)

// Metadata keys attached to tool result blocks by the runtime.
const (
	// MetadataSuspended marks a tool result produced by a suspended agent.
	MetadataSuspended = "suspended"
	// MetadataSubAgentSessionID records the sub-agent session a result came from.
	MetadataSubAgentSessionID = "subagent_session_id"
	// MetadataGenerateReason records why a suspended sub-agent stopped.
	MetadataGenerateReason = "subagent_generate_reason"
)

// ContentBlock is the interface implemented by all message content blocks.
type ContentBlock interface {
	BlockType() string
}

// TextBlock is a plain text content block.
type TextBlock struct {
	Text string `json:"text"`
}

func (b *TextBlock) BlockType() string { return blockTypeText }

// ToolUseBlock is a request by the model to invoke a tool.
type ToolUseBlock struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Input    map[string]any `json:"input,omitempty"`
	Content  string         `json:"content,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (b *ToolUseBlock) BlockType() string { return blockTypeToolUse }

// Clone returns a deep-enough copy: input and metadata maps are copied so
// the clone can be rewritten without mutating the original block.
func (b *ToolUseBlock) Clone() *ToolUseBlock {
	c := &ToolUseBlock{
		ID:      b.ID,
		Name:    b.Name,
		Content: b.Content,
	}
	if b.Input != nil {
		c.Input = make(map[string]any, len(b.Input))
		for k, v := range b.Input {
			c.Input[k] = v
		}
	}
	if b.Metadata != nil {
		c.Metadata = make(map[string]any, len(b.Metadata))
		for k, v := range b.Metadata {
			c.Metadata[k] = v
		}
	}
	return c
}

// ToolResultBlock carries the output of a tool invocation. Output may hold
// text blocks and, for suspended sub-agent results, pending tool-use blocks.
type ToolResultBlock struct {
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name,omitempty"`
	Output   []ContentBlock `json:"output,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
	IsError  bool           `json:"is_error,omitempty"`
}

func (b *ToolResultBlock) BlockType() string { return blockTypeToolResult }

// Text returns the concatenated text of all text blocks in the output.
func (b *ToolResultBlock) Text() string {
	var out string
	for _, blk := range b.Output {
		if t, ok := blk.(*TextBlock); ok {
			out += t.Text
		}
	}
	return out
}

// Suspended reports whether the result carries the suspended marker.
func (b *ToolResultBlock) Suspended() bool {
	if b == nil || b.Metadata == nil {
		return false
	}
	v, ok := b.Metadata[MetadataSuspended].(bool)
	return ok && v
}

// GenerateReasonOf reports the termination reason recorded on a tool result.
// Results without a valid reason (including every non-sub-agent result)
// classify as ReasonModelStop. The metadata value may be a GenerateReason or
// its string form after a serialization round-trip.
func GenerateReasonOf(result *ToolResultBlock) GenerateReason {
	if result == nil || result.Metadata == nil {
		return ReasonModelStop
	}
	switch v := result.Metadata[MetadataGenerateReason].(type) {
	case GenerateReason:
		if v.valid() {
			return v
		}
	case string:
		if r := GenerateReason(v); r.valid() {
			return r
		}
	}
	return ReasonModelStop
}

// TextResultBlock builds a text-only tool result.
func TextResultBlock(text string) *ToolResultBlock {
	return &ToolResultBlock{Output: []ContentBlock{&TextBlock{Text: text}}}
}

// ErrorResultBlock builds an error-shaped tool result.
func ErrorResultBlock(text string) *ToolResultBlock {
	return &ToolResultBlock{
		Output:  []ContentBlock{&TextBlock{Text: text}},
		IsError: true,
	}
}

// blockEnvelope is the tagged wire form of a content block.
type blockEnvelope struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ID       string          `json:"id,omitempty"`
	Name     string          `json:"name,omitempty"`
	Input    map[string]any  `json:"input,omitempty"`
	Content  string          `json:"content,omitempty"`
	Output   json.RawMessage `json:"output,omitempty"`
	Metadata map[string]any  `json:"metadata,omitempty"`
	IsError  bool            `json:"is_error,omitempty"`
}

// MarshalBlocks serializes content blocks with type tags.
func MarshalBlocks(blocks []ContentBlock) ([]byte, error) {
	envs := make([]blockEnvelope, 0, len(blocks))
	for _, b := range blocks {
		env, err := toEnvelope(b)
		if err != nil {
			return nil, err
		}
		envs = append(envs, env)
	}
	return json.Marshal(envs)
}

// UnmarshalBlocks is the inverse of MarshalBlocks.
func UnmarshalBlocks(data []byte) ([]ContentBlock, error) {
	var envs []blockEnvelope
	if err := json.Unmarshal(data, &envs); err != nil {
		return nil, err
	}
	blocks := make([]ContentBlock, 0, len(envs))
	for _, env := range envs {
		b, err := fromEnvelope(env)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func toEnvelope(b ContentBlock) (blockEnvelope, error) {
	switch blk := b.(type) {
	case *TextBlock:
		return blockEnvelope{Type: blockTypeText, Text: blk.Text}, nil
	case *ToolUseBlock:
		return blockEnvelope{
			Type:     blockTypeToolUse,
			ID:       blk.ID,
			Name:     blk.Name,
			Input:    blk.Input,
			Content:  blk.Content,
			Metadata: blk.Metadata,
		}, nil
	case *ToolResultBlock:
		var output json.RawMessage
		if len(blk.Output) > 0 {
			raw, err := MarshalBlocks(blk.Output)
			if err != nil {
				return blockEnvelope{}, err
			}
			output = raw
		}
		return blockEnvelope{
			Type:     blockTypeToolResult,
			ID:       blk.ID,
			Name:     blk.Name,
			Output:   output,
			Metadata: blk.Metadata,
			IsError:  blk.IsError,
		}, nil
	default:
		return blockEnvelope{}, fmt.Errorf("agentscope: unknown content block type %T", b)
	}
}

func fromEnvelope(env blockEnvelope) (ContentBlock, error) {
	switch env.Type {
	case blockTypeText:
		return &TextBlock{Text: env.Text}, nil
	case blockTypeToolUse:
		return &ToolUseBlock{
			ID:       env.ID,
			Name:     env.Name,
			Input:    env.Input,
			Content:  env.Content,
			Metadata: env.Metadata,
		}, nil
	case blockTypeToolResult:
		var output []ContentBlock
		if len(env.Output) > 0 {
			blocks, err := UnmarshalBlocks(env.Output)
			if err != nil {
				return nil, err
			}
			output = blocks
		}
		return &ToolResultBlock{
			ID:       env.ID,
			Name:     env.Name,
			Output:   output,
			Metadata: env.Metadata,
			IsError:  env.IsError,
		}, nil
	default:
		return nil, fmt.Errorf("agentscope: unknown content block type %q", env.Type)
	}
}

// MarshalJSON implements json.Marshaler for tool result blocks so they can
// be embedded in state snapshots and event payloads.
func (b *ToolResultBlock) MarshalJSON() ([]byte, error) {
	env, err := toEnvelope(b)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *ToolResultBlock) UnmarshalJSON(data []byte) error {
	var env blockEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	blk, err := fromEnvelope(env)
	if err != nil {
		return err
	}
	res, ok := blk.(*ToolResultBlock)
	if !ok {
		return fmt.Errorf("agentscope: expected tool_result block, got %q", env.Type)
	}
	*b = *res
	return nil
}
