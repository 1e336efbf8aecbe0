package agentscope

import "encoding/json"

// MsgRole identifies the author of a message.
type MsgRole string

const (
	RoleUser      MsgRole = "user"
	RoleAssistant MsgRole = "assistant"
	RoleSystem    MsgRole = "system"
	RoleTool      MsgRole = "tool"
)

// GenerateReason classifies how an agent reply terminated. Only ReasonModelStop
// is a natural completion; every other reason suspends the conversation.
type GenerateReason string

const (
	ReasonModelStop              GenerateReason = "model_stop"
	ReasonToolSuspended          GenerateReason = "tool_suspended"
	ReasonReasoningStopRequested GenerateReason = "reasoning_stop_requested"
	ReasonActingStopRequested    GenerateReason = "acting_stop_requested"
)

// Suspending reports whether the reason pauses the conversation.
func (r GenerateReason) Suspending() bool {
	switch r {
	case ReasonToolSuspended, ReasonReasoningStopRequested, ReasonActingStopRequested:
		return true
	}
	return false
}

// valid reports whether r is a member of the closed enumeration.
func (r GenerateReason) valid() bool {
	return r == ReasonModelStop || r.Suspending()
}

// Msg is a single conversation message: a role, a display name, ordered
// content blocks, and for assistant replies the termination reason.
type Msg struct {
	Role           MsgRole
	Name           string
	Content        []ContentBlock
	GenerateReason GenerateReason
}

// UserMsg builds a user message with a single text block.
func UserMsg(text string) *Msg {
	return &Msg{Role: RoleUser, Content: []ContentBlock{&TextBlock{Text: text}}}
}

// AssistantMsg builds an assistant message from content blocks.
func AssistantMsg(blocks ...ContentBlock) *Msg {
	return &Msg{Role: RoleAssistant, Content: blocks}
}

// ToolMsg builds a tool message carrying a single tool result.
func ToolMsg(result *ToolResultBlock) *Msg {
	return &Msg{Role: RoleTool, Content: []ContentBlock{result}}
}

// TextContent returns the concatenated text of all text blocks.
func (m *Msg) TextContent() string {
	var out string
	for _, b := range m.Content {
		if t, ok := b.(*TextBlock); ok {
			out += t.Text
		}
	}
	return out
}

// TextBlocks returns the text blocks in content order.
func (m *Msg) TextBlocks() []*TextBlock {
	var out []*TextBlock
	for _, b := range m.Content {
		if t, ok := b.(*TextBlock); ok {
			out = append(out, t)
		}
	}
	return out
}

// ToolUses returns the tool-use blocks in content order.
func (m *Msg) ToolUses() []*ToolUseBlock {
	var out []*ToolUseBlock
	for _, b := range m.Content {
		if t, ok := b.(*ToolUseBlock); ok {
			out = append(out, t)
		}
	}
	return out
}

// ToolResults returns the tool-result blocks in content order.
func (m *Msg) ToolResults() []*ToolResultBlock {
	var out []*ToolResultBlock
	for _, b := range m.Content {
		if t, ok := b.(*ToolResultBlock); ok {
			out = append(out, t)
		}
	}
	return out
}

// msgJSON is the wire form of a Msg.
type msgJSON struct {
	Role           MsgRole         `json:"role"`
	Name           string          `json:"name,omitempty"`
	Content        json.RawMessage `json:"content,omitempty"`
	GenerateReason GenerateReason  `json:"generate_reason,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (m *Msg) MarshalJSON() ([]byte, error) {
	var content json.RawMessage
	if len(m.Content) > 0 {
		raw, err := MarshalBlocks(m.Content)
		if err != nil {
			return nil, err
		}
		content = raw
	}
	return json.Marshal(msgJSON{
		Role:           m.Role,
		Name:           m.Name,
		Content:        content,
		GenerateReason: m.GenerateReason,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Msg) UnmarshalJSON(data []byte) error {
	var mj msgJSON
	if err := json.Unmarshal(data, &mj); err != nil {
		return err
	}
	var content []ContentBlock
	if len(mj.Content) > 0 {
		blocks, err := UnmarshalBlocks(mj.Content)
		if err != nil {
			return err
		}
		content = blocks
	}
	m.Role = mj.Role
	m.Name = mj.Name
	m.Content = content
	m.GenerateReason = mj.GenerateReason
	return nil
}
