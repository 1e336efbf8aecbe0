package agentscope

import "github.com/shopspring/decimal"

// EventType identifies the kind of event emitted by a Stream.
type EventType string

const (
	// EventReasoning is emitted when the model produces an assistant reply.
	EventReasoning EventType = "reasoning"
	// EventActing is emitted after each tool dispatch with its result.
	EventActing EventType = "acting"
	// EventReply is emitted once with the final message; it carries Last.
	EventReply EventType = "reply"
)

// Usage tracks token consumption and cost for an agent run.
type Usage struct {
	InputTokens  int64           `json:"input_tokens"`
	OutputTokens int64           `json:"output_tokens"`
	CostUSD      decimal.Decimal `json:"cost_usd"`
}

// Add accumulates another usage sample.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CostUSD = u.CostUSD.Add(other.CostUSD)
}

// Event is a single step of an agent run as observed through a Stream.
type Event struct {
	Type      EventType `json:"type"`
	AgentName string    `json:"agent_name,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	Msg       *Msg      `json:"msg,omitempty"`
	Usage     *Usage    `json:"usage,omitempty"`
	Last      bool      `json:"last"`
}

// StreamOptions filters which events a Stream delivers. The final Last event
// is always delivered so the run's reply survives any filter.
type StreamOptions struct {
	// Types limits delivery to the listed event types. Empty means all.
	Types []EventType
	// BufferSize is the event channel capacity. Zero uses the default.
	BufferSize int
}

// DefaultStreamOptions returns options that deliver every event type.
func DefaultStreamOptions() *StreamOptions {
	return &StreamOptions{BufferSize: DefaultStreamBufferSize}
}

// wants reports whether the options admit the given event.
func (o *StreamOptions) wants(ev *Event) bool {
	if ev.Last || o == nil || len(o.Types) == 0 {
		return true
	}
	for _, t := range o.Types {
		if t == ev.Type {
			return true
		}
	}
	return false
}
