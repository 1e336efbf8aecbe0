package agentscope

import "context"

// ToolSchema describes a tool to the model.
type ToolSchema struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ModelRequest is a single chat completion request.
type ModelRequest struct {
	System    string
	Messages  []*Msg
	Tools     []ToolSchema
	MaxTokens int
}

// ModelResponse is the model's reply plus the usage it incurred.
type ModelResponse struct {
	Msg   *Msg
	Usage Usage
}

// ChatModel abstracts the LLM backend so the agent loop can be tested with a
// scripted fake. Production code passes model.NewAnthropic().
type ChatModel interface {
	Generate(ctx context.Context, req *ModelRequest) (*ModelResponse, error)
}
