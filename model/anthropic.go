package model

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/packages/param"

	agentscope "github.com/wuji1428/agentscope-go"
)

// DefaultModel is used when no model override is given.
const DefaultModel = anthropic.ModelClaudeSonnet4_5

// MessageCaller abstracts the Anthropic Messages API so the adapter can be
// tested with a mock. Production code passes the real client.Messages.
type MessageCaller interface {
	New(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error)
}

// messageServiceAdapter wraps the real anthropic.MessageService.
type messageServiceAdapter struct {
	svc *anthropic.MessageService
}

func (a *messageServiceAdapter) New(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	return a.svc.New(ctx, params)
}

// Anthropic is a ChatModel backed by the Anthropic Messages API.
type Anthropic struct {
	caller  MessageCaller
	model   anthropic.Model
	pricing map[anthropic.Model]Pricing
}

var _ agentscope.ChatModel = (*Anthropic)(nil)

// AnthropicOption configures an Anthropic model adapter.
type AnthropicOption func(*Anthropic)

// WithModel selects the Claude model. Defaults to DefaultModel.
func WithModel(m anthropic.Model) AnthropicOption {
	return func(a *Anthropic) { a.model = m }
}

// WithPricing overrides the pricing table used to cost usage.
func WithPricing(pricing map[anthropic.Model]Pricing) AnthropicOption {
	return func(a *Anthropic) { a.pricing = pricing }
}

// WithMessageCaller replaces the API client (for testing).
func WithMessageCaller(caller MessageCaller) AnthropicOption {
	return func(a *Anthropic) { a.caller = caller }
}

// NewAnthropic creates an adapter using ambient credentials
// (ANTHROPIC_API_KEY et al., resolved by the SDK).
func NewAnthropic(opts ...AnthropicOption) *Anthropic {
	a := &Anthropic{
		model:   DefaultModel,
		pricing: DefaultPricing,
	}
	for _, fn := range opts {
		fn(a)
	}
	if a.caller == nil {
		client := anthropic.NewClient()
		a.caller = &messageServiceAdapter{svc: &client.Messages}
	}
	return a
}

// Generate performs one Messages API call.
func (a *Anthropic) Generate(ctx context.Context, req *agentscope.ModelRequest) (*agentscope.ModelResponse, error) {
	params := anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: int64(req.MaxTokens),
		Messages:  buildMessages(req.Messages),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if tools := buildTools(req.Tools); len(tools) > 0 {
		params.Tools = tools
	}

	msg, err := a.caller.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("model: messages call: %w", err)
	}

	usage := agentscope.Usage{
		InputTokens:  msg.Usage.InputTokens,
		OutputTokens: msg.Usage.OutputTokens,
	}
	if pricing, ok := a.pricing[a.model]; ok {
		usage.CostUSD = pricing.Cost(msg.Usage.InputTokens, msg.Usage.OutputTokens)
	}

	return &agentscope.ModelResponse{
		Msg:   parseMessage(msg),
		Usage: usage,
	}, nil
}

// buildMessages converts the message model to API parameters. Tool messages
// become user messages carrying tool_result blocks, per the API convention.
func buildMessages(msgs []*agentscope.Msg) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == agentscope.RoleSystem {
			continue
		}
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.Content))
		for _, b := range m.Content {
			switch blk := b.(type) {
			case *agentscope.TextBlock:
				if blk.Text != "" {
					blocks = append(blocks, anthropic.NewTextBlock(blk.Text))
				}
			case *agentscope.ToolUseBlock:
				input := blk.Input
				if input == nil {
					input = map[string]any{}
				}
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    blk.ID,
						Name:  blk.Name,
						Input: input,
					},
				})
			case *agentscope.ToolResultBlock:
				blocks = append(blocks, anthropic.NewToolResultBlock(blk.ID, blk.Text(), blk.IsError))
			}
		}
		if len(blocks) == 0 {
			continue
		}
		if m.Role == agentscope.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		} else {
			out = append(out, anthropic.NewUserMessage(blocks...))
		}
	}
	return out
}

// buildTools converts tool schemas to API tool definitions.
func buildTools(schemas []agentscope.ToolSchema) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(schemas))
	for _, s := range schemas {
		required, _ := s.Parameters["required"].([]string)
		out = append(out, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        s.Name,
				Description: param.NewOpt(s.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: s.Parameters["properties"],
					Required:   required,
				},
			},
		})
	}
	return out
}

// parseMessage converts an API reply into the message model.
func parseMessage(msg *anthropic.Message) *agentscope.Msg {
	var content []agentscope.ContentBlock
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			content = append(content, &agentscope.TextBlock{Text: block.Text})
		case "tool_use":
			toolUse := block.AsToolUse()
			var input map[string]any
			if len(toolUse.Input) > 0 {
				_ = json.Unmarshal(toolUse.Input, &input)
			}
			content = append(content, &agentscope.ToolUseBlock{
				ID:    toolUse.ID,
				Name:  toolUse.Name,
				Input: input,
			})
		}
	}
	return &agentscope.Msg{
		Role:    agentscope.RoleAssistant,
		Content: content,
	}
}
