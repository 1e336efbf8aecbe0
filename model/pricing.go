package model

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/shopspring/decimal"
)

// Pricing holds per-model token prices in USD per million tokens.
type Pricing struct {
	InputPerMTok  decimal.Decimal
	OutputPerMTok decimal.Decimal
}

var million = decimal.NewFromInt(1_000_000)

// Cost computes the USD cost of a single API call.
func (p Pricing) Cost(inputTokens, outputTokens int64) decimal.Decimal {
	in := decimal.NewFromInt(inputTokens).Mul(p.InputPerMTok).Div(million)
	out := decimal.NewFromInt(outputTokens).Mul(p.OutputPerMTok).Div(million)
	return in.Add(out)
}

// DefaultPricing contains built-in pricing for Claude models (USD per
// million tokens). Can be overridden via WithPricing().
var DefaultPricing = map[anthropic.Model]Pricing{
	anthropic.ModelClaudeOpus4_6: {
		InputPerMTok:  decimal.NewFromFloat(5),
		OutputPerMTok: decimal.NewFromFloat(25),
	},
	anthropic.ModelClaudeSonnet4_5: {
		InputPerMTok:  decimal.NewFromFloat(3),
		OutputPerMTok: decimal.NewFromFloat(15),
	},
	anthropic.ModelClaudeHaiku4_5: {
		InputPerMTok:  decimal.NewFromFloat(1),
		OutputPerMTok: decimal.NewFromFloat(5),
	},
}
