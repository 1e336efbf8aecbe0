package agentscope

import "log/slog"

// ReActOption configures a ReActAgent via the functional options pattern.
type ReActOption func(*reactOptions)

// reactOptions holds all configurable fields set via ReActOption functions.
type reactOptions struct {
	name            string
	description     string
	systemPrompt    string
	model           ChatModel
	toolkit         *Toolkit
	hookMatchers    []HookMatcher
	maxTurns        int
	maxOutputTokens int
	subAgentHITL    bool
	logger          *slog.Logger
}

// applyDefaults fills in zero-value fields with sensible defaults.
func (o *reactOptions) applyDefaults() {
	if o.toolkit == nil {
		o.toolkit = NewToolkit()
	}
	if o.maxTurns == 0 {
		o.maxTurns = DefaultMaxTurns
	}
	if o.maxOutputTokens == 0 {
		o.maxOutputTokens = DefaultMaxOutputTokens
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
}

// resolveReActOptions applies all option functions and fills defaults.
func resolveReActOptions(opts []ReActOption) reactOptions {
	var o reactOptions
	for _, fn := range opts {
		fn(&o)
	}
	o.applyDefaults()
	return o
}

// WithName sets the agent's display name.
func WithName(name string) ReActOption {
	return func(o *reactOptions) { o.name = name }
}

// WithDescription sets the agent's description.
func WithDescription(description string) ReActOption {
	return func(o *reactOptions) { o.description = description }
}

// WithSystemPrompt sets the system prompt sent on every model call.
func WithSystemPrompt(prompt string) ReActOption {
	return func(o *reactOptions) { o.systemPrompt = prompt }
}

// WithChatModel sets the model backend. Required.
func WithChatModel(model ChatModel) ReActOption {
	return func(o *reactOptions) { o.model = model }
}

// WithToolkit sets the toolkit the acting phase dispatches through.
func WithToolkit(tk *Toolkit) ReActOption {
	return func(o *reactOptions) { o.toolkit = tk }
}

// WithHookMatchers registers hook matchers on the loop.
func WithHookMatchers(matchers ...HookMatcher) ReActOption {
	return func(o *reactOptions) { o.hookMatchers = append(o.hookMatchers, matchers...) }
}

// WithMaxTurns limits the loop's reasoning iterations per step.
func WithMaxTurns(n int) ReActOption {
	return func(o *reactOptions) { o.maxTurns = n }
}

// WithMaxOutputTokens sets the maximum output tokens per model call.
func WithMaxOutputTokens(tokens int) ReActOption {
	return func(o *reactOptions) { o.maxOutputTokens = tokens }
}

// WithSubAgentHITL enables propagation of suspended sub-agent tool results:
// the loop pauses and surfaces them instead of feeding them to the model.
func WithSubAgentHITL(enabled bool) ReActOption {
	return func(o *reactOptions) { o.subAgentHITL = enabled }
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) ReActOption {
	return func(o *reactOptions) { o.logger = logger }
}
