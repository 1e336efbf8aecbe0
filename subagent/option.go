package subagent

import (
	"log/slog"

	agentscope "github.com/wuji1428/agentscope-go"
	"github.com/wuji1428/agentscope-go/session"
)

// Option configures a Tool via the functional options pattern.
type Option func(*config)

// config holds all configurable fields set via Option functions.
type config struct {
	toolName      string
	description   string
	forwardEvents bool
	streamOptions *agentscope.StreamOptions
	session       agentscope.Session
	enableHITL    bool
	logger        *slog.Logger
}

// resolveConfig applies all option functions over the defaults: events are
// forwarded, state lives in a fresh in-memory store, HITL is off.
func resolveConfig(opts []Option) config {
	cfg := config{forwardEvents: true}
	for _, fn := range opts {
		fn(&cfg)
	}
	if cfg.session == nil {
		cfg.session = session.NewMemoryStore()
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return cfg
}

// WithToolName overrides the derived tool name.
func WithToolName(name string) Option {
	return func(c *config) { c.toolName = name }
}

// WithDescription overrides the derived tool description.
func WithDescription(description string) Option {
	return func(c *config) { c.description = description }
}

// WithForwardEvents controls whether the sub-agent is driven via streaming
// with events forwarded to the caller's emitter. Defaults to true.
func WithForwardEvents(enabled bool) Option {
	return func(c *config) { c.forwardEvents = enabled }
}

// WithStreamOptions sets the per-call stream event filters used when
// forwarding events. Defaults apply when unset.
func WithStreamOptions(opts *agentscope.StreamOptions) Option {
	return func(c *config) { c.streamOptions = opts }
}

// WithSession sets the Session store backing agent state across calls.
// Defaults to an in-memory store.
func WithSession(store agentscope.Session) Option {
	return func(c *config) { c.session = store }
}

// WithHITL enables the suspension/resumption protocol. Defaults to false.
func WithHITL(enabled bool) Option {
	return func(c *config) { c.enableHITL = enabled }
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}
