package agentscope

import "context"

// Agent is the capability surface the runtime requires of any agent: identity
// plus the two entry points for driving a conversation step.
type Agent interface {
	ID() string
	Name() string
	Description() string

	// Call runs one conversation step and returns the terminal reply.
	// An empty msgs slice re-enters the previous step (used on resume).
	Call(ctx context.Context, msgs []*Msg) (*Msg, error)

	// Stream runs one conversation step, delivering intermediate events.
	// The event marked Last carries the terminal reply.
	Stream(ctx context.Context, msgs []*Msg, opts *StreamOptions) *Stream
}

// StateModule is implemented by agents whose state can be persisted to a
// Session store. Callers feature-detect it via type assertion before invoking
// state operations.
type StateModule interface {
	SaveTo(ctx context.Context, session Session, key string) error
	LoadFrom(ctx context.Context, session Session, key string) error
}

// Suspender is implemented by agents that can pause mid-step and resume
// later. Only suspending agents may be wrapped with HITL enabled.
type Suspender interface {
	CanSuspend() bool
}

// SubAgentResumer is implemented by agents that know how to resume a
// suspended sub-agent tool. Parents lacking it (or answering false) cannot
// drive the resumption protocol.
type SubAgentResumer interface {
	SubAgentHITLEnabled() bool
}
