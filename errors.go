package agentscope

import "errors"

// Sentinel errors returned by agent construction and the run loop.
var (
	ErrNoModel        = errors.New("agentscope: no chat model configured")
	ErrMaxTurns       = errors.New("agentscope: max turns reached")
	ErrInvalidMatcher = errors.New("agentscope: invalid hook matcher")
)
