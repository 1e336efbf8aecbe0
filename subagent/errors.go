package subagent

import "errors"

// Sentinel errors for the subagent package.
var (
	// ErrInvalidArgument reports a nil or empty identifier, result, or list.
	ErrInvalidArgument = errors.New("subagent: invalid argument")

	// ErrMissingSession reports a result added before a session id was
	// registered for the tool call.
	ErrMissingSession = errors.New("subagent: no session registered for tool call")

	// ErrUnknownOuterCall reports a submit for an outer tool call the
	// context has never seen.
	ErrUnknownOuterCall = errors.New("subagent: unknown outer tool call")

	// ErrHITLUnsupported reports a HITL-enabled tool wrapping an agent that
	// cannot suspend.
	ErrHITLUnsupported = errors.New("subagent: HITL requires an agent that can suspend")
)
