package agentscope

// Default values applied when an option is left unset.
const (
	DefaultMaxOutputTokens  = 8192
	DefaultMaxTurns         = 50
	DefaultStreamBufferSize = 64
)
