package agentscope

import "context"

// Session persists named state blobs under a session key. A single key holds
// every state unit of one conversation (agent memory, coordinator state, …),
// each under its own logical name. Implementations must be concurrency-safe.
type Session interface {
	// Save stores value under (key, name), replacing any prior blob.
	Save(ctx context.Context, key, name string, value any) error

	// Get loads the blob at (key, name) into out. The boolean reports
	// whether a blob existed; absence is not an error.
	Get(ctx context.Context, key, name string, out any) (bool, error)

	// Delete removes every blob stored under key.
	Delete(ctx context.Context, key string) error
}
