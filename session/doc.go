// Package session provides Session store backends.
//
// MemoryStore keeps state blobs in a mutex-protected map; FileStore persists
// each blob as a JSON file under {dir}/{key}/{name}.json. Both satisfy the
// agentscope.Session contract and are safe for concurrent use.
package session
