package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	agentscope "github.com/wuji1428/agentscope-go"
)

// FileStore persists state blobs as JSON files, one directory per session
// key with one {name}.json file per blob.
type FileStore struct {
	dir string
}

var _ agentscope.Session = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at the given directory.
// The directory is created if it does not exist.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save writes a state blob to disk as JSON.
func (f *FileStore) Save(_ context.Context, key, name string, value any) error {
	if err := checkComponent("key", key); err != nil {
		return err
	}
	if err := checkComponent("name", name); err != nil {
		return err
	}
	b, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("session: marshal %s/%s: %w", key, name, err)
	}

	keyDir := filepath.Join(f.dir, key)
	if err := os.MkdirAll(keyDir, 0o755); err != nil {
		return fmt.Errorf("create key dir: %w", err)
	}
	path := filepath.Join(keyDir, name+".json")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

// Get reads a state blob from disk into out. The boolean reports whether the
// blob existed.
func (f *FileStore) Get(_ context.Context, key, name string, out any) (bool, error) {
	if err := checkComponent("key", key); err != nil {
		return false, err
	}
	if err := checkComponent("name", name); err != nil {
		return false, err
	}
	path := filepath.Join(f.dir, key, name+".json")
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read state file: %w", err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, fmt.Errorf("session: unmarshal %s/%s: %w", key, name, err)
	}
	return true, nil
}

// Delete removes every blob stored under key.
func (f *FileStore) Delete(_ context.Context, key string) error {
	if err := checkComponent("key", key); err != nil {
		return err
	}
	if err := os.RemoveAll(filepath.Join(f.dir, key)); err != nil {
		return fmt.Errorf("remove key dir: %w", err)
	}
	return nil
}

// Keys returns the session keys currently present on disk.
func (f *FileStore) Keys() ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("read session dir: %w", err)
	}
	var keys []string
	for _, entry := range entries {
		if entry.IsDir() {
			keys = append(keys, entry.Name())
		}
	}
	return keys, nil
}

// checkComponent rejects path components that could escape the store
// directory. Keys are generated ids and fixed logical names, so anything
// containing a separator or ".." is a caller bug, not data to repair.
func checkComponent(kind, s string) error {
	if s == "" {
		return fmt.Errorf("session: %s is required", kind)
	}
	if strings.ContainsAny(s, `/\`) || strings.Contains(s, "..") {
		return fmt.Errorf("session: invalid %s %q", kind, s)
	}
	return nil
}
