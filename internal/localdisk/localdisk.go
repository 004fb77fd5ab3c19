// Package localdisk persists the local-only mode state as a single JSON
// file of key to raw-value pairs, read once at startup and rewritten after
// every mutation.
package localdisk

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File is a key-value blob backed by one JSON file on disk.
type File struct {
	mu     sync.Mutex
	path   string
	values map[string]json.RawMessage
}

// Open loads the blob at path, creating parent directories as needed. A
// missing file is an empty blob.
func Open(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}

	f := &File{
		path:   path,
		values: make(map[string]json.RawMessage),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob file: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &f.values); err != nil {
			return nil, fmt.Errorf("failed to parse blob file: %w", err)
		}
	}
	return f, nil
}

// Get returns the value stored under key and whether it was present.
func (f *File) Get(key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

// Set stores value under key and rewrites the file.
func (f *File) Set(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = append(json.RawMessage(nil), value...)
	return f.flushLocked()
}

// Delete removes key and rewrites the file. Missing keys are a no-op.
func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.values[key]; !ok {
		return nil
	}
	delete(f.values, key)
	return f.flushLocked()
}

func (f *File) flushLocked() error {
	data, err := json.MarshalIndent(f.values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize blob: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write blob file: %w", err)
	}
	return os.Rename(tmp, f.path)
}
