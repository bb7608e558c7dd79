package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrVersionMismatch is returned when a cache file was written with another format version.
var ErrVersionMismatch = errors.New("cache version mismatch")

// document is the on-disk layout of the cache file.
type document struct {
	Version *int                       `json:"version"`
	Entries map[string]json.RawMessage `json:"entries"`
}

// FileStore keeps the cache in a JSON file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the cache file location.
func (fs *FileStore) Path() string {
	return fs.path
}

// Load reads the cache file. A missing file yields an empty cache and no error.
// A file that cannot be used as a whole yields an error; entries that cannot be decoded
// individually are dropped.
func (fs *FileStore) Load(_ context.Context) (*Cache, error) {
	data, err := os.ReadFile(fs.path)
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var doc document
	if err = json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode cache file: %w", err)
	}

	if doc.Version == nil || *doc.Version != Version {
		return nil, fmt.Errorf("%w: want %d", ErrVersionMismatch, Version)
	}

	if doc.Entries == nil {
		return nil, errors.New("cache file has no entries object")
	}

	c := New()
	for key, raw := range doc.Entries {
		var entry Entry
		if json.Unmarshal(raw, &entry) != nil {
			continue
		}
		c.Restore(key, entry)
	}

	return c, nil
}

// Save writes every entry of c to the cache file, replacing it atomically.
func (fs *FileStore) Save(_ context.Context, c *Cache) error {
	version := Version
	out := struct {
		Version *int             `json:"version"`
		Entries map[string]Entry `json:"entries"`
	}{Version: &version, Entries: c.Entries()}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fs.path), filepath.Base(fs.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	if err = os.Rename(tmp.Name(), fs.path); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}

	return nil
}
