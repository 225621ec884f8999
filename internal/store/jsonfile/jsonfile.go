// Package jsonfile persists the room log as a single JSON array on disk.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/clubchat/clubchat-server/internal/core"
)

// Store writes the whole log on every save. Fine for a single low-volume
// room; the other drivers exist for anything bigger.
type Store struct {
	path  string
	limit int
}

// New builds a store backed by the file at path.
func New(path string, limit int) *Store {
	return &Store{path: path, limit: limit}
}

// Load reads the persisted log. A missing file is an empty log, not an
// error.
func (s *Store) Load(_ context.Context) ([]core.Message, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history file: %w", err)
	}
	var messages []core.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("decode history file: %w", err)
	}
	return messages, nil
}

// Save replaces the file contents with the newest entries up to the cap.
func (s *Store) Save(_ context.Context, messages []core.Message) error {
	if s.limit > 0 && len(messages) > s.limit {
		messages = messages[len(messages)-s.limit:]
	}
	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create history dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write history file: %w", err)
	}
	return nil
}

// Close is a no-op; the file is not held open.
func (s *Store) Close() error {
	return nil
}
