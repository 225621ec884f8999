// Package secret stores the shared admin secret on disk.
//
// The value is base64-encoded at rest. This is deliberate obfuscation, not a
// security boundary: the secret must be recoverable so it can be compared
// against the in-band password handshake and rotated by the
// "change password" command.
package secret

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// defaultEncoded is used when the secret file is missing or unreadable.
const defaultEncoded = "ZWxpYWRtaW4xMjM="

// Store reads and rotates the admin secret.
type Store interface {
	Read() string
	Write(newSecret string) error
}

// FileStore keeps the secret in a single file at a fixed path.
type FileStore struct {
	path string
}

// NewFileStore builds a store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Read returns the current secret, falling back to the built-in default when
// the file is absent or does not decode.
func (s *FileStore) Read() string {
	fallback, _ := base64.StdEncoding.DecodeString(defaultEncoded)

	data, err := os.ReadFile(s.path)
	if err != nil {
		return string(fallback)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return string(fallback)
	}
	return string(decoded)
}

// Write rotates the secret, replacing the file contents.
func (s *FileStore) Write(newSecret string) error {
	if newSecret == "" {
		return fmt.Errorf("secret must not be empty")
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create secret dir: %w", err)
		}
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(newSecret))
	if err := os.WriteFile(s.path, []byte(encoded), 0o600); err != nil {
		return fmt.Errorf("write secret: %w", err)
	}
	return nil
}
