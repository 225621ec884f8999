package secret

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFallsBackWhenFileMissing(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "secret.txt"))
	assert.Equal(t, "eliadmin123", s.Read())
}

func TestReadFallsBackOnGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.txt")
	require.NoError(t, os.WriteFile(path, []byte("!!not base64!!"), 0o600))
	s := NewFileStore(path)
	assert.Equal(t, "eliadmin123", s.Read())
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.txt")
	s := NewFileStore(path)
	require.NoError(t, s.Write("hunter2"))
	assert.Equal(t, "hunter2", s.Read())

	// encoded at rest, not plaintext
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hunter2")
}

func TestWriteRejectsEmptySecret(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "secret.txt"))
	assert.Error(t, s.Write(""))
}
