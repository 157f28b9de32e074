package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitAndLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	err := Init(Config{Level: "debug", Path: path})
	require.NoError(t, err)
	defer func() { _ = Close() }()

	logger := Get("test")
	logger.Info("hello", "key", "value")

	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), "key")
}

func TestInitInvalidLevel(t *testing.T) {
	err := Init(Config{Level: "loud", Path: filepath.Join(t.TempDir(), "t.log")})
	assert.ErrorIs(t, err, ErrInvalidLevel)
}

func TestComponentLevelOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	err := Init(Config{
		Level:      "error",
		Path:       path,
		Components: map[string]string{"chatty": "debug"},
	})
	require.NoError(t, err)

	Get("chatty").Debug("visible")
	Get("other").Debug("suppressed")

	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "visible")
	assert.False(t, strings.Contains(string(data), "suppressed"))
}

func TestGetBeforeInitIsSilent(t *testing.T) {
	// Must not panic or write anywhere.
	logger := Get("early")
	logger.Info("dropped")
}

func TestGetReturnsSameLogger(t *testing.T) {
	a := Get("same")
	b := Get("same")
	assert.Same(t, a, b)
}
