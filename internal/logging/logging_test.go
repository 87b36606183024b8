package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONLines(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Output: &buf})

	logger.Info("store opened", "path", "/tmp/cmdbox.db")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "store opened", entry["msg"])
	assert.Equal(t, "/tmp/cmdbox.db", entry["path"])
	assert.NotEmpty(t, entry["ts"])
	assert.NotContains(t, entry, "time")
}

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Output: &buf, Level: slog.LevelWarn})

	logger.Info("suppressed")
	assert.Zero(t, buf.Len())

	logger.Warn("emitted")
	assert.NotZero(t, buf.Len())
}

func TestNew_DebugOverridesLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Output: &buf, Level: slog.LevelError, Debug: true})

	logger.Debug("visible")
	assert.NotZero(t, buf.Len())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}
