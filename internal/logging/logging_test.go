package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOutput(t *testing.T) {
	var structured, humanReadable bytes.Buffer
	SetOutput(&structured, &humanReadable, slog.LevelDebug)
	defer Init(slog.LevelInfo)

	Structured().Info("structured message", "key", "value")
	Info("plain message")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(structured.Bytes(), &entry))
	assert.Equal(t, "structured message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "INFO", entry["level"])

	assert.Contains(t, humanReadable.String(), "plain message")
}

func TestForService(t *testing.T) {
	var structured, humanReadable bytes.Buffer
	SetOutput(&structured, &humanReadable, slog.LevelDebug)
	defer Init(slog.LevelInfo)

	ForService("analysis").Info("worker started")

	assert.Contains(t, humanReadable.String(), "service=analysis")
	assert.Contains(t, humanReadable.String(), "worker started")
}

func TestCustomLevelNames(t *testing.T) {
	var structured, humanReadable bytes.Buffer
	SetOutput(&structured, &humanReadable, LevelTrace)
	defer Init(slog.LevelInfo)

	Trace("very detailed")

	assert.Contains(t, humanReadable.String(), "level=TRACE")
}

func TestNewFileLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "audioqc.log")

	logger, closeFunc, err := NewFileLogger(logPath, "check", slog.LevelInfo)
	require.NoError(t, err)

	logger.Info("file message", "path", "x.wav")
	require.NoError(t, closeFunc())

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(content))), &entry))
	assert.Equal(t, "file message", entry["msg"])
	assert.Equal(t, "check", entry["service"])
	assert.Equal(t, "x.wav", entry["path"])
}
