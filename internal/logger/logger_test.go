package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LiveDraws/internal/config"
)

func TestJSONHandler(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newHandler(&buf, config.LoggerConfig{Level: "info", Format: "JSON"}))

	log.Info("wall opened", "wall", "wall_1_abc")
	log.Debug("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "wall opened", entry["msg"])
	assert.Equal(t, "wall_1_abc", entry["wall"])
}

func TestTextHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(newHandler(&buf, config.LoggerConfig{Level: "warn"}))

	log.Info("quiet")
	log.Warn("loud")

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "msg=loud")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.input), "parseLevel(%q)", tt.input)
	}
}

func TestOpenOutput(t *testing.T) {
	w, closer, err := openOutput("stdout")
	require.NoError(t, err)
	assert.Equal(t, os.Stdout, w)
	assert.NoError(t, closer())

	w, closer, err = openOutput("")
	require.NoError(t, err)
	assert.Equal(t, os.Stderr, w)
	assert.NoError(t, closer())
}

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "livedraws.log")
	log, closer, err := New(config.LoggerConfig{Level: "debug", Format: "text", Output: path})
	require.NoError(t, err)

	log.Debug("segment", "n", 3)
	require.NoError(t, closer())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=segment n=3")
}

func TestNewBadPath(t *testing.T) {
	_, _, err := New(config.LoggerConfig{Output: filepath.Join(t.TempDir(), "missing", "x.log")})
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() { Nop().Error("dropped") })
}
