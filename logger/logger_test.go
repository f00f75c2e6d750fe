package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogLogger(t *testing.T) {
	t.Run("respects log level", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

		log.Debug("debug message")
		log.Info("info message")
		log.Warn("warn message")
		log.Error("error message")

		output := buf.String()
		assert.NotContains(t, output, "debug message")
		assert.NotContains(t, output, "info message")
		assert.Contains(t, output, "warn message")
		assert.Contains(t, output, "error message")
	})

	t.Run("With adds context to all logs", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(slog.NewJSONHandler(&buf, nil)).With("document", "notes.txt")

		log.Info("first message")
		log.Info("second message")

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)
		for _, line := range lines {
			var entry map[string]any
			require.NoError(t, json.Unmarshal([]byte(line), &entry))
			assert.Equal(t, "notes.txt", entry["document"])
		}
	})
}

func TestNoopLogger(t *testing.T) {
	log := Noop()

	log.Debug("debug message", "key", "value")
	log.Error("error message", "key", "value")

	assert.Same(t, log, log.With("key", "value"))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "UNKNOWN", Level(999).String())
	assert.Equal(t, slog.LevelInfo, Level(999).SlogLevel())
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	log := NewText(&buf, LevelInfo)

	log.Info("test message", "key", "value")

	assert.Contains(t, buf.String(), "test message")
	assert.Contains(t, buf.String(), "key=value")
}

func TestSlog(t *testing.T) {
	var buf bytes.Buffer
	sl := Slog(NewJSON(&buf, LevelDebug))
	sl.Info("via slog")
	assert.Contains(t, buf.String(), "via slog")

	assert.NotNil(t, Slog(Noop()))
}
