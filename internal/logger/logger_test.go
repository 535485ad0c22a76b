//go:build unit

package logger

import (
	"bytes"
	"context"
	"eduplatform/internal/config"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		entries = append(entries, entry)
	}
	return entries
}

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level    string
		emit     func(Logger)
		wantMsgs []string
	}{
		{"warn", func(l Logger) { l.Info("skipped"); l.Warn("kept") }, []string{"kept"}},
		{"debug", func(l Logger) { l.Debug("low") }, []string{"low"}},
		{"error", func(l Logger) { l.Warn("skipped"); l.Error(errors.New("boom"), "failed") }, []string{"failed"}},
		{"nonsense", func(l Logger) { l.Debug("skipped"); l.Info("kept") }, []string{"Unknown log level, using info", "kept"}},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			tt.emit(New(config.LogConfig{Level: tt.level, Format: "json"}, &buf))

			var got []string
			for _, e := range decodeLines(t, &buf) {
				got = append(got, e["message"].(string))
				assert.Equal(t, "eduplatform", e["app"])
			}
			assert.Equal(t, tt.wantMsgs, got)
		})
	}
}

func TestNew_ErrorField(t *testing.T) {
	var buf bytes.Buffer
	New(config.LogConfig{Level: "info", Format: "json"}, &buf).Error(errors.New("disk full"), "save failed")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "error", entries[0]["level"])
	assert.Equal(t, "disk full", entries[0]["error"])
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	New(config.LogConfig{Level: "info", Format: "CONSOLE"}, &buf).Info("server ready")

	out := buf.String()
	assert.Contains(t, out, "server ready")
	assert.False(t, strings.HasPrefix(out, "{"), "console output should not be json: %s", out)
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	base := New(config.LogConfig{Level: "info", Format: "json"}, &buf)

	base.With(map[string]interface{}{"kind": "courses", "count": 3}).Info("listed")
	base.Info("plain")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "courses", entries[0]["kind"])
	assert.EqualValues(t, 3, entries[0]["count"])
	assert.NotContains(t, entries[1], "kind")
}

func TestContext(t *testing.T) {
	fallback := Nop()
	assert.Same(t, fallback, FromContext(context.Background(), fallback))

	var buf bytes.Buffer
	scoped := New(config.LogConfig{Level: "info", Format: "json"}, &buf).With(map[string]interface{}{"request_id": "r-1"})
	ctx := NewContext(context.Background(), scoped)

	FromContext(ctx, fallback).Info("handled")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "r-1", entries[0]["request_id"])
}
