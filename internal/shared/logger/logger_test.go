package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionalSourceHandler(t *testing.T) {
	tests := []struct {
		name             string
		level            slog.Level
		showSourceLevels []slog.Level
		wantSource       bool
	}{
		{name: "info hidden", level: slog.LevelInfo, showSourceLevels: []slog.Level{slog.LevelWarn, slog.LevelError}, wantSource: false},
		{name: "warn shown", level: slog.LevelWarn, showSourceLevels: []slog.Level{slog.LevelWarn, slog.LevelError}, wantSource: true},
		{name: "error shown", level: slog.LevelError, showSourceLevels: []slog.Level{slog.LevelWarn, slog.LevelError}, wantSource: true},
		{name: "info shown when listed", level: slog.LevelInfo, showSourceLevels: []slog.Level{slog.LevelInfo}, wantSource: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := NewConditionalSourceHandler(slog.NewTextHandler(&buf, nil), tt.showSourceLevels...)

			slog.New(handler).Log(context.Background(), tt.level, "merge finished")

			assert.Equal(t, tt.wantSource, strings.Contains(buf.String(), "source="), buf.String())
			if tt.wantSource {
				assert.Contains(t, buf.String(), "logger_test.go")
			}
		})
	}
}

func TestConditionalSourceHandler_KeepsAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	handler := NewConditionalSourceHandler(slog.NewTextHandler(&buf, nil), slog.LevelError)

	slog.New(handler).With("tag", "MyNode 01").WithGroup("link").Info("converted", "scheme", "trojan")

	out := buf.String()
	assert.NotContains(t, out, "source=")
	assert.Contains(t, out, "tag=\"MyNode 01\"")
	assert.Contains(t, out, "link.scheme=trojan")
}

func TestConditionalSourceHandler_Enabled(t *testing.T) {
	base := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo})
	handler := NewConditionalSourceHandler(base, slog.LevelError)

	assert.True(t, handler.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, handler.Enabled(context.Background(), slog.LevelDebug))
}

func TestNewHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithSlog(slog.New(NewHandler(&buf, "json", slog.LevelDebug, false)))

	l.Named("merge").Warnw("link skipped", "index", 3)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "link skipped", record["msg"])
	assert.Equal(t, "merge", record["logger"])
	assert.EqualValues(t, 3, record["index"])
	assert.Contains(t, record, slog.SourceKey)
}

func TestNewHandler_ConsoleWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithSlog(slog.New(NewHandler(&buf, "console", slog.LevelInfo, false)))

	l.Debugw("hidden")
	l.Infow("config written", "bytes", 42)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "config written")
	assert.NotContains(t, out, "\x1b[", "no colour codes when not a terminal")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewNopLogger(t *testing.T) {
	l := NewNopLogger()
	assert.NotPanics(t, func() {
		l.With("k", "v").Errorw("discarded", "error", assert.AnError)
	})
}
