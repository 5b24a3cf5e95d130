// yt-live-recorder - YouTube Live Stream Monitor and Recorder
// Copyright 2026 Jack D. (Jack-devnlp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Jack-devnlp/yt-live-recorder

package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"DEBUG", zerolog.DebugLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}

func TestInitJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	Info().Str("source", "main").Msg("monitor started")

	out := buf.String()
	assert.Contains(t, out, `"message":"monitor started"`)
	assert.Contains(t, out, `"source":"main"`)
	assert.Contains(t, out, `"level":"info"`)
}

func TestSetLoggerReplacesGlobal(t *testing.T) {
	var buf bytes.Buffer
	old := Logger()
	SetLogger(NewTestLogger(&buf))
	defer SetLogger(old)

	Warn().Msg("capture stalled")
	assert.Contains(t, buf.String(), "capture stalled")
}

func TestNewTestLoggerWrites(t *testing.T) {
	var buf bytes.Buffer
	l := NewTestLogger(&buf)
	l.Info().Str("video_id", "abc123").Msg("stream live")

	assert.Contains(t, buf.String(), "abc123")
}

func TestSlogHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	h := &SlogHandler{logger: NewTestLogger(&buf)}
	logger := slog.New(h)

	logger.Info("recording started", "source", "channel-a")
	logger.Error("recording failed", "attempt", int64(3))

	out := buf.String()
	assert.Contains(t, out, `"level":"info"`)
	assert.Contains(t, out, `"message":"recording started"`)
	assert.Contains(t, out, `"source":"channel-a"`)
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, `"attempt":3`)
}

func TestSlogHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	h := &SlogHandler{logger: NewTestLogger(&buf)}
	logger := slog.New(h).WithGroup("session").With("id", "s-1")

	logger.Info("stopped")

	assert.Contains(t, buf.String(), `"session.id":"s-1"`)
}

func TestSlogToZerologLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, slogToZerologLevel(slog.LevelDebug))
	assert.Equal(t, zerolog.InfoLevel, slogToZerologLevel(slog.LevelInfo))
	assert.Equal(t, zerolog.WarnLevel, slogToZerologLevel(slog.LevelWarn))
	assert.Equal(t, zerolog.ErrorLevel, slogToZerologLevel(slog.LevelError))
}

func TestNewSlogLogger(t *testing.T) {
	logger := NewSlogLogger()
	require.NotNil(t, logger)
}
