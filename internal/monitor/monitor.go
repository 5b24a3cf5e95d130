// yt-live-recorder - YouTube Live Stream Monitor and Recorder
// Copyright 2026 Jack D. (Jack-devnlp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Jack-devnlp/yt-live-recorder

// Package monitor runs the per-source polling state machine. Each
// configured channel gets its own supervised poll loop that detects
// liveness transitions and drives the recorder: start on going live,
// stop on going offline, restart on a stream switch.
package monitor

import (
	"context"
	"time"

	"github.com/Jack-devnlp/yt-live-recorder/internal/config"
	"github.com/Jack-devnlp/yt-live-recorder/internal/logging"
	"github.com/Jack-devnlp/yt-live-recorder/internal/models"
)

// LivenessChecker probes whether a channel is currently streaming.
type LivenessChecker interface {
	CheckChannelLive(ctx context.Context, channelID string) (models.LiveStatus, error)
}

// URLResolver turns a live video id into a direct media URL.
type URLResolver interface {
	ResolveStreamURL(ctx context.Context, videoID string, quality models.Quality) (string, error)
}

// SessionRecorder is the recorder surface the monitor drives.
type SessionRecorder interface {
	Start(mediaURL, sourceName string) (string, error)
	Stop() (string, error)
	IsRecording() bool
}

// RecorderFactory builds one recorder per source.
type RecorderFactory func(source string) SessionRecorder

// sourceState is the per-source view guarded by the coordinator lock.
// The rec handle is exclusively owned by the source's poll loop, so
// recorder calls happen outside the lock.
type sourceState struct {
	cfg     config.SourceConfig
	quality models.Quality
	rec     SessionRecorder

	isLive         bool
	isRecording    bool
	videoID        string
	title          string
	lastCheck      time.Time
	lastError      string
	recordingStart time.Time
	outputFile     string
}

// sourceMonitor is the suture service wrapping one source's poll loop.
// It never returns while the context is alive.
type sourceMonitor struct {
	coord *Coordinator
	name  string
}

func (m *sourceMonitor) String() string {
	return "monitor-" + m.name
}

// Serve polls the source at the configured interval until ctx ends.
func (m *sourceMonitor) Serve(ctx context.Context) error {
	logging.Info().Str("source", m.name).Msg("source monitor started")
	defer logging.Info().Str("source", m.name).Msg("source monitor stopped")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.coord.pollOnce(ctx, m.name)
		if !sleepIncrements(ctx, m.coord.interval) {
			return ctx.Err()
		}
	}
}

// sleepIncrements sleeps for d in 1s steps so cancellation is honored
// promptly even with long poll intervals. Returns false when ctx ends.
func sleepIncrements(ctx context.Context, d time.Duration) bool {
	deadline := time.Now().Add(d)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return true
		}
		step := time.Second
		if remaining < step {
			step = remaining
		}
		timer := time.NewTimer(step)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
	}
}
