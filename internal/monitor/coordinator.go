// yt-live-recorder - YouTube Live Stream Monitor and Recorder
// Copyright 2026 Jack D. (Jack-devnlp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Jack-devnlp/yt-live-recorder

package monitor

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/Jack-devnlp/yt-live-recorder/internal/config"
	"github.com/Jack-devnlp/yt-live-recorder/internal/logging"
	"github.com/Jack-devnlp/yt-live-recorder/internal/metrics"
	"github.com/Jack-devnlp/yt-live-recorder/internal/models"
	"github.com/Jack-devnlp/yt-live-recorder/internal/supervisor"
)

// panicPause is the cool-down after a recovered poll panic.
const panicPause = 5 * time.Second

// Coordinator owns the per-source states and their supervised poll
// loops.
type Coordinator struct {
	interval time.Duration
	checker  LivenessChecker
	resolver URLResolver

	mu     sync.RWMutex
	states map[string]*sourceState

	cancel    context.CancelFunc
	serveDone chan struct{}
	treeCfg   supervisor.TreeConfig
}

// NewCoordinator wires a coordinator for the configured sources. The
// factory is called once per source so each poll loop exclusively owns
// its recorder.
func NewCoordinator(cfg *config.Config, checker LivenessChecker, resolver URLResolver, newRecorder RecorderFactory) *Coordinator {
	states := make(map[string]*sourceState, len(cfg.Sources))
	for _, src := range cfg.Sources {
		states[src.Name] = &sourceState{
			cfg:     src,
			quality: cfg.SourceQuality(src),
			rec:     newRecorder(src.Name),
		}
	}
	return &Coordinator{
		interval: cfg.Monitor.Interval,
		checker:  checker,
		resolver: resolver,
		states:   states,
		treeCfg:  supervisor.DefaultTreeConfig(),
	}
}

// Services returns one suture service per source, for embedding into an
// externally owned supervision tree.
func (c *Coordinator) Services() []suture.Service {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.states))
	for name := range c.states {
		names = append(names, name)
	}
	sort.Strings(names)

	services := make([]suture.Service, 0, len(names))
	for _, name := range names {
		services = append(services, &sourceMonitor{coord: c, name: name})
	}
	return services
}

// Start runs the coordinator standalone under its own supervision tree,
// blocking until ctx ends.
func (c *Coordinator) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	c.mu.Lock()
	c.cancel = cancel
	c.serveDone = done
	c.mu.Unlock()

	tree, err := supervisor.NewTree(logging.NewSlogLogger(), c.treeCfg)
	if err != nil {
		cancel()
		close(done)
		return err
	}
	for _, svc := range c.Services() {
		tree.AddMonitorService(svc)
	}
	defer close(done)

	logging.Info().
		Int("sources", len(c.states)).
		Dur("interval", c.interval).
		Msg("monitor coordinator started")

	return tree.Serve(ctx)
}

// Stop cancels the poll loops and stops every active recording. It
// returns once loops have wound down or the shutdown timeout passes; a
// capture process that refuses to die is logged and abandoned.
func (c *Coordinator) Stop() {
	logging.Info().Msg("stopping monitor coordinator")

	c.mu.RLock()
	cancel := c.cancel
	serveDone := c.serveDone
	// Snapshot the open sessions by flag, not by process probe: a capture
	// process that exited on its own still holds an unfinalized temp file
	// until its session is stopped.
	open := make([]*sourceState, 0, len(c.states))
	for _, st := range c.states {
		if st.isRecording {
			open = append(open, st)
		}
	}
	c.mu.RUnlock()

	if cancel != nil {
		cancel()
	}

	for _, st := range open {
		logging.Info().Str("source", st.cfg.Name).Msg("stopping active recording")
		c.stopRecording(st)
	}

	if serveDone != nil {
		select {
		case <-serveDone:
		case <-time.After(c.treeCfg.ShutdownTimeout):
			logging.Warn().Msg("monitor loops did not stop within timeout")
		}
	}
	logging.Info().Msg("monitor coordinator stopped")
}

// Status returns a point-in-time snapshot of every source, sorted by
// name.
func (c *Coordinator) Status() []models.SourceStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.SourceStatus, 0, len(c.states))
	for _, st := range c.states {
		out = append(out, models.SourceStatus{
			Name:           st.cfg.Name,
			ChannelID:      st.cfg.ChannelID,
			IsLive:         st.isLive,
			IsRecording:    st.isRecording,
			VideoID:        st.videoID,
			Title:          st.title,
			LastCheck:      st.lastCheck,
			LastError:      st.lastError,
			RecordingStart: st.recordingStart,
			OutputFile:     st.outputFile,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// pollOnce runs one poll cycle for a source: probe liveness, apply the
// transition, absorb any failure. A panic is recovered and followed by a
// cool-down so a poisoned source cannot take down its loop.
func (c *Coordinator) pollOnce(ctx context.Context, name string) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error().Interface("panic", r).Str("source", name).Msg("recovered panic in poll cycle")
			sleepIncrements(ctx, panicPause)
		}
	}()

	c.mu.RLock()
	st := c.states[name]
	c.mu.RUnlock()
	if st == nil {
		return
	}

	pollStart := time.Now()
	status, err := c.checker.CheckChannelLive(ctx, st.cfg.ChannelID)
	metrics.RecordPoll(name, time.Since(pollStart), err)

	c.mu.Lock()
	st.lastCheck = time.Now()
	if err != nil {
		st.lastError = err.Error()
		c.mu.Unlock()

		if models.KindOf(err) == models.KindSourceNotFound {
			logging.Error().Err(err).Str("source", name).Msg("channel not found")
		} else {
			logging.Warn().Err(err).Str("source", name).Msg("liveness check failed")
		}
		return
	}

	st.lastError = ""
	wasLive := st.isLive
	prevVideoID := st.videoID
	st.isLive = status.IsLive
	if status.IsLive {
		st.videoID = status.VideoID
		st.title = status.Title
	} else {
		st.videoID = ""
		st.title = ""
	}
	c.mu.Unlock()

	switch {
	case !wasLive && status.IsLive:
		logging.Info().
			Str("source", name).
			Str("video_id", status.VideoID).
			Str("title", status.Title).
			Msg("stream went live")
		c.startRecording(ctx, st, status)

	case wasLive && !status.IsLive:
		logging.Info().Str("source", name).Msg("stream went offline")
		c.stopRecording(st)

	case wasLive && status.IsLive && status.VideoID != prevVideoID:
		logging.Info().
			Str("source", name).
			Str("old_video_id", prevVideoID).
			Str("new_video_id", status.VideoID).
			Msg("stream switched, restarting recording")
		c.stopRecording(st)
		c.startRecording(ctx, st, status)
	}
}

// startRecording resolves the media URL and starts the source's
// recorder. Failures land in lastError; the poll loop carries on.
func (c *Coordinator) startRecording(ctx context.Context, st *sourceState, status models.LiveStatus) {
	name := st.cfg.Name

	url, err := c.resolver.ResolveStreamURL(ctx, status.VideoID, st.quality)
	if err != nil {
		logging.Error().Err(err).Str("source", name).Msg("failed to resolve stream URL")
		c.recordStartFailure(st, err)
		return
	}

	path, err := st.rec.Start(url, name)
	if err != nil {
		logging.Error().Err(err).Str("source", name).Msg("failed to start recording")
		c.recordStartFailure(st, err)
		return
	}

	c.mu.Lock()
	st.isRecording = true
	st.recordingStart = time.Now()
	st.outputFile = path
	c.mu.Unlock()

	logging.Info().Str("source", name).Str("output", path).Msg("recording started")
}

func (c *Coordinator) recordStartFailure(st *sourceState, err error) {
	c.mu.Lock()
	st.isRecording = false
	st.lastError = err.Error()
	c.mu.Unlock()
}

// stopRecording stops the source's recorder and records the saved path.
func (c *Coordinator) stopRecording(st *sourceState) {
	path, err := st.rec.Stop()
	if err != nil {
		logging.Warn().Err(err).Str("source", st.cfg.Name).Msg("error stopping recording")
	}

	c.mu.Lock()
	st.isRecording = false
	st.recordingStart = time.Time{}
	if path != "" {
		st.outputFile = path
	}
	c.mu.Unlock()

	if path != "" {
		logging.Info().Str("source", st.cfg.Name).Str("file", path).Msg("recording stopped")
	}
}
