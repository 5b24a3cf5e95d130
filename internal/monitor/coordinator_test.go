// yt-live-recorder - YouTube Live Stream Monitor and Recorder
// Copyright 2026 Jack D. (Jack-devnlp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Jack-devnlp/yt-live-recorder

package monitor

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jack-devnlp/yt-live-recorder/internal/config"
	"github.com/Jack-devnlp/yt-live-recorder/internal/models"
)

// fakeChecker replays scripted liveness results.
type fakeChecker struct {
	mu      sync.Mutex
	results []checkResult
	idx     int
}

type checkResult struct {
	status models.LiveStatus
	err    error
}

func (f *fakeChecker) CheckChannelLive(_ context.Context, _ string) (models.LiveStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.idx >= len(f.results) {
		// Past the script: stay on the last result.
		if len(f.results) == 0 {
			return models.LiveStatus{}, nil
		}
		r := f.results[len(f.results)-1]
		return r.status, r.err
	}
	r := f.results[f.idx]
	f.idx++
	return r.status, r.err
}

type fakeResolver struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeResolver) ResolveStreamURL(_ context.Context, videoID string, _ models.Quality) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, videoID)
	if f.err != nil {
		return "", f.err
	}
	return "https://media.example/" + videoID, nil
}

func (f *fakeResolver) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeRecorder struct {
	mu        sync.Mutex
	recording bool
	exited    bool
	starts    int
	stops     int
	startErr  error
	startURLs []string
}

func (f *fakeRecorder) Start(mediaURL, sourceName string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	f.startURLs = append(f.startURLs, mediaURL)
	if f.startErr != nil {
		return "", f.startErr
	}
	f.recording = true
	return fmt.Sprintf("/recordings/%s_%d.mp4", sourceName, f.starts), nil
}

func (f *fakeRecorder) Stop() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	if !f.recording {
		return "", nil
	}
	f.recording = false
	f.exited = false
	return fmt.Sprintf("/recordings/part_%d.mp4", f.stops), nil
}

// IsRecording mirrors the real session's process probe: false once the
// capture process has exited, even though the session is still open and
// holds an unfinalized file until Stop.
func (f *fakeRecorder) IsRecording() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recording && !f.exited
}

// exitProcess simulates the capture process ending on its own.
func (f *fakeRecorder) exitProcess() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exited = true
}

func testConfig(names ...string) *config.Config {
	cfg := &config.Config{
		Output:  config.OutputConfig{Quality: "best"},
		Monitor: config.MonitorConfig{Interval: 10 * time.Millisecond},
	}
	for i, name := range names {
		cfg.Sources = append(cfg.Sources, config.SourceConfig{
			Name:      name,
			ChannelID: fmt.Sprintf("UC%022d", i),
		})
	}
	return cfg
}

func live(videoID string) checkResult {
	return checkResult{status: models.LiveStatus{IsLive: true, VideoID: videoID, Title: "t"}}
}

func offline() checkResult {
	return checkResult{}
}

func TestPollTransitionSequence(t *testing.T) {
	checker := &fakeChecker{results: []checkResult{
		offline(),
		live("vidAAAAAAA1"),
		live("vidAAAAAAA1"),
		live("vidBBBBBBB2"),
		offline(),
	}}
	resolver := &fakeResolver{}
	rec := &fakeRecorder{}

	c := NewCoordinator(testConfig("src"), checker, resolver,
		func(string) SessionRecorder { return rec })

	ctx := context.Background()

	// offline: nothing happens.
	c.pollOnce(ctx, "src")
	assert.Equal(t, 0, rec.starts)

	// offline -> live: resolve + start.
	c.pollOnce(ctx, "src")
	assert.Equal(t, 1, rec.starts)
	assert.True(t, rec.IsRecording())
	assert.Equal(t, []string{"vidAAAAAAA1"}, resolver.calls)

	// live -> live, same video: no action.
	c.pollOnce(ctx, "src")
	assert.Equal(t, 1, rec.starts)
	assert.Equal(t, 0, rec.stops)

	// live -> live, new video: stop then start.
	c.pollOnce(ctx, "src")
	assert.Equal(t, 2, rec.starts)
	assert.Equal(t, 1, rec.stops)
	assert.Equal(t, "https://media.example/vidBBBBBBB2", rec.startURLs[1])

	// live -> offline: stop.
	c.pollOnce(ctx, "src")
	assert.Equal(t, 2, rec.starts)
	assert.Equal(t, 2, rec.stops)
	assert.False(t, rec.IsRecording())

	status := c.Status()
	require.Len(t, status, 1)
	assert.False(t, status[0].IsLive)
	assert.False(t, status[0].IsRecording)
	assert.NotEmpty(t, status[0].OutputFile)
}

func TestPollResolverFailureAbsorbed(t *testing.T) {
	checker := &fakeChecker{results: []checkResult{live("vidAAAAAAA1")}}
	resolver := &fakeResolver{err: models.Errorf(models.KindStreamUnavailable, "resolve", "gone")}
	rec := &fakeRecorder{}

	c := NewCoordinator(testConfig("src"), checker, resolver,
		func(string) SessionRecorder { return rec })

	c.pollOnce(context.Background(), "src")

	status := c.Status()
	require.Len(t, status, 1)
	assert.True(t, status[0].IsLive)
	assert.False(t, status[0].IsRecording)
	assert.Contains(t, status[0].LastError, "gone")
	assert.Equal(t, 0, rec.starts)
}

func TestPollStartFailureAbsorbed(t *testing.T) {
	checker := &fakeChecker{results: []checkResult{live("vidAAAAAAA1")}}
	rec := &fakeRecorder{startErr: models.Errorf(models.KindInsufficientDiskSpace, "start", "disk full")}

	c := NewCoordinator(testConfig("src"), checker, &fakeResolver{},
		func(string) SessionRecorder { return rec })

	c.pollOnce(context.Background(), "src")

	status := c.Status()
	require.Len(t, status, 1)
	assert.False(t, status[0].IsRecording)
	assert.Contains(t, status[0].LastError, "disk full")
}

func TestPollCheckErrorRecorded(t *testing.T) {
	checker := &fakeChecker{results: []checkResult{
		{err: models.Errorf(models.KindSourceNotFound, "check", "channel removed")},
	}}
	rec := &fakeRecorder{}

	c := NewCoordinator(testConfig("src"), checker, &fakeResolver{},
		func(string) SessionRecorder { return rec })

	c.pollOnce(context.Background(), "src")

	status := c.Status()
	require.Len(t, status, 1)
	assert.Contains(t, status[0].LastError, "channel removed")
	assert.False(t, status[0].LastCheck.IsZero())
}

// panicChecker blows up on every probe.
type panicChecker struct{}

func (panicChecker) CheckChannelLive(context.Context, string) (models.LiveStatus, error) {
	panic("unexpected nil dereference")
}

func TestPollPanicRecovered(t *testing.T) {
	c := NewCoordinator(testConfig("src"), panicChecker{}, &fakeResolver{},
		func(string) SessionRecorder { return &fakeRecorder{} })

	// Canceled context keeps the post-panic pause from blocking the test.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NotPanics(t, func() { c.pollOnce(ctx, "src") })
}

func TestPollUnknownSourceIgnored(t *testing.T) {
	c := NewCoordinator(testConfig("src"), &fakeChecker{}, &fakeResolver{},
		func(string) SessionRecorder { return &fakeRecorder{} })

	assert.NotPanics(t, func() { c.pollOnce(context.Background(), "ghost") })
}

func TestStatusSortedByName(t *testing.T) {
	c := NewCoordinator(testConfig("zulu", "alpha", "mike"), &fakeChecker{}, &fakeResolver{},
		func(string) SessionRecorder { return &fakeRecorder{} })

	status := c.Status()
	require.Len(t, status, 3)
	assert.Equal(t, "alpha", status[0].Name)
	assert.Equal(t, "mike", status[1].Name)
	assert.Equal(t, "zulu", status[2].Name)
}

func TestServicesOnePerSource(t *testing.T) {
	c := NewCoordinator(testConfig("a", "b", "c"), &fakeChecker{}, &fakeResolver{},
		func(string) SessionRecorder { return &fakeRecorder{} })

	services := c.Services()
	require.Len(t, services, 3)
	assert.Equal(t, "monitor-a", fmt.Sprint(services[0]))
}

func TestStartStopUnderLoad(t *testing.T) {
	recorders := map[string]*fakeRecorder{}
	var mu sync.Mutex

	checker := &fakeChecker{results: []checkResult{live("vidAAAAAAA1")}}
	c := NewCoordinator(testConfig("a", "b"), checker, &fakeResolver{},
		func(source string) SessionRecorder {
			rec := &fakeRecorder{}
			mu.Lock()
			recorders[source] = rec
			mu.Unlock()
			return rec
		})
	c.treeCfg.ShutdownTimeout = 2 * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveErr := make(chan error, 1)
	go func() { serveErr <- c.Start(ctx) }()

	// Wait until both sources have started recording.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, rec := range recorders {
			if !rec.IsRecording() {
				return false
			}
		}
		return len(recorders) == 2
	}, 3*time.Second, 10*time.Millisecond)

	stopDone := make(chan struct{})
	go func() {
		c.Stop()
		close(stopDone)
	}()

	select {
	case <-stopDone:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}

	for name, rec := range recorders {
		assert.False(t, rec.IsRecording(), "source %s must be stopped", name)
	}

	select {
	case <-serveErr:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestStopFinalizesNaturallyExitedSession(t *testing.T) {
	checker := &fakeChecker{results: []checkResult{live("vidAAAAAAA1")}}
	rec := &fakeRecorder{}

	c := NewCoordinator(testConfig("src"), checker, &fakeResolver{},
		func(string) SessionRecorder { return rec })

	c.pollOnce(context.Background(), "src")
	require.Equal(t, 1, rec.starts)

	// Process ends on its own between polls while the source stays live on
	// the same video, so no poll transition ever stops the session.
	rec.exitProcess()
	require.False(t, rec.IsRecording())

	c.Stop()

	assert.Equal(t, 1, rec.stops, "shutdown must finalize the open session")
	status := c.Status()
	require.Len(t, status, 1)
	assert.False(t, status[0].IsRecording)
	assert.Equal(t, "/recordings/part_1.mp4", status[0].OutputFile)
}
