// yt-live-recorder - YouTube Live Stream Monitor and Recorder
// Copyright 2026 Jack D. (Jack-devnlp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Jack-devnlp/yt-live-recorder

// Package recorder owns the yt-dlp capture subprocess: starting it against
// a resolved media URL, draining its output, stopping it gracefully, and
// reconnecting when a live stream drops mid-capture.
//
// A Session owns at most one process at a time. Recordings land in a
// hidden temp file and are renamed into place only after the process has
// been confirmed stopped, so a crash never leaves a plausible-looking but
// truncated recording.
package recorder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v4/disk"

	"github.com/Jack-devnlp/yt-live-recorder/internal/logging"
	"github.com/Jack-devnlp/yt-live-recorder/internal/metrics"
	"github.com/Jack-devnlp/yt-live-recorder/internal/models"
	"github.com/Jack-devnlp/yt-live-recorder/internal/retry"
)

// Sentinel errors surfaced by Start.
var (
	ErrAlreadyRecording      = fmt.Errorf("already recording")
	ErrInsufficientDiskSpace = fmt.Errorf("insufficient disk space")
)

// Config tunes a Session. Zero values get sensible defaults from
// NewSession.
type Config struct {
	OutputDir          string
	Quality            models.Quality
	Format             string
	CaptureBinary      string
	CookiesFromBrowser string
	CookiesFile        string
	MinFreeBytes       uint64
	PollInterval       time.Duration
	StopTimeout        time.Duration
	KillTimeout        time.Duration
	DrainTimeout       time.Duration
	ReconnectPause     time.Duration

	// ErrorBackoff escalates the pause after a failed reconnect attempt.
	// Zero value: 5s doubling up to a minute.
	ErrorBackoff retry.Config
}

// Session supervises one capture process at a time.
type Session struct {
	cfg Config
	id  string

	mu         sync.Mutex
	cmd        *exec.Cmd
	done       chan struct{}
	startTime  time.Time
	tempPath   string
	finalPath  string
	sourceName string
	reconnects int
	parts      []string
	drain      *sync.WaitGroup

	// Test seams.
	buildCommand func(mediaURL, tempPath string) *exec.Cmd
	diskUsage    diskUsageFunc
}

// NewSession creates a Session with defaults applied.
func NewSession(cfg Config) *Session {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "recordings"
	}
	if cfg.Quality == "" {
		cfg.Quality = models.QualityBest
	}
	if cfg.Format == "" {
		cfg.Format = "mp4"
	}
	if cfg.CaptureBinary == "" {
		cfg.CaptureBinary = "yt-dlp"
	}
	if cfg.MinFreeBytes == 0 {
		cfg.MinFreeBytes = DefaultMinFreeBytes
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = 5 * time.Second
	}
	if cfg.KillTimeout <= 0 {
		cfg.KillTimeout = 2 * time.Second
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 2 * time.Second
	}
	if cfg.ReconnectPause <= 0 {
		cfg.ReconnectPause = 2 * time.Second
	}
	if cfg.ErrorBackoff.BaseDelay <= 0 {
		cfg.ErrorBackoff = retry.Config{
			BaseDelay:       5 * time.Second,
			MaxDelay:        60 * time.Second,
			ExponentialBase: 2.0,
		}
	}

	s := &Session{
		cfg:       cfg,
		id:        fmt.Sprintf("session-%s", uuid.New().String()[:8]),
		diskUsage: disk.Usage,
	}
	s.buildCommand = s.defaultBuildCommand
	return s
}

// defaultBuildCommand assembles the yt-dlp capture invocation. --no-part
// and --no-continue keep yt-dlp from managing its own partial files; the
// temp/rename dance here replaces that.
func (s *Session) defaultBuildCommand(mediaURL, tempPath string) *exec.Cmd {
	args := []string{
		"-f", s.cfg.Quality.FormatSelector(),
		"--no-part",
		"--no-continue",
		"--newline",
		"-o", tempPath,
	}
	if s.cfg.CookiesFromBrowser != "" {
		args = append(args, "--cookies-from-browser", s.cfg.CookiesFromBrowser)
	}
	if s.cfg.CookiesFile != "" {
		args = append(args, "--cookies", s.cfg.CookiesFile)
	}
	args = append(args, mediaURL)
	return exec.Command(s.cfg.CaptureBinary, args...)
}

// Start launches a capture process for the media URL and returns the
// path the finished recording will have. It fails with
// KindAlreadyRecording when a process is already owned and with
// KindInsufficientDiskSpace when the output filesystem is too full.
func (s *Session) Start(mediaURL, sourceName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd != nil {
		err := models.NewError(models.KindAlreadyRecording, "start", ErrAlreadyRecording)
		metrics.RecordRecordingStart(sourceName, err)
		return "", err
	}

	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		err := models.NewError(models.KindUnknown, "start",
			fmt.Errorf("create output directory: %w", err))
		metrics.RecordRecordingStart(sourceName, err)
		return "", err
	}

	if err := checkDiskSpace(s.diskUsage, s.cfg.OutputDir, s.cfg.MinFreeBytes); err != nil {
		metrics.RecordRecordingStart(sourceName, err)
		return "", err
	}

	name := Filename(sourceName, time.Now(), s.cfg.Format)
	finalPath := filepath.Join(s.cfg.OutputDir, name)
	tempPath := filepath.Join(s.cfg.OutputDir, "."+name+".tmp")

	cmd := s.buildCommand(mediaURL, tempPath)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", models.NewError(models.KindToolFailure, "start", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", models.NewError(models.KindToolFailure, "start", err)
	}

	if err := cmd.Start(); err != nil {
		err := models.NewError(models.KindToolFailure, "start",
			fmt.Errorf("failed to start capture: %w", err))
		metrics.RecordRecordingStart(sourceName, err)
		return "", err
	}

	s.cmd = cmd
	s.done = make(chan struct{})
	s.startTime = time.Now()
	s.tempPath = tempPath
	s.finalPath = finalPath
	s.sourceName = sourceName

	// Both pipes must be drained or the capture process blocks on a full
	// pipe buffer.
	drain := &sync.WaitGroup{}
	drain.Add(2)
	s.drain = drain
	go s.drainPipe(drain, stdout, false)
	go s.drainPipe(drain, stderr, true)

	done := s.done
	go func() {
		drain.Wait()
		_ = cmd.Wait()
		close(done)
	}()

	logging.Info().
		Str("session", s.id).
		Str("source", sourceName).
		Str("output", finalPath).
		Msg("started recording")
	metrics.RecordRecordingStart(sourceName, nil)

	return finalPath, nil
}

// drainPipe logs every line the capture process emits. stderr lines go
// to warn level since yt-dlp reports problems there.
func (s *Session) drainPipe(wg *sync.WaitGroup, pipe io.ReadCloser, isStderr bool) {
	defer wg.Done()
	scanner := bufio.NewScanner(pipe)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if isStderr {
			logging.Warn().Str("session", s.id).Str("tool", "yt-dlp").Msg(line)
		} else {
			logging.Debug().Str("session", s.id).Str("tool", "yt-dlp").Msg(line)
		}
	}
}

// Stop terminates the capture process gracefully and finalizes the
// recording file. It is idempotent: with no owned process it returns
// ("", nil) any number of times.
func (s *Session) Stop() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd == nil {
		return "", nil
	}

	logging.Info().Str("session", s.id).Str("source", s.sourceName).Msg("stopping recording")
	stopStart := time.Now()

	// Graceful first: interrupt, then escalate to kill.
	if err := s.cmd.Process.Signal(os.Interrupt); err != nil {
		logging.Debug().Err(err).Str("session", s.id).Msg("interrupt signal failed, process likely exited")
	}

	select {
	case <-s.done:
	case <-time.After(s.cfg.StopTimeout):
		logging.Warn().Str("session", s.id).Msg("process did not terminate in time, killing")
		if err := s.cmd.Process.Kill(); err != nil {
			logging.Debug().Err(err).Str("session", s.id).Msg("kill failed, process likely exited")
		}
		select {
		case <-s.done:
		case <-time.After(s.cfg.KillTimeout):
			logging.Error().Str("session", s.id).Msg("process could not be killed")
		}
	}

	// Release ownership before touching files so a racing Start cannot
	// observe a half-stopped session.
	s.cmd = nil

	if !waitTimeout(s.drain, s.cfg.DrainTimeout) {
		logging.Warn().Str("session", s.id).Msg("output drain did not finish in time")
	}

	path, err := s.finalizeFile()
	duration := time.Since(s.startTime)
	metrics.RecordRecordingStop(s.sourceName, time.Since(stopStart), path != "")

	if path != "" {
		logging.Info().
			Str("session", s.id).
			Str("file", path).
			Str("duration", formatDuration(duration)).
			Msg("recording saved")
	}
	return path, err
}

// finalizeFile renames the temp file into place. Must be called with the
// mutex held and the process stopped. A failed rename returns the temp
// path so the recorded bytes are never lost.
func (s *Session) finalizeFile() (string, error) {
	if s.tempPath == "" {
		return "", nil
	}
	tempPath, finalPath := s.tempPath, s.finalPath
	s.tempPath, s.finalPath = "", ""

	if _, err := os.Stat(tempPath); err != nil {
		// Nothing was written; the capture died before producing data.
		return "", nil
	}

	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		logging.Error().Err(err).Str("session", s.id).Str("temp", tempPath).Msg("failed to create final directory, keeping temp file")
		return tempPath, nil
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		logging.Error().Err(err).Str("session", s.id).Str("temp", tempPath).Msg("failed to rename recording, keeping temp file")
		return tempPath, nil
	}
	return finalPath, nil
}

// IsRecording reports whether an owned capture process is still running.
// It consults the waiter, not a flag, so a process that exited on its own
// reads as not recording even before Stop is called.
func (s *Session) IsRecording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Duration returns how long the current or last recording has run.
func (s *Session) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startTime.IsZero() {
		return 0
	}
	return time.Since(s.startTime)
}

// Parts returns the files saved by the last RecordWithReconnect run.
func (s *Session) Parts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.parts))
	copy(out, s.parts)
	return out
}

// RecordForDuration records for at most d, returning the saved file.
// The capture also ends early when the process exits or ctx is canceled.
func (s *Session) RecordForDuration(ctx context.Context, mediaURL, sourceName string, d time.Duration) (string, error) {
	if _, err := s.Start(mediaURL, sourceName); err != nil {
		return "", err
	}

	logging.Info().
		Str("source", sourceName).
		Str("duration", formatDuration(d)).
		Msg("recording for fixed duration")

	start := time.Now()
	for s.IsRecording() {
		if time.Since(start) >= d {
			break
		}
		if !sleepCtx(ctx, s.cfg.PollInterval) {
			break
		}
	}
	return s.Stop()
}

// RecordWithReconnect captures a live stream across interruptions. When
// the process exits while the stream is still live, it resolves a fresh
// media URL and starts a new part, up to maxReconnects times. All errors
// are absorbed; the return value is the ordered list of saved parts.
func (s *Session) RecordWithReconnect(
	ctx context.Context,
	mediaURL, sourceName string,
	refreshURL func() (string, error),
	checkLive func() bool,
	maxReconnects int,
) []string {
	var parts []string
	reconnects := 0

	logging.Info().
		Str("source", sourceName).
		Int("max_reconnects", maxReconnects).
		Msg("starting recording with reconnection support")

	for reconnects <= maxReconnects {
		url := mediaURL
		name := sourceName
		if reconnects > 0 {
			logging.Info().
				Str("source", sourceName).
				Int("attempt", reconnects).
				Int("max", maxReconnects).
				Msg("reconnecting")
			fresh, err := refreshURL()
			if err != nil {
				logging.Error().Err(err).Str("source", sourceName).Msg("failed to refresh stream URL")
				if !s.pauseAfterError(ctx, &reconnects, maxReconnects, sourceName) {
					break
				}
				continue
			}
			url = fresh
			name = fmt.Sprintf("%s_reconnect%d", sourceName, reconnects)
		}

		if _, err := s.Start(url, name); err != nil {
			logging.Error().Err(err).Str("source", sourceName).Msg("failed to start recording part")
			_, _ = s.Stop()
			if !s.pauseAfterError(ctx, &reconnects, maxReconnects, sourceName) {
				break
			}
			continue
		}

		for s.IsRecording() {
			if !sleepCtx(ctx, s.cfg.PollInterval) {
				break
			}
			if !checkLive() {
				logging.Info().Str("source", sourceName).Msg("stream ended naturally")
				break
			}
		}

		if part, _ := s.Stop(); part != "" {
			parts = append(parts, part)
		}

		if ctx.Err() != nil {
			break
		}
		if checkLive() && reconnects < maxReconnects {
			reconnects++
			metrics.RecordReconnect(sourceName)
			logging.Info().
				Str("source", sourceName).
				Int("attempt", reconnects).
				Int("max", maxReconnects).
				Msg("stream interrupted, will reconnect")
			if !sleepCtx(ctx, s.cfg.ReconnectPause) {
				break
			}
			continue
		}
		break
	}

	logging.Info().
		Str("source", sourceName).
		Int("parts", len(parts)).
		Msg("recording complete")

	s.mu.Lock()
	s.parts = append([]string(nil), parts...)
	s.reconnects = reconnects
	s.mu.Unlock()

	return parts
}

// pauseAfterError counts a failed attempt against the reconnect budget
// and sleeps with escalating backoff. Returns false when the budget or
// the context is exhausted.
func (s *Session) pauseAfterError(ctx context.Context, reconnects *int, maxReconnects int, sourceName string) bool {
	if *reconnects >= maxReconnects {
		return false
	}
	delay := retry.Delay(*reconnects, s.cfg.ErrorBackoff)
	*reconnects++
	metrics.RecordReconnect(sourceName)
	logging.Info().
		Str("source", sourceName).
		Int("attempt", *reconnects).
		Int("max", maxReconnects).
		Dur("wait", delay).
		Msg("waiting before reconnect attempt")
	return sleepCtx(ctx, delay)
}

// sleepCtx sleeps for d, returning false if the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// waitTimeout waits for a WaitGroup with an upper bound.
func waitTimeout(wg *sync.WaitGroup, timeout time.Duration) bool {
	ch := make(chan struct{})
	go func() {
		wg.Wait()
		close(ch)
	}()
	select {
	case <-ch:
		return true
	case <-time.After(timeout):
		return false
	}
}
