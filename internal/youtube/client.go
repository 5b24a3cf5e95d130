// yt-live-recorder - YouTube Live Stream Monitor and Recorder
// Copyright 2026 Jack D. (Jack-devnlp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Jack-devnlp/yt-live-recorder

// Package youtube wraps the yt-dlp binary for liveness checks and media
// URL resolution. All metadata calls run through a shared circuit breaker
// and the YouTube retry policy, so a flapping or rate-limiting upstream
// degrades to classified errors instead of hammering the tool.
package youtube

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/Jack-devnlp/yt-live-recorder/internal/logging"
	"github.com/Jack-devnlp/yt-live-recorder/internal/metrics"
	"github.com/Jack-devnlp/yt-live-recorder/internal/models"
	"github.com/Jack-devnlp/yt-live-recorder/internal/retry"
)

// invocationTimeout bounds a single yt-dlp run.
const invocationTimeout = 30 * time.Second

// runnerFunc executes a tool and returns its stdout and stderr separately.
// Tests replace it to stub yt-dlp output.
type runnerFunc func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// Options configures a Client.
type Options struct {
	// Binary is the yt-dlp executable. Default "yt-dlp".
	Binary string

	// CookiesFromBrowser passes --cookies-from-browser on every call.
	CookiesFromBrowser string

	// CookiesFile passes --cookies on every call.
	CookiesFile string

	// Retry overrides the metadata retry policy. Zero value uses
	// retry.YouTubeConfig.
	Retry retry.Config
}

// Client executes yt-dlp for metadata and stream URL queries.
type Client struct {
	opts   Options
	retry  retry.Config
	cb     *gobreaker.CircuitBreaker[[]byte]
	runner runnerFunc
}

// NewClient creates a Client with the breaker armed.
func NewClient(opts Options) *Client {
	if opts.Binary == "" {
		opts.Binary = "yt-dlp"
	}
	rc := opts.Retry
	if rc.MaxAttempts == 0 {
		rc = retry.YouTubeConfig()
	}

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "yt-dlp",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state transition")
			metrics.RecordBreakerStateChange(int(to))
		},
	})

	return &Client{opts: opts, retry: rc, cb: cb, runner: runTool}
}

// runTool is the production runner: exec.CommandContext with split
// stdout/stderr capture.
func runTool(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// videoInfo is the subset of yt-dlp --dump-json output the client reads.
type videoInfo struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Channel    string `json:"channel"`
	IsLive     bool   `json:"is_live"`
	LiveStatus string `json:"live_status"`
	WasLive    bool   `json:"was_live"`
}

// authArgs returns the cookie flags shared by every invocation.
func (c *Client) authArgs() []string {
	var args []string
	if c.opts.CookiesFromBrowser != "" {
		args = append(args, "--cookies-from-browser", c.opts.CookiesFromBrowser)
	}
	if c.opts.CookiesFile != "" {
		args = append(args, "--cookies", c.opts.CookiesFile)
	}
	return args
}

// invoke runs yt-dlp once through the breaker and classifies failures.
func (c *Client) invoke(ctx context.Context, op string, args []string) ([]byte, error) {
	out, err := c.cb.Execute(func() ([]byte, error) {
		runCtx, cancel := context.WithTimeout(ctx, invocationTimeout)
		defer cancel()

		stdout, stderr, runErr := c.runner(runCtx, c.opts.Binary, args...)
		if runErr != nil {
			return nil, classifyToolError(runCtx, op, stderr, runErr)
		}
		return stdout, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			// Open breaker presents as a transient network-class
			// failure so pollers back off and try again later.
			return nil, models.NewError(models.KindNetwork, op, err)
		}
		return nil, err
	}
	return out, nil
}

// fetchInfo runs --dump-json on a URL with retry and parses the result.
func (c *Client) fetchInfo(ctx context.Context, op, url string) (videoInfo, error) {
	args := append([]string{"--dump-json", "--no-download"}, c.authArgs()...)
	args = append(args, url)

	out, err := retry.DoValue(ctx, c.retry, func() ([]byte, error) {
		return c.invoke(ctx, op, args)
	}, func(attempt int, err error, delay time.Duration) {
		metrics.RecordRetry(op)
		logging.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Dur("wait", delay).
			Str("url", url).
			Msg("retrying video info fetch")
	})
	if err != nil {
		return videoInfo{}, err
	}

	var info videoInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return videoInfo{}, models.NewError(models.KindToolFailure, op,
			fmt.Errorf("parse yt-dlp output: %w", err))
	}
	return info, nil
}

// CheckLive reports whether a specific video is currently live. Liveness
// is strict: the stream must be flagged live, report live_status
// "is_live", and not be a finished broadcast.
func (c *Client) CheckLive(ctx context.Context, videoID string) (models.LiveStatus, error) {
	info, err := c.fetchInfo(ctx, "check_live", "https://www.youtube.com/watch?v="+videoID)
	if err != nil {
		return models.LiveStatus{}, err
	}

	live := strictlyLive(info)
	status := models.LiveStatus{IsLive: live, Channel: info.Channel}
	if live {
		status.VideoID = videoID
		status.Title = info.Title
	}
	return status, nil
}

// CheckChannelLive probes a channel's /live tab. A channel that exists
// but is offline returns IsLive false with no error; a missing channel
// returns KindSourceNotFound.
func (c *Client) CheckChannelLive(ctx context.Context, channelID string) (models.LiveStatus, error) {
	if channelID == "" {
		return models.LiveStatus{}, models.Errorf(models.KindSourceNotFound, "check_channel_live",
			"empty channel id")
	}

	info, err := c.fetchInfo(ctx, "check_channel_live",
		"https://www.youtube.com/channel/"+channelID+"/live")
	if err != nil {
		if isNotFound(err) {
			return models.LiveStatus{}, models.NewError(models.KindSourceNotFound, "check_channel_live",
				fmt.Errorf("channel %s: %w", channelID, err))
		}
		return models.LiveStatus{}, err
	}

	live := strictlyLive(info)
	status := models.LiveStatus{IsLive: live, Channel: info.Channel}
	if live {
		status.VideoID = info.ID
		status.Title = info.Title
	}
	return status, nil
}

// ResolveStreamURL returns the direct media URL for a live video.
func (c *Client) ResolveStreamURL(ctx context.Context, videoID string, quality models.Quality) (string, error) {
	status, err := c.CheckLive(ctx, videoID)
	if err != nil {
		return "", err
	}
	if !status.IsLive {
		return "", models.Errorf(models.KindNotLive, "resolve_stream_url",
			"video %s is not a live stream", videoID)
	}

	args := append([]string{"-f", quality.FormatSelector(), "-g"}, c.authArgs()...)
	args = append(args, "https://www.youtube.com/watch?v="+videoID)

	out, err := retry.DoValue(ctx, c.retry, func() ([]byte, error) {
		return c.invoke(ctx, "resolve_stream_url", args)
	}, func(attempt int, err error, delay time.Duration) {
		metrics.RecordRetry("resolve_stream_url")
		logging.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Dur("wait", delay).
			Str("video_id", videoID).
			Msg("retrying stream URL resolution")
	})
	if err != nil {
		return "", models.NewError(models.KindStreamUnavailable, "resolve_stream_url", err)
	}

	streamURL := strings.TrimSpace(string(out))
	if streamURL == "" {
		return "", models.Errorf(models.KindStreamUnavailable, "resolve_stream_url",
			"no stream URL returned for %s", videoID)
	}
	// yt-dlp may print separate video and audio URLs; the first line is
	// the muxed or video stream.
	if i := strings.IndexByte(streamURL, '\n'); i >= 0 {
		streamURL = strings.TrimSpace(streamURL[:i])
	}
	return streamURL, nil
}

// strictlyLive applies the conservative liveness rule. A VOD of an ended
// broadcast keeps is_live metadata long enough to fool a naive check.
func strictlyLive(info videoInfo) bool {
	return info.IsLive && info.LiveStatus == "is_live" && !info.WasLive
}

// classifyToolError maps a failed yt-dlp run to an error kind based on
// the run context and the tool's stderr.
func classifyToolError(ctx context.Context, op string, stderr []byte, runErr error) error {
	if ctx.Err() != nil {
		return models.NewError(models.KindTimeout, op, ctx.Err())
	}

	msg := strings.ToLower(string(stderr))
	switch {
	case containsAny(msg, "not found", "unavailable", "does not exist", "removed"):
		return models.NewError(models.KindSourceNotFound, op,
			fmt.Errorf("yt-dlp: %s", firstLine(stderr)))
	case containsAny(msg, "network", "connection", "timed out", "temporary failure", "resolve"):
		return models.NewError(models.KindNetwork, op,
			fmt.Errorf("yt-dlp: %s", firstLine(stderr)))
	case errors.Is(runErr, exec.ErrNotFound):
		return models.NewError(models.KindToolFailure, op,
			fmt.Errorf("yt-dlp not found, install it first: %w", runErr))
	default:
		return models.NewError(models.KindToolFailure, op,
			fmt.Errorf("yt-dlp failed: %s: %w", firstLine(stderr), runErr))
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// firstLine trims stderr to its first non-empty line for error messages.
func firstLine(b []byte) string {
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return "(no output)"
}

// isNotFound reports whether an error chain carries KindSourceNotFound.
func isNotFound(err error) bool {
	return models.KindOf(err) == models.KindSourceNotFound
}
