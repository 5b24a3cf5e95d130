// yt-live-recorder - YouTube Live Stream Monitor and Recorder
// Copyright 2026 Jack D. (Jack-devnlp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Jack-devnlp/yt-live-recorder

// Package config loads and validates recorder configuration from three
// layers: built-in defaults, an optional YAML file, and YTREC_* environment
// variables. Precedence is ENV > file > defaults.
package config

import (
	"time"

	"github.com/Jack-devnlp/yt-live-recorder/internal/logging"
	"github.com/Jack-devnlp/yt-live-recorder/internal/models"
	"github.com/Jack-devnlp/yt-live-recorder/internal/retry"
)

// MaxSources bounds the number of monitored channels. Each source runs its
// own poll loop and potentially a capture process, so the ceiling is low.
const MaxSources = 5

// Config is the root configuration for monitor mode.
type Config struct {
	Sources []SourceConfig `koanf:"sources" validate:"omitempty,max=5,dive"`
	Output  OutputConfig   `koanf:"output"`
	Monitor MonitorConfig  `koanf:"monitor"`
	Capture CaptureConfig  `koanf:"capture"`
	Retry   RetryConfig    `koanf:"retry"`
	Logging LoggingConfig  `koanf:"logging"`
}

// SourceConfig identifies one monitored YouTube channel.
type SourceConfig struct {
	// Name labels the source in logs, metrics and output filenames.
	Name string `koanf:"name" validate:"required,min=1,max=100"`

	// ChannelID is the YouTube channel id (UC-prefixed, 24 chars).
	ChannelID string `koanf:"channel_id" validate:"required"`

	// Quality overrides Output.Quality for this source when set.
	Quality string `koanf:"quality" validate:"omitempty,oneof=best 1080p 720p 480p 360p"`
}

// OutputConfig controls where and how recordings land on disk.
type OutputConfig struct {
	Dir     string `koanf:"dir" validate:"required"`
	Quality string `koanf:"quality" validate:"required,oneof=best 1080p 720p 480p 360p"`
	Format  string `koanf:"format" validate:"required,alphanum,max=8"`

	// MinFreeMB is the free-space floor checked before each capture start.
	MinFreeMB int64 `koanf:"min_free_mb" validate:"min=0"`
}

// MonitorConfig controls the polling loop and the status API.
type MonitorConfig struct {
	Interval   time.Duration `koanf:"interval"`
	APIEnabled bool          `koanf:"api_enabled"`
	APIHost    string        `koanf:"api_host"`
	APIPort    int           `koanf:"api_port" validate:"min=1,max=65535"`
}

// CaptureConfig controls the yt-dlp capture subprocess.
type CaptureConfig struct {
	// Binary is the yt-dlp executable path or name.
	Binary string `koanf:"binary" validate:"required"`

	// CookiesFromBrowser passes --cookies-from-browser (e.g. "firefox").
	CookiesFromBrowser string `koanf:"cookies_from_browser"`

	// CookiesFile passes --cookies with a Netscape cookie jar.
	CookiesFile string `koanf:"cookies_file"`

	// StopTimeout is how long to wait after SIGTERM before SIGKILL.
	StopTimeout time.Duration `koanf:"stop_timeout"`

	// KillTimeout is how long to wait after SIGKILL before giving up.
	KillTimeout time.Duration `koanf:"kill_timeout"`
}

// RetryConfig tunes the shared backoff policy for network operations.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts" validate:"min=1,max=20"`
	BaseDelay       time.Duration `koanf:"base_delay"`
	MaxDelay        time.Duration `koanf:"max_delay"`
	ExponentialBase float64       `koanf:"exponential_base"`
	Jitter          bool          `koanf:"jitter"`
}

// LoggingConfig mirrors logging.Config for the koanf layer.
type LoggingConfig struct {
	Level      string `koanf:"level" validate:"omitempty,oneof=trace debug info warn warning error disabled"`
	Format     string `koanf:"format" validate:"omitempty,oneof=console json"`
	Caller     bool   `koanf:"caller"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb" validate:"min=0"`
	MaxBackups int    `koanf:"max_backups" validate:"min=0"`
}

// defaultConfig returns the built-in defaults, applied before file and env
// layers.
func defaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Dir:       "recordings",
			Quality:   string(models.QualityBest),
			Format:    "mp4",
			MinFreeMB: 500,
		},
		Monitor: MonitorConfig{
			Interval:   60 * time.Second,
			APIEnabled: false,
			APIHost:    "127.0.0.1",
			APIPort:    8844,
		},
		Capture: CaptureConfig{
			Binary:      "yt-dlp",
			StopTimeout: 5 * time.Second,
			KillTimeout: 2 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts:     5,
			BaseDelay:       time.Second,
			MaxDelay:        60 * time.Second,
			ExponentialBase: 2.0,
			Jitter:          true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  50,
			MaxBackups: 3,
		},
	}
}

// SourceQuality resolves the effective quality for a source.
func (c *Config) SourceQuality(s SourceConfig) models.Quality {
	if s.Quality != "" {
		return models.Quality(s.Quality)
	}
	return models.Quality(c.Output.Quality)
}

// NetworkRetry builds the retry policy for liveness polls from config.
func (c *Config) NetworkRetry() retry.Config {
	return retry.Config{
		MaxAttempts:     c.Retry.MaxAttempts,
		BaseDelay:       c.Retry.BaseDelay,
		MaxDelay:        c.Retry.MaxDelay,
		ExponentialBase: c.Retry.ExponentialBase,
		Jitter:          c.Retry.Jitter,
		Retryable:       []models.ErrorKind{models.KindNetwork, models.KindTimeout},
	}
}

// LoggingSettings converts the koanf layer into logging.Config.
func (c *Config) LoggingSettings() logging.Config {
	return logging.Config{
		Level:      c.Logging.Level,
		Format:     c.Logging.Format,
		Caller:     c.Logging.Caller,
		File:       c.Logging.File,
		MaxSizeMB:  c.Logging.MaxSizeMB,
		MaxBackups: c.Logging.MaxBackups,
	}
}
