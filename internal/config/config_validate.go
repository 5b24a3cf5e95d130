// yt-live-recorder - YouTube Live Stream Monitor and Recorder
// Copyright 2026 Jack D. (Jack-devnlp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Jack-devnlp/yt-live-recorder

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the structural tags first, then the cross-field rules
// the tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	validators := []func() error{
		c.validateSources,
		c.validateMonitor,
		c.validateCapture,
		c.validateRetry,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

// validateSources checks source count, name/id uniqueness and channel id shape.
func (c *Config) validateSources() error {
	if len(c.Sources) > MaxSources {
		return fmt.Errorf("at most %d sources are supported, got %d", MaxSources, len(c.Sources))
	}

	names := make(map[string]struct{}, len(c.Sources))
	ids := make(map[string]struct{}, len(c.Sources))
	for i, s := range c.Sources {
		if _, dup := names[s.Name]; dup {
			return fmt.Errorf("sources[%d]: duplicate source name %q", i, s.Name)
		}
		names[s.Name] = struct{}{}

		if !strings.HasPrefix(s.ChannelID, "UC") {
			return fmt.Errorf("sources[%d] (%s): channel_id must start with \"UC\", got %q", i, s.Name, s.ChannelID)
		}
		if _, dup := ids[s.ChannelID]; dup {
			return fmt.Errorf("sources[%d]: duplicate channel_id %q", i, s.ChannelID)
		}
		ids[s.ChannelID] = struct{}{}
	}
	return nil
}

// validateMonitor enforces the poll interval floor. Anything under 10s
// hammers YouTube and gets the client rate limited.
func (c *Config) validateMonitor() error {
	if c.Monitor.Interval < 10*time.Second {
		return fmt.Errorf("monitor.interval must be at least 10s, got %s", c.Monitor.Interval)
	}
	return nil
}

func (c *Config) validateCapture() error {
	if c.Capture.StopTimeout <= 0 {
		return fmt.Errorf("capture.stop_timeout must be positive, got %s", c.Capture.StopTimeout)
	}
	if c.Capture.KillTimeout <= 0 {
		return fmt.Errorf("capture.kill_timeout must be positive, got %s", c.Capture.KillTimeout)
	}
	if c.Capture.CookiesFile != "" {
		if _, err := os.Stat(c.Capture.CookiesFile); err != nil {
			return fmt.Errorf("capture.cookies_file %s: %w", c.Capture.CookiesFile, err)
		}
	}
	return nil
}

func (c *Config) validateRetry() error {
	if c.Retry.BaseDelay <= 0 {
		return fmt.Errorf("retry.base_delay must be positive, got %s", c.Retry.BaseDelay)
	}
	if c.Retry.MaxDelay < c.Retry.BaseDelay {
		return fmt.Errorf("retry.max_delay (%s) must not be below retry.base_delay (%s)",
			c.Retry.MaxDelay, c.Retry.BaseDelay)
	}
	if c.Retry.ExponentialBase < 1 {
		return fmt.Errorf("retry.exponential_base must be >= 1, got %g", c.Retry.ExponentialBase)
	}
	return nil
}
