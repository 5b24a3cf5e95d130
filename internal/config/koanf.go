// yt-live-recorder - YouTube Live Stream Monitor and Recorder
// Copyright 2026 Jack D. (Jack-devnlp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Jack-devnlp/yt-live-recorder

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/yt-live-recorder/config.yaml",
	"/etc/yt-live-recorder/config.yml",
}

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "YTREC_CONFIG"

// envPrefix marks the environment variables consumed by the env layer.
const envPrefix = "YTREC_"

// Load builds the configuration from three layers, lowest priority first:
//
//  1. Defaults: built-in values from defaultConfig
//  2. Config file: optional YAML file (explicit path or search paths)
//  3. Environment: YTREC_* variables override any setting
//
// An empty path triggers the search in DefaultConfigPaths; a non-empty path
// must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc maps a YTREC_* environment variable to a koanf path.
//
// Examples:
//   - YTREC_OUTPUT_DIR -> output.dir
//   - YTREC_MONITOR_INTERVAL -> monitor.interval
//   - YTREC_CAPTURE_COOKIES_FROM_BROWSER -> capture.cookies_from_browser
//   - YTREC_LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))

	envMappings := map[string]string{
		// Output
		"output_dir":         "output.dir",
		"output_quality":     "output.quality",
		"output_format":      "output.format",
		"output_min_free_mb": "output.min_free_mb",

		// Monitor
		"monitor_interval": "monitor.interval",
		"api_enabled":      "monitor.api_enabled",
		"api_host":         "monitor.api_host",
		"api_port":         "monitor.api_port",

		// Capture
		"capture_binary":               "capture.binary",
		"capture_cookies_from_browser": "capture.cookies_from_browser",
		"capture_cookies_file":         "capture.cookies_file",
		"capture_stop_timeout":         "capture.stop_timeout",
		"capture_kill_timeout":         "capture.kill_timeout",

		// Retry
		"retry_max_attempts":     "retry.max_attempts",
		"retry_base_delay":       "retry.base_delay",
		"retry_max_delay":        "retry.max_delay",
		"retry_exponential_base": "retry.exponential_base",
		"retry_jitter":           "retry.jitter",

		// Logging
		"log_level":       "logging.level",
		"log_format":      "logging.format",
		"log_caller":      "logging.caller",
		"log_file":        "logging.file",
		"log_max_size_mb": "logging.max_size_mb",
		"log_max_backups": "logging.max_backups",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unknown keys pass through as dotted paths so future additions work
	// without a mapping entry.
	return strings.ReplaceAll(key, "_", ".")
}
