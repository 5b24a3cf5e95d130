// yt-live-recorder - YouTube Live Stream Monitor and Recorder
// Copyright 2026 Jack D. (Jack-devnlp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Jack-devnlp/yt-live-recorder

// Package main is the entry point for the yt-recorder command line tool.
//
// yt-recorder captures YouTube live streams to disk using yt-dlp. It runs in
// two modes:
//
//   - record: single-shot capture of one live URL, until the stream ends,
//     a --duration elapses, or the process receives SIGINT/SIGTERM.
//   - monitor: long-running supervisor that polls configured channels for
//     liveness and records automatically whenever a source goes live.
//
// # Application Architecture
//
// Monitor mode initializes components in the following order:
//
//  1. Configuration: layered load from defaults, config.yaml and YTREC_*
//     environment variables (Koanf v2)
//  2. Logging: zerolog, optionally duplicated to a size-rotated file
//  3. YouTube client: yt-dlp metadata calls behind retry and a circuit breaker
//  4. Coordinator: one poll loop per configured source
//  5. Status API (optional): chi HTTP server with /healthz, /api/v1/status
//     and Prometheus /metrics
//  6. Supervision tree: suture root with monitor and api layers
//
// # Configuration
//
// Monitor mode reads config.yaml (or the path given with --config / the
// YTREC_CONFIG variable) and YTREC_* environment variables; environment
// wins over the file. Single-shot record mode needs no config file and is
// driven entirely by flags.
//
// # Signal Handling
//
// Both modes shut down gracefully on SIGINT and SIGTERM: the capture
// process receives an interrupt first, then a kill after a timeout, and
// partial recordings are finalized to their destination paths.
//
// # Example Usage
//
// Record a live stream until interrupted:
//
//	yt-recorder record https://www.youtube.com/watch?v=jfKfPfyJRdk
//
// Record 30 minutes of a stream at 720p:
//
//	yt-recorder record -q 720p -t 30m -o /recordings https://youtu.be/jfKfPfyJRdk
//
// Monitor channels from a config file:
//
//	yt-recorder monitor -c /etc/yt-live-recorder/config.yaml
package main

func main() {
	Execute()
}
