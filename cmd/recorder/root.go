// yt-live-recorder - YouTube Live Stream Monitor and Recorder
// Copyright 2026 Jack D. (Jack-devnlp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Jack-devnlp/yt-live-recorder

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Jack-devnlp/yt-live-recorder/internal/logging"
)

var (
	flagVerbose bool
	flagLogFile string
)

var rootCmd = &cobra.Command{
	Use:   "yt-recorder",
	Short: "Record YouTube live streams with yt-dlp",
	Long: `yt-recorder captures YouTube live streams to disk.

Use "record" for a one-off capture of a live URL, or "monitor" to watch
configured channels and record automatically whenever one goes live.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logging.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// initFlagLogging configures zerolog from the global flags. Used by
// commands that do not load a config file.
func initFlagLogging() {
	level := "info"
	if flagVerbose {
		level = "debug"
	}
	logging.Init(logging.Config{
		Level:  level,
		Format: "console",
		File:   flagLogFile,
	})
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "duplicate logs to a size-rotated file")
}
