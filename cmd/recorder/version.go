// yt-live-recorder - YouTube Live Stream Monitor and Recorder
// Copyright 2026 Jack D. (Jack-devnlp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Jack-devnlp/yt-live-recorder

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("yt-recorder %s (%s)\n", version, commit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
