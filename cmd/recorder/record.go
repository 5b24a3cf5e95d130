// yt-live-recorder - YouTube Live Stream Monitor and Recorder
// Copyright 2026 Jack D. (Jack-devnlp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Jack-devnlp/yt-live-recorder

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Jack-devnlp/yt-live-recorder/internal/logging"
	"github.com/Jack-devnlp/yt-live-recorder/internal/models"
	"github.com/Jack-devnlp/yt-live-recorder/internal/recorder"
	"github.com/Jack-devnlp/yt-live-recorder/internal/youtube"
)

var (
	recordOutput      string
	recordQuality     string
	recordDuration    time.Duration
	recordCookiesBrwr string
	recordCookiesFile string
)

var recordCmd = &cobra.Command{
	Use:   "record <url>",
	Short: "Record a single live stream",
	Long: `Record one YouTube live stream to disk.

The URL must point to a currently live broadcast. Recording runs until the
stream ends, --duration elapses, or the process receives SIGINT/SIGTERM.
The saved file path is printed on stdout when capture finishes.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initFlagLogging()
		runRecord(args[0])
	},
}

func runRecord(url string) {
	quality := models.Quality(recordQuality)
	if !quality.Valid() {
		logging.Fatal().Str("quality", recordQuality).Msg("unsupported quality")
	}

	videoID, err := youtube.ExtractVideoID(url)
	if err != nil {
		logging.Fatal().Err(err).Str("url", url).Msg("could not extract video id")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := youtube.NewClient(youtube.Options{
		CookiesFromBrowser: recordCookiesBrwr,
		CookiesFile:        recordCookiesFile,
	})

	status, err := client.CheckLive(ctx, videoID)
	if err != nil {
		logging.Fatal().Err(err).Str("video_id", videoID).Msg("liveness check failed")
	}
	if !status.IsLive {
		logging.Fatal().Str("video_id", videoID).Msg("video is not currently live")
	}

	mediaURL, err := client.ResolveStreamURL(ctx, videoID, quality)
	if err != nil {
		logging.Fatal().Err(err).Str("video_id", videoID).Msg("could not resolve stream URL")
	}

	name := status.Channel
	if name == "" {
		name = videoID
	}

	sess := recorder.NewSession(recorder.Config{
		OutputDir:          recordOutput,
		Quality:            quality,
		Format:             "mp4",
		CookiesFromBrowser: recordCookiesBrwr,
		CookiesFile:        recordCookiesFile,
	})

	var saved string
	if recordDuration > 0 {
		saved, err = sess.RecordForDuration(ctx, mediaURL, name, recordDuration)
		if err != nil {
			logging.Fatal().Err(err).Msg("recording failed")
		}
	} else {
		if _, err := sess.Start(mediaURL, name); err != nil {
			logging.Fatal().Err(err).Msg("recording failed to start")
		}
		logging.Info().Str("source", name).Msg("recording, press Ctrl+C to stop")
		waitForCapture(ctx, sess)
		saved, err = sess.Stop()
		if err != nil {
			logging.Fatal().Err(err).Msg("recording failed")
		}
	}

	if saved == "" {
		logging.Warn().Msg("no data captured")
		return
	}
	fmt.Println(saved)
}

// waitForCapture blocks until the capture process exits or ctx ends.
func waitForCapture(ctx context.Context, sess *recorder.Session) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for sess.IsRecording() {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func init() {
	recordCmd.Flags().StringVarP(&recordOutput, "output", "o", "recordings", "output directory")
	recordCmd.Flags().StringVarP(&recordQuality, "quality", "q", "best", "stream quality (best, 1080p, 720p, 480p, 360p)")
	recordCmd.Flags().DurationVarP(&recordDuration, "duration", "t", 0, "stop after this duration (0 = until stream ends)")
	recordCmd.Flags().StringVar(&recordCookiesBrwr, "cookies-from-browser", "", "load cookies from a browser profile (e.g. firefox)")
	recordCmd.Flags().StringVar(&recordCookiesFile, "cookies", "", "load cookies from a Netscape cookie file")
	rootCmd.AddCommand(recordCmd)
}
