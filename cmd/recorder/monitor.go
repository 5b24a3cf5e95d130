// yt-live-recorder - YouTube Live Stream Monitor and Recorder
// Copyright 2026 Jack D. (Jack-devnlp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Jack-devnlp/yt-live-recorder

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Jack-devnlp/yt-live-recorder/internal/api"
	"github.com/Jack-devnlp/yt-live-recorder/internal/config"
	"github.com/Jack-devnlp/yt-live-recorder/internal/logging"
	"github.com/Jack-devnlp/yt-live-recorder/internal/monitor"
	"github.com/Jack-devnlp/yt-live-recorder/internal/recorder"
	"github.com/Jack-devnlp/yt-live-recorder/internal/supervisor"
	"github.com/Jack-devnlp/yt-live-recorder/internal/youtube"
)

var (
	monitorConfigPath string
	monitorInterval   time.Duration
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch configured channels and record when they go live",
	Long: `Poll every configured channel for liveness and record automatically.

Sources come from the config file (or YTREC_* environment variables). One
source's failures never stop the others; each poll loop runs under its own
supervisor and restarts on crash.`,
	Run: func(cmd *cobra.Command, args []string) {
		runMonitor()
	},
}

func runMonitor() {
	cfg, err := config.Load(monitorConfigPath)
	if err != nil {
		// Config not yet available, default logger.
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	if flagVerbose {
		cfg.Logging.Level = "debug"
	}
	if flagLogFile != "" {
		cfg.Logging.File = flagLogFile
	}
	if monitorInterval > 0 {
		cfg.Monitor.Interval = monitorInterval
	}
	logging.Init(cfg.LoggingSettings())

	if len(cfg.Sources) == 0 {
		logging.Fatal().Msg("no sources configured, nothing to monitor")
	}

	logging.Info().
		Int("sources", len(cfg.Sources)).
		Dur("interval", cfg.Monitor.Interval).
		Str("output_dir", cfg.Output.Dir).
		Bool("api_enabled", cfg.Monitor.APIEnabled).
		Msg("configuration loaded")

	client := youtube.NewClient(youtube.Options{
		Binary:             cfg.Capture.Binary,
		CookiesFromBrowser: cfg.Capture.CookiesFromBrowser,
		CookiesFile:        cfg.Capture.CookiesFile,
		Retry:              cfg.NetworkRetry(),
	})

	bySource := make(map[string]config.SourceConfig, len(cfg.Sources))
	for _, src := range cfg.Sources {
		bySource[src.Name] = src
	}
	factory := func(source string) monitor.SessionRecorder {
		src := bySource[source]
		return recorder.NewSession(recorder.Config{
			OutputDir:          cfg.Output.Dir,
			Quality:            cfg.SourceQuality(src),
			Format:             cfg.Output.Format,
			CaptureBinary:      cfg.Capture.Binary,
			CookiesFromBrowser: cfg.Capture.CookiesFromBrowser,
			CookiesFile:        cfg.Capture.CookiesFile,
			MinFreeBytes:       uint64(cfg.Output.MinFreeMB) << 20,
			StopTimeout:        cfg.Capture.StopTimeout,
			KillTimeout:        cfg.Capture.KillTimeout,
		})
	}

	coord := monitor.NewCoordinator(cfg, client, client, factory)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	treeCfg := supervisor.DefaultTreeConfig()
	tree, err := supervisor.NewTree(logging.NewSlogLogger(), treeCfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create supervisor tree")
	}
	for _, svc := range coord.Services() {
		tree.AddMonitorService(svc)
	}

	if cfg.Monitor.APIEnabled {
		server := api.NewServer(cfg.Monitor.APIHost, cfg.Monitor.APIPort, coord)
		tree.AddAPIService(supervisor.NewHTTPServerService(server, treeCfg.ShutdownTimeout))
		logging.Info().Str("addr", server.Addr).Msg("status API enabled")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor shutdown error")
		}
	}

	// Poll loops have returned; stop any recording still in flight.
	coord.Stop()

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("service failed to stop within timeout")
	}

	logging.Info().Msg("monitor stopped gracefully")
}

func init() {
	monitorCmd.Flags().StringVarP(&monitorConfigPath, "config", "c", "", "config file path (default: config.yaml, /etc/yt-live-recorder/config.yaml)")
	monitorCmd.Flags().DurationVar(&monitorInterval, "interval", 0, "override the poll interval from the config file")
	rootCmd.AddCommand(monitorCmd)
}
