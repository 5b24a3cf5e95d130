// yt-live-recorder - YouTube Live Stream Monitor and Recorder
// Copyright 2026 Jack D. (Jack-devnlp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Jack-devnlp/yt-live-recorder

// Package metrics exposes Prometheus instrumentation for the monitor:
// liveness polls, recording session lifecycle, reconnect activity, and
// circuit breaker state around yt-dlp metadata calls.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Jack-devnlp/yt-live-recorder/internal/models"
)

var (
	// Poll Metrics
	PollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recorder_polls_total",
			Help: "Total number of liveness polls per source",
		},
		[]string{"source"},
	)

	PollErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recorder_poll_errors_total",
			Help: "Total number of failed liveness polls per source and error kind",
		},
		[]string{"source", "kind"},
	)

	PollDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recorder_poll_duration_seconds",
			Help:    "Duration of liveness polls in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"source"},
	)

	// Recording Metrics
	RecordingsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recorder_recordings_active",
			Help: "Current number of active recording sessions",
		},
	)

	RecordingsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recorder_recordings_started_total",
			Help: "Total number of recording sessions started per source",
		},
		[]string{"source"},
	)

	RecordingsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recorder_recordings_failed_total",
			Help: "Total number of recording sessions that failed to start per source and error kind",
		},
		[]string{"source", "kind"},
	)

	PartsSaved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recorder_parts_saved_total",
			Help: "Total number of recording parts finalized on disk per source",
		},
		[]string{"source"},
	)

	Reconnects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recorder_reconnects_total",
			Help: "Total number of reconnect attempts per source",
		},
		[]string{"source"},
	)

	CaptureStopDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recorder_capture_stop_seconds",
			Help:    "Time taken to stop a capture process in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 7.5, 10},
		},
	)

	// Retry Metrics
	RetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recorder_retry_attempts_total",
			Help: "Total number of retried operations per operation name",
		},
		[]string{"operation"},
	)

	// Circuit Breaker Metrics (yt-dlp metadata calls)
	CircuitBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recorder_circuit_breaker_state",
			Help: "Circuit breaker state for yt-dlp metadata calls (0=closed, 1=half-open, 2=open)",
		},
	)

	CircuitBreakerTrips = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recorder_circuit_breaker_trips_total",
			Help: "Total number of circuit breaker open transitions",
		},
	)

	// Disk Metrics
	DiskFreeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recorder_output_disk_free_bytes",
			Help: "Free bytes on the output directory filesystem at last check",
		},
		[]string{"path"},
	)
)

// RecordPoll records a completed liveness poll.
func RecordPoll(source string, duration time.Duration, err error) {
	PollsTotal.WithLabelValues(source).Inc()
	PollDuration.WithLabelValues(source).Observe(duration.Seconds())
	if err != nil {
		PollErrors.WithLabelValues(source, errorKindLabel(err)).Inc()
	}
}

// RecordRecordingStart records a session start attempt.
func RecordRecordingStart(source string, err error) {
	if err != nil {
		RecordingsFailed.WithLabelValues(source, errorKindLabel(err)).Inc()
		return
	}
	RecordingsStarted.WithLabelValues(source).Inc()
	RecordingsActive.Inc()
}

// RecordRecordingStop records a session stop and the time it took.
func RecordRecordingStop(source string, stopDuration time.Duration, partSaved bool) {
	RecordingsActive.Dec()
	CaptureStopDuration.Observe(stopDuration.Seconds())
	if partSaved {
		PartsSaved.WithLabelValues(source).Inc()
	}
}

// RecordReconnect records a reconnect attempt for a source.
func RecordReconnect(source string) {
	Reconnects.WithLabelValues(source).Inc()
}

// RecordRetry records a retried operation.
func RecordRetry(operation string) {
	RetryAttempts.WithLabelValues(operation).Inc()
}

// RecordBreakerStateChange records a circuit breaker state transition.
// State values follow gobreaker: 0=closed, 1=half-open, 2=open.
func RecordBreakerStateChange(state int) {
	CircuitBreakerState.Set(float64(state))
	if state == 2 {
		CircuitBreakerTrips.Inc()
	}
}

// RecordDiskFree records free space observed on the output filesystem.
func RecordDiskFree(path string, freeBytes uint64) {
	DiskFreeBytes.WithLabelValues(path).Set(float64(freeBytes))
}

// errorKindLabel keeps label cardinality bounded by the error taxonomy.
func errorKindLabel(err error) string {
	return models.KindOf(err).String()
}
