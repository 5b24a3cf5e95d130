// yt-live-recorder - YouTube Live Stream Monitor and Recorder
// Copyright 2026 Jack D. (Jack-devnlp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Jack-devnlp/yt-live-recorder

// Package api serves the local status endpoints for monitor mode: a
// liveness probe, the per-source status snapshot, and Prometheus
// metrics. The server binds to loopback by default and carries no
// authentication.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Jack-devnlp/yt-live-recorder/internal/logging"
	"github.com/Jack-devnlp/yt-live-recorder/internal/models"
)

// StatusProvider supplies the per-source snapshot, implemented by the
// monitor coordinator.
type StatusProvider interface {
	Status() []models.SourceStatus
}

// Router builds the status API handler.
type Router struct {
	provider StatusProvider
}

// NewRouter creates a Router backed by the given status provider.
func NewRouter(provider StatusProvider) *Router {
	return &Router{provider: provider}
}

// Handler assembles the chi route tree.
func (ro *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	// Generous limit; the API is local but a runaway dashboard poller
	// should not contend with the capture loops.
	r.Use(httprate.Limit(120, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))

	r.Get("/healthz", ro.handleHealth)
	r.Get("/api/v1/status", ro.handleStatus)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// statusResponse is the JSON envelope for /api/v1/status.
type statusResponse struct {
	Sources []models.SourceStatus `json:"sources"`
	Time    time.Time             `json:"time"`
}

func (ro *Router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (ro *Router) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := statusResponse{
		Sources: ro.provider.Status(),
		Time:    time.Now().UTC(),
	}
	if resp.Sources == nil {
		resp.Sources = []models.SourceStatus{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("failed to encode status response")
	}
}

// NewServer builds the http.Server for the status API.
func NewServer(host string, port int, provider StatusProvider) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		Handler:           NewRouter(provider).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
