// yt-live-recorder - YouTube Live Stream Monitor and Recorder
// Copyright 2026 Jack D. (Jack-devnlp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Jack-devnlp/yt-live-recorder

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jack-devnlp/yt-live-recorder/internal/models"
)

type stubProvider struct {
	sources []models.SourceStatus
}

func (s *stubProvider) Status() []models.SourceStatus {
	return s.sources
}

func TestHealthz(t *testing.T) {
	handler := NewRouter(&stubProvider{}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStatusEndpoint(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	provider := &stubProvider{sources: []models.SourceStatus{
		{
			Name:        "lofi",
			ChannelID:   "UCSJ4gkVC6NrvII8umztf0Ow",
			IsLive:      true,
			IsRecording: true,
			VideoID:     "abc123def45",
			Title:       "24/7 beats",
			LastCheck:   now,
			OutputFile:  "/recordings/lofi_20260831_120000.mp4",
		},
		{
			Name:      "news",
			ChannelID: "UC16niRr50-MSBwiO3YDb3RA",
			LastCheck: now,
			LastError: "channel not found",
		},
	}}

	handler := NewRouter(provider).Handler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Sources, 2)
	assert.Equal(t, "lofi", resp.Sources[0].Name)
	assert.True(t, resp.Sources[0].IsRecording)
	assert.Equal(t, "channel not found", resp.Sources[1].LastError)
	assert.False(t, resp.Time.IsZero())
}

func TestStatusEndpointEmpty(t *testing.T) {
	handler := NewRouter(&stubProvider{}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sources":[]`)
}

func TestMetricsEndpoint(t *testing.T) {
	handler := NewRouter(&stubProvider{}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestUnknownRoute(t *testing.T) {
	handler := NewRouter(&stubProvider{}).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewServerAddr(t *testing.T) {
	srv := NewServer("127.0.0.1", 8844, &stubProvider{})
	assert.Equal(t, "127.0.0.1:8844", srv.Addr)
	assert.NotNil(t, srv.Handler)
}
