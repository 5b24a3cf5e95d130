// yt-live-recorder - YouTube Live Stream Monitor and Recorder
// Copyright 2026 Jack D. (Jack-devnlp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Jack-devnlp/yt-live-recorder

package models

import "time"

// LiveStatus is the result of a single liveness poll. It is produced by the
// YouTube metadata collaborator and consumed exactly once per poll cycle.
type LiveStatus struct {
	// IsLive reports whether the channel or video is currently streaming.
	IsLive bool `json:"is_live"`

	// VideoID is the identifier of the active broadcast, set only when live.
	VideoID string `json:"video_id,omitempty"`

	// Title is the broadcast title, set only when live.
	Title string `json:"title,omitempty"`

	// Channel is the display name reported by the platform.
	Channel string `json:"channel,omitempty"`
}

// Quality enumerates the supported stream quality selectors.
type Quality string

const (
	QualityBest  Quality = "best"
	Quality1080p Quality = "1080p"
	Quality720p  Quality = "720p"
	Quality480p  Quality = "480p"
	Quality360p  Quality = "360p"
)

// Valid reports whether q is one of the supported selectors.
func (q Quality) Valid() bool {
	switch q {
	case QualityBest, Quality1080p, Quality720p, Quality480p, Quality360p:
		return true
	}
	return false
}

// FormatSelector returns the yt-dlp format selector for the quality.
func (q Quality) FormatSelector() string {
	switch q {
	case Quality1080p:
		return "best[height<=1080]"
	case Quality720p:
		return "best[height<=720]"
	case Quality480p:
		return "best[height<=480]"
	case Quality360p:
		return "best[height<=360]"
	default:
		return "best"
	}
}

// SourceStatus is a point-in-time snapshot of one monitored source. It is
// produced under the coordinator lock and safe to retain after return.
type SourceStatus struct {
	Name           string    `json:"name"`
	ChannelID      string    `json:"channel_id"`
	IsLive         bool      `json:"is_live"`
	IsRecording    bool      `json:"is_recording"`
	VideoID        string    `json:"video_id,omitempty"`
	Title          string    `json:"title,omitempty"`
	LastCheck      time.Time `json:"last_check"`
	LastError      string    `json:"last_error,omitempty"`
	RecordingStart time.Time `json:"recording_start"`
	OutputFile     string    `json:"output_file,omitempty"`
}
