// yt-live-recorder - YouTube Live Stream Monitor and Recorder
// Copyright 2026 Jack D. (Jack-devnlp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Jack-devnlp/yt-live-recorder

package youtube

import (
	"regexp"

	"github.com/Jack-devnlp/yt-live-recorder/internal/models"
)

// videoIDPatterns match the URL forms yt-dlp accepts for single videos.
// Video ids are always 11 characters of [A-Za-z0-9_-].
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:https?://)?(?:www\.|m\.)?(?:youtube\.com/watch\?.*v=|youtu\.be/|youtube\.com/live/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/shorts/([a-zA-Z0-9_-]{11})`),
}

// ExtractVideoID pulls the 11-character video id out of a YouTube URL.
// Supported forms: watch?v=, youtu.be/, /live/, /shorts/.
func ExtractVideoID(url string) (string, error) {
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(url); m != nil {
			return m[1], nil
		}
	}
	return "", models.Errorf(models.KindSourceNotFound, "extract_video_id",
		"could not extract video ID from URL: %s", url)
}
