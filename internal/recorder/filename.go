// yt-live-recorder - YouTube Live Stream Monitor and Recorder
// Copyright 2026 Jack D. (Jack-devnlp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Jack-devnlp/yt-live-recorder

package recorder

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// filesystemUnsafe are characters stripped from source names. Covers both
// Windows-reserved characters and path separators.
const filesystemUnsafe = `<>:"/\|?*`

// maxNameLength caps the sanitized source name component of a filename,
// counted in runes so truncation never splits a multi-byte character.
const maxNameLength = 100

// SanitizeName makes a source name safe for use in a filename: unsafe
// characters become underscores, surrounding spaces and dots are trimmed,
// long names are truncated. An empty result falls back to "unknown".
func SanitizeName(name string) string {
	sanitized := strings.Map(func(r rune) rune {
		if strings.ContainsRune(filesystemUnsafe, r) {
			return '_'
		}
		return r
	}, name)

	sanitized = strings.Trim(sanitized, " .")
	if utf8.RuneCountInString(sanitized) > maxNameLength {
		runes := []rune(sanitized)
		sanitized = string(runes[:maxNameLength])
	}
	if sanitized == "" {
		return "unknown"
	}
	return sanitized
}

// Filename builds a recording filename: {name}_{YYYYMMDD}_{HHMMSS}.{ext}.
func Filename(sourceName string, t time.Time, ext string) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeName(sourceName), t.Format("20060102_150405"), ext)
}

// formatDuration renders a duration as H:MM:SS or M:SS for log lines.
func formatDuration(d time.Duration) string {
	secs := int(d.Seconds())
	hours := secs / 3600
	minutes := (secs % 3600) / 60
	secs %= 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}
