// yt-live-recorder - YouTube Live Stream Monitor and Recorder
// Copyright 2026 Jack D. (Jack-devnlp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Jack-devnlp/yt-live-recorder

package recorder

import (
	"github.com/shirou/gopsutil/v4/disk"

	"github.com/Jack-devnlp/yt-live-recorder/internal/logging"
	"github.com/Jack-devnlp/yt-live-recorder/internal/metrics"
	"github.com/Jack-devnlp/yt-live-recorder/internal/models"
)

// DefaultMinFreeBytes is the free-space floor when none is configured.
const DefaultMinFreeBytes = 500 << 20 // 500MB

// diskUsageFunc probes filesystem usage. Tests override it.
type diskUsageFunc func(path string) (*disk.UsageStat, error)

// checkDiskSpace verifies the output filesystem has room for a capture.
// A failed probe is logged and treated as OK; refusing to record because
// statfs glitched would lose footage over nothing.
func checkDiskSpace(usage diskUsageFunc, path string, minFreeBytes uint64) error {
	stat, err := usage(path)
	if err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("could not check disk space, assuming OK")
		return nil
	}

	metrics.RecordDiskFree(path, stat.Free)
	if stat.Free < minFreeBytes {
		return models.Errorf(models.KindInsufficientDiskSpace, "check_disk_space",
			"insufficient disk space on %s: %dMB available, %dMB required",
			path, stat.Free>>20, minFreeBytes>>20)
	}
	return nil
}
