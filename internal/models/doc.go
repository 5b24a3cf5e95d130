// yt-live-recorder - YouTube Live Stream Monitor and Recorder
// Copyright 2026 Jack D. (Jack-devnlp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Jack-devnlp/yt-live-recorder

/*
Package models defines the shared data model for yt-live-recorder.

It contains the types that cross package boundaries:

  - LiveStatus: the result of a single liveness poll against a channel
  - SourceStatus: a point-in-time snapshot of one monitored source,
    as returned by the coordinator's status query and the HTTP API
  - Error / ErrorKind: the classified error taxonomy used by the retry
    executor and the monitoring loops

# Error classification

Every failure that crosses a package boundary carries an ErrorKind so that
callers can branch on the kind of failure rather than on concrete error
types. The retry executor retries only kinds enumerated in its config;
the per-source polling loops absorb and record all kinds without ever
terminating.

	_, err := client.CheckChannelLive(ctx, id)
	if models.KindOf(err) == models.KindSourceNotFound {
	    // recorded as the source's last error, polling continues
	}
*/
package models
