// yt-live-recorder - YouTube Live Stream Monitor and Recorder
// Copyright 2026 Jack D. (Jack-devnlp)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Jack-devnlp/yt-live-recorder

package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure so that callers can make retry and
// recovery decisions without matching on concrete error types.
type ErrorKind int

const (
	// KindUnknown is the zero value for unclassified failures.
	KindUnknown ErrorKind = iota

	// KindNotLive indicates a video or channel that is not currently live.
	KindNotLive

	// KindSourceNotFound indicates a channel that does not exist or has
	// been removed.
	KindSourceNotFound

	// KindStreamUnavailable indicates a live stream whose media URL could
	// not be resolved.
	KindStreamUnavailable

	// KindAlreadyRecording indicates a start request against a session
	// that already owns a capture process.
	KindAlreadyRecording

	// KindInsufficientDiskSpace indicates a confirmed shortage of free
	// space at the output directory.
	KindInsufficientDiskSpace

	// KindToolFailure indicates a generic failure of the external capture
	// or metadata tool (nonzero exit, unparsable output, missing binary).
	KindToolFailure

	// KindTimeout indicates an external invocation that exceeded its
	// deadline.
	KindTimeout

	// KindNetwork indicates a transient transport-level failure, including
	// a rejected call while the circuit breaker is open.
	KindNetwork
)

// String returns the kind's wire/log representation.
func (k ErrorKind) String() string {
	switch k {
	case KindNotLive:
		return "not_live"
	case KindSourceNotFound:
		return "source_not_found"
	case KindStreamUnavailable:
		return "stream_unavailable"
	case KindAlreadyRecording:
		return "already_recording"
	case KindInsufficientDiskSpace:
		return "insufficient_disk_space"
	case KindToolFailure:
		return "tool_failure"
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Error is a classified error. It wraps an optional cause and records the
// operation that failed for log context.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// NewError constructs a classified error. The cause may be nil.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf constructs a classified error with a formatted message as cause.
func Errorf(kind ErrorKind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports kind equality, so that errors.Is(err, &Error{Kind: k}) and the
// kind sentinels below work across wrapping.
func (e *Error) Is(target error) bool {
	var te *Error
	if errors.As(target, &te) {
		return e.Kind == te.Kind
	}
	return false
}

// KindOf walks the error chain and returns the first classified kind.
// Unclassified (or nil) errors report KindUnknown.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}
