package comm

import "errors"

var (
	// ErrChannelClosed is returned by an in-memory channel operation once
	// the peer end has shut down.
	ErrChannelClosed = errors.New("comm: channel is closed")

	// ErrNoSuchRank is returned when an operation names a rank that is not
	// part of the reporting participant's rank group.
	ErrNoSuchRank = errors.New("comm: no such rank")

	// ErrNotRoot is returned when a non-root rank calls a root-only
	// broadcast-send operation, or vice versa.
	ErrNotRoot = errors.New("comm: operation requires the root rank")
)
