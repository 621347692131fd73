package worker

import "errors"

// Sentinel kinds for worker errors.
var (
	ErrStopped = errors.New("saver stopped")
	ErrBusy    = errors.New("save backlog full")
)
