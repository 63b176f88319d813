package notify

import "errors"

var (
	// ErrSubscriberFailed wraps an error returned by a subscribed handler.
	ErrSubscriberFailed = errors.New("notify: subscriber failed")

	// ErrSubscriberPanicked is returned when a subscribed handler panics.
	ErrSubscriberPanicked = errors.New("notify: subscriber panicked")

	// ErrNilHandler is raised when subscribing a nil handler.
	ErrNilHandler = errors.New("notify: nil handler")

	// ErrRegistryClosed is returned when subscribing on a closed registry.
	ErrRegistryClosed = errors.New("notify: registry closed")

	// ErrExecutionContextClosed is returned when work is scheduled on a closed execution context.
	ErrExecutionContextClosed = errors.New("notify: execution context closed")
)
