package mediator

import "errors"

var (
	// ErrHandlerNotFound is returned when no handler is registered for a request or stream type.
	ErrHandlerNotFound = errors.New("mediator: handler not found")

	// ErrInvalidBehaviorShape is returned when a behavior type implements neither Behavior nor StreamBehavior.
	ErrInvalidBehaviorShape = errors.New("mediator: invalid behavior shape")

	// ErrHandlerFailed wraps a notification handler failure in a Publish fan-out.
	ErrHandlerFailed = errors.New("mediator: handler failed")

	// ErrHandlerPanicked is returned when a handler or behavior panics and panic recovery is enabled.
	ErrHandlerPanicked = errors.New("mediator: handler panicked")

	// ErrNilMessage is returned when dispatching a nil message.
	ErrNilMessage = errors.New("mediator: nil message")

	// ErrUnexpectedResult is returned when a behavior replaces a result with a value of the wrong type.
	ErrUnexpectedResult = errors.New("mediator: unexpected result type")
)
