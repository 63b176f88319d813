package container

import "errors"

var (
	// ErrNotRegistered is returned when a required capability has no registration.
	ErrNotRegistered = errors.New("container: capability not registered")

	// ErrInvalidFactory is raised when registering a nil key or factory.
	ErrInvalidFactory = errors.New("container: invalid factory")

	// ErrTypeMismatch is returned when a resolved instance does not implement the requested type.
	ErrTypeMismatch = errors.New("container: resolved instance has unexpected type")
)
