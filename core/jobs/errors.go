package jobs

import "errors"

var (
	// ErrEmptyType is returned when a job is created without a type.
	ErrEmptyType = errors.New("job type must not be empty")
	// ErrNoTargets is returned when a job is created with no target vehicles.
	ErrNoTargets = errors.New("job target set must not be empty")
	// ErrUnknownJob marks a response for a job this registry never created.
	ErrUnknownJob = errors.New("unknown job")
)
