package engine

import "errors"

var (
	// ErrEmptySubject is returned when Run is called with a blank subject.
	ErrEmptySubject = errors.New("subject must not be empty")

	// ErrNilProber is returned when a Scheduler is created without a prober.
	ErrNilProber = errors.New("prober must not be nil")
)
