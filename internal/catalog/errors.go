package catalog

import "errors"

var (
	// ErrInvalidSubject is returned when a subject cannot be normalized for its kind.
	ErrInvalidSubject = errors.New("invalid subject")

	// ErrKindMismatch is returned when a catalog file declares a different kind
	// than the one requested.
	ErrKindMismatch = errors.New("catalog kind does not match")

	// ErrUnknownCategory is returned when a category filter matches nothing.
	ErrUnknownCategory = errors.New("unknown category")
)
