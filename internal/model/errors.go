package model

import "errors"

// Catalog construction errors.
// These are the only errors surfaced before a batch starts; everything that
// goes wrong while probing is recorded as an Error outcome instead.
var (
	// ErrEmptyCatalog is returned when a catalog has no endpoints to probe.
	ErrEmptyCatalog = errors.New("catalog has no endpoints")

	// ErrDuplicateEndpoint is returned when two descriptors share a name.
	// perEndpoint is keyed by name, so names must be unique.
	ErrDuplicateEndpoint = errors.New("duplicate endpoint name in catalog")

	// ErrEmptyEndpointName is returned when a descriptor has no name.
	ErrEmptyEndpointName = errors.New("endpoint name must not be empty")

	// ErrInvalidTemplate is returned when a URL template does not contain
	// exactly one substitution slot.
	ErrInvalidTemplate = errors.New("url template must contain exactly one " + Placeholder + " slot")

	// ErrUnknownSubjectKind is returned when a subject kind string is not recognized.
	ErrUnknownSubjectKind = errors.New("unknown subject kind")
)
