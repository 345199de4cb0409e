package config

import "errors"

// Configuration validation errors returned by Config.Validate and File.Validate.
var (
	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidTimeout is returned when the per-probe timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDeadline is returned when the batch deadline is negative.
	// Use 0 to disable the deadline.
	ErrInvalidDeadline = errors.New("invalid deadline: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown are set.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConflictingProxy is returned when both --proxy and --tor are set.
	ErrConflictingProxy = errors.New("conflicting proxy settings: --proxy and --tor cannot be used together")

	// ErrInvalidVariationLimit is returned when the variation limit is negative.
	ErrInvalidVariationLimit = errors.New("invalid variation limit: must be non-negative")

	// ErrUnknownCatalogKind is returned when the config file has a catalog
	// for a subject kind that does not exist.
	ErrUnknownCatalogKind = errors.New("unknown subject kind in catalogs section")
)
