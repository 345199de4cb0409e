package model

import "fmt"

// OutcomeKind is the top-level classification of a probe.
type OutcomeKind string

const (
	// OutcomeFound means the subject appears to exist at the endpoint.
	OutcomeFound OutcomeKind = "found"

	// OutcomeNotFound means the endpoint answered and the subject appears absent.
	// This is a normal classification, not a fault.
	OutcomeNotFound OutcomeKind = "not_found"

	// OutcomeError means the probe could not reach a verdict.
	OutcomeError OutcomeKind = "error"
)

// ErrorKind distinguishes why a probe failed.
type ErrorKind string

const (
	// ErrorTimeout is used when the per-task budget or the batch deadline elapsed.
	ErrorTimeout ErrorKind = "timeout"

	// ErrorConnection covers refused connections, DNS failures and resets.
	ErrorConnection ErrorKind = "connection_error"

	// ErrorCancelled is used when the caller cancelled the batch.
	ErrorCancelled ErrorKind = "cancelled"

	// ErrorOther covers everything else, including recovered panics.
	ErrorOther ErrorKind = "other"
)

// Reasons used by the default classifier for NotFound outcomes.
const (
	ReasonMarkerMatched = "marker matched"
)

// UnknownTitle is used when a found page has no <title>.
const UnknownTitle = "Unknown"

// ProbeOutcome is the classified result of one probe.
// It is a tagged variant: Kind selects which of the remaining fields are meaningful.
//   - Found: URL, StatusCode, ResponseTimeMs, ContentLength, Title
//   - NotFound: Reason (URL and StatusCode are kept when known)
//   - Error: ErrorKind, Message
type ProbeOutcome struct {
	Kind           OutcomeKind `json:"kind"`
	URL            string      `json:"url,omitempty"`
	StatusCode     int         `json:"status_code,omitempty"`
	ResponseTimeMs int64       `json:"response_time_ms,omitempty"`
	ContentLength  int64       `json:"content_length,omitempty"`
	Title          string      `json:"title,omitempty"`
	Reason         string      `json:"reason,omitempty"`
	ErrorKind      ErrorKind   `json:"error_kind,omitempty"`
	Message        string      `json:"message,omitempty"`
}

// NewFound creates a Found outcome. An empty title becomes UnknownTitle.
func NewFound(url string, statusCode int, responseTimeMs, contentLength int64, title string) ProbeOutcome {
	if title == "" {
		title = UnknownTitle
	}
	return ProbeOutcome{
		Kind:           OutcomeFound,
		URL:            url,
		StatusCode:     statusCode,
		ResponseTimeMs: responseTimeMs,
		ContentLength:  contentLength,
		Title:          title,
	}
}

// NewNotFound creates a NotFound outcome.
func NewNotFound(url string, statusCode int, reason string) ProbeOutcome {
	return ProbeOutcome{
		Kind:       OutcomeNotFound,
		URL:        url,
		StatusCode: statusCode,
		Reason:     reason,
	}
}

// NewStatusNotFound creates a NotFound outcome with the "HTTP <code>" reason.
func NewStatusNotFound(url string, statusCode int) ProbeOutcome {
	return NewNotFound(url, statusCode, fmt.Sprintf("HTTP %d", statusCode))
}

// NewError creates an Error outcome.
func NewError(kind ErrorKind, url, message string) ProbeOutcome {
	return ProbeOutcome{
		Kind:      OutcomeError,
		URL:       url,
		ErrorKind: kind,
		Message:   message,
	}
}

// IsFound reports whether the outcome is Found.
func (o ProbeOutcome) IsFound() bool {
	return o.Kind == OutcomeFound
}

// IsError reports whether the outcome is Error.
func (o ProbeOutcome) IsError() bool {
	return o.Kind == OutcomeError
}

// String returns a short human-readable description.
func (o ProbeOutcome) String() string {
	switch o.Kind {
	case OutcomeFound:
		return fmt.Sprintf("found (HTTP %d, %dms)", o.StatusCode, o.ResponseTimeMs)
	case OutcomeNotFound:
		return "not found: " + o.Reason
	case OutcomeError:
		if o.Message == "" {
			return "error: " + string(o.ErrorKind)
		}
		return fmt.Sprintf("error: %s: %s", o.ErrorKind, o.Message)
	default:
		return "unknown"
	}
}

// Result binds an outcome to the descriptor it was produced for.
type Result struct {
	// Index is the descriptor's position in the catalog.
	Index    int                `json:"index"`
	Endpoint EndpointDescriptor `json:"endpoint"`
	Outcome  ProbeOutcome       `json:"outcome"`
}

