package model

import (
	"slices"
	"strings"
)

// Placeholder is the substitution slot in an endpoint URL template.
const Placeholder = "{}"

// EndpointDescriptor describes one remote target to probe.
// Descriptors are immutable once a catalog is built and are shared
// read-only by every task of a batch.
type EndpointDescriptor struct {
	// Name uniquely identifies the endpoint within its catalog (e.g., "GitHub").
	Name string `json:"name" yaml:"name"`

	// Category groups endpoints for statistics (e.g., "social_media").
	Category string `json:"category" yaml:"category"`

	// URLTemplate contains exactly one Placeholder that is replaced by the subject.
	URLTemplate string `json:"url_template" yaml:"url"`

	// AbsenceMarker is a substring whose presence in the response body means
	// the subject does not exist here. Empty disables the body check.
	AbsenceMarker string `json:"absence_marker,omitempty" yaml:"absence_marker,omitempty"`

	// Scrapable marks endpoints whose profile pages carry extractable details.
	Scrapable bool `json:"scrapable" yaml:"scrapable,omitempty"`

	// AcceptStatus overrides the set of status codes that count as present.
	// Empty means only 200 is accepted.
	AcceptStatus []int `json:"accept_status,omitempty" yaml:"accept_status,omitempty"`

	// NoRedirect disables redirect following for this endpoint.
	// Directory discovery uses it so that 301/302 can be observed directly.
	NoRedirect bool `json:"no_redirect,omitempty" yaml:"no_redirect,omitempty"`
}

// URL substitutes subject into the template exactly once.
func (d EndpointDescriptor) URL(subject string) (string, error) {
	if strings.Count(d.URLTemplate, Placeholder) != 1 {
		return "", ErrInvalidTemplate
	}
	return strings.Replace(d.URLTemplate, Placeholder, subject, 1), nil
}

// Accepts reports whether status counts as a present response for this endpoint.
func (d EndpointDescriptor) Accepts(status int) bool {
	if len(d.AcceptStatus) == 0 {
		return status == 200
	}
	return slices.Contains(d.AcceptStatus, status)
}

// Validate checks the descriptor for structural problems.
func (d EndpointDescriptor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyEndpointName
	}
	if strings.Count(d.URLTemplate, Placeholder) != 1 {
		return ErrInvalidTemplate
	}
	return nil
}
