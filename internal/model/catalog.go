package model

import "fmt"

// Catalog is an ordered collection of endpoint descriptors.
// Order matters only for tie-breaking in statistics; probing order is not guaranteed.
type Catalog struct {
	// Kind is the subject kind this catalog was built for.
	Kind SubjectKind `json:"kind"`

	// Endpoints are the descriptors in catalog order.
	Endpoints []EndpointDescriptor `json:"endpoints"`
}

// NewCatalog creates a validated Catalog.
// It rejects descriptors with empty names, invalid templates or duplicate names.
// An empty endpoint list is allowed here; callers that require at least one
// endpoint should check Len before starting a batch.
func NewCatalog(kind SubjectKind, endpoints []EndpointDescriptor) (*Catalog, error) {
	copied := make([]EndpointDescriptor, len(endpoints))
	copy(copied, endpoints)

	c := &Catalog{Kind: kind, Endpoints: copied}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks every descriptor and rejects duplicate names.
// A nil or empty catalog is valid.
func (c *Catalog) Validate() error {
	if c == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(c.Endpoints))
	for i, ep := range c.Endpoints {
		if err := ep.Validate(); err != nil {
			return fmt.Errorf("endpoint #%d (%q): %w", i+1, ep.Name, err)
		}
		if _, dup := seen[ep.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateEndpoint, ep.Name)
		}
		seen[ep.Name] = struct{}{}
	}
	return nil
}

// Len returns the number of endpoints. A nil catalog has length zero.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Endpoints)
}

// Categories returns the distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, ep := range c.Endpoints {
		if _, ok := seen[ep.Category]; ok {
			continue
		}
		seen[ep.Category] = struct{}{}
		out = append(out, ep.Category)
	}
	return out
}

// Filter returns a new catalog holding only the endpoints for which keep returns true.
func (c *Catalog) Filter(keep func(EndpointDescriptor) bool) *Catalog {
	out := &Catalog{Kind: c.Kind}
	for _, ep := range c.Endpoints {
		if keep(ep) {
			out.Endpoints = append(out.Endpoints, ep)
		}
	}
	return out
}
