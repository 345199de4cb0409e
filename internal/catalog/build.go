package catalog

import (
	"fmt"
	"strings"

	"github.com/nao1215/footprint/internal/model"
)

// BuildOptions controls how a catalog is assembled for a batch.
type BuildOptions struct {
	// Categories restricts the catalog to these categories (case-insensitive).
	// Empty keeps every category.
	Categories []string

	// Custom endpoints are appended to the built-in ones. A custom endpoint
	// with the same name as a built-in one replaces it in place.
	Custom []model.EndpointDescriptor

	// ReplaceBuiltin drops the built-in catalog and uses only Custom.
	ReplaceBuiltin bool
}

// Build assembles the catalog for kind.
// It returns model.ErrEmptyCatalog when nothing is left to probe, so that
// the caller can refuse to start a batch.
func Build(kind model.SubjectKind, opts BuildOptions) (*model.Catalog, error) {
	var endpoints []model.EndpointDescriptor
	if !opts.ReplaceBuiltin {
		base, err := Builtin(kind)
		if err != nil {
			return nil, err
		}
		endpoints = base.Endpoints
	}

	endpoints = merge(endpoints, opts.Custom)

	c, err := model.NewCatalog(kind, endpoints)
	if err != nil {
		return nil, err
	}

	if len(opts.Categories) > 0 {
		c, err = filterCategories(c, opts.Categories)
		if err != nil {
			return nil, err
		}
	}

	if c.Len() == 0 {
		return nil, model.ErrEmptyCatalog
	}
	return c, nil
}

// merge appends custom to base, replacing same-named entries in place.
func merge(base, custom []model.EndpointDescriptor) []model.EndpointDescriptor {
	out := make([]model.EndpointDescriptor, len(base), len(base)+len(custom))
	copy(out, base)

	pos := make(map[string]int, len(out))
	for i, ep := range out {
		pos[ep.Name] = i
	}
	for _, ep := range custom {
		if i, ok := pos[ep.Name]; ok {
			out[i] = ep
			continue
		}
		pos[ep.Name] = len(out)
		out = append(out, ep)
	}
	return out
}

func filterCategories(c *model.Catalog, categories []string) (*model.Catalog, error) {
	known := make(map[string]struct{})
	for _, cat := range c.Categories() {
		known[strings.ToLower(cat)] = struct{}{}
	}

	want := make(map[string]struct{}, len(categories))
	for _, cat := range categories {
		cat = strings.ToLower(strings.TrimSpace(cat))
		if _, ok := known[cat]; !ok {
			return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownCategory, cat, strings.Join(c.Categories(), ", "))
		}
		want[cat] = struct{}{}
	}

	return c.Filter(func(ep model.EndpointDescriptor) bool {
		_, ok := want[strings.ToLower(ep.Category)]
		return ok
	}), nil
}
