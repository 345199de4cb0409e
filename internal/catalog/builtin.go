package catalog

import (
	"embed"
	"fmt"

	"github.com/nao1215/footprint/internal/model"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Builtin returns the embedded catalog for kind.
func Builtin(kind model.SubjectKind) (*model.Catalog, error) {
	data, err := builtinFS.ReadFile("builtin/" + string(kind) + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: no built-in catalog for %q", model.ErrUnknownSubjectKind, kind)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("built-in %s catalog: %w", kind, err)
	}
	if c.Kind != kind {
		return nil, fmt.Errorf("%w: built-in %s catalog declares %s", ErrKindMismatch, kind, c.Kind)
	}
	return c, nil
}
