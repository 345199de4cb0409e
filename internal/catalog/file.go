package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/footprint/internal/model"
)

// File is the YAML representation of a catalog.
//
//	kind: username
//	endpoints:
//	  - name: GitHub
//	    category: professional
//	    url: https://github.com/{}
//	    absence_marker: Not Found
//	    scrapable: true
type File struct {
	Kind      string                     `yaml:"kind"`
	Endpoints []model.EndpointDescriptor `yaml:"endpoints"`
}

// Parse decodes a catalog from YAML and validates it.
func Parse(data []byte) (*model.Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}

	kind, err := model.ParseSubjectKind(f.Kind)
	if err != nil {
		return nil, err
	}

	return model.NewCatalog(kind, f.Endpoints)
}

// LoadFile reads and parses a catalog file.
func LoadFile(path string) (*model.Catalog, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Marshal encodes a catalog as YAML.
func Marshal(c *model.Catalog) ([]byte, error) {
	return yaml.Marshal(File{Kind: string(c.Kind), Endpoints: c.Endpoints})
}
