package config

import (
	"fmt"
	"maps"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/footprint/internal/model"
)

// File represents the structure of the .footprint configuration file.
//
//	defaults:
//	  workers: 20
//	  timeout: 15s
//	  headers:
//	    Accept-Language: en-US
//	catalogs:
//	  username:
//	    endpoints:
//	      - name: Codeberg
//	        category: professional
//	        url: https://codeberg.org/{}
//	        absence_marker: Not found
type File struct {
	// Defaults override the built-in defaults; CLI flags override these.
	Defaults Defaults `yaml:"defaults,omitempty"`

	// Catalogs holds custom endpoints keyed by subject kind.
	Catalogs map[string]CatalogConfig `yaml:"catalogs,omitempty"`
}

// Defaults are the tunables that can be set in the config file.
type Defaults struct {
	Workers     int               `yaml:"workers,omitempty"`
	Timeout     Duration          `yaml:"timeout,omitempty"`
	Deadline    Duration          `yaml:"deadline,omitempty"`
	MaxBodySize int64             `yaml:"max_body_size,omitempty"`
	UserAgent   string            `yaml:"user_agent,omitempty"`
	Headers     map[string]string `yaml:"headers,omitempty"`
	Proxy       string            `yaml:"proxy,omitempty"`
}

// CatalogConfig extends or replaces the built-in catalog of one subject kind.
type CatalogConfig struct {
	// Replace drops the built-in endpoints for this kind.
	Replace bool `yaml:"replace,omitempty"`

	// Endpoints are appended to (or replace same-named) built-in endpoints.
	Endpoints []model.EndpointDescriptor `yaml:"endpoints,omitempty"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Validate checks the file for unknown catalog kinds.
func (f *File) Validate() error {
	for key := range f.Catalogs {
		if _, err := model.ParseSubjectKind(key); err != nil {
			return fmt.Errorf("%w: %q", ErrUnknownCatalogKind, key)
		}
	}
	return nil
}

// ApplyDefaults copies every non-zero default from the file into cfg.
func (f *File) ApplyDefaults(cfg *Config) {
	d := f.Defaults
	if d.Workers != 0 {
		cfg.Workers = d.Workers
	}
	if d.Timeout != 0 {
		cfg.Timeout = d.Timeout.Duration()
	}
	if d.Deadline != 0 {
		cfg.Deadline = d.Deadline.Duration()
	}
	if d.MaxBodySize != 0 {
		cfg.MaxBodySize = d.MaxBodySize
	}
	if d.UserAgent != "" {
		cfg.UserAgent = d.UserAgent
	}
	if d.Proxy != "" {
		cfg.ProxyAddress = d.Proxy
	}
	if len(d.Headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(d.Headers))
		}
		maps.Copy(cfg.Headers, d.Headers)
	}
}

// CatalogFor returns the custom catalog settings for kind.
// "dir" and "directory" keys are treated alike.
func (f *File) CatalogFor(kind model.SubjectKind) CatalogConfig {
	for key, cc := range f.Catalogs {
		if k, err := model.ParseSubjectKind(key); err == nil && k == kind {
			return cc
		}
	}
	return CatalogConfig{}
}
