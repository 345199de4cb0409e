// Package config provides configuration structures and utilities for footprint.
// It defines the probing tunables, report preferences and the optional
// .footprint YAML file that carries defaults and custom catalogs.
package config
