// Package catalog provides the endpoint catalogs fed to the engine.
//
// Built-in catalogs for every subject kind are embedded as YAML. Users can
// extend or replace them with their own YAML entries, either in the config
// file or in a standalone catalog file. This package also normalizes
// subjects before a batch starts and generates username variations.
package catalog
