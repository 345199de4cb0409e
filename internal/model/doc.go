// Package model defines the data structures shared by the probing engine.
//
// This package contains the following main types:
//   - EndpointDescriptor: A single remote target with its URL template and absence marker
//   - Catalog: An ordered, validated collection of endpoint descriptors
//   - ProbeOutcome: The classified result of probing one endpoint
//   - Batch: The aggregate of all outcomes for one subject
//   - BatchStatistics: Summary metrics and recommendations derived from a Batch
//
// Design decision: We keep models in their own package so that the engine,
// the report writers and the history database can share them without
// import cycles. Every type is plain data and serializes to JSON.
package model
