// Package stats derives summary metrics and recommendations from a finalized batch.
// Everything here is a pure function of its input.
package stats
