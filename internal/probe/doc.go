// Package probe issues one HTTP request for one (subject, endpoint) pair.
//
// A Prober holds only immutable configuration (clients, headers, limits), so
// one instance may be shared by every worker of a batch. Each call to Probe
// enforces its own timeout through the request context and never blocks
// past it.
//
// Transport failures are reported as a TransportError tagged with a
// model.ErrorKind, so that the classifier never mistakes a network failure
// for a "not found" verdict.
package probe
