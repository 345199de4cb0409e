// Package engine runs one probe per catalog endpoint with bounded concurrency
// and aggregates the classified outcomes into a model.Batch.
//
// The engine has two parts:
//   - Scheduler: dispatches ProbeTasks through an errgroup limited to the
//     configured worker count, enforces the optional batch deadline and
//     honors caller cancellation.
//   - Aggregator: collects results under a single mutex, recording at most
//     one outcome per endpoint, and freezes the batch on finalization.
//
// Every run creates its own Aggregator, so a single Scheduler can serve
// several subjects concurrently.
package engine
