// Package classify turns a raw probe response into a model.ProbeOutcome.
//
// The default classifier is a heuristic: an accepted status without the
// endpoint's absence marker is taken as evidence that the subject exists.
// Error and interstitial pages that lack the marker therefore produce false
// positives. Callers that need a stricter verdict for a particular endpoint
// can plug in their own Classifier.
package classify
