package engine

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/footprint/internal/model"
)

// Aggregator collects the results of one batch.
// Record may be called from many goroutines; all state is guarded by mu.
type Aggregator struct {
	mu sync.Mutex

	batch     *model.Batch
	endpoints []model.EndpointDescriptor

	// index maps endpoint name to its catalog position.
	index map[string]int

	frozen bool
}

// NewAggregator creates an empty aggregator for subject over catalog.
func NewAggregator(subject string, catalog *model.Catalog) *Aggregator {
	var (
		kind      model.SubjectKind
		endpoints []model.EndpointDescriptor
	)
	if catalog != nil {
		kind = catalog.Kind
		endpoints = catalog.Endpoints
	}

	index := make(map[string]int, len(endpoints))
	for i, ep := range endpoints {
		index[ep.Name] = i
	}

	return &Aggregator{
		batch:     model.NewBatch(subject, kind, len(endpoints)),
		endpoints: endpoints,
		index:     index,
	}
}

// BatchID returns the id of the batch being collected.
func (a *Aggregator) BatchID() uuid.UUID {
	return a.batch.ID
}

// Record stores the outcome for d.
// It returns false, leaving the batch untouched, if d is not part of the
// catalog, if d already has an outcome, or if the batch has been finalized.
func (a *Aggregator) Record(d model.EndpointDescriptor, outcome model.ProbeOutcome) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.frozen {
		return false
	}
	return a.recordLocked(d.Name, outcome)
}

func (a *Aggregator) recordLocked(name string, outcome model.ProbeOutcome) bool {
	i, ok := a.index[name]
	if !ok {
		return false
	}
	if _, done := a.batch.PerEndpoint[name]; done {
		return false
	}

	r := model.Result{Index: i, Endpoint: a.endpoints[i], Outcome: outcome}
	switch outcome.Kind {
	case model.OutcomeFound:
		a.batch.Found = append(a.batch.Found, r)
	case model.OutcomeNotFound:
		a.batch.NotFound = append(a.batch.NotFound, r)
	default:
		a.batch.Errors = append(a.batch.Errors, r)
	}
	a.batch.PerEndpoint[name] = outcome
	return true
}

// Recorded returns how many endpoints have an outcome.
func (a *Aggregator) Recorded() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.batch.PerEndpoint)
}

// Pending returns the descriptors that have no outcome yet, in catalog order.
func (a *Aggregator) Pending() []model.EndpointDescriptor {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pendingLocked()
}

func (a *Aggregator) pendingLocked() []model.EndpointDescriptor {
	var out []model.EndpointDescriptor
	for _, ep := range a.endpoints {
		if _, ok := a.batch.PerEndpoint[ep.Name]; !ok {
			out = append(out, ep)
		}
	}
	return out
}

// Snapshot returns a copy of the batch.
// Before finalization the copy is marked incomplete and holds only what has
// been recorded so far; EndpointsTotal still counts every descriptor.
func (a *Aggregator) Snapshot() *model.Batch {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.copyLocked()
}

// Finalize fills every endpoint still lacking an outcome with an Error of
// kind fill, freezes the aggregator and returns the final batch with the
// given status. Calling Finalize again returns the already frozen batch.
func (a *Aggregator) Finalize(status model.BatchStatus, fill model.ErrorKind, message string) *model.Batch {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.frozen {
		return a.copyLocked()
	}

	for _, ep := range a.pendingLocked() {
		u, _ := ep.URL(a.batch.Subject)
		a.recordLocked(ep.Name, model.NewError(fill, u, message))
	}

	a.batch.Status = status
	a.batch.Complete = true
	a.batch.FinishedAt = time.Now()
	a.frozen = true

	return a.copyLocked()
}

func (a *Aggregator) copyLocked() *model.Batch {
	b := *a.batch
	b.Found = slices.Clone(a.batch.Found)
	b.NotFound = slices.Clone(a.batch.NotFound)
	b.Errors = slices.Clone(a.batch.Errors)
	b.PerEndpoint = maps.Clone(a.batch.PerEndpoint)
	model.SortResults(b.Found)
	model.SortResults(b.NotFound)
	model.SortResults(b.Errors)
	if !a.frozen {
		b.Complete = false
		b.Status = model.StatusInProgress
	}
	return &b
}
