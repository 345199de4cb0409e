package model

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
)

// BatchStatus describes how a batch ended.
type BatchStatus string

const (
	// StatusInProgress marks a partial snapshot taken before completion.
	StatusInProgress BatchStatus = "in_progress"

	// StatusComplete means every task resolved on its own.
	StatusComplete BatchStatus = "complete"

	// StatusCancelled means the caller cancelled the batch.
	StatusCancelled BatchStatus = "cancelled"

	// StatusDeadlineExceeded means the global deadline elapsed.
	StatusDeadlineExceeded BatchStatus = "deadline_exceeded"
)

// Batch is the aggregate of all outcomes for one subject across one catalog run.
//
// While a run is in progress the Batch is owned by the engine's aggregator.
// Once returned to the caller it is read-only.
type Batch struct {
	// ID uniquely identifies the run (used as the history primary key).
	ID uuid.UUID `json:"id"`

	// Subject is the investigated value.
	Subject string `json:"subject"`

	// Kind is the subject kind of the catalog used.
	Kind SubjectKind `json:"kind"`

	// StartedAt is when the first task was submitted.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the batch was finalized. Zero for partial snapshots.
	FinishedAt time.Time `json:"finished_at,omitempty"`

	// EndpointsTotal is the catalog size, regardless of how many tasks resolved.
	EndpointsTotal int `json:"endpoints_total"`

	// Status describes how the run ended.
	Status BatchStatus `json:"status"`

	// Complete is true only after finalization. Partial snapshots are false.
	Complete bool `json:"complete"`

	// Found, NotFound and Errors partition the recorded results.
	// Each slice is sorted by catalog index.
	Found    []Result `json:"found"`
	NotFound []Result `json:"not_found"`
	Errors   []Result `json:"errors"`

	// PerEndpoint maps descriptor name to its outcome.
	PerEndpoint map[string]ProbeOutcome `json:"per_endpoint"`
}

// NewBatch creates an empty batch for a subject.
func NewBatch(subject string, kind SubjectKind, total int) *Batch {
	return &Batch{
		ID:             uuid.New(),
		Subject:        subject,
		Kind:           kind,
		StartedAt:      time.Now(),
		EndpointsTotal: total,
		Status:         StatusInProgress,
		Found:          []Result{},
		NotFound:       []Result{},
		Errors:         []Result{},
		PerEndpoint:    make(map[string]ProbeOutcome, total),
	}
}

// Recorded returns the number of results across all partitions.
func (b *Batch) Recorded() int {
	return len(b.Found) + len(b.NotFound) + len(b.Errors)
}

// Duration returns how long the batch ran.
// For partial snapshots it returns the time elapsed so far.
func (b *Batch) Duration() time.Duration {
	if b.FinishedAt.IsZero() {
		return time.Since(b.StartedAt)
	}
	return b.FinishedAt.Sub(b.StartedAt)
}

// Results returns every recorded result ordered by catalog index.
func (b *Batch) Results() []Result {
	out := make([]Result, 0, b.Recorded())
	out = append(out, b.Found...)
	out = append(out, b.NotFound...)
	out = append(out, b.Errors...)
	SortResults(out)
	return out
}

// ErrorCounts returns the number of error results per ErrorKind.
func (b *Batch) ErrorCounts() map[ErrorKind]int {
	counts := make(map[ErrorKind]int)
	for _, r := range b.Errors {
		counts[r.Outcome.ErrorKind]++
	}
	return counts
}

// SortResults orders results by catalog index.
func SortResults(rs []Result) {
	slices.SortFunc(rs, func(a, b Result) int {
		return cmp.Compare(a.Index, b.Index)
	})
}
