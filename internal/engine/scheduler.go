package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/footprint/internal/classify"
	"github.com/nao1215/footprint/internal/model"
	"github.com/nao1215/footprint/internal/probe"
)

// Default scheduler settings.
const (
	DefaultWorkers     = 10
	DefaultTaskTimeout = 10 * time.Second
)

// Messages attached to outcomes filled in at finalization.
const (
	msgCancelled = "batch cancelled before probe completed"
	msgDeadline  = "batch deadline elapsed before probe completed"
)

// Prober performs one request for one endpoint.
// *probe.Prober satisfies it; tests substitute deterministic fakes.
type Prober interface {
	Probe(ctx context.Context, subject string, d model.EndpointDescriptor, timeout time.Duration) probe.RawResponse
}

// ResultFunc is called for every recorded result. It runs on the worker
// goroutine that produced the result, so it must be safe for concurrent use.
type ResultFunc func(r model.Result)

// Scheduler dispatches probes for a catalog with bounded concurrency.
// A Scheduler holds only configuration and may run many batches at once.
type Scheduler struct {
	prober      Prober
	classifier  classify.Classifier
	workers     int
	taskTimeout time.Duration
	deadline    time.Duration
	logger      *slog.Logger
	onResult    ResultFunc
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithWorkers sets the maximum number of probes in flight.
// Default is 10 if not specified.
func WithWorkers(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithTaskTimeout sets the per-probe budget.
func WithTaskTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.taskTimeout = d
		}
	}
}

// WithDeadline sets a global deadline for the whole batch. Zero disables it.
func WithDeadline(d time.Duration) Option {
	return func(s *Scheduler) {
		if d >= 0 {
			s.deadline = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithClassifier replaces the default heuristic classifier.
func WithClassifier(c classify.Classifier) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithResultCallback registers fn to be called for each recorded result.
func WithResultCallback(fn ResultFunc) Option {
	return func(s *Scheduler) {
		s.onResult = fn
	}
}

// NewScheduler creates a Scheduler that probes with p.
func NewScheduler(p Prober, opts ...Option) (*Scheduler, error) {
	if p == nil {
		return nil, ErrNilProber
	}

	s := &Scheduler{
		prober:      p,
		classifier:  classify.Default(),
		workers:     DefaultWorkers,
		taskTimeout: DefaultTaskTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s, nil
}

// Workers returns the configured worker count.
func (s *Scheduler) Workers() int {
	return s.workers
}

// Run probes every endpoint of catalog for subject and returns the final batch.
//
// Run returns when every task has resolved, when the batch deadline elapses,
// or when ctx is cancelled, whichever comes first. In the latter two cases
// endpoints without an outcome are recorded as Error{Timeout} or
// Error{Cancelled} respectively, and tasks still in flight are abandoned.
// The batch is StatusComplete only if every task resolved before either
// context ended. Per-task failures never surface as an error; the only errors
// are those detected before the batch starts, such as an invalid catalog.
func (s *Scheduler) Run(ctx context.Context, subject string, catalog *model.Catalog) (*model.Batch, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, ErrEmptySubject
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	agg := NewAggregator(subject, catalog)
	total := catalog.Len()

	s.logger.Info("starting batch",
		"batch_id", agg.BatchID(),
		"kind", agg.batch.Kind,
		"subject", subject,
		"endpoints", total,
		"workers", s.workers,
		"task_timeout", s.taskTimeout,
		"deadline", s.deadline,
	)

	if total == 0 {
		return agg.Finalize(model.StatusComplete, model.ErrorOther, ""), nil
	}

	var (
		batchCtx context.Context
		cancel   context.CancelFunc
	)
	if s.deadline > 0 {
		batchCtx, cancel = context.WithTimeout(ctx, s.deadline)
	} else {
		batchCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)

		var g errgroup.Group
		g.SetLimit(s.workers)
		for i, ep := range catalog.Endpoints {
			if batchCtx.Err() != nil {
				break
			}
			task := newProbeTask(subject, i, ep)
			g.Go(func() error {
				s.runTask(batchCtx, agg, task)
				return nil
			})
		}
		_ = g.Wait() //nolint:errcheck // tasks never return errors
	}()

	finished := false
	select {
	case <-done:
		finished = true
	case <-batchCtx.Done():
	}

	// A cancelled or expired batch cancels in-flight probes, which may record
	// their own errors before done closes; such a batch is never complete.
	var batch *model.Batch
	switch {
	case finished && batchCtx.Err() == nil:
		batch = agg.Finalize(model.StatusComplete, model.ErrorOther, "")
	case ctx.Err() != nil:
		batch = agg.Finalize(model.StatusCancelled, model.ErrorCancelled, msgCancelled)
	default:
		batch = agg.Finalize(model.StatusDeadlineExceeded, model.ErrorTimeout, msgDeadline)
	}

	s.logger.Info("batch finished",
		"batch_id", batch.ID,
		"subject", subject,
		"status", batch.Status,
		"found", len(batch.Found),
		"not_found", len(batch.NotFound),
		"errors", len(batch.Errors),
		"elapsed", batch.Duration(),
	)

	return batch, nil
}

// runTask probes one endpoint and records its outcome.
// A panic in the prober or classifier is recovered and recorded as Error{Other}
// with a correlation id that also appears in the log.
func (s *Scheduler) runTask(ctx context.Context, agg *Aggregator, task ProbeTask) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			s.logger.Error("probe task panic",
				"correlation_id", correlationID,
				"task_id", task.ID,
				"endpoint", task.Endpoint.Name,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			s.record(agg, task, model.NewError(model.ErrorOther, task.url(),
				fmt.Sprintf("probe panic (correlation_id: %s)", correlationID)))
		}
	}()

	if err := ctx.Err(); err != nil {
		s.record(agg, task, model.NewError(probe.ClassifyTransportError(err, err), task.url(), err.Error()))
		return
	}

	raw := s.prober.Probe(ctx, task.Subject, task.Endpoint, s.taskTimeout)
	outcome := s.classifier.Classify(raw, task.Endpoint)

	s.logger.Debug("probe completed",
		"task_id", task.ID,
		"endpoint", task.Endpoint.Name,
		"outcome", outcome.Kind,
		"status", raw.StatusCode,
		"elapsed", raw.Elapsed,
	)

	s.record(agg, task, outcome)
}

func (s *Scheduler) record(agg *Aggregator, task ProbeTask, outcome model.ProbeOutcome) {
	if !agg.Record(task.Endpoint, outcome) {
		return
	}
	if s.onResult != nil {
		s.onResult(model.Result{Index: task.Index, Endpoint: task.Endpoint, Outcome: outcome})
	}
}
