// Package worker plans the days of a multi-day search concurrently.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/tzmeet/internal/domain/model"
	"github.com/okian/tzmeet/pkg/logger"
	"github.com/okian/tzmeet/pkg/metrics"
)

// Default worker configuration constants.
const (
	poolShutdownTimeout = 30 * time.Second
)

// Planner ranks the slots of one day.
type Planner interface {
	Plan(ctx context.Context, req model.Request) (model.Result, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue() <-chan model.DayJob
}

// Worker processes day jobs.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue   Queue
	planner Planner
	name    string
	active  *atomic.Int64

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, planner Planner, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		planner:  planner,
		name:     "worker",
		active:   &atomic.Int64{},
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = logger.Get().Named("worker")
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if d, ok := w.queue.(interface{ MarkDequeued() }); ok {
				d.MarkDequeued()
			}
			w.process(ctx, job)
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out", logger.String("worker", w.name))
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process plans job.Date and sends the outcome on job.Reply. The reply
// channel is owned by the submitter, who sizes it for every job.
func (w *InMemoryWorker) process(ctx context.Context, job model.DayJob) { //nolint:gocritic // jobs travel by value
	start := time.Now()
	metrics.UpdateWorkerActiveCount(int(w.active.Add(1)))
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.active.Add(-1)))
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	req := job.Request
	req.Date = job.Date
	res, err := w.planner.Plan(ctx, req)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "plan_error")
		w.logger.Debug(ctx, "day job failed",
			logger.String("job", job.ID),
			logger.String("date", job.Date.String()),
			logger.Error(err),
		)
	}

	out := model.DayOutcome{JobID: job.ID, Date: job.Date, Result: res, Err: err}
	select {
	case job.Reply <- out:
	case <-ctx.Done():
		w.logger.Warn(ctx, "dropping day outcome", logger.String("job", job.ID), logger.Error(ctx.Err()))
	}
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	active  atomic.Int64

	logger logger.Logger
}

// NewPool creates a new worker pool. A workerCount below one uses one
// worker per CPU.
func NewPool(workerCount int, queue Queue, planner Planner, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	probe := &InMemoryWorker{}
	for _, opt := range opts {
		opt(probe)
	}
	if probe.logger == nil {
		probe.logger = logger.Get()
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  probe.logger.Named("pool"),
	}

	for i := range workerCount {
		name := "worker-" + strconv.Itoa(i)
		w := NewInMemoryWorker(queue, planner, append([]Option{WithName(name)}, opts...)...)
		w.active = &pool.active
		w.logger = w.logger.Named(name)
		pool.workers[i] = w
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Active returns the number of workers currently planning a day.
func (p *Pool) Active() int { return int(p.active.Load()) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
		}
	}
	return nil
}
