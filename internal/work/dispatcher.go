// Package work runs ask-and-deliver jobs on a bounded worker pool.
//
// Each inbound SMS question becomes one job: completion latency, including
// the full retry budget, can far exceed a webhook timeout, so the webhook
// acknowledges immediately and the job completes out of band. The pool
// bounds concurrent load on the completion and messaging channels; a full
// queue rejects instead of blocking the webhook. Jobs run to completion or
// terminal failure; there is no cancellation of an accepted job.
package work

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Job is one dispatched question with its reply recipient.
type Job struct {
	ID        string
	Question  string
	Recipient string
}

// Handler executes one job.
type Handler func(ctx context.Context, job Job) error

// ErrQueueFull is returned when the dispatch queue has no capacity.
var ErrQueueFull = errors.New("dispatch queue full")

// Dispatcher fans jobs out to a fixed pool of workers over a bounded queue.
type Dispatcher struct {
	jobs    chan Job
	handler Handler
	workers int
	logger  *zap.Logger

	startOnce sync.Once
	wg        sync.WaitGroup
}

// New constructs a Dispatcher with the given pool size and queue depth.
func New(workers, queueDepth int, handler Handler, logger *zap.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueDepth <= 0 {
		queueDepth = 1
	}
	return &Dispatcher{
		jobs:    make(chan Job, queueDepth),
		handler: handler,
		workers: workers,
		logger:  logger,
	}
}

// Run starts the workers and blocks until the context finishes and all
// in-flight jobs have drained.
func (d *Dispatcher) Run(ctx context.Context) {
	d.startOnce.Do(func() {
		for i := 0; i < d.workers; i++ {
			d.wg.Add(1)
			go func(worker int) {
				defer d.wg.Done()
				d.runWorker(ctx, worker)
			}(i)
		}
	})
	<-ctx.Done()
	d.wg.Wait()
}

func (d *Dispatcher) runWorker(ctx context.Context, worker int) {
	for {
		select {
		case <-ctx.Done():
			// Jobs accepted before shutdown are still in the queue; the
			// webhook already acknowledged them, so they must run.
			for {
				select {
				case job := <-d.jobs:
					d.handle(ctx, job, worker)
				default:
					return
				}
			}
		case job := <-d.jobs:
			d.handle(ctx, job, worker)
		}
	}
}

// handle runs one job to completion, detached from cancellation.
func (d *Dispatcher) handle(ctx context.Context, job Job, worker int) {
	if err := d.handler(context.WithoutCancel(ctx), job); err != nil {
		d.logger.Error("job failed",
			zap.String("job_id", job.ID),
			zap.Int("worker", worker),
			zap.Error(err),
		)
		return
	}
	d.logger.Info("job complete",
		zap.String("job_id", job.ID),
		zap.Int("worker", worker),
	)
}

// Enqueue submits a job without blocking. It returns ErrQueueFull when the
// queue is at capacity.
func (d *Dispatcher) Enqueue(job Job) error {
	select {
	case d.jobs <- job:
		return nil
	default:
		return fmt.Errorf("job %s: %w", job.ID, ErrQueueFull)
	}
}
