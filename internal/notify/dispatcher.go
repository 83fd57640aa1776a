package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Dispatcher runs notification jobs on a fixed worker pool behind a bounded
// queue. Dispatch never blocks the caller: a full queue drops the job.
type Dispatcher struct {
	queue   chan Job
	log     *zap.Logger
	timeout time.Duration

	mu       sync.Mutex
	idle     *sync.Cond
	inflight int
	closed   bool

	workers sync.WaitGroup
}

func NewDispatcher(size, workers int, timeout time.Duration, log *zap.Logger) *Dispatcher {
	if size <= 0 {
		size = 1
	}
	if workers <= 0 {
		workers = 1
	}
	d := &Dispatcher{
		queue:   make(chan Job, size),
		log:     log,
		timeout: timeout,
	}
	d.idle = sync.NewCond(&d.mu)

	d.workers.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	return d
}

func (d *Dispatcher) worker() {
	defer d.workers.Done()
	for job := range d.queue {
		d.run(job)
		d.done()
	}
}

func (d *Dispatcher) run(job Job) {
	defer func() {
		if rec := recover(); rec != nil {
			d.log.Error("notification job panicked",
				zap.String("job", job.Name),
				zap.String("panic", fmt.Sprint(rec)),
			)
		}
	}()

	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	if err := job.Run(ctx); err != nil {
		d.log.Warn("notification job failed",
			zap.String("job", job.Name),
			zap.Error(err),
		)
	}
}

func (d *Dispatcher) done() {
	d.mu.Lock()
	d.inflight--
	if d.inflight == 0 {
		d.idle.Broadcast()
	}
	d.mu.Unlock()
}

// Dispatch reports whether the job was queued.
func (d *Dispatcher) Dispatch(job Job) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		d.log.Warn("notification dispatcher closed, dropping job", zap.String("job", job.Name))
		return false
	}

	select {
	case d.queue <- job:
		d.inflight++
		return true
	default:
		// full queue: drop
		d.log.Warn("notification queue full, dropping job", zap.String("job", job.Name))
		return false
	}
}

// Flush blocks until every queued job has finished.
func (d *Dispatcher) Flush() {
	d.mu.Lock()
	for d.inflight > 0 {
		d.idle.Wait()
	}
	d.mu.Unlock()
}

// Close stops accepting jobs and waits for the queue to drain or ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		d.workers.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain notification queue: %w", ctx.Err())
	}
}
