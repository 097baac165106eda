// Package worker provides the fixed-size goroutine pool used for
// asynchronous persistence and reconciliation work.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var ErrPoolClosed = errors.New("worker: pool closed")

// Task is a unit of work executed on a pool goroutine.
type Task func(ctx context.Context) error

// Handle tracks the completion of a submitted task.
type Handle struct {
	done chan struct{}
	err  error
}

// Wait blocks until the task finishes or ctx is done.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done reports whether the task has finished without blocking.
func (h *Handle) Done() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

type job struct {
	task   Task
	handle *Handle
}

// Pool runs submitted tasks on a fixed number of goroutines with a
// bounded queue. Submit blocks when the queue is full, which applies
// backpressure to callers instead of growing without bound.
type Pool struct {
	jobs    chan job
	quit    chan struct{}
	log     zerolog.Logger
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
	baseCtx context.Context
	cancel  context.CancelFunc
}

func NewPool(size, queue int, log zerolog.Logger) *Pool {
	if size < 1 {
		size = 1
	}
	if queue < 1 {
		queue = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		jobs:    make(chan job, queue),
		quit:    make(chan struct{}),
		log:     log.With().Str("component", "worker_pool").Logger(),
		baseCtx: ctx,
		cancel:  cancel,
	}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.run(i)
	}
	return p
}

func (p *Pool) run(id int) {
	defer p.wg.Done()
	for {
		select {
		case j := <-p.jobs:
			p.execute(id, j)
		case <-p.quit:
			// Drain whatever was queued before shutdown, then exit.
			for {
				select {
				case j := <-p.jobs:
					p.execute(id, j)
				default:
					return
				}
			}
		}
	}
}

func (p *Pool) execute(id int, j job) {
	defer func() {
		if r := recover(); r != nil {
			j.handle.err = errors.New("worker: task panicked")
			p.log.Error().Int("worker", id).Interface("panic", r).Msg("Task panicked")
		}
		close(j.handle.done)
	}()
	if err := j.task(p.baseCtx); err != nil {
		j.handle.err = err
		p.log.Warn().Int("worker", id).Err(err).Msg("Task failed")
	}
}

// Submit enqueues a task and returns a handle for its result. It
// blocks while the queue is full and fails once the pool is closed.
// The blocking send happens outside the pool lock so a stalled Submit
// can never freeze TrySubmit or Shutdown, and Shutdown unblocks any
// waiting submitter.
func (p *Pool) Submit(task Task) (*Handle, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	p.mu.Unlock()

	h := &Handle{done: make(chan struct{})}
	select {
	case p.jobs <- job{task: task, handle: h}:
		return h, nil
	case <-p.quit:
		return nil, ErrPoolClosed
	}
}

// TrySubmit enqueues a task only if queue space is available. Tasks
// already running on a pool goroutine must use this rather than
// Submit: with every worker blocked in a full-queue Submit there is no
// receiver left and the pool deadlocks.
func (p *Pool) TrySubmit(task Task) (*Handle, bool) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, false
	}
	p.mu.Unlock()

	h := &Handle{done: make(chan struct{})}
	select {
	case p.jobs <- job{task: task, handle: h}:
		return h, true
	default:
		return nil, false
	}
}

// Shutdown stops accepting tasks and waits for queued work to drain,
// up to the given timeout. Tasks still running after the timeout are
// abandoned via context cancellation.
func (p *Pool) Shutdown(timeout time.Duration) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.quit)
	p.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		p.cancel()
		return nil
	case <-time.After(timeout):
		p.cancel()
		p.log.Warn().Msg("Worker pool shutdown timed out, abandoning remaining tasks")
		return context.DeadlineExceeded
	}
}
