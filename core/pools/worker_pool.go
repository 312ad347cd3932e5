package pools

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
)

// ErrPoolClosed is returned by Producer.Send once shutdown has begun and no
// worker will ever pick the item up.
var ErrPoolClosed = errors.New("worker pool is closed")

// DefaultPollInterval is how long an idle worker waits on the queue before
// checking the shutdown flag. Shutdown is only observed at these boundaries,
// so it is also the worst-case extra latency of Join.
const DefaultPollInterval = 100 * time.Millisecond

// DefaultQueueSize is the submission queue capacity shared by all workers.
const DefaultQueueSize = 256

// Handler processes a single work item. The pool runs it to completion and
// performs no recovery of its own, so a handler must never panic.
type Handler[T any] func(item T)

// Config configures a worker pool.
type Config struct {
	// Size is the number of worker goroutines.
	Size int

	// QueueSize is the capacity of the shared work queue.
	QueueSize int

	// PollInterval is the idle dequeue timeout at which workers observe
	// shutdown. Defaults to DefaultPollInterval.
	PollInterval time.Duration

	// Clock drives the poll timers. Defaults to the real clock; tests can
	// substitute a fake one.
	Clock quartz.Clock
}

// Pool is a fixed-size worker pool consuming items of type T from one shared
// queue. Each item is received by exactly one worker and processed to
// completion before that worker dequeues again.
type Pool[T any] struct {
	size    int
	poll    time.Duration
	clock   quartz.Clock
	handler Handler[T]

	queue chan T
	done  chan struct{}

	// closeMu orders Send's check-then-enqueue against setting the closed
	// flag: a Send holding the read side has committed its item to the
	// queue before close completes, so exiting workers always find it.
	closeMu sync.RWMutex
	closed  atomic.Bool

	wg sync.WaitGroup

	stats struct {
		submitted atomic.Uint64
		completed atomic.Uint64
	}
}

// Producer submits work items to a Pool. It is safe for concurrent use.
type Producer[T any] struct {
	pool      *Pool[T]
	closeOnce sync.Once
}

// Spawn starts size workers sharing one queue and returns the pool handle
// together with the producer used to submit items.
func Spawn[T any](cfg Config, handler Handler[T]) (*Pool[T], *Producer[T]) {
	if cfg.Size <= 0 {
		cfg.Size = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}

	p := &Pool[T]{
		size:    cfg.Size,
		poll:    cfg.PollInterval,
		clock:   cfg.Clock,
		handler: handler,
		queue:   make(chan T, cfg.QueueSize),
		done:    make(chan struct{}),
	}

	p.wg.Add(p.size)
	for i := 0; i < p.size; i++ {
		go p.worker()
	}

	return p, &Producer[T]{pool: p}
}

// worker is the per-goroutine loop: bounded-wait dequeue, run the handler to
// completion, re-check the shutdown flag only when idle.
func (p *Pool[T]) worker() {
	defer p.wg.Done()

	for {
		timer := p.clock.NewTimer(p.poll)

		select {
		case item := <-p.queue:
			timer.Stop()
			p.handler(item)
			p.stats.completed.Add(1)

		case <-p.done:
			timer.Stop()
			p.drain()
			return

		case <-timer.C:
			if p.closed.Load() {
				p.drain()
				return
			}
		}
	}
}

// drain consumes whatever was already queued when shutdown was observed, so
// no accepted item is lost. By this point Send always fails, so the queue can
// only shrink.
func (p *Pool[T]) drain() {
	for {
		select {
		case item := <-p.queue:
			p.handler(item)
			p.stats.completed.Add(1)
		default:
			return
		}
	}
}

// close sets the shutdown flag. Taking the write side of closeMu waits out
// any Send between its flag check and its enqueue, so every item a Send has
// accepted is in the queue before the flag is visible.
func (p *Pool[T]) close() {
	p.closeMu.Lock()
	p.closed.Store(true)
	p.closeMu.Unlock()
}

// Join sets the shutdown flag and blocks until every worker has returned.
// Workers observe the flag at their next idle poll boundary; items already
// queued or in flight are still processed to completion.
func (p *Pool[T]) Join() {
	p.close()
	p.wg.Wait()
	p.drain()
}

// Wait blocks until every worker has returned without requesting shutdown
// itself. Workers exit once Join sets the shutdown flag or the producer
// closes the queue.
func (p *Pool[T]) Wait() {
	p.wg.Wait()
	p.drain()
}

// Size returns the number of workers.
func (p *Pool[T]) Size() int {
	return p.size
}

// Stats returns pool counters.
func (p *Pool[T]) Stats() Stats {
	// completed first: loading it after submitted could let a concurrent
	// completion push it past the submitted value and underflow Pending.
	completed := p.stats.completed.Load()
	submitted := p.stats.submitted.Load()
	return Stats{
		Workers:   p.size,
		Submitted: submitted,
		Completed: completed,
		Pending:   submitted - completed,
	}
}

// Stats contains worker pool counters.
type Stats struct {
	Workers   int
	Submitted uint64
	Completed uint64
	Pending   uint64
}

// Send submits an item to the pool. It blocks while the queue is full,
// polling for space at the poll interval, and returns ErrPoolClosed once
// shutdown has begun, which is the signal for the caller to stop producing.
//
// The flag check and the enqueue happen under one read lock, so an accepted
// item is in the queue before any close can complete and is never stranded.
func (pr *Producer[T]) Send(item T) error {
	p := pr.pool

	for {
		p.closeMu.RLock()
		if p.closed.Load() {
			p.closeMu.RUnlock()
			return ErrPoolClosed
		}

		select {
		case p.queue <- item:
			p.closeMu.RUnlock()
			p.stats.submitted.Add(1)
			return nil
		default:
		}
		p.closeMu.RUnlock()

		// Queue full; wait out a poll interval, then retry.
		timer := p.clock.NewTimer(p.poll)
		select {
		case <-p.done:
			timer.Stop()
			return ErrPoolClosed
		case <-timer.C:
		}
	}
}

// Close marks the queue as closed. Workers finish what is already queued and
// then exit; further Sends fail. Join still must be called to wait for them.
func (pr *Producer[T]) Close() {
	pr.closeOnce.Do(func() {
		pr.pool.close()
		close(pr.pool.done)
	})
}
