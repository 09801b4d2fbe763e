// Package worker provides the bounded task pool used for bulk metadata
// loading and background icon loading. It is sized for a one-shot bulk
// load of a few hundred tasks plus an ongoing trickle, not for sustained
// high-throughput scheduling.
package worker

import (
	"errors"
	"log"
	"runtime"
	"sync"
	"time"
)

// Task is one independent unit of work. A returned error is task-level
// failure: it is logged and isolated, never propagated to the pool.
type Task interface {
	Run() error
}

// TaskFunc adapts a plain function to the Task interface.
type TaskFunc func() error

func (f TaskFunc) Run() error { return f() }

var (
	// ErrPoolClosed is returned by Submit after shutdown has begun.
	// Correct orchestration never triggers it.
	ErrPoolClosed = errors.New("worker: pool is closed")

	// ErrShutdownTimeout is returned by an awaited shutdown when workers
	// fail to exit in time. Remaining workers are abandoned, not killed.
	ErrShutdownTimeout = errors.New("worker: shutdown wait timed out")
)

type poolState int

const (
	stateRunning poolState = iota
	stateDraining
	stateStopped
)

// Pool runs a fixed set of worker goroutines draining a bounded task
// queue. Worker count and queue capacity are fixed at construction.
//
// Two shutdown disciplines are supported because the pool serves two
// producer/consumer relationships: a one-shot bulk load the caller must
// wait on synchronously, and a best-effort background trickle that must
// be abandonable instantly when the UI goes away.
type Pool struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond

	queue    []Task
	capacity int
	workers  int
	state    poolState

	wg sync.WaitGroup

	// awaitTimeout bounds Shutdown(_, true). Zero means wait forever.
	awaitTimeout time.Duration
}

// New creates a pool with workerCount workers and a queue holding up to
// queueCapacity pending tasks, and starts the workers immediately.
// workerCount is raised to 1 and queueCapacity to workerCount if the
// arguments fall below those floors.
func New(workerCount, queueCapacity int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	if queueCapacity < workerCount {
		queueCapacity = workerCount
	}

	p := &Pool{
		queue:    make([]Task, 0, queueCapacity),
		capacity: queueCapacity,
		workers:  workerCount,
	}
	p.notFull = sync.NewCond(&p.mu)
	p.notEmpty = sync.NewCond(&p.mu)

	p.wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go p.consume(i)
	}

	log.Printf("[POOL] Started %d workers, queue capacity %d", workerCount, queueCapacity)
	return p
}

// SetAwaitTimeout bounds how long an awaited shutdown waits for workers
// to exit before returning ErrShutdownTimeout. Zero waits forever.
func (p *Pool) SetAwaitTimeout(d time.Duration) {
	p.mu.Lock()
	p.awaitTimeout = d
	p.mu.Unlock()
}

// Workers returns the fixed worker count.
func (p *Pool) Workers() int {
	return p.workers
}

// Submit enqueues a task, blocking while the queue is at capacity. The
// block is the system's backpressure: producers faster than the workers
// are throttled instead of growing memory without bound. Submit returns
// ErrPoolClosed once shutdown has begun.
func (p *Pool) Submit(task Task) error {
	if task == nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for p.state == stateRunning && len(p.queue) >= p.capacity {
		p.notFull.Wait()
	}
	if p.state != stateRunning {
		return ErrPoolClosed
	}

	p.queue = append(p.queue, task)
	p.notEmpty.Signal()
	return nil
}

// consume is the worker loop: block-dequeue, execute, repeat until the
// pool tells it to exit.
func (p *Pool) consume(id int) {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for p.state == stateRunning && len(p.queue) == 0 {
			p.notEmpty.Wait()
		}

		// Draining keeps executing queued tasks; a stop discards them.
		if len(p.queue) == 0 || p.state == stateStopped {
			p.mu.Unlock()
			return
		}

		task := p.queue[0]
		p.queue = p.queue[1:]
		p.notFull.Signal()
		p.mu.Unlock()

		runTask(id, task)
	}
}

// runTask isolates one task execution: errors and panics are logged and
// swallowed so a bad task never takes down a worker.
func runTask(id int, task Task) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[POOL] Worker %d: task panicked: %v", id, r)
		}
	}()

	if err := task.Run(); err != nil {
		log.Printf("[POOL] Worker %d: task failed: %v", id, err)
	}
}

// Shutdown stops the pool. With drainPending, queued tasks still run to
// completion before the workers exit; without it, queued-but-unstarted
// tasks are discarded and only in-flight tasks finish. With
// awaitTermination the call blocks until every worker has exited (or the
// await timeout elapses, returning ErrShutdownTimeout); without it the
// call returns immediately and workers exit asynchronously.
//
// Shutdown of an already-stopped pool is a no-op.
func (p *Pool) Shutdown(drainPending, awaitTermination bool) error {
	p.mu.Lock()
	if p.state == stateStopped || (p.state == stateDraining && drainPending) {
		timeout := p.awaitTimeout
		p.mu.Unlock()
		if awaitTermination {
			return p.await(timeout)
		}
		return nil
	}

	discarded := 0
	if drainPending {
		p.state = stateDraining
	} else {
		p.state = stateStopped
		discarded = len(p.queue)
		p.queue = p.queue[:0]
	}
	timeout := p.awaitTimeout

	// Wake blocked submitters so they observe the closed pool, and idle
	// workers so they observe the state change.
	p.notFull.Broadcast()
	p.notEmpty.Broadcast()
	p.mu.Unlock()

	if discarded > 0 {
		log.Printf("[POOL] Shutdown discarded %d pending tasks", discarded)
	}

	if awaitTermination {
		return p.await(timeout)
	}
	return nil
}

// await blocks until all workers exit, bounded by timeout when non-zero.
func (p *Pool) await(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	if timeout <= 0 {
		<-done
		return nil
	}

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		p.mu.Lock()
		p.state = stateStopped
		p.queue = p.queue[:0]
		p.notEmpty.Broadcast()
		p.notFull.Broadcast()
		p.mu.Unlock()
		log.Printf("[POOL] Shutdown wait timed out after %v, abandoning remaining workers", timeout)
		return ErrShutdownTimeout
	}
}

// OptimalWorkerCount returns cores-1 clamped to [1, max]: one core is
// left for the caller during a bulk load, and max caps the pool on
// many-core machines. On a single core the result is 1, which callers
// use to pick the serial path.
func OptimalWorkerCount(max int) int {
	n := runtime.NumCPU() - 1
	if n < 1 {
		n = 1
	}
	if max > 0 && n > max {
		n = max
	}
	return n
}
