package worker

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_RunsAllTasksOnDrain(t *testing.T) {
	for _, workers := range []int{1, 4} {
		var count int64
		pool := New(workers, 64)

		const tasks = 50
		for i := 0; i < tasks; i++ {
			err := pool.Submit(TaskFunc(func() error {
				atomic.AddInt64(&count, 1)
				return nil
			}))
			if err != nil {
				t.Fatalf("workers=%d: Submit failed: %v", workers, err)
			}
		}

		if err := pool.Shutdown(true, true); err != nil {
			t.Fatalf("workers=%d: Shutdown failed: %v", workers, err)
		}
		if got := atomic.LoadInt64(&count); got != tasks {
			t.Errorf("workers=%d: expected %d tasks run, got %d", workers, tasks, got)
		}
	}
}

func TestPool_SubmitAfterShutdownFails(t *testing.T) {
	pool := New(1, 1)
	if err := pool.Shutdown(true, true); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	err := pool.Submit(TaskFunc(func() error { return nil }))
	if !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Expected ErrPoolClosed, got %v", err)
	}
}

func TestPool_ShutdownIdempotent(t *testing.T) {
	pool := New(2, 4)
	if err := pool.Shutdown(true, true); err != nil {
		t.Fatalf("First shutdown failed: %v", err)
	}
	if err := pool.Shutdown(true, true); err != nil {
		t.Errorf("Second shutdown on stopped pool should be a no-op, got %v", err)
	}
	if err := pool.Shutdown(false, false); err != nil {
		t.Errorf("Non-blocking shutdown on stopped pool should be a no-op, got %v", err)
	}
}

func TestPool_TaskFailureIsIsolated(t *testing.T) {
	var ran int64
	pool := New(1, 8)

	_ = pool.Submit(TaskFunc(func() error { return errors.New("bad candidate") }))
	_ = pool.Submit(TaskFunc(func() error { panic("worse candidate") }))
	_ = pool.Submit(TaskFunc(func() error {
		atomic.AddInt64(&ran, 1)
		return nil
	}))

	if err := pool.Shutdown(true, true); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if atomic.LoadInt64(&ran) != 1 {
		t.Error("Expected work to continue after a failing and a panicking task")
	}
}

func TestPool_Backpressure(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	pool := New(1, 1)

	// Occupy the single worker, then fill the one queue slot.
	_ = pool.Submit(TaskFunc(func() error {
		close(started)
		<-release
		return nil
	}))
	<-started
	_ = pool.Submit(TaskFunc(func() error { return nil }))

	blocked := make(chan error, 1)
	go func() {
		blocked <- pool.Submit(TaskFunc(func() error { return nil }))
	}()

	select {
	case err := <-blocked:
		t.Fatalf("Expected Submit to block on a full queue, returned %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	close(release)

	select {
	case err := <-blocked:
		if err != nil {
			t.Errorf("Expected blocked Submit to succeed once drained, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Submit did not unblock after the worker drained the queue")
	}

	_ = pool.Shutdown(true, true)
}

func TestPool_NonBlockingTeardown(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	pool := New(1, 100)
	_ = pool.Submit(TaskFunc(func() error {
		<-release
		return nil
	}))
	var discarded int64
	for i := 0; i < 50; i++ {
		_ = pool.Submit(TaskFunc(func() error {
			atomic.AddInt64(&discarded, 1)
			return nil
		}))
	}

	start := time.Now()
	if err := pool.Shutdown(false, false); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Expected immediate return, took %v", elapsed)
	}
	if atomic.LoadInt64(&discarded) != 0 {
		t.Error("Expected queued tasks to be discarded, but some ran immediately")
	}
}

func TestPool_DiscardLetsInFlightFinish(t *testing.T) {
	started := make(chan struct{})
	finished := make(chan struct{})

	pool := New(1, 4)
	_ = pool.Submit(TaskFunc(func() error {
		close(started)
		time.Sleep(50 * time.Millisecond)
		close(finished)
		return nil
	}))

	<-started
	if err := pool.Shutdown(false, true); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	select {
	case <-finished:
	default:
		t.Error("Expected the in-flight task to run to completion")
	}
}

func TestPool_ShutdownUnblocksPendingSubmit(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	started := make(chan struct{})
	pool := New(1, 1)
	_ = pool.Submit(TaskFunc(func() error {
		close(started)
		<-release
		return nil
	}))
	<-started
	_ = pool.Submit(TaskFunc(func() error { return nil }))

	blocked := make(chan error, 1)
	go func() {
		blocked <- pool.Submit(TaskFunc(func() error { return nil }))
	}()
	time.Sleep(50 * time.Millisecond)

	_ = pool.Shutdown(false, false)

	select {
	case err := <-blocked:
		if !errors.Is(err, ErrPoolClosed) {
			t.Errorf("Expected ErrPoolClosed for the woken submitter, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Blocked Submit was not woken by shutdown")
	}
}

func TestPool_AwaitTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	pool := New(1, 4)
	pool.SetAwaitTimeout(50 * time.Millisecond)
	_ = pool.Submit(TaskFunc(func() error {
		<-release
		return nil
	}))

	err := pool.Shutdown(true, true)
	if !errors.Is(err, ErrShutdownTimeout) {
		t.Errorf("Expected ErrShutdownTimeout while a task hangs, got %v", err)
	}
}

func TestPool_ConcurrentSubmitters(t *testing.T) {
	var count int64
	pool := New(4, 8)

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				_ = pool.Submit(TaskFunc(func() error {
					atomic.AddInt64(&count, 1)
					return nil
				}))
			}
		}()
	}
	wg.Wait()

	if err := pool.Shutdown(true, true); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if got := atomic.LoadInt64(&count); got != 100 {
		t.Errorf("Expected 100 tasks run, got %d", got)
	}
}

func TestPool_FloorsOnConstruction(t *testing.T) {
	pool := New(0, 0)
	if pool.Workers() != 1 {
		t.Errorf("Expected worker count floored to 1, got %d", pool.Workers())
	}
	_ = pool.Shutdown(true, true)
}

func TestOptimalWorkerCount(t *testing.T) {
	if got := OptimalWorkerCount(1); got != 1 {
		t.Errorf("Expected cap of 1, got %d", got)
	}
	if got := OptimalWorkerCount(0); got < 1 {
		t.Errorf("Expected at least 1 worker, got %d", got)
	}
}
