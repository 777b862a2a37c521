package dispatch

import (
	"log/slog"
	"runtime/debug"
	"sync"
)

// Pool runs submitted tasks on background goroutines with at most workers
// tasks executing at once. Submit never blocks the caller.
//
// Usage:
//
//	pool := NewPool(2)
//	defer pool.Close()
//	pool.Submit(func() { ... })
type Pool struct {
	slots chan struct{}
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewPool creates a pool; workers <= 0 is normalised to 1.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{slots: make(chan struct{}, workers)}
}

// Submit schedules task. Tasks submitted after Close are dropped.
func (p *Pool) Submit(task func()) {
	if task == nil {
		return
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		slog.Debug("task submitted to closed pool")
		return
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		p.slots <- struct{}{}
		defer func() { <-p.slots }()
		runGuarded("pool", task)
	}()
}

// Close stops accepting tasks and waits for outstanding ones.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.wg.Wait()
}

func runGuarded(component string, task func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("task panicked", "component", component, "panic", r, "stack", string(debug.Stack()))
		}
	}()
	task()
}
