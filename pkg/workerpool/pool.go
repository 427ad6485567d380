// Package workerpool runs tasks on a fixed set of goroutines behind a
// bounded queue. Submit never blocks; a full queue is the caller's problem.
//
//	pool := workerpool.New("mail", 4, 64)
//	defer pool.Shutdown()
//
//	if err := pool.Submit(task); errors.Is(err, workerpool.ErrFull) {
//	    task() // run inline
//	}
package workerpool

import (
	"errors"
	"sync"

	"github.com/nutrieve/nutrieve/pkg/logger"
)

var (
	ErrFull   = errors.New("workerpool: queue is full")
	ErrClosed = errors.New("workerpool: pool is shut down")
)

type Pool struct {
	name  string
	tasks chan func()
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// New starts workers goroutines reading from a queue of the given depth.
func New(name string, workers, queue int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queue < 0 {
		queue = 0
	}

	p := &Pool{name: name, tasks: make(chan func(), queue)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.run()
	}
	return p
}

// Submit queues task, or returns ErrFull / ErrClosed without waiting.
func (p *Pool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}
	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrFull
	}
}

// Shutdown stops intake and waits for every queued task to finish.
// Later calls return immediately.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) run() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.safeRun(task)
	}
}

func (p *Pool) safeRun(task func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("workerpool: task panicked", "pool", p.name, "panic", r)
		}
	}()
	task()
}
