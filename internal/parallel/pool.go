// Package parallel splits per-frame pixel work into row bands and runs the
// bands on a fixed set of worker goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// minBandRows keeps bands large enough that scheduling stays cheaper than
// the fill itself.
const minBandRows = 16

// Pool is a fixed set of workers, each with its own queue. An idle worker
// steals from the other queues before blocking on its own.
//
// Pool is safe for concurrent use.
type Pool struct {
	workers int
	queues  []chan func()
	done    chan struct{}
	wg      sync.WaitGroup

	// mu orders task submission against Close: Run enqueues under the
	// read lock, so no task lands in a queue after the workers drained it.
	mu     sync.RWMutex
	closed bool
}

// NewPool starts a pool with n workers. If n is 0 or negative,
// GOMAXPROCS is used.
func NewPool(n int) *Pool {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		workers: n,
		queues:  make([]chan func(), n),
		done:    make(chan struct{}),
	}
	for i := range n {
		p.queues[i] = make(chan func(), max(4*n, 8))
	}

	p.wg.Add(n)
	for i := range n {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	own := p.queues[id]
	for {
		select {
		case <-p.done:
			drain(own)
			return
		case fn := <-own:
			fn()
			continue
		default:
		}

		if fn := p.steal(id); fn != nil {
			fn()
			continue
		}
		select {
		case <-p.done:
			drain(own)
			return
		case fn := <-own:
			fn()
		}
	}
}

func drain(q chan func()) {
	for {
		select {
		case fn := <-q:
			fn()
		default:
			return
		}
	}
}

func (p *Pool) steal(id int) func() {
	for i := range p.workers {
		if i == id {
			continue
		}
		select {
		case fn := <-p.queues[i]:
			return fn
		default:
		}
	}
	return nil
}

// Run executes every task and waits for all of them. After Close the tasks
// run on the calling goroutine.
func (p *Pool) Run(tasks []func()) {
	if len(tasks) == 0 {
		return
	}
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		for _, fn := range tasks {
			fn()
		}
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for i, fn := range tasks {
		p.queues[i%p.workers] <- func() {
			defer wg.Done()
			fn()
		}
	}
	p.mu.RUnlock()
	wg.Wait()
}

// Rows calls fn for disjoint [lo, hi) bands that cover [0, height) and
// waits for all of them.
func (p *Pool) Rows(height int, fn func(lo, hi int)) {
	bands := Bands(height, p.workers)
	tasks := make([]func(), len(bands))
	for i, b := range bands {
		tasks[i] = func() { fn(b[0], b[1]) }
	}
	p.Run(tasks)
}

// Bands splits [0, height) into at most parts contiguous [lo, hi) ranges
// of at least minBandRows rows, except when height itself is smaller.
func Bands(height, parts int) [][2]int {
	if height <= 0 {
		return nil
	}
	parts = max(1, min(parts, (height+minBandRows-1)/minBandRows))
	out := make([][2]int, 0, parts)
	lo := 0
	for i := range parts {
		hi := height * (i + 1) / parts
		if hi > lo {
			out = append(out, [2]int{lo, hi})
		}
		lo = hi
	}
	return out
}

// Workers returns the number of workers.
func (p *Pool) Workers() int { return p.workers }

// Close stops the workers after the queued tasks finish. It waits for a
// concurrent Run to finish submitting. It is safe to call more than once.
// Tasks must not call Run on the pool they run on while Close is pending.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.done)
	p.mu.Unlock()
	p.wg.Wait()
}
