// Package parallel distributes independent rows and columns of an image
// pass across a fixed set of goroutines.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a pool of goroutines for band-parallel image passes.
//
// Each worker owns a queue and steals from the others when its own queue is
// empty, so a slow band does not stall the whole pass.
//
// Thread safety: Pool is safe for concurrent use. A nil *Pool is valid and
// runs all work on the calling goroutine.
type Pool struct {
	workers int

	// queues holds per-worker work queues.
	queues []chan func()

	// mu orders submissions before Close so no band is queued after the
	// workers have drained and exited.
	mu      sync.RWMutex
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewPool creates a pool with the specified number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := workers * 4
	if queueSize < 8 {
		queueSize = 8
	}

	p := &Pool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), queueSize)
	}

	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
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
			p.drain(own)
			return

		case work := <-own:
			work()

		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
				continue
			}
			select {
			case <-p.done:
				p.drain(own)
				return
			case work := <-own:
				work()
			}
		}
	}
}

func (p *Pool) drain(queue chan func()) {
	for {
		select {
		case work := <-queue:
			work()
		default:
			return
		}
	}
}

// steal takes one item from another worker's queue, or returns nil.
func (p *Pool) steal(id int) func() {
	for i := range p.workers {
		if i == id {
			continue
		}
		select {
		case work := <-p.queues[i]:
			return work
		default:
		}
	}
	return nil
}

// Band is a half-open range [Lo, Hi) of line indices.
type Band struct {
	Lo, Hi int
}

// Bands splits [0, n) into at most Workers() contiguous bands of nearly
// equal size. A nil pool yields a single band.
func (p *Pool) Bands(n int) []Band {
	if n <= 0 {
		return nil
	}
	parts := p.Workers()
	if parts > n {
		parts = n
	}

	bands := make([]Band, parts)
	size, rem := n/parts, n%parts
	lo := 0
	for i := range bands {
		hi := lo + size
		if i < rem {
			hi++
		}
		bands[i] = Band{Lo: lo, Hi: hi}
		lo = hi
	}
	return bands
}

// Run calls fn once per band of [0, n) and waits for every call to return.
// Each index is covered by exactly one call. If the pool is nil, closed, or
// has a single worker, fn runs on the calling goroutine.
func (p *Pool) Run(n int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if p == nil || p.workers == 1 {
		fn(0, n)
		return
	}

	p.mu.RLock()
	if !p.IsRunning() {
		p.mu.RUnlock()
		fn(0, n)
		return
	}

	bands := p.Bands(n)

	var wg sync.WaitGroup
	wg.Add(len(bands))

	for i, b := range bands {
		p.queues[i%p.workers] <- func() {
			defer wg.Done()
			fn(b.Lo, b.Hi)
		}
	}
	p.mu.RUnlock()

	wg.Wait()
}

// Close stops the workers after queued work completes.
// Close is safe to call multiple times.
func (p *Pool) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.mu.Unlock()
		return
	}
	close(p.done)
	p.mu.Unlock()
	p.wg.Wait()
}

// Workers returns the number of workers in the pool, or 1 for a nil pool.
func (p *Pool) Workers() int {
	if p == nil {
		return 1
	}
	return p.workers
}

// IsRunning returns true if the pool is still accepting work.
func (p *Pool) IsRunning() bool {
	return p != nil && p.running.Load()
}
