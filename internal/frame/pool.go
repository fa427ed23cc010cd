package frame

import "sync"

// Pool is a thread-safe pool of sample buffers grouped by length.
//
// The blur engines take one scratch line per band on every pass; Pool
// lets repeated calls on same-sized frames reuse those lines instead of
// allocating new ones.
type Pool[T Sample] struct {
	mu      sync.Mutex
	buckets map[int][][]T
	maxSize int // max buffers per bucket
}

// NewPool creates a pool keeping at most maxPerBucket buffers per length.
// Zero means unlimited.
func NewPool[T Sample](maxPerBucket int) *Pool[T] {
	return &Pool[T]{
		buckets: make(map[int][][]T),
		maxSize: maxPerBucket,
	}
}

// Get returns a zeroed buffer of length n, reused when one is available.
func (p *Pool[T]) Get(n int) []T {
	p.mu.Lock()
	bucket := p.buckets[n]
	if len(bucket) > 0 {
		buf := bucket[len(bucket)-1]
		p.buckets[n] = bucket[:len(bucket)-1]
		p.mu.Unlock()

		clear(buf)
		return buf
	}
	p.mu.Unlock()

	return make([]T, n)
}

// Put returns buf to the pool. Nil and empty buffers are discarded, as
// are buffers whose bucket is full.
func (p *Pool[T]) Put(buf []T) {
	if len(buf) == 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[len(buf)]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[len(buf)] = append(bucket, buf)
}
