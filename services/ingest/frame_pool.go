package ingest

import (
	"sync"
)

// FramePool is a fixed set of reusable frame buffers. Acquisition never
// blocks: an empty pool means every buffer is still held by a consumer.
type FramePool[T any] struct {
	// pool of buffers
	buffers chan T
	// size of pool
	size int

	mu     sync.Mutex
	closed bool
}

// NewFramePool allocates size buffers up front with alloc.
func NewFramePool[T any](size int, alloc func() T) *FramePool[T] {
	p := &FramePool[T]{
		buffers: make(chan T, size),
		size:    size,
	}
	for i := 0; i < size; i++ {
		p.Return(alloc())
	}
	return p
}

// TryGet takes a buffer from the pool, or reports false when none is free.
func (p *FramePool[T]) TryGet() (T, bool) {
	select {
	case b, ok := <-p.buffers:
		return b, ok
	default:
		var zero T
		return zero, false
	}
}

// Return a buffer to the pool
func (p *FramePool[T]) Return(b T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.buffers <- b:
	default:
		// pool is full
	}
}

// Available is the number of buffers currently in the pool.
func (p *FramePool[T]) Available() int { return len(p.buffers) }

// Size is the total number of buffers the pool was created with.
func (p *FramePool[T]) Size() int { return p.size }

// Close drains the pool. Buffers returned afterwards are discarded.
func (p *FramePool[T]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.buffers)
	for range p.buffers {
	}
}
