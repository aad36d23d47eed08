package alloc

import (
	"sync"

	"github.com/joshuapare/heapkit/heap/brk"
)

// Locked serialises every call on one Allocator.
type Locked struct {
	mu sync.Mutex
	a  *Allocator
}

// NewLocked creates a mutex-guarded allocator over mem.
func NewLocked(mem brk.Boundary, opts ...Option) *Locked {
	return &Locked{a: New(mem, opts...)}
}

func (l *Locked) Alloc(n int) (Ptr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Alloc(n)
}

func (l *Locked) Calloc(count, size int) (Ptr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Calloc(count, size)
}

func (l *Locked) Realloc(p Ptr, n int) (Ptr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Realloc(p, n)
}

func (l *Locked) Free(p Ptr) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.a.Free(p)
}

// Bytes returns the payload of p. The slice is only stable until the next
// call that may grow the heap; use With for multi-step access.
func (l *Locked) Bytes(p Ptr) []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Bytes(p)
}

// Stats returns a copy of the counters.
func (l *Locked) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.a.Stats()
}

// With runs fn with exclusive access to the underlying allocator.
func (l *Locked) With(fn func(a *Allocator)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.a)
}

var _ Heap = (*Locked)(nil)
