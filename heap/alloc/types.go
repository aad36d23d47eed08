package alloc

import (
	"github.com/joshuapare/heapkit/heap/brk"
	"github.com/joshuapare/heapkit/internal/format"
)

// Ptr is a payload pointer (or, internally, a block address) in the heap's
// address space.
type Ptr = brk.Addr

// Nil is the null pointer.
const Nil Ptr = 0

// Heap is the allocate / zero-allocate / reallocate / release surface.
//
// Implementations:
//   - Allocator: the single-goroutine free-list allocator
//   - Locked: a mutex-guarded Allocator
type Heap interface {
	// Alloc returns a pointer to at least n bytes.
	Alloc(n int) (Ptr, error)

	// Calloc returns a pointer to count*size zeroed bytes.
	Calloc(count, size int) (Ptr, error)

	// Realloc moves p's contents into a fresh block of n bytes and releases p.
	Realloc(p Ptr, n int) (Ptr, error)

	// Free releases p. Free(Nil) is a no-op.
	Free(p Ptr)

	// Bytes returns the payload of p, len == requested size.
	Bytes(p Ptr) []byte
}

// Block is one physical block as seen by Walk and FreeList.
type Block struct {
	Addr     Ptr    // Header / node address
	Size     uint64 // Requested size (allocated) or node size (free)
	Capacity uint64 // Payload bytes backing the block
	Free     bool
}

// Payload returns the pointer a caller holds for this block.
func (b Block) Payload() Ptr { return b.Addr + format.HeaderSize }

// End returns the first address past the block.
func (b Block) End() Ptr { return b.Addr + format.HeaderSize + Ptr(b.Capacity) }

// Segment is the byte range one growth call added to the heap, excluding the
// alignment padding in front of it.
type Segment struct {
	Start Ptr
	End   Ptr
	Pad   int
}

// Len returns the segment size in bytes.
func (s Segment) Len() int { return int(s.End - s.Start) }
