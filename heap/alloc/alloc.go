package alloc

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joshuapare/heapkit/heap/brk"
	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// Allocator is a first-fit free-list allocator over one brk.Boundary.
type Allocator struct {
	mem  brk.Boundary
	opts Options
	log  *slog.Logger

	// trace caches whether debug records are wanted.
	trace bool

	// head is the first free block, Nil when the list is empty.
	head Ptr

	// O(1) neighbour indexes (nil unless IndexedCoalesce)
	// startIdx: block -> size (forward lookup)
	// endIdx: end address -> block (backward lookup)
	startIdx map[Ptr]uint64
	endIdx   map[Ptr]Ptr

	// segments records every growth in address order.
	segments []Segment

	stats Stats
}

// New creates an allocator over mem. The heap may already hold bytes that
// belong to someone else; they are never touched.
func New(mem brk.Boundary, opts ...Option) *Allocator {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.fillDefaults()

	a := &Allocator{
		mem:  mem,
		opts: o,
		log:  o.Logger,
	}
	a.trace = a.log.Enabled(context.Background(), slog.LevelDebug)
	if o.IndexedCoalesce {
		a.startIdx = make(map[Ptr]uint64)
		a.endIdx = make(map[Ptr]Ptr)
	}
	return a
}

// Alloc returns a 16-aligned pointer to at least n bytes. A zero-size request
// gets a minimal, distinct allocation.
func (a *Allocator) Alloc(n int) (Ptr, error) {
	a.stats.AllocCalls++
	p, err := a.alloc(n)
	if err != nil {
		a.stats.AllocFailures++
		return Nil, err
	}
	return p, nil
}

func (a *Allocator) alloc(n int) (Ptr, error) {
	need, err := capacity(n)
	if err != nil {
		return Nil, fmt.Errorf("%w: %d bytes", err, n)
	}

	if a.head != Nil {
		var (
			prev, hit Ptr
			node      format.FreeNode
		)
		a.each(func(cur Ptr, fn format.FreeNode) bool {
			if fn.Size >= need {
				hit, node = cur, fn
				return false
			}
			prev = cur
			return true
		})
		if hit != Nil {
			return a.take(prev, hit, node, n, need)
		}
	}

	b, err := a.grow(n, need)
	if err != nil {
		return Nil, err
	}
	a.stats.AllocSlowPath++
	a.stats.BytesAllocated += int64(format.HeaderSize + need)
	return payloadOf(b), nil
}

// take hands out listed free block b (preceded by prev in the list).
func (a *Allocator) take(prev, b Ptr, node format.FreeNode, n int, need uint64) (Ptr, error) {
	if rem, ok := a.split(b, need); ok {
		a.indexDel(b, node.Size)
		a.link(prev, rem)
		a.indexAdd(rem, node.Size-need-format.FreeBlockSize)
		a.stats.SplitCount++
		if a.trace {
			a.log.Debug("split", "block", b, "need", need, "remainder", rem)
		}
	} else {
		if a.opts.ExactFit == ExactFitFail {
			return Nil, fmt.Errorf("%w: block %v holds exactly %d bytes", ErrNoFit, b, need)
		}
		a.link(prev, Ptr(node.Next))
		a.indexDel(b, node.Size)
		a.stats.ExactFitCount++
	}

	a.stamp(b, n)
	a.stats.AllocFastPath++
	a.stats.BytesAllocated += int64(format.HeaderSize + need)
	return payloadOf(b), nil
}

// Calloc returns count*size zeroed bytes. The product is overflow-checked.
func (a *Allocator) Calloc(count, size int) (Ptr, error) {
	a.stats.CallocCalls++
	n, err := buf.SizeProduct(count, size)
	if err != nil {
		a.stats.AllocFailures++
		return Nil, fmt.Errorf("%w: %w", ErrTooLarge, err)
	}
	p, err := a.Alloc(n)
	if err != nil {
		return Nil, err
	}
	// Reused blocks carry old contents; clear the whole capacity.
	clear(a.payload(blockOf(p), capacityOf(uint64(n))))
	return p, nil
}

// Realloc allocates n bytes, copies min(old size, n) bytes from p, releases
// p and returns the new pointer. Realloc(Nil, n) is Alloc(n). When the new
// allocation fails p is left untouched.
func (a *Allocator) Realloc(p Ptr, n int) (Ptr, error) {
	a.stats.ReallocCalls++
	if p == Nil {
		return a.Alloc(n)
	}
	_, old := a.header("realloc", p)

	np, err := a.Alloc(n)
	if err != nil {
		return Nil, err
	}
	// Growth may have moved the heap bytes; take both views afterwards.
	copy(a.Bytes(np), a.Bytes(p)[:min(old.Size, uint64(n))])
	a.Free(p)
	return np, nil
}

// Free releases p. Free(Nil) is a no-op. A pointer whose header does not
// carry the sentinel aborts.
func (a *Allocator) Free(p Ptr) {
	if p == Nil {
		return
	}
	a.stats.FreeCalls++
	b, h := a.header("free", p)
	size := capacityOf(h.Size)
	a.stats.BytesFreed += int64(format.HeaderSize + size)

	a.setNode(b, format.FreeNode{Size: size})
	a.push(b)
	a.head = a.coalesce(b)
}

// Bytes returns the payload of p; len is the requested size, cap the same.
// The slice aliases heap memory and is invalidated by any later growth.
func (a *Allocator) Bytes(p Ptr) []byte {
	b, h := a.header("bytes", p)
	return a.payload(b, h.Size)
}

// Usable returns the payload capacity backing p, which may exceed its size.
func (a *Allocator) Usable(p Ptr) int {
	_, h := a.header("usable", p)
	return int(capacityOf(h.Size))
}

// Size returns the size p was allocated with.
func (a *Allocator) Size(p Ptr) int {
	_, h := a.header("size", p)
	return int(h.Size)
}

// Boundary returns the boundary the heap grows through.
func (a *Allocator) Boundary() brk.Boundary { return a.mem }

// corrupt reports an integrity violation. It never returns.
func (a *Allocator) corrupt(op string, p Ptr, magic uint32, reason string) {
	err := &CorruptionError{Op: op, Ptr: p, Magic: magic, Reason: reason}
	a.log.Error("heap corruption", "op", op, "ptr", p, "magic", magic, "reason", reason)
	a.opts.Abort(err)
	panic(err)
}

// Compile-time interface check
var _ Heap = (*Allocator)(nil)
