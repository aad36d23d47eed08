package alloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/format"
)

// Stats holds operation counters. Byte counters include block headers.
type Stats struct {
	// Growth
	GrowCalls int64 // Successful Sbrk extensions
	GrowBytes int64 // Bytes added to the heap, padding included
	PadBytes  int64 // Alignment padding in front of grown blocks

	// Operations
	AllocCalls    int64
	AllocFastPath int64 // Served from the free list
	AllocSlowPath int64 // Served by growing the heap
	AllocFailures int64
	CallocCalls   int64
	ReallocCalls  int64
	FreeCalls     int64

	BytesAllocated int64
	BytesFreed     int64

	// Free list
	SplitCount       int64
	ExactFitCount    int64
	CoalesceForward  int64
	CoalesceBackward int64
}

// Stats returns a copy of the counters.
func (a *Allocator) Stats() Stats { return a.stats }

// Segments returns the recorded growth ranges in address order.
func (a *Allocator) Segments() []Segment {
	out := make([]Segment, len(a.segments))
	copy(out, a.segments)
	return out
}

// FreeList returns the free blocks in list order.
func (a *Allocator) FreeList() []Block {
	var out []Block
	a.each(func(b Ptr, n format.FreeNode) bool {
		out = append(out, Block{Addr: b, Size: n.Size, Capacity: n.Size, Free: true})
		return true
	})
	return out
}

// Walk visits every block the allocator owns in address order, stopping when
// fn returns false. Runs of back-to-back segments are walked as one range
// since coalescing may merge blocks across a segment boundary. Walk reports
// damage as an error wrapping ErrCorrupt instead of aborting.
func (a *Allocator) Walk(fn func(Block) bool) error {
	free := a.freeSet()
	data := a.mem.Bytes()
	base := a.mem.Base()

	for i := 0; i < len(a.segments); {
		start, end := a.segments[i].Start, a.segments[i].End
		for i++; i < len(a.segments) && a.segments[i].Start == end; i++ {
			end = a.segments[i].End
		}

		for cur := start; cur < end; {
			off := int(cur - base)
			var blk Block
			if size, ok := free[cur]; ok {
				blk = Block{Addr: cur, Size: size, Capacity: size, Free: true}
			} else {
				h, err := format.DecodeHeader(data, off)
				if err != nil {
					return &CorruptionError{Op: "walk", Ptr: cur, Reason: err.Error()}
				}
				if !h.Valid() {
					return &CorruptionError{Op: "walk", Ptr: cur, Magic: h.Magic, Reason: "bad magic"}
				}
				if h.Size > maxRequest {
					return &CorruptionError{Op: "walk", Ptr: cur, Magic: h.Magic, Reason: "header size out of range"}
				}
				blk = Block{Addr: cur, Size: h.Size, Capacity: capacityOf(h.Size)}
			}
			if blk.End() > end {
				return &CorruptionError{Op: "walk", Ptr: cur, Reason: fmt.Sprintf("block overruns segment end %v", end)}
			}
			if !fn(blk) {
				return nil
			}
			cur = blk.End()
		}
	}
	return nil
}

func (a *Allocator) freeSet() map[Ptr]uint64 {
	if a.startIdx != nil {
		return a.startIdx
	}
	set := make(map[Ptr]uint64)
	a.each(func(b Ptr, n format.FreeNode) bool {
		set[b] = n.Size
		return true
	})
	return set
}

// Usage summarises the heap layout.
type Usage struct {
	HeapBytes   int // Bytes between base and break
	OwnedBytes  int // Bytes covered by segments
	Blocks      int
	AllocBlocks int
	FreeBlocks  int
	Requested   uint64 // Sum of allocated sizes
	AllocBytes  uint64 // Sum of allocated capacities
	FreeBytes   uint64 // Sum of free capacities
	LargestFree uint64
	Overhead    uint64 // Headers plus alignment padding
}

// Usage walks the heap and totals its blocks.
func (a *Allocator) Usage() (Usage, error) {
	u := Usage{HeapBytes: len(a.mem.Bytes())}
	for _, s := range a.segments {
		u.OwnedBytes += s.Len()
		u.Overhead += uint64(s.Pad)
	}
	err := a.Walk(func(b Block) bool {
		u.Blocks++
		u.Overhead += format.HeaderSize
		if b.Free {
			u.FreeBlocks++
			u.FreeBytes += b.Capacity
			u.LargestFree = max(u.LargestFree, b.Capacity)
		} else {
			u.AllocBlocks++
			u.Requested += b.Size
			u.AllocBytes += b.Capacity
		}
		return true
	})
	return u, err
}
