// Package alloc implements a first-fit free-list allocator over a single
// growable heap region.
//
// # Overview
//
// An Allocator hands out payloads carved from the memory of a brk.Boundary.
// Every payload is preceded by a 16-byte header holding the requested size and
// a magic sentinel. Released blocks are overlaid with a free-list node (size
// and next link) in the same bytes and pushed on a singly linked free list.
//
//	allocated:  [ size | magic | 0 ][ payload ......... ]
//	free:       [ size | next      ][ unused .......... ]
//	            ^ block address     ^ payload pointer (block + 16)
//
// Both overheads are 16 bytes, equal to the alignment, and payload capacities
// are rounded up to 16, so every block start and every payload pointer is
// 16-byte aligned.
//
// # Allocation
//
// Alloc scans the free list head-to-tail and takes the first block whose size
// covers the request (first fit). When the block is large enough to leave a
// remainder node behind, it is split and the remainder takes the block's place
// in the list. An exact fit is handed out whole, or refused when the allocator
// was built WithExactFit(ExactFitFail). When nothing fits the heap grows
// through the Boundary, padding the old break up to the next 16-byte boundary.
//
// # Release
//
// Free validates the header, turns the block into a free node at the list head
// and merges it with free blocks that are physically adjacent in the address
// space, regardless of where they sit in the list. Neighbours are found by
// scanning the list, or through start/end indexes WithIndexedCoalesce(true).
//
// # Corruption
//
// A header whose sentinel does not match (double free, foreign pointer,
// overwritten header) or a damaged free list cannot be repaired. The allocator
// reports a *CorruptionError to Options.Abort, which must not return; the
// default panics.
//
// # Usage Example
//
//	mem := brk.NewSim(brk.SimOptions{})
//	a := alloc.New(mem)
//
//	p, err := a.Alloc(64)
//	if err != nil {
//	    return err
//	}
//	copy(a.Bytes(p), payload)
//
//	p, err = a.Realloc(p, 256)
//	if err != nil {
//	    return err
//	}
//	a.Free(p)
//
// # Thread Safety
//
// Allocator instances are not safe for concurrent use. Wrap one in NewLocked
// to share it between goroutines.
package alloc
