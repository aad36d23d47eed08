// Package brk abstracts the program-break primitive a heap grows through.
//
// A Boundary owns one contiguous address range [Base, Break). Sbrk moves the
// break forward and reports the previous break, exactly like the classic
// sbrk(2) call; Sbrk(0) reads the break without moving it. The heap never
// shrinks, so negative increments are rejected.
//
// Two implementations are provided:
//
//   - Sim: a simulated break over a Go byte slice with a configurable base
//     address and limit. Used by tests and as heapctl's default backend.
//   - Mapped: a break over reserved virtual memory whose pages are committed
//     as the break advances (see internal/mmfile).
//
// Slices returned by Bytes alias the heap memory. A Sim may move its backing
// array when it grows, so callers re-fetch Bytes after every Sbrk.
package brk

import (
	"errors"
	"fmt"
)

// Addr is an address inside a Boundary's address space. Zero is never a valid
// heap address.
type Addr uint64

var (
	// ErrNoMemory is the Go rendition of sbrk's (void*)-1: the boundary
	// refused to move.
	ErrNoMemory = errors.New("brk: cannot extend heap")

	// ErrShrink indicates a negative increment.
	ErrShrink = errors.New("brk: heap cannot shrink")
)

// Boundary is the OS data-segment-extension primitive.
type Boundary interface {
	// Base returns the address of the first heap byte.
	Base() Addr

	// Sbrk moves the break by incr bytes and returns the previous break.
	// On failure the break does not move and the error wraps ErrNoMemory
	// or ErrShrink.
	Sbrk(incr int) (Addr, error)

	// Bytes returns the memory in [Base, Break).
	Bytes() []byte
}

// Offset converts an address to an index into b.Bytes().
// ok is false when addr lies before the base.
func Offset(b Boundary, addr Addr) (int, bool) {
	base := b.Base()
	if addr < base {
		return 0, false
	}
	return int(addr - base), true
}

// String formats the address in hex.
func (a Addr) String() string {
	return fmt.Sprintf("0x%X", uint64(a))
}
