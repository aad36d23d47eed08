// Package mmfile provides platform-specific helpers for reserving a range of
// anonymous virtual memory and committing it page by page as a heap grows.
package mmfile

import (
	"errors"
	"fmt"
	"os"
	"unsafe"
)

var (
	// ErrReserveExhausted indicates a commit beyond the reserved range.
	ErrReserveExhausted = errors.New("mmfile: reservation exhausted")
	// ErrReleased indicates use of a region after Release.
	ErrReleased = errors.New("mmfile: region released")
)

// Region is a reserved range of virtual memory. Only the committed prefix
// may be touched.
type Region struct {
	mem       []byte
	committed int
	pageSize  int
	released  bool
}

// Reserve reserves n bytes of address space. Nothing is committed yet.
func Reserve(n int) (*Region, error) {
	if n <= 0 {
		return nil, fmt.Errorf("mmfile: invalid reservation size %d", n)
	}
	page := os.Getpagesize()
	mem, err := reserve(roundPage(n, page))
	if err != nil {
		return nil, fmt.Errorf("mmfile: reserve %d bytes: %w", n, err)
	}
	return &Region{mem: mem, pageSize: page}, nil
}

// Commit makes the first n bytes of the region readable and writable.
// Committing less than what is already committed is a no-op.
func (r *Region) Commit(n int) error {
	if r.released {
		return ErrReleased
	}
	if n > len(r.mem) {
		return fmt.Errorf("%w: need %d, reserved %d", ErrReserveExhausted, n, len(r.mem))
	}
	if n <= r.committed {
		return nil
	}
	target := min(roundPage(n, r.pageSize), len(r.mem))
	if err := commit(r.mem[r.committed:target]); err != nil {
		return fmt.Errorf("mmfile: commit [%d,%d): %w", r.committed, target, err)
	}
	r.committed = target
	return nil
}

// Bytes returns the committed prefix.
func (r *Region) Bytes() []byte {
	return r.mem[:r.committed:r.committed]
}

// Addr returns the address of the first reserved byte.
func (r *Region) Addr() uintptr {
	if len(r.mem) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&r.mem[0]))
}

// Reserved returns the size of the reservation.
func (r *Region) Reserved() int { return len(r.mem) }

// Committed returns how many bytes are currently committed.
func (r *Region) Committed() int { return r.committed }

// Release returns the reservation to the OS. Releasing twice is a no-op.
func (r *Region) Release() error {
	if r.released {
		return nil
	}
	r.released = true
	err := release(r.mem)
	r.mem, r.committed = nil, 0
	return err
}

func roundPage(n, page int) int {
	return (n + page - 1) / page * page
}
