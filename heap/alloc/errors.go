package alloc

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMemory indicates the boundary refused to grow the heap.
	ErrNoMemory = errors.New("alloc: out of memory")

	// ErrTooLarge indicates a request whose size cannot be represented.
	ErrTooLarge = errors.New("alloc: request too large")

	// ErrNoFit indicates an exact-fit block was refused under ExactFitFail.
	ErrNoFit = errors.New("alloc: exact fit cannot be split")

	// ErrCorrupt is wrapped by every CorruptionError.
	ErrCorrupt = errors.New("alloc: heap corruption")
)

// CorruptionError describes a header or free-list integrity violation.
type CorruptionError struct {
	Op     string // "free", "realloc", "bytes", "freelist", ...
	Ptr    Ptr    // Pointer or block address involved
	Magic  uint32 // Sentinel found, when a header was read
	Reason string
}

func (e *CorruptionError) Error() string {
	if e.Magic != 0 {
		return fmt.Sprintf("alloc: %s(%v): %s (magic 0x%08X)", e.Op, e.Ptr, e.Reason, e.Magic)
	}
	return fmt.Sprintf("alloc: %s(%v): %s", e.Op, e.Ptr, e.Reason)
}

func (e *CorruptionError) Unwrap() error { return ErrCorrupt }

// PanicAbort is the default Abort: it panics with err. An unrecovered panic
// terminates the process.
func PanicAbort(err error) {
	panic(err)
}
