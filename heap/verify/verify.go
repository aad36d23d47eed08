package verify

import (
	"errors"
	"fmt"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/format"
)

// ValidationError describes one failed check.
type ValidationError struct {
	Type    string
	Message string
	Addr    alloc.Ptr
	Details map[string]any
}

func (e *ValidationError) Error() string {
	if e.Addr != alloc.Nil {
		return fmt.Sprintf("%s at %v: %s", e.Type, e.Addr, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// AllInvariants validates every heap invariant in one call.
// Returns the first error encountered, or nil if all checks pass.
func AllInvariants(a *alloc.Allocator) error {
	checks := []func(*alloc.Allocator) error{
		Segments,
		Blocks,
		FreeList,
		Coalesced,
		Conservation,
	}
	for _, check := range checks {
		if err := check(a); err != nil {
			return err
		}
	}
	return nil
}

// Segments validates the recorded growth ranges.
func Segments(a *alloc.Allocator) error {
	mem := a.Boundary()
	base := mem.Base()
	brkAddr := base + alloc.Ptr(len(mem.Bytes()))

	var prevEnd alloc.Ptr
	var grown int64
	for i, s := range a.Segments() {
		switch {
		case !format.IsAligned(uint64(s.Start)):
			return &ValidationError{Type: "Segments", Addr: s.Start, Message: "segment start not aligned"}
		case s.Pad < 0 || s.Pad >= format.Alignment:
			return &ValidationError{Type: "Segments", Addr: s.Start, Message: fmt.Sprintf("padding %d out of range", s.Pad)}
		case s.End <= s.Start:
			return &ValidationError{Type: "Segments", Addr: s.Start, Message: "empty segment"}
		case s.Start-alloc.Ptr(s.Pad) < base || s.End > brkAddr:
			return &ValidationError{
				Type:    "Segments",
				Addr:    s.Start,
				Message: "segment outside heap",
				Details: map[string]any{"base": base, "break": brkAddr, "end": s.End},
			}
		case i > 0 && s.Start-alloc.Ptr(s.Pad) < prevEnd:
			return &ValidationError{Type: "Segments", Addr: s.Start, Message: fmt.Sprintf("segment overlaps previous end %v", prevEnd)}
		}
		prevEnd = s.End
		grown += int64(s.Len() + s.Pad)
	}

	if st := a.Stats(); grown != st.GrowBytes {
		return &ValidationError{
			Type:    "Segments",
			Message: fmt.Sprintf("segments cover %d bytes, grown %d", grown, st.GrowBytes),
			Details: map[string]any{"segments": grown, "grown": st.GrowBytes},
		}
	}
	return nil
}

// Blocks validates headers and tiling by walking the heap.
func Blocks(a *alloc.Allocator) error {
	var verr *ValidationError
	err := a.Walk(func(b alloc.Block) bool {
		if !format.IsAligned(uint64(b.Payload())) {
			verr = &ValidationError{Type: "Blocks", Addr: b.Addr, Message: "payload not aligned"}
			return false
		}
		return true
	})
	if err != nil {
		return walkError("Blocks", err)
	}
	if verr != nil {
		return verr
	}
	return nil
}

// FreeList validates list membership against the walked layout.
func FreeList(a *alloc.Allocator) error {
	free := map[alloc.Ptr]bool{}
	if err := a.Walk(func(b alloc.Block) bool {
		if b.Free {
			free[b.Addr] = false
		}
		return true
	}); err != nil {
		return walkError("FreeList", err)
	}

	for _, b := range a.FreeList() {
		seen, ok := free[b.Addr]
		if !ok {
			return &ValidationError{Type: "FreeList", Addr: b.Addr, Message: "listed block is not on a block boundary"}
		}
		if seen {
			return &ValidationError{Type: "FreeList", Addr: b.Addr, Message: "block listed twice"}
		}
		free[b.Addr] = true
	}
	for addr, seen := range free {
		if !seen {
			return &ValidationError{Type: "FreeList", Addr: addr, Message: "free block missing from list"}
		}
	}
	return nil
}

// Coalesced validates that no two free blocks touch.
func Coalesced(a *alloc.Allocator) error {
	var prev alloc.Block
	var verr *ValidationError
	err := a.Walk(func(b alloc.Block) bool {
		if b.Free && prev.Free && prev.End() == b.Addr {
			verr = &ValidationError{
				Type:    "Coalesced",
				Addr:    b.Addr,
				Message: fmt.Sprintf("free block adjacent to free block at %v", prev.Addr),
			}
			return false
		}
		prev = b
		return true
	})
	if err != nil {
		return walkError("Coalesced", err)
	}
	if verr != nil {
		return verr
	}
	return nil
}

// Conservation validates that every grown byte is accounted for.
func Conservation(a *alloc.Allocator) error {
	u, err := a.Usage()
	if err != nil {
		return walkError("Conservation", err)
	}
	got := u.Overhead + u.AllocBytes + u.FreeBytes
	if want := uint64(a.Stats().GrowBytes); got != want {
		return &ValidationError{
			Type:    "Conservation",
			Message: fmt.Sprintf("blocks account for %d bytes, grown %d", got, want),
			Details: map[string]any{
				"overhead": u.Overhead,
				"alloc":    u.AllocBytes,
				"free":     u.FreeBytes,
				"grown":    want,
			},
		}
	}
	return nil
}

func walkError(check string, err error) error {
	var ce *alloc.CorruptionError
	if errors.As(err, &ce) {
		ve := &ValidationError{Type: check, Addr: ce.Ptr, Message: ce.Reason}
		if ce.Magic != 0 {
			ve.Details = map[string]any{"magic": ce.Magic}
		}
		return ve
	}
	return &ValidationError{Type: check, Message: err.Error()}
}
