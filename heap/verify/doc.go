// Package verify checks the structural invariants of an alloc.Allocator's
// heap. It is used by tests after every mutation and by heapctl's dump
// command.
//
// # Checks
//
//   - Segments: growth ranges are ordered and aligned, lie inside
//     [Base, Break), and sum to the grown byte count
//   - Blocks: every allocated header carries the sentinel and the blocks of
//     each run of adjacent segments tile it exactly
//   - FreeList: every listed block starts on a block boundary and is listed
//     once, and the list holds every free block
//   - Coalesced: no two free blocks are physically adjacent
//   - Conservation: headers, payload capacities and padding add up to the
//     grown byte count
//
// AllInvariants runs them in that order and returns the first failure:
//
//	if err := verify.AllInvariants(a); err != nil {
//	    t.Fatalf("heap invalid: %v", err)
//	}
//
// Every failure is a *ValidationError naming the check, the address involved
// (zero when there is none) and optional details.
package verify
