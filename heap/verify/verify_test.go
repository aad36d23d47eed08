package verify

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/brk"
	"github.com/joshuapare/heapkit/internal/format"
	"github.com/joshuapare/heapkit/internal/logger"
)

func newAllocator(t *testing.T, base brk.Addr, opts ...alloc.Option) *alloc.Allocator {
	t.Helper()
	opts = append([]alloc.Option{alloc.WithLogger(logger.Discard())}, opts...)
	return alloc.New(brk.NewSim(brk.SimOptions{Base: base}), opts...)
}

// offsetOf converts an address to an index into the heap bytes.
func offsetOf(a *alloc.Allocator, p alloc.Ptr) int {
	return int(p - a.Boundary().Base())
}

// TestAllInvariants_Empty tests that a fresh allocator is valid.
func TestAllInvariants_Empty(t *testing.T) {
	require.NoError(t, AllInvariants(newAllocator(t, 0)))
}

// TestAllInvariants_RandomOps runs seeded random alloc/calloc/realloc/free
// sequences and validates every invariant after each step.
func TestAllInvariants_RandomOps(t *testing.T) {
	for _, tc := range []struct {
		name    string
		base    brk.Addr
		indexed bool
		policy  alloc.ExactFitPolicy
	}{
		{"scan", 0x10000, false, alloc.ExactFitConsume},
		{"indexed", 0x10000, true, alloc.ExactFitConsume},
		{"unaligned base", 0x10009, false, alloc.ExactFitConsume},
		{"exact fit fails", 0x10000, true, alloc.ExactFitFail},
	} {
		t.Run(tc.name, func(t *testing.T) {
			a := newAllocator(t, tc.base, alloc.WithIndexedCoalesce(tc.indexed), alloc.WithExactFit(tc.policy))
			rng := rand.New(rand.NewSource(42)) // Fixed seed for reproducibility

			type live struct {
				p    alloc.Ptr
				fill byte
			}
			var lives []live

			check := func(step int) {
				require.NoError(t, AllInvariants(a), "step %d", step)
				for _, l := range lives {
					for _, c := range a.Bytes(l.p) {
						require.Equal(t, l.fill, c, "step %d: payload %v overwritten", step, l.p)
					}
				}
			}

			for step := range 500 {
				switch op := rng.Intn(10); {
				case op < 4 || len(lives) == 0:
					p, err := a.Alloc(rng.Intn(600))
					if err != nil {
						require.ErrorIs(t, err, alloc.ErrNoFit)
						break
					}
					f := byte(step)
					for i := range a.Bytes(p) {
						a.Bytes(p)[i] = f
					}
					lives = append(lives, live{p, f})
				case op < 5:
					p, err := a.Calloc(rng.Intn(8), rng.Intn(64))
					if err != nil {
						require.ErrorIs(t, err, alloc.ErrNoFit)
						break
					}
					lives = append(lives, live{p, 0})
				case op < 7:
					i := rng.Intn(len(lives))
					n := rng.Intn(600)
					np, err := a.Realloc(lives[i].p, n)
					if err != nil {
						require.ErrorIs(t, err, alloc.ErrNoFit)
						break
					}
					// Only the copied prefix keeps the fill; restamp the rest.
					for j := range a.Bytes(np) {
						a.Bytes(np)[j] = lives[i].fill
					}
					lives[i].p = np
				default:
					i := rng.Intn(len(lives))
					a.Free(lives[i].p)
					lives = append(lives[:i], lives[i+1:]...)
				}
				check(step)
			}

			for _, l := range lives {
				a.Free(l.p)
			}
			require.NoError(t, AllInvariants(a))

			u, err := a.Usage()
			require.NoError(t, err)
			require.Zero(t, u.AllocBlocks)
		})
	}
}

// TestBlocks_BadMagic tests detection of an overwritten header.
func TestBlocks_BadMagic(t *testing.T) {
	a := newAllocator(t, 0)
	_, err := a.Alloc(32)
	require.NoError(t, err)
	p, err := a.Alloc(32)
	require.NoError(t, err)

	off := offsetOf(a, p) - format.HeaderSize
	format.PutU32(a.Boundary().Bytes(), off+format.HeaderMagicOffset, 0xCAFEF00D)

	err = AllInvariants(a)
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "Blocks", ve.Type)
	require.Equal(t, p-format.HeaderSize, ve.Addr)
	require.Equal(t, uint32(0xCAFEF00D), ve.Details["magic"])
}

// TestFreeList_LinkIntoPayload tests detection of a link that does not land on
// a block boundary.
func TestFreeList_LinkIntoPayload(t *testing.T) {
	a := newAllocator(t, 0)
	p1, err := a.Alloc(32)
	require.NoError(t, err)
	p2, err := a.Alloc(64)
	require.NoError(t, err)
	a.Free(p1)

	// p2+16 is aligned and its bytes are zero, so it reads as an empty node.
	off := offsetOf(a, p1) - format.HeaderSize
	format.PutU64(a.Boundary().Bytes(), off+format.FreeNextOffset, uint64(p2+16))

	err = FreeList(a)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not on a block boundary")
}

// TestCoalesced_AdjacentFreeBlocks tests detection of free neighbours that
// were never merged.
func TestCoalesced_AdjacentFreeBlocks(t *testing.T) {
	a := newAllocator(t, 0)
	p1, err := a.Alloc(32)
	require.NoError(t, err)
	p2, err := a.Alloc(32)
	require.NoError(t, err)
	_, err = a.Alloc(32)
	require.NoError(t, err)
	a.Free(p1)

	// Hand-craft p2 as a free node and chain it behind p1.
	data := a.Boundary().Bytes()
	b1 := offsetOf(a, p1) - format.HeaderSize
	b2 := offsetOf(a, p2) - format.HeaderSize
	require.NoError(t, format.EncodeFree(data, b2, format.FreeNode{Size: 32}))
	format.PutU64(data, b1+format.FreeNextOffset, uint64(p2-format.HeaderSize))

	require.NoError(t, FreeList(a))
	err = Coalesced(a)
	require.Error(t, err)
	require.Contains(t, err.Error(), "adjacent")
}

// TestValidationError_String tests error message formatting.
func TestValidationError_String(t *testing.T) {
	err1 := &ValidationError{Type: "TestError", Message: "something went wrong", Addr: 0x1230}
	require.Contains(t, err1.Error(), "0x1230")
	require.Contains(t, err1.Error(), "something went wrong")

	err2 := &ValidationError{Type: "TestError", Message: "no address"}
	require.NotContains(t, err2.Error(), "0x")
}
