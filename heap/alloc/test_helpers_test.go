package alloc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/brk"
	"github.com/joshuapare/heapkit/internal/logger"
)

// newTestAllocator builds an allocator over a fresh Sim at the default base.
func newTestAllocator(t testing.TB, opts ...Option) (*Allocator, *brk.Sim) {
	t.Helper()
	return newTestAllocatorAt(t, brk.SimOptions{}, opts...)
}

func newTestAllocatorAt(t testing.TB, so brk.SimOptions, opts ...Option) (*Allocator, *brk.Sim) {
	t.Helper()
	sim := brk.NewSim(so)
	opts = append([]Option{WithLogger(logger.Discard())}, opts...)
	return New(sim, opts...), sim
}

// expectCorruption runs fn and returns the CorruptionError it aborted with.
func expectCorruption(t *testing.T, fn func()) (ce *CorruptionError) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected abort")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		require.ErrorIs(t, err, ErrCorrupt)
		require.True(t, errors.As(err, &ce))
	}()
	fn()
	return nil
}

// fill writes v over p's payload.
func fill(a *Allocator, p Ptr, v byte) {
	b := a.Bytes(p)
	for i := range b {
		b[i] = v
	}
}

// requireConserved checks that the blocks tile every grown byte.
func requireConserved(t *testing.T, a *Allocator) Usage {
	t.Helper()
	u, err := a.Usage()
	require.NoError(t, err)
	st := a.Stats()
	require.Equal(t, uint64(st.GrowBytes), u.Overhead+u.AllocBytes+u.FreeBytes,
		"headers + payloads + padding must equal grown bytes")
	require.Len(t, a.FreeList(), u.FreeBlocks, "every free block is listed once")
	return u
}
