package alloc

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// grow extends the heap by one block of need payload bytes and stamps it as
// an allocated header for an n-byte request. The old break is padded up to
// the alignment first. There is no retry: a denial is returned as is.
func (a *Allocator) grow(n int, need uint64) (Ptr, error) {
	cur, err := a.mem.Sbrk(0)
	if err != nil {
		return Nil, fmt.Errorf("%w: %w", ErrNoMemory, err)
	}
	pad := format.Padding(uint64(cur))

	total, err := buf.SumSizes(pad, format.HeaderSize, int(need))
	if err != nil {
		return Nil, fmt.Errorf("%w: %w", ErrTooLarge, err)
	}

	prev, err := a.mem.Sbrk(total)
	if err != nil {
		if a.trace {
			a.log.Debug("grow denied", "need", need, "pad", pad, "err", err)
		}
		return Nil, fmt.Errorf("%w: %w", ErrNoMemory, err)
	}

	// The break only moves through this allocator, so prev == cur.
	b := prev + Ptr(pad)
	a.stamp(b, n)

	seg := Segment{Start: b, End: prev + Ptr(total), Pad: pad}
	a.segments = append(a.segments, seg)
	a.stats.GrowCalls++
	a.stats.GrowBytes += int64(total)
	a.stats.PadBytes += int64(pad)

	if a.trace {
		a.log.Debug("grow", "block", b, "need", need, "pad", pad, "break", seg.End)
	}
	if a.opts.OnGrow != nil {
		a.opts.OnGrow(seg)
	}
	return b, nil
}
