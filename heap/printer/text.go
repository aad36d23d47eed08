package printer

import (
	"fmt"
	"strings"

	"github.com/joshuapare/heapkit/heap/alloc"
)

func state(b alloc.Block) string {
	if b.Free {
		return "free"
	}
	return "used"
}

func (p *Printer) printLayoutText(blocks []alloc.Block, truncated bool) error {
	indent := strings.Repeat(" ", p.opts.IndentSize)
	mem := p.heap.Boundary()

	p.num.Fprintf(p.writer, "Heap %v..%v (%d bytes)\n",
		mem.Base(), mem.Base()+alloc.Ptr(len(mem.Bytes())), len(mem.Bytes()))
	for _, s := range p.heap.Segments() {
		p.num.Fprintf(p.writer, "%sSegment %v..%v  %d bytes, pad %d\n", indent, s.Start, s.End, s.Len(), s.Pad)
	}
	for _, b := range blocks {
		if b.Free {
			p.num.Fprintf(p.writer, "%s%v  %s  cap %d\n", indent, b.Addr, state(b), b.Capacity)
			continue
		}
		p.num.Fprintf(p.writer, "%s%v  %s  size %d  cap %d  ptr %v\n",
			indent, b.Addr, state(b), b.Size, b.Capacity, b.Payload())
	}
	if truncated {
		_, err := fmt.Fprintf(p.writer, "%s...\n", indent)
		return err
	}
	return nil
}

func (p *Printer) printFreeListText(free []alloc.Block) error {
	indent := strings.Repeat(" ", p.opts.IndentSize)
	p.num.Fprintf(p.writer, "Free list (%d blocks)\n", len(free))
	for i, b := range free {
		p.num.Fprintf(p.writer, "%s#%d  %v  cap %d\n", indent, i, b.Addr, b.Capacity)
	}
	return nil
}

func (p *Printer) printStatsText(u alloc.Usage, st alloc.Stats) error {
	indent := strings.Repeat(" ", p.opts.IndentSize)
	w := p.num

	w.Fprintf(p.writer, "Usage\n")
	w.Fprintf(p.writer, "%sHeap bytes:      %d\n", indent, u.HeapBytes)
	w.Fprintf(p.writer, "%sBlocks:          %d (%d used, %d free)\n", indent, u.Blocks, u.AllocBlocks, u.FreeBlocks)
	w.Fprintf(p.writer, "%sRequested:       %d\n", indent, u.Requested)
	w.Fprintf(p.writer, "%sAllocated:       %d\n", indent, u.AllocBytes)
	w.Fprintf(p.writer, "%sFree:            %d (largest %d)\n", indent, u.FreeBytes, u.LargestFree)
	w.Fprintf(p.writer, "%sOverhead:        %d\n", indent, u.Overhead)
	if u.FreeBytes > 0 {
		frag := 100 * (1 - float64(u.LargestFree)/float64(u.FreeBytes))
		w.Fprintf(p.writer, "%sFragmentation:   %.1f%%\n", indent, frag)
	}

	w.Fprintf(p.writer, "Operations\n")
	w.Fprintf(p.writer, "%sAlloc:   %d (%d free list, %d grown, %d failed)\n",
		indent, st.AllocCalls, st.AllocFastPath, st.AllocSlowPath, st.AllocFailures)
	w.Fprintf(p.writer, "%sCalloc:  %d\n", indent, st.CallocCalls)
	w.Fprintf(p.writer, "%sRealloc: %d\n", indent, st.ReallocCalls)
	w.Fprintf(p.writer, "%sFree:    %d\n", indent, st.FreeCalls)
	w.Fprintf(p.writer, "%sGrowth:  %d calls, %d bytes, %d padding\n", indent, st.GrowCalls, st.GrowBytes, st.PadBytes)
	w.Fprintf(p.writer, "%sSplits:  %d, exact fits %d\n", indent, st.SplitCount, st.ExactFitCount)
	_, err := w.Fprintf(p.writer, "%sMerges:  %d forward, %d backward\n", indent, st.CoalesceForward, st.CoalesceBackward)
	return err
}
