package alloc

import (
	"math"

	"github.com/joshuapare/heapkit/heap/brk"
	"github.com/joshuapare/heapkit/internal/buf"
	"github.com/joshuapare/heapkit/internal/format"
)

// All reinterpretation of heap bytes as headers or free nodes goes through
// this file. Block addresses are header/node addresses; payload pointers are
// block + HeaderSize.

// maxRequest keeps capacity(n) + overhead representable as an int.
const maxRequest = math.MaxInt - 4*format.Alignment

// capacity returns the payload bytes backing an n-byte request. Zero-size
// requests get one alignment unit so every allocation is distinct.
func capacity(n int) (uint64, error) {
	if n < 0 || n > maxRequest {
		return 0, ErrTooLarge
	}
	return uint64(format.Align16(max(n, 1))), nil
}

// capacityOf is capacity for a size already stored in a valid header.
func capacityOf(size uint64) uint64 {
	return format.Align16U64(max(size, 1))
}

func payloadOf(b Ptr) Ptr { return b + format.HeaderSize }

func blockOf(p Ptr) Ptr { return p - format.HeaderSize }

// endOf returns the first address past a free node of the given size.
func endOf(b Ptr, size uint64) Ptr { return b + format.FreeBlockSize + Ptr(size) }

// window returns the heap bytes and the offset of addr when n bytes starting
// there lie inside [Base, Break).
func (a *Allocator) window(addr Ptr, n int) ([]byte, int, bool) {
	off, ok := brk.Offset(a.mem, addr)
	if !ok {
		return nil, 0, false
	}
	data := a.mem.Bytes()
	if !buf.Has(data, off, n) {
		return nil, 0, false
	}
	return data, off, true
}

// header validates and decodes the header in front of payload p.
func (a *Allocator) header(op string, p Ptr) (Ptr, format.Header) {
	if p < a.mem.Base()+format.HeaderSize || !format.IsAligned(uint64(p)) {
		a.corrupt(op, p, 0, "pointer is not a heap payload")
	}
	b := blockOf(p)
	data, off, ok := a.window(b, format.HeaderSize)
	if !ok {
		a.corrupt(op, p, 0, "pointer outside heap")
	}
	h, err := format.DecodeHeader(data, off)
	if err != nil {
		a.corrupt(op, p, 0, err.Error())
	}
	if !h.Valid() {
		a.corrupt(op, p, h.Magic, "bad magic")
	}
	if h.Size > maxRequest {
		a.corrupt(op, p, h.Magic, "header size out of range")
	}
	if _, _, ok := a.window(p, int(capacityOf(h.Size))); !ok {
		a.corrupt(op, p, h.Magic, "header size runs past the break")
	}
	return b, h
}

// stamp writes an allocated header at block b.
func (a *Allocator) stamp(b Ptr, size int) {
	data, off, ok := a.window(b, format.HeaderSize)
	if !ok {
		a.corrupt("stamp", b, 0, "block outside heap")
	}
	_ = format.EncodeHeader(data, off, format.Header{Size: uint64(size), Magic: format.Magic})
}

// node decodes the free node at block b.
func (a *Allocator) node(b Ptr) format.FreeNode {
	if !format.IsAligned(uint64(b)) {
		a.corrupt("freelist", b, 0, "misaligned free block")
	}
	data, off, ok := a.window(b, format.FreeBlockSize)
	if !ok {
		a.corrupt("freelist", b, 0, "free block outside heap")
	}
	n, err := format.DecodeFree(data, off)
	if err != nil {
		a.corrupt("freelist", b, 0, err.Error())
	}
	if _, _, ok := a.window(b, format.FreeBlockSize+int(min(n.Size, uint64(maxRequest)))); !ok {
		a.corrupt("freelist", b, 0, "free block runs past the break")
	}
	return n
}

// setNode writes the free node at block b.
func (a *Allocator) setNode(b Ptr, n format.FreeNode) {
	data, off, ok := a.window(b, format.FreeBlockSize)
	if !ok {
		a.corrupt("freelist", b, 0, "free block outside heap")
	}
	_ = format.EncodeFree(data, off, n)
}

func (a *Allocator) freeSize(b Ptr) uint64 { return a.node(b).Size }

func (a *Allocator) setNext(b, next Ptr) {
	n := a.node(b)
	n.Next = uint64(next)
	a.setNode(b, n)
}

// payload returns the capacity-long view of the block at b.
func (a *Allocator) payload(b Ptr, n uint64) []byte {
	data, off, ok := a.window(payloadOf(b), int(n))
	if !ok {
		a.corrupt("bytes", payloadOf(b), 0, "payload outside heap")
	}
	view, _ := buf.Slice(data, off, int(n))
	return view
}
