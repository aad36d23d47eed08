package format

import (
	"fmt"

	"github.com/joshuapare/heapkit/internal/buf"
)

// Header is a decoded allocated-block header.
type Header struct {
	Size  uint64 // Payload size as requested
	Magic uint32
}

// Valid reports whether the header carries the sentinel.
func (h Header) Valid() bool {
	return h.Magic == Magic
}

// FreeNode is a decoded free-block node.
type FreeNode struct {
	Size uint64 // Bytes after the node's own overhead
	Next uint64 // Address of the next node, 0 terminates
}

// DecodeHeader reads the header stored at off.
func DecodeHeader(b []byte, off int) (Header, error) {
	if err := checkBlock(b, off, HeaderSize); err != nil {
		return Header{}, fmt.Errorf("header: %w", err)
	}
	return Header{
		Size:  ReadU64(b, off+HeaderSizeOffset),
		Magic: ReadU32(b, off+HeaderMagicOffset),
	}, nil
}

// EncodeHeader stamps h at off. The reserved word is cleared.
func EncodeHeader(b []byte, off int, h Header) error {
	if err := checkBlock(b, off, HeaderSize); err != nil {
		return fmt.Errorf("header: %w", err)
	}
	PutU64(b, off+HeaderSizeOffset, h.Size)
	PutU32(b, off+HeaderMagicOffset, h.Magic)
	PutU32(b, off+HeaderReservedOff, 0)
	return nil
}

// DecodeFree reads the free node stored at off.
func DecodeFree(b []byte, off int) (FreeNode, error) {
	if err := checkBlock(b, off, FreeBlockSize); err != nil {
		return FreeNode{}, fmt.Errorf("free block: %w", err)
	}
	return FreeNode{
		Size: ReadU64(b, off+FreeSizeOffset),
		Next: ReadU64(b, off+FreeNextOffset),
	}, nil
}

// EncodeFree writes n at off.
func EncodeFree(b []byte, off int, n FreeNode) error {
	if err := checkBlock(b, off, FreeBlockSize); err != nil {
		return fmt.Errorf("free block: %w", err)
	}
	PutU64(b, off+FreeSizeOffset, n.Size)
	PutU64(b, off+FreeNextOffset, n.Next)
	return nil
}

// checkBlock bounds-checks a block field window. Alignment is a property of
// addresses, not offsets, and is checked by the allocator.
func checkBlock(b []byte, off, n int) error {
	if !buf.Has(b, off, n) {
		return ErrTruncated
	}
	return nil
}
