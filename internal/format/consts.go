// Package format holds the on-heap layout of allocator blocks: the sizes and
// field offsets of the allocated-block header and the free-block node, the
// alignment constant, and the little-endian codec used to read and write them.
// Higher-level packages never compute field offsets themselves.
package format

const (
	// Alignment is the boundary every block start and every payload start
	// falls on.
	Alignment = 16

	// AlignmentMask is Alignment-1.
	AlignmentMask = Alignment - 1

	// Magic is the sentinel stamped into every allocated header.
	// It is odd, so it can never collide with a free-list link (links are
	// 16-aligned addresses or zero).
	Magic uint32 = 0x01234567
)

// Allocated block header layout (little-endian):
//
//	Offset  Size  Description
//	0x00    8     Payload size as requested by the caller
//	0x08    4     Magic sentinel
//	0x0C    4     Reserved, zero
//	0x10    ...   Payload
const (
	HeaderSize         = 0x10
	HeaderSizeOffset   = 0x00
	HeaderMagicOffset  = 0x08
	HeaderReservedOff  = 0x0C
	HeaderPayloadStart = HeaderSize
)

// Free block layout (little-endian). Overlays the same bytes as a header:
//
//	Offset  Size  Description
//	0x00    8     Bytes available after this node's own overhead
//	0x08    8     Address of the next free block, 0 terminates the list
const (
	FreeBlockSize    = 0x10
	FreeSizeOffset   = 0x00
	FreeNextOffset   = 0x08
	MinFreeBlockSize = FreeBlockSize
)
