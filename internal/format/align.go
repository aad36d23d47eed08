package format

// Align16 returns n aligned up to the next 16-byte boundary.
//
// Example:
//
//	Align16(1)  = 16
//	Align16(16) = 16
//	Align16(17) = 32
func Align16(n int) int {
	return (n + AlignmentMask) & ^AlignmentMask
}

// Align16U64 is the uint64 version of Align16 for address arithmetic.
func Align16U64(n uint64) uint64 {
	return (n + AlignmentMask) &^ AlignmentMask
}

// Padding returns how many bytes must be skipped from addr to reach the next
// 16-byte boundary (0 when addr is already aligned).
//
// Example:
//
//	Padding(0x1000) = 0
//	Padding(0x1008) = 8
//	Padding(0x100F) = 1
func Padding(addr uint64) int {
	if rem := addr & AlignmentMask; rem != 0 {
		return int(Alignment - rem)
	}
	return 0
}

// IsAligned reports whether addr sits on a 16-byte boundary.
func IsAligned(addr uint64) bool {
	return addr&AlignmentMask == 0
}
