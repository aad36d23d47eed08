// Package buf contains overflow-safe size arithmetic and bounds-checked
// slicing shared by the allocator and its layout codec.
package buf

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrOverflow indicates a size computation that does not fit in an int.
	ErrOverflow = errors.New("buf: size overflow")
	// ErrNegative indicates a negative count, size or offset.
	ErrNegative = errors.New("buf: negative size")
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// MulOverflowSafe multiplies two non-negative ints, returning ok = false when
// either operand is negative or the product would overflow int.
func MulOverflowSafe(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// SizeProduct computes count*size for a zero-allocate request.
//
//	n, err := buf.SizeProduct(count, size)
//	if err != nil {
//	    return 0, fmt.Errorf("calloc: %w", err)
//	}
func SizeProduct(count, size int) (int, error) {
	if count < 0 || size < 0 {
		return 0, fmt.Errorf("%w: count=%d size=%d", ErrNegative, count, size)
	}
	n, ok := MulOverflowSafe(count, size)
	if !ok {
		return 0, fmt.Errorf("%w: count=%d * size=%d", ErrOverflow, count, size)
	}
	return n, nil
}

// SumSizes adds non-negative byte counts, failing on overflow.
func SumSizes(sizes ...int) (int, error) {
	total := 0
	for _, s := range sizes {
		if s < 0 {
			return 0, fmt.Errorf("%w: %d", ErrNegative, s)
		}
		var ok bool
		if total, ok = AddOverflowSafe(total, s); !ok {
			return 0, fmt.Errorf("%w: sum exceeds %d", ErrOverflow, math.MaxInt)
		}
	}
	return total, nil
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end:end], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off, n int) bool {
	_, ok := Slice(b, off, n)
	return ok
}
