package brk

import (
	"errors"
	"fmt"

	"github.com/joshuapare/heapkit/internal/mmfile"
)

// DefaultReserve is the address space a Mapped reserves when none is configured.
const DefaultReserve = 64 << 20

// MapOptions configures a Mapped boundary.
type MapOptions struct {
	// Reserve is the size of the address range reserved up front; the
	// break can never pass it. Default: DefaultReserve.
	Reserve int
}

// Mapped is a Boundary over reserved virtual memory. Addresses are real
// process addresses, so the base is page-aligned.
type Mapped struct {
	region *mmfile.Region
	brk    int
}

// NewMapped reserves the address range. Call Close to release it.
func NewMapped(opts MapOptions) (*Mapped, error) {
	if opts.Reserve <= 0 {
		opts.Reserve = DefaultReserve
	}
	region, err := mmfile.Reserve(opts.Reserve)
	if err != nil {
		return nil, err
	}
	return &Mapped{region: region}, nil
}

// Base implements Boundary.
func (m *Mapped) Base() Addr { return Addr(m.region.Addr()) }

// Sbrk implements Boundary.
func (m *Mapped) Sbrk(incr int) (Addr, error) {
	prev := m.Base() + Addr(m.brk)
	switch {
	case incr == 0:
		return prev, nil
	case incr < 0:
		return 0, fmt.Errorf("%w: increment %d", ErrShrink, incr)
	}
	if incr > m.region.Reserved()-m.brk {
		return 0, fmt.Errorf("%w: increment %d exceeds reservation", ErrNoMemory, incr)
	}
	if err := m.region.Commit(m.brk + incr); err != nil {
		if errors.Is(err, mmfile.ErrReserveExhausted) || errors.Is(err, mmfile.ErrReleased) {
			return 0, fmt.Errorf("%w: %w", ErrNoMemory, err)
		}
		return 0, fmt.Errorf("%w: commit: %w", ErrNoMemory, err)
	}
	m.brk += incr
	return prev, nil
}

// Bytes implements Boundary.
func (m *Mapped) Bytes() []byte {
	return m.region.Bytes()[:m.brk:m.brk]
}

// Close releases the reservation. The heap must not be used afterwards.
func (m *Mapped) Close() error {
	m.brk = 0
	return m.region.Release()
}

var _ Boundary = (*Mapped)(nil)
