package brk

import "fmt"

const (
	// DefaultSimBase is the base address of a Sim when none is configured.
	DefaultSimBase Addr = 0x10000

	// DefaultSimLimit caps how far a Sim's break may move.
	DefaultSimLimit = 16 << 20
)

// SimOptions configures a simulated break.
type SimOptions struct {
	// Base is the address of the first heap byte. It need not be aligned,
	// which lets tests exercise alignment padding. Default: DefaultSimBase.
	Base Addr

	// Limit is the largest total heap size; growth past it is denied.
	// Default: DefaultSimLimit.
	Limit int
}

// Sim is a Boundary backed by a Go byte slice.
type Sim struct {
	base  Addr
	limit int
	data  []byte
	deny  int
	calls int
}

// NewSim creates a simulated break with nothing allocated.
func NewSim(opts SimOptions) *Sim {
	if opts.Base == 0 {
		opts.Base = DefaultSimBase
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultSimLimit
	}
	return &Sim{base: opts.Base, limit: opts.Limit}
}

// Base implements Boundary.
func (s *Sim) Base() Addr { return s.base }

// Break returns the current break.
func (s *Sim) Break() Addr { return s.base + Addr(len(s.data)) }

// Sbrk implements Boundary.
func (s *Sim) Sbrk(incr int) (Addr, error) {
	prev := s.Break()
	switch {
	case incr == 0:
		return prev, nil
	case incr < 0:
		return 0, fmt.Errorf("%w: increment %d", ErrShrink, incr)
	}
	s.calls++
	if s.deny > 0 {
		s.deny--
		return 0, fmt.Errorf("%w: denied", ErrNoMemory)
	}
	if incr > s.limit-len(s.data) {
		return 0, fmt.Errorf("%w: increment %d exceeds limit (%d of %d used)",
			ErrNoMemory, incr, len(s.data), s.limit)
	}

	n := len(s.data) + incr
	if n > cap(s.data) {
		grown := make([]byte, n, min(max(2*cap(s.data), n), s.limit))
		copy(grown, s.data)
		s.data = grown
	} else {
		s.data = s.data[:n]
	}
	return prev, nil
}

// Bytes implements Boundary.
func (s *Sim) Bytes() []byte { return s.data }

// Deny makes the next n growth requests fail with ErrNoMemory.
func (s *Sim) Deny(n int) { s.deny = n }

// GrowCalls returns how many non-zero Sbrk calls were made.
func (s *Sim) GrowCalls() int { return s.calls }

var _ Boundary = (*Sim)(nil)
