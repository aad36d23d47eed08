package brk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimSbrkMovesBreak(t *testing.T) {
	s := NewSim(SimOptions{Base: 0x1008, Limit: 256})
	require.Equal(t, Addr(0x1008), s.Base())

	prev, err := s.Sbrk(0)
	require.NoError(t, err)
	assert.Equal(t, Addr(0x1008), prev, "Sbrk(0) reads the break")

	prev, err = s.Sbrk(40)
	require.NoError(t, err)
	assert.Equal(t, Addr(0x1008), prev)
	assert.Equal(t, Addr(0x1008+40), s.Break())
	assert.Len(t, s.Bytes(), 40)

	s.Bytes()[39] = 0x7F
	prev, err = s.Sbrk(100)
	require.NoError(t, err)
	assert.Equal(t, Addr(0x1008+40), prev)
	assert.Equal(t, byte(0x7F), s.Bytes()[39], "growth must preserve contents")
	assert.Equal(t, 2, s.GrowCalls())
}

func TestSimLimitDenies(t *testing.T) {
	s := NewSim(SimOptions{Limit: 64})
	_, err := s.Sbrk(64)
	require.NoError(t, err)

	before := s.Break()
	_, err = s.Sbrk(1)
	require.ErrorIs(t, err, ErrNoMemory)
	assert.Equal(t, before, s.Break(), "denied growth must not move the break")
}

func TestSimDenyHook(t *testing.T) {
	s := NewSim(SimOptions{})
	s.Deny(1)
	_, err := s.Sbrk(16)
	require.ErrorIs(t, err, ErrNoMemory)

	_, err = s.Sbrk(16)
	require.NoError(t, err, "only the next request is denied")
}

func TestSimRejectsShrink(t *testing.T) {
	s := NewSim(SimOptions{})
	_, err := s.Sbrk(-16)
	require.ErrorIs(t, err, ErrShrink)
}

func TestSimDefaults(t *testing.T) {
	s := NewSim(SimOptions{})
	assert.Equal(t, DefaultSimBase, s.Base())
	_, err := s.Sbrk(DefaultSimLimit + 1)
	require.ErrorIs(t, err, ErrNoMemory)
}

func TestOffset(t *testing.T) {
	s := NewSim(SimOptions{Base: 0x2000})
	off, ok := Offset(s, 0x2010)
	require.True(t, ok)
	assert.Equal(t, 0x10, off)

	_, ok = Offset(s, 0x1FFF)
	assert.False(t, ok)
}
