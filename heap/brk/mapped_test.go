package brk

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMappedSbrk(t *testing.T) {
	page := os.Getpagesize()
	m, err := NewMapped(MapOptions{Reserve: 4 * page})
	require.NoError(t, err)
	defer func() { require.NoError(t, m.Close()) }()

	base := m.Base()
	require.NotZero(t, base)
	assert.Zero(t, uint64(base)%uint64(page), "reservation should be page-aligned")

	prev, err := m.Sbrk(24)
	require.NoError(t, err)
	assert.Equal(t, base, prev)
	require.Len(t, m.Bytes(), 24)
	m.Bytes()[23] = 0x5A

	prev, err = m.Sbrk(page)
	require.NoError(t, err)
	assert.Equal(t, base+24, prev)
	assert.Equal(t, byte(0x5A), m.Bytes()[23])

	cur, err := m.Sbrk(0)
	require.NoError(t, err)
	assert.Equal(t, base+Addr(24+page), cur)
}

func TestMappedReservationExhausted(t *testing.T) {
	page := os.Getpagesize()
	m, err := NewMapped(MapOptions{Reserve: page})
	require.NoError(t, err)
	defer func() { require.NoError(t, m.Close()) }()

	_, err = m.Sbrk(page)
	require.NoError(t, err)
	_, err = m.Sbrk(1)
	require.ErrorIs(t, err, ErrNoMemory)
	assert.Len(t, m.Bytes(), page)

	_, err = m.Sbrk(-1)
	require.ErrorIs(t, err, ErrShrink)
}
