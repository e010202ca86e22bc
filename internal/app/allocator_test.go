package app

import (
	"testing"

	"github.com/dkeye/Drop/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seq returns a deterministic IntN that replays offsets in order.
func seq(offsets ...int) func(int) int {
	i := 0
	return func(int) int {
		v := offsets[i%len(offsets)]
		i++
		return v
	}
}

func TestAllocatorStaysInRange(t *testing.T) {
	a := NewAllocator(domain.DefaultCodeRange, DefaultMaxAttempts)
	for range 1000 {
		code, err := a.Allocate(func(domain.RoomCode) bool { return false })
		require.NoError(t, err)
		assert.True(t, domain.DefaultCodeRange.Contains(code), "code %d out of range", code)
	}
}

func TestAllocatorRetriesOnCollision(t *testing.T) {
	a := NewAllocator(domain.DefaultCodeRange, DefaultMaxAttempts)
	a.IntN = seq(0, 0, 1)

	taken := map[domain.RoomCode]bool{100000: true}
	code, err := a.Allocate(func(c domain.RoomCode) bool { return taken[c] })
	require.NoError(t, err)
	assert.Equal(t, domain.RoomCode(100001), code)
}

func TestAllocatorExhausted(t *testing.T) {
	a := NewAllocator(domain.DefaultCodeRange, 10)
	calls := 0
	_, err := a.Allocate(func(domain.RoomCode) bool {
		calls++
		return true
	})
	assert.ErrorIs(t, err, ErrAllocationExhausted)
	assert.Equal(t, 10, calls)
}

func TestAllocatorSingleCodeRange(t *testing.T) {
	a := NewAllocator(domain.CodeRange{Min: 7, Max: 7}, 3)

	code, err := a.Allocate(func(domain.RoomCode) bool { return false })
	require.NoError(t, err)
	assert.Equal(t, domain.RoomCode(7), code)

	_, err = a.Allocate(func(domain.RoomCode) bool { return true })
	assert.ErrorIs(t, err, ErrAllocationExhausted)
}

func TestAllocatorEmptyRange(t *testing.T) {
	a := NewAllocator(domain.CodeRange{Min: 10, Max: 9}, 3)
	_, err := a.Allocate(func(domain.RoomCode) bool { return false })
	assert.ErrorIs(t, err, ErrAllocationExhausted)
}
