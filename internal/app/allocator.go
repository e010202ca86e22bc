package app

import (
	"fmt"
	"math/rand/v2"

	"github.com/dkeye/Drop/internal/domain"
)

const DefaultMaxAttempts = 10

// Allocator draws room codes uniformly from a range and retries on collision.
// It never reserves anything: the caller must create the room while still
// holding whatever lock makes taken() authoritative.
type Allocator struct {
	Range       domain.CodeRange
	MaxAttempts int

	// IntN returns a value in [0, n). Defaults to math/rand/v2.
	IntN func(n int) int
}

func NewAllocator(r domain.CodeRange, maxAttempts int) *Allocator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Allocator{Range: r, MaxAttempts: maxAttempts, IntN: rand.IntN}
}

func (a *Allocator) Allocate(taken func(domain.RoomCode) bool) (domain.RoomCode, error) {
	size := a.Range.Size()
	if size <= 0 {
		return 0, fmt.Errorf("%w: empty range [%d, %d]", ErrAllocationExhausted, a.Range.Min, a.Range.Max)
	}
	intN := a.IntN
	if intN == nil {
		intN = rand.IntN
	}
	for attempt := 0; attempt < a.MaxAttempts; attempt++ {
		code := a.Range.Min + domain.RoomCode(intN(size))
		if !taken(code) {
			return code, nil
		}
	}
	return 0, fmt.Errorf("%w after %d attempts", ErrAllocationExhausted, a.MaxAttempts)
}
