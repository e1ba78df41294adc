package recommend

import (
	"math/rand/v2"
	"sync"
)

// Rand draws the random content variants. *rand.Rand from math/rand/v2 satisfies it,
// but is not safe for concurrent use; see [NewSeededRand] for a shareable seeded source.
type Rand interface {
	// IntN returns a uniformly distributed number in [0, n).
	IntN(n int) int
}

// globalRand uses the process-wide math/rand/v2 source, which is safe for concurrent use.
type globalRand struct{}

func (globalRand) IntN(n int) int {
	return rand.IntN(n) //nolint:gosec // content variety, not security.
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeededRand returns a deterministic source that can be shared between goroutines.
func NewSeededRand(seed uint64) Rand {
	return &lockedRand{
		mu: sync.Mutex{},
		r:  rand.New(rand.NewPCG(seed, seed)), //nolint:gosec // content variety, not security.
	}
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}
