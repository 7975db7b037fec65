package jukebox

import (
	"math/rand"
	"time"
)

// Rand is the branch-decision random source.
type Rand interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
}

// DefaultSeed is the seed used when a seeded source is built with seed 0.
const DefaultSeed uint64 = 88172645463325252

// NewFreeRand returns a free-running source with no replay guarantee.
func NewFreeRand() Rand {
	return &freeRand{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

type freeRand struct {
	r *rand.Rand
}

func (f *freeRand) Float64() float64 {
	return f.r.Float64()
}

// NewSeededRand returns a deterministic source producing a bit-identical
// sequence for a given seed across runs and platforms, for reproducible test
// scenarios and performance replay. Seed 0 selects DefaultSeed.
func NewSeededRand(seed uint64) Rand {
	if seed == 0 {
		seed = DefaultSeed
	}
	return &seededRand{state: seed}
}

// seededRand is an xorshift64 generator; 64 bits of state is plenty for
// branch decisions and keeps the sequence trivially portable.
type seededRand struct {
	state uint64
}

func (s *seededRand) Float64() float64 {
	s.state ^= s.state << 13
	s.state ^= s.state >> 7
	s.state ^= s.state << 17
	return float64(s.state>>11) / float64(1<<53)
}
