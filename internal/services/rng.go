// internal/services/rng.go
package services

import (
	"math/rand"
	"sync"
	"time"
)

// Roller is the randomness source for the game engines. Production uses
// a seeded PRNG; tests script the draws.
type Roller interface {
	Float64() float64
	Intn(n int) int
}

// lockedRoller wraps a rand.Rand for concurrent use across sessions.
type lockedRoller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRoller returns a time-seeded concurrent-safe Roller.
func NewRoller() Roller {
	return &lockedRoller{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (r *lockedRoller) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

func (r *lockedRoller) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}
