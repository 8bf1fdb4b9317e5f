// Package rng provides the core randomness abstraction for the combat and
// crafting engines. Every draw is bounded; sessions use a seeded source so a
// battle can be replayed deterministically from its seed.
package rng

// Source is the randomness provider for engine rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int

	// Float64 returns a random float64 in [0.0, 1.0).
	Float64() float64
}

// Uniform returns a random float64 in [lo, hi) drawn from src.
//
// Precondition: lo <= hi; src must be non-nil.
// Postcondition: lo <= result < hi (result == lo when lo == hi).
func Uniform(src Source, lo, hi float64) float64 {
	return lo + (hi-lo)*src.Float64()
}
