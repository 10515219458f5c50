// Package rng provides the random source used for draw number selection.
// The source is an interface so tests can supply a deterministic sequence.
package rng

import (
	"math/rand"
	"time"
)

// Source yields uniform random integers in [0, n).
type Source interface {
	Intn(n int) int
}

type mathSource struct {
	r *rand.Rand
}

func (s *mathSource) Intn(n int) int {
	return s.r.Intn(n)
}

// NewSource returns a time-seeded production source.
func NewSource() Source {
	return &mathSource{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Sample selects k distinct elements uniformly without replacement
// from pool, in selection order. It panics if k > len(pool); callers
// check the pool size first. The input slice is not modified.
func Sample(src Source, pool []string, k int) []string {
	if k > len(pool) {
		panic("rng: sample size exceeds pool size")
	}

	// Partial Fisher-Yates over a copy.
	candidates := make([]string, len(pool))
	copy(candidates, pool)

	picked := make([]string, 0, k)
	for i := 0; i < k; i++ {
		j := i + src.Intn(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]
		picked = append(picked, candidates[i])
	}
	return picked
}
