package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// scriptedSource returns a fixed sequence of values, for deterministic
// selection tests.
type scriptedSource struct {
	values []int
	pos    int
}

func (s *scriptedSource) Intn(n int) int {
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v % n
}

func TestSample_Deterministic(t *testing.T) {
	pool := []string{"000001", "000002", "000003", "000004", "000005"}

	// Always picking index 0 selects the head of the remaining pool.
	src := &scriptedSource{values: []int{0}}
	picked := Sample(src, pool, 3)
	require.Len(t, picked, 3)
	assert.Equal(t, []string{"000001", "000002", "000003"}, picked)
}

func TestSample_DoesNotMutateInput(t *testing.T) {
	pool := []string{"111111", "222222", "333333", "444444"}
	original := make([]string, len(pool))
	copy(original, pool)

	_ = Sample(NewSource(), pool, 3)
	assert.Equal(t, original, pool)
}

func TestSample_PanicsWhenSampleExceedsPool(t *testing.T) {
	pool := []string{"111111", "222222"}
	assert.Panics(t, func() {
		Sample(NewSource(), pool, 3)
	})
}

// TestSampleWithoutReplacementProperty checks that for any pool and any
// sample size, the selection contains no duplicates and every picked
// value comes from the pool.
func TestSampleWithoutReplacementProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 50).Draw(t, "poolSize")
		pool := make([]string, n)
		inPool := make(map[string]bool, n)
		for i := 0; i < n; i++ {
			v := rapid.StringMatching(`[0-9]{6}`).Filter(func(s string) bool {
				return !inPool[s]
			}).Draw(t, "number")
			pool[i] = v
			inPool[v] = true
		}
		k := rapid.IntRange(1, n).Draw(t, "sampleSize")

		picked := Sample(NewSource(), pool, k)

		if len(picked) != k {
			t.Fatalf("expected %d picks, got %d", k, len(picked))
		}
		seen := make(map[string]bool, k)
		for _, v := range picked {
			if seen[v] {
				t.Fatalf("duplicate pick %q", v)
			}
			seen[v] = true
			if !inPool[v] {
				t.Fatalf("pick %q not in pool", v)
			}
		}
	})
}
