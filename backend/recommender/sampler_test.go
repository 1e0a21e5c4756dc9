package recommender

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleReturnsDistinctIndices(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	probs := []float64{0.1, 0.2, 0.3, 0.25, 0.15}

	for trial := 0; trial < 100; trial++ {
		chosen := sampleWithoutReplacement(rng, probs, 3)
		require.Len(t, chosen, 3)

		seen := make(map[int]bool)
		for _, idx := range chosen {
			assert.GreaterOrEqual(t, idx, 0)
			assert.Less(t, idx, len(probs))
			assert.False(t, seen[idx], "index %d drawn twice", idx)
			seen[idx] = true
		}
	}
}

func TestSampleExhaustsDistribution(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	probs := []float64{0.5, 0.5}

	chosen := sampleWithoutReplacement(rng, probs, 2)
	assert.ElementsMatch(t, []int{0, 1}, chosen)
}

func TestSampleSingleDegenerateRow(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	chosen := sampleWithoutReplacement(rng, []float64{1.0}, 1)
	assert.Equal(t, []int{0}, chosen)
}

func TestSampleZeroMassFallsBackToUniform(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	probs := []float64{0, 0, 0}

	chosen := sampleWithoutReplacement(rng, probs, 3)
	assert.ElementsMatch(t, []int{0, 1, 2}, chosen)
}

func TestSampleFollowsWeights(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	probs := []float64{0.9, 0.05, 0.05}

	hits := 0
	trials := 2000
	for i := 0; i < trials; i++ {
		chosen := sampleWithoutReplacement(rng, probs, 1)
		if chosen[0] == 0 {
			hits++
		}
	}

	// The heavy item should be drawn roughly nine times out of ten
	assert.Greater(t, float64(hits)/float64(trials), 0.85)
}
