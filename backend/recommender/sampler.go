package recommender

import "math/rand"

// sampleWithoutReplacement draws k distinct indices from the distribution
// given by probs. Each draw picks proportionally to the remaining
// probability mass and removes the chosen index. If the remaining mass is
// zero (degenerate weights), the leftover indices are picked uniformly.
// Assumes k <= len(probs).
func sampleWithoutReplacement(rng *rand.Rand, probs []float64, k int) []int {
	remaining := make([]float64, len(probs))
	copy(remaining, probs)

	chosen := make([]int, 0, k)
	for len(chosen) < k {
		total := 0.0
		for _, p := range remaining {
			if p > 0 {
				total += p
			}
		}

		idx := -1
		if total <= 0 {
			// All mass consumed or degenerate input; fall back to a
			// uniform pick among the indices not yet chosen
			nth := rng.Intn(len(remaining) - len(chosen))
			for i, p := range remaining {
				if p < 0 {
					continue
				}
				if nth == 0 {
					idx = i
					break
				}
				nth--
			}
		} else {
			r := rng.Float64() * total
			acc := 0.0
			for i, p := range remaining {
				if p < 0 {
					continue
				}
				acc += p
				if r < acc {
					idx = i
					break
				}
			}
			if idx == -1 {
				// Floating point rounding left r just past the last
				// positive slot; take the last unchosen index
				for i := len(remaining) - 1; i >= 0; i-- {
					if remaining[i] >= 0 {
						idx = i
						break
					}
				}
			}
		}

		chosen = append(chosen, idx)
		remaining[idx] = -1 // mark as taken
	}

	return chosen
}
