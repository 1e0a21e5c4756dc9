package recommender

import "math/rand"

// coldStart picks questions for a student with no usable history: a
// stratified mix across the three difficulty levels, topped up with
// arbitrary leftovers when a stratum runs short, shuffled and truncated to
// n. rows is the already chapter-filtered candidate set.
func coldStart(rng *rand.Rand, rows []FeatureRow, n int) []uint {
	if len(rows) <= n {
		ids := make([]uint, len(rows))
		for i, row := range rows {
			ids[i] = row.QuestionID
		}
		return ids
	}

	strata := map[int][]FeatureRow{}
	for _, row := range rows {
		strata[row.Difficulty] = append(strata[row.Difficulty], row)
	}

	perStratum := n / 3
	picked := make([]uint, 0, n)
	taken := map[uint]bool{}
	for _, difficulty := range []int{1, 2, 3} {
		stratum := strata[difficulty]
		for i := 0; i < len(stratum) && i < perStratum; i++ {
			picked = append(picked, stratum[i].QuestionID)
			taken[stratum[i].QuestionID] = true
		}
	}

	// Integer division can leave the mix short by up to two, and sparse
	// strata by more; fill from whatever is left
	for _, row := range rows {
		if len(picked) >= n {
			break
		}
		if taken[row.QuestionID] {
			continue
		}
		picked = append(picked, row.QuestionID)
		taken[row.QuestionID] = true
	}

	rng.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})

	if len(picked) > n {
		picked = picked[:n]
	}
	return picked
}
