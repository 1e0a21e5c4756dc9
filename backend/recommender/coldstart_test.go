package recommender

import (
	"math/rand"
	"testing"

	"examportal/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func featureRows(questions []models.Question) []FeatureRow {
	rows := make([]FeatureRow, len(questions))
	for i, q := range questions {
		rows[i] = FeatureRow{
			QuestionID:   q.ID,
			ChapterID:    q.ChapterID,
			Difficulty:   models.DifficultyRank(q.Difficulty),
			QuestionType: models.QuestionTypeRank(q.QuestionType),
			Marks:        q.Marks,
		}
	}
	return rows
}

func TestColdStartReturnsAllWhenCatalogSmall(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	rows := featureRows(mixedCatalog())

	ids := coldStart(rng, rows, 20)
	assert.Len(t, ids, 9)
}

func TestColdStartMixesDifficulties(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	rows := featureRows(mixedCatalog())

	ids := coldStart(rng, rows, 6)
	require.Len(t, ids, 6)

	byDifficulty := map[int]int{}
	rowByID := map[uint]FeatureRow{}
	for _, row := range rows {
		rowByID[row.QuestionID] = row
	}
	seen := map[uint]bool{}
	for _, id := range ids {
		assert.False(t, seen[id], "question %d picked twice", id)
		seen[id] = true
		byDifficulty[rowByID[id].Difficulty]++
	}

	// count/3 = 2 from each stratum
	assert.Equal(t, 2, byDifficulty[1])
	assert.Equal(t, 2, byDifficulty[2])
	assert.Equal(t, 2, byDifficulty[3])
}

func TestColdStartTopsUpSparseStrata(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	// No hard questions at all: the mix still reaches the requested count
	var questions []models.Question
	for i := uint(1); i <= 4; i++ {
		questions = append(questions, question(i, 1, models.DifficultyEasy, models.TypeMultipleChoice, 1))
	}
	for i := uint(5); i <= 8; i++ {
		questions = append(questions, question(i, 1, models.DifficultyMedium, models.TypeMultipleChoice, 1))
	}
	rows := featureRows(questions)

	ids := coldStart(rng, rows, 6)
	require.Len(t, ids, 6)

	seen := map[uint]bool{}
	for _, id := range ids {
		assert.False(t, seen[id])
		seen[id] = true
	}
}
