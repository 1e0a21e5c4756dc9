package recommender

import (
	"examportal/backend/models"
)

// textLengthScale normalizes question text length into the same rough range
// as the other features.
const textLengthScale = 500.0

// defaultPopularity is the assumed correctness rate for a question nobody
// has answered yet.
const defaultPopularity = 0.5

// FeatureRow is one question in the feature table: its catalog attributes
// encoded numerically plus its empirical correctness rate.
type FeatureRow struct {
	QuestionID   uint
	ChapterID    uint
	Difficulty   int // 1=easy, 2=medium, 3=hard
	QuestionType int // 1=multiple choice, 2=true/false, 3=numerical, 4=descriptive
	Marks        int
	Popularity   float64 // share of recorded answers that were correct
	TextLength   float64
}

// BuildFeatureTable converts the full question catalog into one FeatureRow
// per question. Row order carries no meaning. An empty catalog yields an
// empty table.
func BuildFeatureTable(store PerformanceStore) ([]FeatureRow, error) {
	questions, err := store.ListQuestions()
	if err != nil {
		return nil, err
	}

	rows := make([]FeatureRow, 0, len(questions))
	for _, q := range questions {
		answers, err := store.ListAnswers(q.ID)
		if err != nil {
			return nil, err
		}

		popularity := defaultPopularity
		if len(answers) > 0 {
			correct := 0
			for _, a := range answers {
				if a.IsCorrect {
					correct++
				}
			}
			popularity = float64(correct) / float64(len(answers))
		}

		rows = append(rows, FeatureRow{
			QuestionID:   q.ID,
			ChapterID:    q.ChapterID,
			Difficulty:   models.DifficultyRank(q.Difficulty),
			QuestionType: models.QuestionTypeRank(q.QuestionType),
			Marks:        q.Marks,
			Popularity:   popularity,
			TextLength:   float64(len(q.Text)) / textLengthScale,
		})
	}

	return rows, nil
}
