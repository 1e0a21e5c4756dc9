package recommender

import (
	"examportal/backend/models"
)

// weakChapterThreshold is the average score fraction below which a chapter
// counts as weak. The boundary itself is not weak.
const weakChapterThreshold = 0.65

// defaultPreference is used for any chapter, difficulty or type with no
// observations.
const defaultPreference = 0.5

// Profile summarizes a student's performance history. Preference values are
// inverted averages (1 - average score fraction), so higher means the
// student needs more practice there.
type Profile struct {
	WeakChapters         map[uint]bool
	ChapterPreference    map[uint]float64
	DifficultyPreference map[int]float64
	TypePreference       map[int]float64
}

// BuildProfile derives a student's performance profile from their completed
// test results. It returns (nil, nil) when the student has no usable
// history: no completed results, or none of their answers were ever graded.
// That absent state is what sends the engine down the cold start path.
func BuildProfile(store PerformanceStore, studentID uint) (*Profile, error) {
	answers, err := store.ListCompletedAnswers(studentID)
	if err != nil {
		return nil, err
	}
	if len(answers) == 0 {
		return nil, nil
	}

	chapterScores := map[uint][]float64{}
	difficultyScores := map[int][]float64{}
	typeScores := map[int][]float64{}

	// Every difficulty and type gets a group so missing ones fall back to
	// the default preference
	for _, d := range models.DifficultyOrdinal {
		difficultyScores[d] = nil
	}
	for _, t := range models.QuestionTypeOrdinal {
		typeScores[t] = nil
	}

	graded := 0
	for _, a := range answers {
		if a.Score == nil {
			continue
		}
		// A zero-mark question cannot contribute a meaningful fraction
		if a.Marks <= 0 {
			continue
		}

		fraction := clamp01(*a.Score / float64(a.Marks))
		graded++

		chapterScores[a.ChapterID] = append(chapterScores[a.ChapterID], fraction)

		d := models.DifficultyRank(a.Difficulty)
		difficultyScores[d] = append(difficultyScores[d], fraction)

		t := models.QuestionTypeRank(a.QuestionType)
		typeScores[t] = append(typeScores[t], fraction)
	}

	if graded == 0 {
		return nil, nil
	}

	profile := &Profile{
		WeakChapters:         map[uint]bool{},
		ChapterPreference:    map[uint]float64{},
		DifficultyPreference: map[int]float64{},
		TypePreference:       map[int]float64{},
	}

	for chapterID, scores := range chapterScores {
		avg := average(scores)
		if avg < weakChapterThreshold {
			profile.WeakChapters[chapterID] = true
		}
		profile.ChapterPreference[chapterID] = 1 - avg
	}
	for d, scores := range difficultyScores {
		profile.DifficultyPreference[d] = 1 - average(scores)
	}
	for t, scores := range typeScores {
		profile.TypePreference[t] = 1 - average(scores)
	}

	return profile, nil
}

func average(scores []float64) float64 {
	if len(scores) == 0 {
		return defaultPreference
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

// Grading inconsistencies can record scores above a question's marks; those
// are clamped rather than allowed to push preferences out of [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
