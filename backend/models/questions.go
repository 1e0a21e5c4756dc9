package models

import "gorm.io/gorm"

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

const (
	TypeMultipleChoice = "multiple_choice"
	TypeTrueFalse      = "true_false"
	TypeNumerical      = "numerical"
	TypeDescriptive    = "descriptive"
)

// Ordinal encodings shared by the feature and profile builders. Defined once
// so the two sides can never disagree on how a difficulty or type maps to a
// feature value.
var (
	DifficultyOrdinal = map[string]int{
		DifficultyEasy:   1,
		DifficultyMedium: 2,
		DifficultyHard:   3,
	}

	QuestionTypeOrdinal = map[string]int{
		TypeMultipleChoice: 1,
		TypeTrueFalse:      2,
		TypeNumerical:      3,
		TypeDescriptive:    4,
	}
)

// DifficultyRank returns the ordinal for a difficulty, defaulting to medium
// for unknown values.
func DifficultyRank(difficulty string) int {
	if v, ok := DifficultyOrdinal[difficulty]; ok {
		return v
	}
	return 2
}

// QuestionTypeRank returns the ordinal for a question type, defaulting to
// multiple choice for unknown values.
func QuestionTypeRank(questionType string) int {
	if v, ok := QuestionTypeOrdinal[questionType]; ok {
		return v
	}
	return 1
}

type Chapter struct {
	gorm.Model
	Name        string `gorm:"not null"`
	Description string
	Questions   []Question
}

type Question struct {
	gorm.Model
	Text         string `gorm:"not null"`
	ChapterID    uint   `gorm:"not null"`
	Difficulty   string `gorm:"not null"` // easy, medium, hard
	QuestionType string `gorm:"not null"` // multiple_choice, true_false, numerical, descriptive
	Marks        int    `gorm:"not null"`
	CreatedBy    *uint

	// Options apply to multiple choice questions only
	OptionA string
	OptionB string
	OptionC string
	OptionD string

	CorrectAnswer string `gorm:"not null"`
	Solution      string
}
