package recommender

import (
	"fmt"

	"examportal/backend/models"

	"gorm.io/gorm"
)

// AnswerRecord is the correctness signal for a single recorded answer to a
// question, regardless of which student gave it.
type AnswerRecord struct {
	IsCorrect bool
}

// ScoredAnswer joins one of a student's graded answers with the question it
// was given for. Score is nil when the answer was never graded.
type ScoredAnswer struct {
	Score        *float64
	QuestionID   uint
	ChapterID    uint
	Difficulty   string
	QuestionType string
	Marks        int
}

// PerformanceStore is the read-only view of the test history the engine
// builds its features and profiles from. The engine never writes through it.
type PerformanceStore interface {
	ListQuestions() ([]models.Question, error)
	ListAnswers(questionID uint) ([]AnswerRecord, error)
	ListCompletedAnswers(studentID uint) ([]ScoredAnswer, error)
	FetchQuestionsByIDs(ids []uint) ([]models.Question, error)
}

// GormStore implements PerformanceStore against the application database.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ListQuestions() ([]models.Question, error) {
	var questions []models.Question
	if err := s.db.Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

func (s *GormStore) ListAnswers(questionID uint) ([]AnswerRecord, error) {
	var answers []models.QuestionAnswer
	if err := s.db.Where("question_id = ?", questionID).Find(&answers).Error; err != nil {
		return nil, fmt.Errorf("list answers for question %d: %w", questionID, err)
	}

	records := make([]AnswerRecord, 0, len(answers))
	for _, a := range answers {
		// Ungraded answers count as incorrect in the popularity rate
		records = append(records, AnswerRecord{IsCorrect: a.IsCorrect != nil && *a.IsCorrect})
	}
	return records, nil
}

func (s *GormStore) ListCompletedAnswers(studentID uint) ([]ScoredAnswer, error) {
	var rows []ScoredAnswer
	err := s.db.Model(&models.QuestionAnswer{}).
		Select("question_answers.score, questions.id AS question_id, questions.chapter_id, questions.difficulty, questions.question_type, questions.marks").
		Joins("JOIN test_results ON test_results.id = question_answers.test_result_id").
		Joins("JOIN questions ON questions.id = question_answers.question_id").
		Where("test_results.student_id = ? AND test_results.completed = ?", studentID, true).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list completed answers for student %d: %w", studentID, err)
	}
	return rows, nil
}

func (s *GormStore) FetchQuestionsByIDs(ids []uint) ([]models.Question, error) {
	if len(ids) == 0 {
		return []models.Question{}, nil
	}

	var questions []models.Question
	if err := s.db.Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("fetch questions by ids: %w", err)
	}
	return questions, nil
}
