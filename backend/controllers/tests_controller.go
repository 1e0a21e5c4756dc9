package controllers

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"examportal/backend/config"
	"examportal/backend/models"
	"examportal/backend/recommender"
	"examportal/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// numericalTolerance is the margin of error allowed when grading numerical
// answers.
const numericalTolerance = 0.001

type TestsController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Engine *recommender.Engine
}

func NewTestsController(db *gorm.DB, cfg *config.Config, engine *recommender.Engine) *TestsController {
	return &TestsController{DB: db, Cfg: cfg, Engine: engine}
}

func (tc *TestsController) CreateTest(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	type TestInput struct {
		Title           string `json:"title"`
		Description     string `json:"description"`
		DurationMinutes int    `json:"duration_minutes"`
		IsPublic        bool   `json:"is_public"`
		QuestionIDs     []uint `json:"question_ids"`
	}

	var input TestInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" {
		return utils.BadRequest(c, "Title is required")
	}
	if input.DurationMinutes <= 0 {
		return utils.BadRequest(c, "Duration must be positive")
	}
	if len(input.QuestionIDs) == 0 {
		return utils.BadRequest(c, "At least one question is required")
	}

	var questions []models.Question
	if err := tc.DB.Where("id IN ?", input.QuestionIDs).Find(&questions).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	if len(questions) != len(input.QuestionIDs) {
		return utils.BadRequest(c, "One or more questions do not exist")
	}

	totalMarks := 0
	for _, q := range questions {
		totalMarks += q.Marks
	}

	test := models.Test{
		Title:           input.Title,
		Description:     input.Description,
		DurationMinutes: input.DurationMinutes,
		TotalMarks:      totalMarks,
		CreatorID:       userID,
		IsPublic:        input.IsPublic,
	}

	err := tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&test).Error; err != nil {
			return err
		}
		for i, questionID := range input.QuestionIDs {
			testQuestion := models.TestQuestion{
				TestID:        test.ID,
				QuestionID:    questionID,
				SequenceOrder: i + 1,
			}
			if err := tx.Create(&testQuestion).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not create test")
	}

	return utils.Created(c, fiber.Map{
		"id":          test.ID,
		"title":       test.Title,
		"total_marks": test.TotalMarks,
		"questions":   len(input.QuestionIDs),
	})
}

func (tc *TestsController) GetAvailableTests(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var tests []models.Test
	if err := tc.DB.Where("is_public = ? OR creator_id = ?", true, userID).Find(&tests).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(tests))
	for _, test := range tests {
		var questionCount int64
		tc.DB.Model(&models.TestQuestion{}).Where("test_id = ?", test.ID).Count(&questionCount)

		result = append(result, fiber.Map{
			"id":               test.ID,
			"title":            test.Title,
			"description":      test.Description,
			"duration_minutes": test.DurationMinutes,
			"total_marks":      test.TotalMarks,
			"questions":        questionCount,
		})
	}
	return utils.Success(c, fiber.StatusOK, result)
}

func (tc *TestsController) GetTestDetails(c *fiber.Ctx) error {
	testID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid test ID")
	}

	var test models.Test
	if err := tc.DB.Preload("Questions").First(&test, testID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Test not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	questionIDs := make([]uint, 0, len(test.Questions))
	for _, tq := range test.Questions {
		questionIDs = append(questionIDs, tq.QuestionID)
	}

	var questions []models.Question
	if len(questionIDs) > 0 {
		if err := tc.DB.Where("id IN ?", questionIDs).Find(&questions).Error; err != nil {
			return utils.InternalServerError(c, "Could not query database")
		}
	}

	// Questions go out in test order, without the correct answers
	byID := make(map[uint]*models.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}
	questionList := make([]fiber.Map, 0, len(test.Questions))
	for _, tq := range test.Questions {
		q, ok := byID[tq.QuestionID]
		if !ok {
			continue
		}
		questionList = append(questionList, fiber.Map{
			"id":            q.ID,
			"text":          q.Text,
			"chapter_id":    q.ChapterID,
			"difficulty":    q.Difficulty,
			"question_type": q.QuestionType,
			"marks":         q.Marks,
			"option_a":      q.OptionA,
			"option_b":      q.OptionB,
			"option_c":      q.OptionC,
			"option_d":      q.OptionD,
			"order":         tq.SequenceOrder,
		})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":               test.ID,
		"title":            test.Title,
		"description":      test.Description,
		"duration_minutes": test.DurationMinutes,
		"total_marks":      test.TotalMarks,
		"questions":        questionList,
	})
}

func (tc *TestsController) StartTest(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	testID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid test ID")
	}

	var test models.Test
	if err := tc.DB.First(&test, testID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Test not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	// Resume an in-progress attempt instead of stacking new ones
	var existing models.TestResult
	err = tc.DB.Where("test_id = ? AND student_id = ? AND completed = ?", testID, userID, false).
		First(&existing).Error
	if err == nil {
		return utils.Success(c, fiber.StatusOK, fiber.Map{
			"result_id": existing.ID,
			"resumed":   true,
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := models.TestResult{
		TestID:    uint(testID),
		StudentID: userID,
		StartTime: time.Now(),
		Completed: false,
	}
	if err := tc.DB.Create(&result).Error; err != nil {
		return utils.InternalServerError(c, "Could not start test")
	}

	return utils.Created(c, fiber.Map{
		"result_id": result.ID,
		"resumed":   false,
	})
}

func (tc *TestsController) SubmitTest(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	resultID, err := strconv.Atoi(c.Params("result_id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid result ID")
	}

	var result models.TestResult
	if err := tc.DB.First(&result, resultID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Test result not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	if result.StudentID != userID {
		return utils.Forbidden(c, "This is not your test")
	}
	if result.Completed {
		return utils.BadRequest(c, "Test already submitted")
	}

	type SubmitInput struct {
		Answers map[string]string `json:"answers"` // question id -> answer
	}
	var input SubmitInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var testQuestions []models.TestQuestion
	if err := tc.DB.Where("test_id = ?", result.TestID).Find(&testQuestions).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	questionIDs := make([]uint, 0, len(testQuestions))
	for _, tq := range testQuestions {
		questionIDs = append(questionIDs, tq.QuestionID)
	}
	var questions []models.Question
	if err := tc.DB.Where("id IN ?", questionIDs).Find(&questions).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	totalScore := 0.0
	now := time.Now()

	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		for i := range questions {
			q := &questions[i]
			studentAnswer := input.Answers[strconv.FormatUint(uint64(q.ID), 10)]

			isCorrect, score := gradeAnswer(q, studentAnswer)

			answer := models.QuestionAnswer{
				TestResultID:  result.ID,
				QuestionID:    q.ID,
				StudentAnswer: studentAnswer,
				IsCorrect:     isCorrect,
				Score:         &score,
			}
			if err := tx.Create(&answer).Error; err != nil {
				return err
			}
			totalScore += score
		}

		result.EndTime = &now
		result.TotalScore = &totalScore
		result.Completed = true
		return tx.Save(&result).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not submit test")
	}

	// The student's performance history changed; their cached profile is
	// stale now
	tc.Engine.Invalidate(userID)

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"result_id":   result.ID,
		"total_score": totalScore,
	})
}

func (tc *TestsController) GetTestResult(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	resultID, err := strconv.Atoi(c.Params("result_id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid result ID")
	}

	var result models.TestResult
	if err := tc.DB.Preload("Answers").First(&result, resultID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Test result not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}
	if result.StudentID != userID {
		return utils.Forbidden(c, "This is not your test")
	}

	answers := make([]fiber.Map, 0, len(result.Answers))
	for _, a := range result.Answers {
		answers = append(answers, fiber.Map{
			"question_id":    a.QuestionID,
			"student_answer": a.StudentAnswer,
			"is_correct":     a.IsCorrect,
			"score":          a.Score,
		})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"id":          result.ID,
		"test_id":     result.TestID,
		"completed":   result.Completed,
		"total_score": result.TotalScore,
		"start_time":  result.StartTime,
		"end_time":    result.EndTime,
		"answers":     answers,
	})
}

// GetPerformance возвращает средний результат студента по главам
func (tc *TestsController) GetPerformance(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	type chapterRow struct {
		ChapterID uint
		Name      string
		Average   float64
		Answered  int64
	}

	var rows []chapterRow
	err := tc.DB.Model(&models.QuestionAnswer{}).
		Select("questions.chapter_id AS chapter_id, chapters.name AS name, AVG(question_answers.score / questions.marks) AS average, COUNT(*) AS answered").
		Joins("JOIN test_results ON test_results.id = question_answers.test_result_id").
		Joins("JOIN questions ON questions.id = question_answers.question_id").
		Joins("JOIN chapters ON chapters.id = questions.chapter_id").
		Where("test_results.student_id = ? AND test_results.completed = ? AND question_answers.score IS NOT NULL AND questions.marks > 0", userID, true).
		Group("questions.chapter_id, chapters.name").
		Scan(&rows).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(rows))
	for _, row := range rows {
		result = append(result, fiber.Map{
			"chapter_id": row.ChapterID,
			"chapter":    row.Name,
			"average":    row.Average,
			"answered":   row.Answered,
			"weak":       row.Average < 0.65,
		})
	}
	return utils.Success(c, fiber.StatusOK, result)
}

// gradeAnswer grades a single answer the way the platform always has:
// exact match for choice questions, a small tolerance for numerical ones,
// half credit for any non-empty descriptive answer pending teacher review.
func gradeAnswer(q *models.Question, studentAnswer string) (*bool, float64) {
	switch q.QuestionType {
	case models.TypeMultipleChoice, models.TypeTrueFalse:
		correct := studentAnswer == q.CorrectAnswer
		score := 0.0
		if correct {
			score = float64(q.Marks)
		}
		return &correct, score
	case models.TypeNumerical:
		correct := false
		score := 0.0
		studentValue, err1 := strconv.ParseFloat(strings.TrimSpace(studentAnswer), 64)
		correctValue, err2 := strconv.ParseFloat(strings.TrimSpace(q.CorrectAnswer), 64)
		if err1 == nil && err2 == nil && math.Abs(studentValue-correctValue) < numericalTolerance {
			correct = true
			score = float64(q.Marks)
		}
		return &correct, score
	default:
		// Descriptive answers need a teacher; half credit keeps the
		// student's history usable in the meantime
		if studentAnswer == "" {
			correct := false
			return &correct, 0
		}
		return nil, float64(q.Marks) * 0.5
	}
}
