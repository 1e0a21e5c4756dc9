package controllers

import (
	"errors"
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

type RecommendationsController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Engine *recommender.Engine
}

func NewRecommendationsController(db *gorm.DB, cfg *config.Config, engine *recommender.Engine) *RecommendationsController {
	return &RecommendationsController{DB: db, Cfg: cfg, Engine: engine}
}

// GetRecommendedQuestions returns questions picked for the current student
// based on their performance history.
func (rc *RecommendationsController) GetRecommendedQuestions(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	count := c.QueryInt("count", 10)
	chapterIDs, err := parseChapterIDs(c.Query("chapters"))
	if err != nil {
		return utils.BadRequest(c, "Invalid chapter filter")
	}

	questions, err := rc.Engine.Recommend(userID, chapterIDs, count)
	if err != nil {
		if errors.Is(err, recommender.ErrInvalidCount) {
			return utils.BadRequest(c, "Count must be positive")
		}
		return utils.InternalServerError(c, "Could not build recommendations")
	}

	result := make([]fiber.Map, 0, len(questions))
	for i := range questions {
		result = append(result, questionResponse(&questions[i]))
	}
	return utils.Success(c, fiber.StatusOK, result)
}

// CreatePersonalizedTest generates a test from recommended questions and
// starts it for the current student.
func (rc *RecommendationsController) CreatePersonalizedTest(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	type PersonalizedTestInput struct {
		Title           string `json:"title"`
		DurationMinutes int    `json:"duration_minutes"`
		ChapterIDs      []uint `json:"chapter_ids"`
		NumQuestions    int    `json:"num_questions"`
	}

	var input PersonalizedTestInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" {
		return utils.BadRequest(c, "Title is required")
	}
	if input.DurationMinutes <= 0 {
		return utils.BadRequest(c, "Duration must be positive")
	}
	if input.NumQuestions <= 0 {
		return utils.BadRequest(c, "Number of questions must be positive")
	}

	questions, err := rc.Engine.Recommend(userID, input.ChapterIDs, input.NumQuestions)
	if err != nil {
		return utils.InternalServerError(c, "Could not build recommendations")
	}

	// Top up with arbitrary matching questions when the engine comes back
	// short
	if len(questions) < input.NumQuestions {
		chosen := make(map[uint]bool, len(questions))
		for _, q := range questions {
			chosen[q.ID] = true
		}

		query := rc.DB.Model(&models.Question{})
		if len(input.ChapterIDs) > 0 {
			query = query.Where("chapter_id IN ?", input.ChapterIDs)
		}

		var additional []models.Question
		if err := query.Limit(input.NumQuestions).Find(&additional).Error; err != nil {
			return utils.InternalServerError(c, "Could not query database")
		}
		for _, q := range additional {
			if len(questions) >= input.NumQuestions {
				break
			}
			if chosen[q.ID] {
				continue
			}
			questions = append(questions, q)
			chosen[q.ID] = true
		}
	}

	if len(questions) == 0 {
		return utils.BadRequest(c, "No questions available for the selected chapters")
	}

	totalMarks := 0
	for _, q := range questions {
		totalMarks += q.Marks
	}

	test := models.Test{
		Title:           input.Title,
		Description:     "Personalized test generated from your performance history",
		DurationMinutes: input.DurationMinutes,
		TotalMarks:      totalMarks,
		CreatorID:       userID,
		IsPublic:        false,
	}

	var result models.TestResult
	err = rc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&test).Error; err != nil {
			return err
		}
		for i, q := range questions {
			testQuestion := models.TestQuestion{
				TestID:        test.ID,
				QuestionID:    q.ID,
				SequenceOrder: i + 1,
			}
			if err := tx.Create(&testQuestion).Error; err != nil {
				return err
			}
		}

		result = models.TestResult{
			TestID:    test.ID,
			StudentID: userID,
			StartTime: time.Now(),
			Completed: false,
		}
		return tx.Create(&result).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not create personalized test")
	}

	questionList := make([]fiber.Map, 0, len(questions))
	for i := range questions {
		questionList = append(questionList, questionResponse(&questions[i]))
	}

	return utils.Created(c, fiber.Map{
		"test_id":     test.ID,
		"result_id":   result.ID,
		"title":       test.Title,
		"total_marks": test.TotalMarks,
		"questions":   questionList,
	})
}

func parseChapterIDs(raw string) ([]uint, error) {
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil || id == 0 {
			return nil, errors.New("invalid chapter id")
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}
