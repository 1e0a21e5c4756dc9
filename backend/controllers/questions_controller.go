package controllers

import (
	"errors"
	"strconv"

	"examportal/backend/config"
	"examportal/backend/models"
	"examportal/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type QuestionsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewQuestionsController(db *gorm.DB, cfg *config.Config) *QuestionsController {
	return &QuestionsController{DB: db, Cfg: cfg}
}

func (qc *QuestionsController) CreateChapter(c *fiber.Ctx) error {
	type ChapterInput struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}

	var input ChapterInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Name == "" {
		return utils.BadRequest(c, "Chapter name is required")
	}

	chapter := models.Chapter{
		Name:        input.Name,
		Description: input.Description,
	}
	if err := qc.DB.Create(&chapter).Error; err != nil {
		return utils.InternalServerError(c, "Could not create chapter")
	}

	return utils.Created(c, fiber.Map{
		"id":          chapter.ID,
		"name":        chapter.Name,
		"description": chapter.Description,
	})
}

func (qc *QuestionsController) GetChapters(c *fiber.Ctx) error {
	var chapters []models.Chapter
	if err := qc.DB.Find(&chapters).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(chapters))
	for _, chapter := range chapters {
		result = append(result, fiber.Map{
			"id":          chapter.ID,
			"name":        chapter.Name,
			"description": chapter.Description,
		})
	}
	return utils.Success(c, fiber.StatusOK, result)
}

type QuestionInput struct {
	Text          string `json:"text"`
	ChapterID     uint   `json:"chapter_id"`
	Difficulty    string `json:"difficulty"`
	QuestionType  string `json:"question_type"`
	Marks         int    `json:"marks"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectAnswer string `json:"correct_answer"`
	Solution      string `json:"solution"`
}

func (in *QuestionInput) validate() string {
	if in.Text == "" {
		return "Question text is required"
	}
	if in.ChapterID == 0 {
		return "Chapter is required"
	}
	if _, ok := models.DifficultyOrdinal[in.Difficulty]; !ok {
		return "Difficulty must be easy, medium or hard"
	}
	if _, ok := models.QuestionTypeOrdinal[in.QuestionType]; !ok {
		return "Invalid question type"
	}
	if in.Marks <= 0 {
		return "Marks must be positive"
	}
	if in.CorrectAnswer == "" {
		return "Correct answer is required"
	}
	return ""
}

func (qc *QuestionsController) CreateQuestion(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var input QuestionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if msg := input.validate(); msg != "" {
		return utils.BadRequest(c, msg)
	}

	var chapter models.Chapter
	if err := qc.DB.First(&chapter, input.ChapterID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Chapter not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	question := models.Question{
		Text:          input.Text,
		ChapterID:     input.ChapterID,
		Difficulty:    input.Difficulty,
		QuestionType:  input.QuestionType,
		Marks:         input.Marks,
		CreatedBy:     &userID,
		OptionA:       input.OptionA,
		OptionB:       input.OptionB,
		OptionC:       input.OptionC,
		OptionD:       input.OptionD,
		CorrectAnswer: input.CorrectAnswer,
		Solution:      input.Solution,
	}
	if err := qc.DB.Create(&question).Error; err != nil {
		return utils.InternalServerError(c, "Could not create question")
	}

	return utils.Created(c, questionResponse(&question))
}

func (qc *QuestionsController) GetQuestions(c *fiber.Ctx) error {
	query := qc.DB.Model(&models.Question{})

	if chapterID := c.Query("chapter_id"); chapterID != "" {
		query = query.Where("chapter_id = ?", chapterID)
	}
	if difficulty := c.Query("difficulty"); difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}
	if questionType := c.Query("question_type"); questionType != "" {
		query = query.Where("question_type = ?", questionType)
	}

	var questions []models.Question
	if err := query.Find(&questions).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(questions))
	for i := range questions {
		result = append(result, questionResponse(&questions[i]))
	}
	return utils.Success(c, fiber.StatusOK, result)
}

func (qc *QuestionsController) GetQuestion(c *fiber.Ctx) error {
	questionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid question ID")
	}

	var question models.Question
	if err := qc.DB.First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Question not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, questionResponse(&question))
}

func (qc *QuestionsController) UpdateQuestion(c *fiber.Ctx) error {
	questionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid question ID")
	}

	var question models.Question
	if err := qc.DB.First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Question not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var input QuestionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if msg := input.validate(); msg != "" {
		return utils.BadRequest(c, msg)
	}

	question.Text = input.Text
	question.ChapterID = input.ChapterID
	question.Difficulty = input.Difficulty
	question.QuestionType = input.QuestionType
	question.Marks = input.Marks
	question.OptionA = input.OptionA
	question.OptionB = input.OptionB
	question.OptionC = input.OptionC
	question.OptionD = input.OptionD
	question.CorrectAnswer = input.CorrectAnswer
	question.Solution = input.Solution

	if err := qc.DB.Save(&question).Error; err != nil {
		return utils.InternalServerError(c, "Could not update question")
	}

	return utils.Success(c, fiber.StatusOK, questionResponse(&question))
}

func (qc *QuestionsController) DeleteQuestion(c *fiber.Ctx) error {
	questionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid question ID")
	}

	// Keep questions referenced by existing tests; deleting them would
	// orphan recorded answers
	var used int64
	qc.DB.Model(&models.TestQuestion{}).Where("question_id = ?", questionID).Count(&used)
	if used > 0 {
		return utils.BadRequest(c, "Question is used by existing tests and cannot be deleted")
	}

	if err := qc.DB.Delete(&models.Question{}, questionID).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete question")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"deleted": questionID})
}

func questionResponse(q *models.Question) fiber.Map {
	return fiber.Map{
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
		"solution":      q.Solution,
	}
}
