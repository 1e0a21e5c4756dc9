package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"examportal/backend/config"
	"examportal/backend/models"
	"examportal/backend/recommender"
	"examportal/backend/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:         "testsecret",
		ProfileTTLMinutes: 15,
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.LoginHistory{},
		&models.Chapter{},
		&models.Question{},
		&models.Test{},
		&models.TestQuestion{},
		&models.TestResult{},
		&models.QuestionAnswer{},
	))

	engine := recommender.New(
		recommender.NewGormStore(db),
		time.Duration(cfg.ProfileTTLMinutes)*time.Minute,
	)

	app := fiber.New()
	routes.SetupRoutes(app, db, cfg, engine)
	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return resp.StatusCode, result
}

func register(t *testing.T, app *fiber.App, username, role string) string {
	t.Helper()

	status, result := doJSON(t, app, "POST", "/api/auth/register", "", map[string]interface{}{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
		"role":     role,
	})
	require.Equal(t, fiber.StatusOK, status)
	token, ok := result["token"].(string)
	require.True(t, ok, "no token in register response")
	return token
}

func createChapter(t *testing.T, app *fiber.App, token, name string) uint {
	t.Helper()

	status, result := doJSON(t, app, "POST", "/api/chapters", token, map[string]interface{}{
		"name": name,
	})
	require.Equal(t, fiber.StatusCreated, status)
	data := result["data"].(map[string]interface{})
	return uint(data["id"].(float64))
}

func createQuestion(t *testing.T, app *fiber.App, token string, chapterID uint, difficulty string) uint {
	t.Helper()

	status, result := doJSON(t, app, "POST", "/api/questions", token, map[string]interface{}{
		"text":           "What is 2 + 2?",
		"chapter_id":     chapterID,
		"difficulty":     difficulty,
		"question_type":  models.TypeNumerical,
		"marks":          4,
		"correct_answer": "4",
	})
	require.Equal(t, fiber.StatusCreated, status)
	data := result["data"].(map[string]interface{})
	return uint(data["id"].(float64))
}

func TestRegisterAndLogin(t *testing.T) {
	app, _ := setupApp(t)

	register(t, app, "teacher1", models.RoleTeacher)

	status, result := doJSON(t, app, "POST", "/api/auth/login", "", map[string]interface{}{
		"username": "teacher1",
		"password": "password123",
	})
	require.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, result["token"])

	status, _ = doJSON(t, app, "POST", "/api/auth/login", "", map[string]interface{}{
		"username": "teacher1",
		"password": "wrong",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	app, _ := setupApp(t)

	status, _ := doJSON(t, app, "POST", "/api/auth/register", "", map[string]interface{}{
		"username": "nobody",
		"email":    "nobody@example.com",
		"password": "password123",
		"role":     "admin",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestQuestionEndpointsRequireTeacherRole(t *testing.T) {
	app, _ := setupApp(t)

	teacherToken := register(t, app, "teacher2", models.RoleTeacher)
	studentToken := register(t, app, "student2", models.RoleStudent)

	chapterID := createChapter(t, app, teacherToken, "Algebra")

	status, _ := doJSON(t, app, "POST", "/api/questions", studentToken, map[string]interface{}{
		"text":           "forbidden",
		"chapter_id":     chapterID,
		"difficulty":     models.DifficultyEasy,
		"question_type":  models.TypeTrueFalse,
		"marks":          1,
		"correct_answer": "true",
	})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = doJSON(t, app, "POST", "/api/chapters", studentToken, map[string]interface{}{
		"name": "forbidden",
	})
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestCreateQuestionValidation(t *testing.T) {
	app, _ := setupApp(t)
	teacherToken := register(t, app, "teacher3", models.RoleTeacher)
	chapterID := createChapter(t, app, teacherToken, "Geometry")

	status, _ := doJSON(t, app, "POST", "/api/questions", teacherToken, map[string]interface{}{
		"text":           "bad difficulty",
		"chapter_id":     chapterID,
		"difficulty":     "impossible",
		"question_type":  models.TypeTrueFalse,
		"marks":          1,
		"correct_answer": "true",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = doJSON(t, app, "POST", "/api/questions", teacherToken, map[string]interface{}{
		"text":           "zero marks",
		"chapter_id":     chapterID,
		"difficulty":     models.DifficultyEasy,
		"question_type":  models.TypeTrueFalse,
		"marks":          0,
		"correct_answer": "true",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestPersonalizedTestFlow(t *testing.T) {
	app, _ := setupApp(t)

	teacherToken := register(t, app, "teacher4", models.RoleTeacher)
	studentToken := register(t, app, "student4", models.RoleStudent)

	chapterID := createChapter(t, app, teacherToken, "Mechanics")
	questionIDs := make([]uint, 0, 9)
	for _, difficulty := range []string{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard} {
		for i := 0; i < 3; i++ {
			questionIDs = append(questionIDs, createQuestion(t, app, teacherToken, chapterID, difficulty))
		}
	}

	// Cold start: the student has no history yet
	status, result := doJSON(t, app, "POST", "/api/recommendations/test", studentToken, map[string]interface{}{
		"title":            "My practice test",
		"duration_minutes": 30,
		"chapter_ids":      []uint{chapterID},
		"num_questions":    6,
	})
	require.Equal(t, fiber.StatusCreated, status)

	data := result["data"].(map[string]interface{})
	resultID := uint(data["result_id"].(float64))
	questions := data["questions"].([]interface{})
	require.Len(t, questions, 6)

	// Answer everything correctly and submit
	answers := make(map[string]string)
	for _, raw := range questions {
		q := raw.(map[string]interface{})
		answers[fmt.Sprintf("%.0f", q["id"].(float64))] = "4"
	}

	status, result = doJSON(t, app,
		"POST", fmt.Sprintf("/api/results/%d/submit", resultID), studentToken,
		map[string]interface{}{"answers": answers})
	require.Equal(t, fiber.StatusOK, status)

	data = result["data"].(map[string]interface{})
	assert.Equal(t, float64(24), data["total_score"]) // 6 questions, 4 marks each

	// With history in place, recommendations still come back
	status, result = doJSON(t, app,
		"GET", fmt.Sprintf("/api/recommendations/questions?chapters=%d&count=4", chapterID),
		studentToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	recommended := result["data"].([]interface{})
	assert.Len(t, recommended, 4)

	// Performance view reflects the perfect score
	status, result = doJSON(t, app, "GET", "/api/performance", studentToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	rows := result["data"].([]interface{})
	require.Len(t, rows, 1)
	row := rows[0].(map[string]interface{})
	assert.Equal(t, float64(1), row["average"])
	assert.Equal(t, false, row["weak"])
}

func TestSubmitTestRejectsDoubleSubmission(t *testing.T) {
	app, _ := setupApp(t)

	teacherToken := register(t, app, "teacher5", models.RoleTeacher)
	studentToken := register(t, app, "student5", models.RoleStudent)

	chapterID := createChapter(t, app, teacherToken, "Optics")
	questionID := createQuestion(t, app, teacherToken, chapterID, models.DifficultyEasy)

	status, result := doJSON(t, app, "POST", "/api/tests", teacherToken, map[string]interface{}{
		"title":            "Optics quiz",
		"duration_minutes": 10,
		"is_public":        true,
		"question_ids":     []uint{questionID},
	})
	require.Equal(t, fiber.StatusCreated, status)
	testID := uint(result["data"].(map[string]interface{})["id"].(float64))

	status, result = doJSON(t, app, "POST", fmt.Sprintf("/api/tests/%d/start", testID), studentToken, nil)
	require.Equal(t, fiber.StatusCreated, status)
	resultID := uint(result["data"].(map[string]interface{})["result_id"].(float64))

	submission := map[string]interface{}{
		"answers": map[string]string{fmt.Sprintf("%d", questionID): "4"},
	}
	status, _ = doJSON(t, app, "POST", fmt.Sprintf("/api/results/%d/submit", resultID), studentToken, submission)
	require.Equal(t, fiber.StatusOK, status)

	status, _ = doJSON(t, app, "POST", fmt.Sprintf("/api/results/%d/submit", resultID), studentToken, submission)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestStartTestResumesInProgressAttempt(t *testing.T) {
	app, _ := setupApp(t)

	teacherToken := register(t, app, "teacher6", models.RoleTeacher)
	studentToken := register(t, app, "student6", models.RoleStudent)

	chapterID := createChapter(t, app, teacherToken, "Waves")
	questionID := createQuestion(t, app, teacherToken, chapterID, models.DifficultyMedium)

	status, result := doJSON(t, app, "POST", "/api/tests", teacherToken, map[string]interface{}{
		"title":            "Waves quiz",
		"duration_minutes": 10,
		"is_public":        true,
		"question_ids":     []uint{questionID},
	})
	require.Equal(t, fiber.StatusCreated, status)
	testID := uint(result["data"].(map[string]interface{})["id"].(float64))

	status, result = doJSON(t, app, "POST", fmt.Sprintf("/api/tests/%d/start", testID), studentToken, nil)
	require.Equal(t, fiber.StatusCreated, status)
	firstResult := result["data"].(map[string]interface{})["result_id"]

	status, result = doJSON(t, app, "POST", fmt.Sprintf("/api/tests/%d/start", testID), studentToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	data := result["data"].(map[string]interface{})
	assert.Equal(t, firstResult, data["result_id"])
	assert.Equal(t, true, data["resumed"])
}
