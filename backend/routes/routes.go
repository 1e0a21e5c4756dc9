package routes

import (
	"examportal/backend/config"
	"examportal/backend/controllers"
	"examportal/backend/middleware"
	"examportal/backend/recommender"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, engine *recommender.Engine) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	teacherMiddleware := middleware.TeacherMiddleware(db, cfg)
	studentMiddleware := middleware.StudentMiddleware(db, cfg)

	// Chapters and questions
	questionsController := controllers.NewQuestionsController(db, cfg)
	app.Get("/api/chapters", authMiddleware, questionsController.GetChapters)
	app.Post("/api/chapters", teacherMiddleware, questionsController.CreateChapter)

	questions := app.Group("/api/questions", teacherMiddleware)
	questions.Get("/", questionsController.GetQuestions)
	questions.Post("/", questionsController.CreateQuestion)
	questions.Get("/:id", questionsController.GetQuestion)
	questions.Put("/:id", questionsController.UpdateQuestion)
	questions.Delete("/:id", questionsController.DeleteQuestion)

	// Tests
	testsController := controllers.NewTestsController(db, cfg, engine)
	tests := app.Group("/api/tests", authMiddleware)
	tests.Get("/", testsController.GetAvailableTests)
	tests.Get("/:id", testsController.GetTestDetails)
	app.Post("/api/tests", teacherMiddleware, testsController.CreateTest)
	app.Post("/api/tests/:id/start", studentMiddleware, testsController.StartTest)
	app.Post("/api/results/:result_id/submit", studentMiddleware, testsController.SubmitTest)
	app.Get("/api/results/:result_id", studentMiddleware, testsController.GetTestResult)
	app.Get("/api/performance", studentMiddleware, testsController.GetPerformance)

	// Recommendations
	recommendationsController := controllers.NewRecommendationsController(db, cfg, engine)
	recommendations := app.Group("/api/recommendations", studentMiddleware)
	recommendations.Get("/questions", recommendationsController.GetRecommendedQuestions)
	recommendations.Post("/test", recommendationsController.CreatePersonalizedTest)
}
