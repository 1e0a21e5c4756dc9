package middleware

import (
	"examportal/backend/config"
	"examportal/backend/models"
	"examportal/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		// Сохраняем ID пользователя для обработчиков ниже по цепочке
		c.Locals("user_id", userID)
		return c.Next()
	}
}

// RoleMiddleware пропускает только пользователей с указанной ролью
func RoleMiddleware(db *gorm.DB, cfg *config.Config, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		if user.Role != role {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden - " + role + " access required",
			})
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}

func TeacherMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return RoleMiddleware(db, cfg, models.RoleTeacher)
}

func StudentMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return RoleMiddleware(db, cfg, models.RoleStudent)
}
