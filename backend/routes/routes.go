package routes

import (
	"habitflow/backend/config"
	"habitflow/backend/controllers"
	"habitflow/backend/engine"
	"habitflow/backend/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, clock engine.Clock) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg, clock)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)
	app.Get("/api/user/stats", authMiddleware, userController.GetStats)

	// Habit routes
	habitsController := controllers.NewHabitsController(db, cfg, clock)
	habits := app.Group("/api/habits", authMiddleware)
	habits.Get("/", habitsController.GetHabits)
	habits.Post("/", habitsController.CreateHabit)
	habits.Get("/:id", habitsController.GetHabit)
	habits.Put("/:id", habitsController.UpdateProgress)
	habits.Delete("/:id", habitsController.DeleteHabit)
}
