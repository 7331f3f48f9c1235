package controllers

import (
	"habitflow/backend/config"
	"habitflow/backend/engine"
	"habitflow/backend/models"
	"habitflow/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewUserController(db *gorm.DB, cfg *config.Config) *UserController {
	return &UserController{DB: db, Cfg: cfg}
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns authenticated user's profile and aggregate streak data
// @Tags users
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	var habitCount int64
	uc.DB.Model(&models.Habit{}).Where("user_id = ?", userID).Count(&habitCount)

	return c.JSON(fiber.Map{
		"id":               user.ID,
		"name":             user.Name,
		"email":            user.Email,
		"avatar":           user.Avatar,
		"created_at":       user.CreatedAt,
		"current_streak":   user.CurrentStreak,
		"longest_streak":   user.LongestStreak,
		"last_active_date": user.LastActiveDate,
		"habit_count":      habitCount,
	})
}

// UpdateProfile godoc
// @Summary Update user profile
// @Description Updates authenticated user's name and avatar
// @Tags users
// @Accept json
// @Produce json
// @Param request body map[string]interface{} true "Profile update data"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [put]
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Name   string `json:"name"`
		Avatar string `json:"avatar"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Avatar != "" {
		user.Avatar = input.Avatar
	}

	if err := uc.DB.Save(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not update user")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"message": "Profile updated successfully",
	})
}

// GetStats godoc
// @Summary Get habit statistics
// @Description Returns per-habit completed-day counts grouped by ISO week
// @Tags users
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/stats [get]
func (uc *UserController) GetStats(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var habits []models.Habit
	if err := uc.DB.Preload("History").Where("user_id = ?", userID).
		Find(&habits).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	type HabitStats struct {
		HabitID       string      `json:"habit_id"`
		Name          string      `json:"name"`
		Streak        int         `json:"streak"`
		CompletedDays int         `json:"completed_days"`
		Weekly        map[int]int `json:"weekly"` // ISO week -> completed days
	}

	stats := make([]HabitStats, 0, len(habits))
	for _, habit := range habits {
		hs := HabitStats{
			HabitID: habit.ID,
			Name:    habit.Name,
			Streak:  habit.Streak,
			Weekly:  map[int]int{},
		}
		for _, entry := range habit.History {
			if entry.Value >= habit.Target {
				hs.CompletedDays++
				hs.Weekly[engine.ISOWeekNumber(entry.Date)]++
			}
		}
		stats = append(stats, hs)
	}

	return c.JSON(fiber.Map{
		"stats": stats,
	})
}
