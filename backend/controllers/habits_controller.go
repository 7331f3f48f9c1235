package controllers

import (
	"errors"
	"time"

	"habitflow/backend/config"
	"habitflow/backend/engine"
	"habitflow/backend/models"
	"habitflow/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HabitsController struct {
	DB    *gorm.DB
	Cfg   *config.Config
	Clock engine.Clock
}

func NewHabitsController(db *gorm.DB, cfg *config.Config, clock engine.Clock) *HabitsController {
	return &HabitsController{DB: db, Cfg: cfg, Clock: clock}
}

func withHistory(db *gorm.DB) *gorm.DB {
	return db.Preload("History", func(db *gorm.DB) *gorm.DB {
		return db.Order("date ASC")
	})
}

// GetHabits godoc
// @Summary List habits
// @Description Returns all habits of the authenticated user with history
// @Tags habits
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /habits [get]
func (hc *HabitsController) GetHabits(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, hc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	habits := []models.Habit{}
	if err := withHistory(hc.DB).Where("user_id = ?", userID).
		Order("created_at ASC").Find(&habits).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{
		"habits": habits,
	})
}

// GetHabit godoc
// @Summary Get a habit
// @Description Returns a single habit owned by the authenticated user
// @Tags habits
// @Accept json
// @Produce json
// @Param id path string true "Habit ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /habits/{id} [get]
func (hc *HabitsController) GetHabit(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, hc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var habit models.Habit
	if err := withHistory(hc.DB).Where("id = ? AND user_id = ?", c.Params("id"), userID).
		First(&habit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Habit not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{
		"habit": habit,
	})
}

// CreateHabit godoc
// @Summary Create a habit
// @Description Creates a habit with zero progress and a single history entry for today
// @Tags habits
// @Accept json
// @Produce json
// @Param request body map[string]interface{} true "Habit data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /habits [post]
func (hc *HabitsController) CreateHabit(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, hc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	type HabitInput struct {
		Name      string  `json:"name"`
		Icon      string  `json:"icon"`
		Target    float64 `json:"target"`
		Unit      string  `json:"unit"`
		Frequency string  `json:"frequency"`
		Color     string  `json:"color"`
	}

	var input HabitInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Name == "" {
		return utils.BadRequest(c, "Name is required")
	}
	if input.Target <= 0 {
		return utils.BadRequest(c, "Target must be positive")
	}

	today := hc.Clock.Today()
	habit := models.Habit{
		UserID:      userID,
		Name:        input.Name,
		Icon:        input.Icon,
		Target:      input.Target,
		Unit:        input.Unit,
		Frequency:   input.Frequency,
		Color:       input.Color,
		LastUpdated: &today,
		History:     []models.HabitHistoryEntry{{Date: today, Value: 0}},
	}

	if err := hc.DB.Create(&habit).Error; err != nil {
		return utils.InternalServerError(c, "Could not create habit")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"habit": habit,
	})
}

// UpdateProgress godoc
// @Summary Update habit progress
// @Description Logs today's progress for a habit and recomputes habit and account streaks
// @Tags habits
// @Accept json
// @Produce json
// @Param id path string true "Habit ID"
// @Param request body map[string]interface{} true "New progress value"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /habits/{id} [put]
func (hc *HabitsController) UpdateProgress(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, hc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	type ProgressInput struct {
		Progress *float64 `json:"progress"`
	}

	var input ProgressInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Progress == nil {
		return utils.BadRequest(c, "Progress is required")
	}
	if *input.Progress < 0 {
		return utils.BadRequest(c, "Progress must not be negative")
	}

	today := hc.Clock.Today()
	var updated models.Habit

	// Habit write and account recompute are one unit: either both land or
	// neither does. Row locks serialize concurrent updates for the same user.
	txErr := hc.DB.Transaction(func(tx *gorm.DB) error {
		var habit models.Habit
		if err := withHistory(utils.LockForUpdate(tx)).
			Where("id = ? AND user_id = ?", c.Params("id"), userID).
			First(&habit).Error; err != nil {
			return err
		}

		habit, err := engine.ApplyProgress(habit, *input.Progress, today)
		if err != nil {
			return err
		}

		if err := tx.Session(&gorm.Session{FullSaveAssociations: true}).
			Save(&habit).Error; err != nil {
			return err
		}
		updated = habit

		return hc.recomputeAccount(tx, userID, today)
	})

	if txErr != nil {
		switch {
		case errors.Is(txErr, gorm.ErrRecordNotFound):
			return utils.NotFound(c, "Habit not found")
		case errors.Is(txErr, engine.ErrNegativeProgress),
			errors.Is(txErr, engine.ErrInvalidTarget):
			return utils.BadRequest(c, txErr.Error())
		default:
			return utils.InternalServerError(c, "Could not update habit")
		}
	}

	return c.JSON(fiber.Map{
		"habit": updated,
	})
}

// DeleteHabit godoc
// @Summary Delete a habit
// @Description Removes a habit and recomputes the account streak over the remaining set
// @Tags habits
// @Accept json
// @Produce json
// @Param id path string true "Habit ID"
// @Success 204
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /habits/{id} [delete]
func (hc *HabitsController) DeleteHabit(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, hc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	today := hc.Clock.Today()

	txErr := hc.DB.Transaction(func(tx *gorm.DB) error {
		var habit models.Habit
		if err := utils.LockForUpdate(tx).
			Where("id = ? AND user_id = ?", c.Params("id"), userID).
			First(&habit).Error; err != nil {
			return err
		}

		if err := tx.Where("habit_id = ?", habit.ID).
			Delete(&models.HabitHistoryEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&habit).Error; err != nil {
			return err
		}

		// The all-complete denominator changed, recompute right away rather
		// than waiting for the next progress update.
		return hc.recomputeAccount(tx, userID, today)
	})

	if txErr != nil {
		if errors.Is(txErr, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Habit not found")
		}
		return utils.InternalServerError(c, "Could not delete habit")
	}

	return utils.NoContent(c)
}

// recomputeAccount reloads the full habit set and reruns the account streak
// engine inside the caller's transaction.
func (hc *HabitsController) recomputeAccount(tx *gorm.DB, userID uint, today time.Time) error {
	var habits []models.Habit
	if err := tx.Where("user_id = ?", userID).Find(&habits).Error; err != nil {
		return err
	}

	var user models.User
	if err := utils.LockForUpdate(tx).First(&user, userID).Error; err != nil {
		return err
	}

	user = engine.RecomputeStreak(habits, user, today)
	return tx.Save(&user).Error
}
