package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Habit is a user-defined recurring goal with a numeric daily target.
// Progress, Streak, LastUpdated and History are only ever mutated through
// engine.ApplyProgress.
type Habit struct {
	ID        string  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uint    `gorm:"index;not null" json:"user_id"`
	Name      string  `gorm:"not null" json:"name"`
	Icon      string  `json:"icon"`
	Target    float64 `gorm:"not null" json:"target"`
	Unit      string  `json:"unit"`
	Frequency string  `gorm:"default:daily" json:"frequency"`
	Color     string  `json:"color"`

	Progress    float64    `gorm:"default:0" json:"progress"`
	Streak      int        `gorm:"default:0" json:"streak"`
	LastUpdated *time.Time `json:"last_updated"`

	// One entry per calendar day, chronological.
	History []HabitHistoryEntry `gorm:"constraint:OnDelete:CASCADE" json:"history"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h *Habit) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}

// Completed reports whether the habit's current progress meets its target.
func (h *Habit) Completed() bool {
	return h.Progress >= h.Target
}

type HabitHistoryEntry struct {
	ID      uint      `gorm:"primaryKey" json:"-"`
	HabitID string    `gorm:"type:uuid;index;not null" json:"-"`
	Date    time.Time `gorm:"not null" json:"date"`
	Value   float64   `gorm:"not null" json:"value"`
}
