package engine

import (
	"errors"
	"time"

	"habitflow/backend/models"
)

var (
	ErrNegativeProgress = errors.New("progress must not be negative")
	ErrInvalidTarget    = errors.New("habit target must be positive")
)

// ApplyProgress computes a habit's state after logging newProgress for today.
// It touches only progress, streak, last-updated and today's history entry;
// past days are never edited. The input habit is not modified.
//
// Streak rules:
//   - the transition to completed-today increments the streak once; repeated
//     same-day writes that keep the habit complete do not increment again
//   - writing exactly 0 is an explicit "undo today" and resets the streak
//   - anything else (partial progress, or decreasing while still at or above
//     target) leaves the streak alone
func ApplyProgress(habit models.Habit, newProgress float64, today time.Time) (models.Habit, error) {
	if newProgress < 0 {
		return models.Habit{}, ErrNegativeProgress
	}
	if habit.Target <= 0 {
		return models.Habit{}, ErrInvalidTarget
	}

	today = Day(today)

	wasCompleted := habit.Progress >= habit.Target
	isNowCompleted := newProgress >= habit.Target
	updatedToday := habit.LastUpdated != nil && SameDay(*habit.LastUpdated, today)

	newStreak := habit.Streak
	if isNowCompleted && (!wasCompleted || !updatedToday) {
		newStreak = habit.Streak + 1
	} else if newProgress == 0 {
		newStreak = 0
	}

	// At most one history entry per calendar day: overwrite today's entry if
	// it exists, otherwise append.
	history := make([]models.HabitHistoryEntry, len(habit.History))
	copy(history, habit.History)
	if n := len(history); n > 0 && SameDay(history[n-1].Date, today) {
		history[n-1].Value = newProgress
	} else {
		history = append(history, models.HabitHistoryEntry{
			HabitID: habit.ID,
			Date:    today,
			Value:   newProgress,
		})
	}

	habit.Progress = newProgress
	habit.Streak = newStreak
	habit.LastUpdated = &today
	habit.History = history

	return habit, nil
}
