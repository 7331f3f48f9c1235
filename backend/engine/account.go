package engine

import (
	"time"

	"habitflow/backend/models"
)

// RecomputeStreak derives the user's aggregate daily streak from the full,
// current habit set. Called after every habit progress write (and after a
// delete, since the all-complete denominator changed). The input user is not
// modified.
//
// The aggregate streak advances at most once per day, and resets whenever
// any habit is incomplete. Note the asymmetry with the per-habit rule, which
// only resets on an explicit zero: a habit at partial progress keeps its own
// streak but still zeroes the account streak. This mirrors the historical
// behavior and is covered by tests as a documented quirk.
//
// An empty habit set is a no-op: no habits means nothing to complete, not
// "everything complete".
func RecomputeStreak(habits []models.Habit, user models.User, today time.Time) models.User {
	if len(habits) == 0 {
		return user
	}

	today = Day(today)

	allCompleted := true
	for i := range habits {
		if !habits[i].Completed() {
			allCompleted = false
			break
		}
	}

	activeToday := user.LastActiveDate != nil && SameDay(*user.LastActiveDate, today)

	if allCompleted && !activeToday {
		user.CurrentStreak++
		if user.CurrentStreak > user.LongestStreak {
			user.LongestStreak = user.CurrentStreak
		}
	} else if !allCompleted {
		user.CurrentStreak = 0
	}

	user.LastActiveDate = &today

	return user
}
