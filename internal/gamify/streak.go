package gamify

import "time"

// DayOf truncates a timestamp to its UTC calendar day. Streaks and daily
// periods are computed on server UTC time; see the catalog package for
// the matching period rule.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// UpdateStreak returns the streak after a qualifying completion at
// completedAt, given the prior streak and last-activity date. Exactly one
// calendar day after the last activity extends the streak, the same day
// leaves it unchanged, anything else resets it to 1. Pure function.
func UpdateStreak(streak int, lastActivity, completedAt time.Time) int {
	if lastActivity.IsZero() {
		return 1
	}
	last := DayOf(lastActivity)
	day := DayOf(completedAt)
	switch {
	case day.Equal(last):
		if streak < 1 {
			return 1
		}
		return streak
	case day.Equal(last.AddDate(0, 0, 1)):
		return streak + 1
	default:
		return 1
	}
}
