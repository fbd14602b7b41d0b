package gamify

import (
	"time"

	"github.com/revenuemediabot/DailycheckBot2025/internal/catalog"
)

// ComputeReward resolves the reward payload for completing a task. The
// task's reward block wins; an unset XP field falls back to the flat
// xp_reward. BonusXP is granted once, at the completion event.
func ComputeReward(t *catalog.Task) catalog.Reward {
	r := t.Rewards
	if r.XP == 0 {
		r.XP = t.XPReward
	}
	return r
}

// TotalXP is the XP granted by a reward, bonus included.
func TotalXP(r catalog.Reward) int {
	return r.XP + r.BonusXP
}

// NextStats folds one completion into a task's aggregate stats. The
// aggregates are append-only running averages; elapsed may be zero when
// the caller did not time the completion.
func NextStats(s catalog.Stats, elapsed time.Duration, success bool, rating float64) catalog.Stats {
	n := float64(s.CompletionCount)
	s.CompletionCount++
	m := float64(s.CompletionCount)

	// Untimed/unrated completions leave the respective average alone.
	if elapsed > 0 {
		s.AvgCompletionTime = (s.AvgCompletionTime*n + elapsed.Minutes()) / m
	}
	if rating > 0 {
		s.AvgRating = (s.AvgRating*n + rating) / m
	}

	ok := 0.0
	if success {
		ok = 1
	}
	s.SuccessRate = (s.SuccessRate*n + ok) / m
	return s
}
