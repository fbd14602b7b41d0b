// Package engine orchestrates task completions end to end: load the
// user's snapshot, check eligibility, apply the progression math,
// persist, invalidate caches and report what was unlocked.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/revenuemediabot/DailycheckBot2025/internal/catalog"
	"github.com/revenuemediabot/DailycheckBot2025/internal/gamify"
	"github.com/revenuemediabot/DailycheckBot2025/internal/metrics"
	"github.com/revenuemediabot/DailycheckBot2025/internal/progress"
	"github.com/revenuemediabot/DailycheckBot2025/internal/storage"
)

// Result describes one accepted (or idempotently repeated) completion.
type Result struct {
	TaskID      string
	Progress    *progress.UserProgress
	Reward      catalog.Reward
	LevelBefore int
	LevelAfter  int
	LevelUp     bool
	StreakAfter int

	// Unlocked carries achievement definitions for the caller's
	// notification delivery.
	Unlocked []gamify.Achievement

	// AlreadyCompleted marks a repeated legitimate call: a no-op success
	// with the existing snapshot and no reward re-applied.
	AlreadyCompleted bool
}

// Coordinator serializes operations per user and composes the catalog,
// the gamification math and the progress store.
type Coordinator struct {
	registry     *catalog.Registry
	store        *progress.Store
	achievements []gamify.Achievement
	mets         *metrics.Metrics
	locks        *userLocks
}

// New builds a coordinator. achievements may be nil to use the built-in
// set; mets may be nil.
func New(registry *catalog.Registry, store *progress.Store, achievements []gamify.Achievement, mets *metrics.Metrics) *Coordinator {
	if achievements == nil {
		achievements = gamify.DefaultAchievements()
	}
	return &Coordinator{
		registry:     registry,
		store:        store,
		achievements: achievements,
		mets:         mets,
		locks:        newUserLocks(),
	}
}

// CompleteTask runs one completion under the user's serialization token.
// Persistence is the commit point: cancellation before it has no side
// effects, and a storage failure aborts with no partial reward.
func (c *Coordinator) CompleteTask(ctx context.Context, userID, taskID string, now time.Time) (*Result, error) {
	ul := c.locks.acquire(userID)
	defer c.locks.release(userID, ul)

	cat := c.registry.Active()
	now = now.UTC()

	p, err := c.store.Get(ctx, userID)
	if err != nil {
		return nil, c.translate(err)
	}

	task, ok := cat.Task(taskID)
	if !ok {
		c.mets.Completion("denied")
		return nil, &NotEligibleError{TaskID: taskID, Reason: catalog.ReasonUnknownTask}
	}

	// A repeated legitimate completion is a no-op success, not an error:
	// return the existing snapshot with nothing re-applied.
	if catalog.CompletedInPeriod(task, p, now) {
		c.mets.Completion("duplicate")
		return &Result{
			TaskID:           taskID,
			Progress:         p,
			LevelBefore:      p.Level,
			LevelAfter:       p.Level,
			StreakAfter:      p.Streak,
			AlreadyCompleted: true,
		}, nil
	}

	if ok, reason := cat.IsEligible(p, taskID, now); !ok {
		c.mets.Completion("denied")
		return nil, &NotEligibleError{TaskID: taskID, Reason: reason}
	}

	// Work on a clone so an abort leaves the loaded snapshot untouched.
	next := p.Clone()
	levelBefore := gamify.Level(next.XP)

	reward := gamify.ComputeReward(task)
	next.XP += gamify.TotalXP(reward)
	next.Streak = gamify.UpdateStreak(next.Streak, next.LastActivity, now)
	next.LastActivity = now
	next.Completed[taskID] = now
	next.Level = gamify.Level(next.XP)

	// Achievement rewards grant XP, which can itself cross an XP or
	// level predicate threshold, so evaluation runs to a fixed point.
	// Terminates because each pass unlocks at least one new
	// achievement and unlocked ones never re-fire.
	var unlocked []gamify.Achievement
	for {
		unlockedIDs := gamify.EvaluateAchievements(next, cat, c.achievements)
		if len(unlockedIDs) == 0 {
			break
		}
		for _, id := range unlockedIDs {
			for _, def := range c.achievements {
				if def.ID == id {
					next.Achievements[id] = now
					next.XP += gamify.TotalXP(def.Reward)
					unlocked = append(unlocked, def)
					break
				}
			}
		}
		next.Level = gamify.Level(next.XP)
	}
	if task.Rewards.AchievementID != "" && !next.HasAchievement(task.Rewards.AchievementID) {
		next.Achievements[task.Rewards.AchievementID] = now
	}

	// Commit point. A cancelled context up to here means nothing
	// happened; after a successful Put the completion is durable.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.store.Put(ctx, next); err != nil {
		c.mets.Completion("unavailable")
		return nil, c.translate(err)
	}

	// The per-user lock does not cover two users completing the same
	// task, so the aggregate fold runs inside the catalog's stats lock.
	cat.UpdateStats(taskID, func(s catalog.Stats) catalog.Stats {
		return gamify.NextStats(s, 0, true, 0)
	})

	c.mets.Completion("completed")
	c.mets.AchievementsUnlocked(len(unlocked))
	log.Info().
		Str("user", userID).
		Str("task", taskID).
		Int("xp", gamify.TotalXP(reward)).
		Int("level", next.Level).
		Msg("task completed")

	return &Result{
		TaskID:      taskID,
		Progress:    next,
		Reward:      reward,
		LevelBefore: levelBefore,
		LevelAfter:  next.Level,
		LevelUp:     next.Level > levelBefore,
		StreakAfter: next.Streak,
		Unlocked:    unlocked,
	}, nil
}

// GetProgress returns the user's current snapshot.
func (c *Coordinator) GetProgress(ctx context.Context, userID string) (*progress.UserProgress, error) {
	p, err := c.store.Get(ctx, userID)
	if err != nil {
		return nil, c.translate(err)
	}
	return p, nil
}

// ListEligibleTasks returns the tasks the user could complete right now,
// in the catalog's topological order.
func (c *Coordinator) ListEligibleTasks(ctx context.Context, userID string, now time.Time) ([]catalog.Task, error) {
	p, err := c.store.Get(ctx, userID)
	if err != nil {
		return nil, c.translate(err)
	}
	cat := c.registry.Active()
	var out []catalog.Task
	for _, id := range cat.TopologicalOrder() {
		if ok, _ := cat.IsEligible(p, id, now); ok {
			if t, ok := cat.Snapshot(id); ok {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

// ResetUserData deletes the user's progress everywhere, caches included.
func (c *Coordinator) ResetUserData(ctx context.Context, userID string) error {
	ul := c.locks.acquire(userID)
	defer c.locks.release(userID, ul)

	if err := c.store.Reset(ctx, userID); err != nil {
		return c.translate(err)
	}
	log.Info().Str("user", userID).Msg("user data reset")
	return nil
}

// translate maps storage failures into the public taxonomy so tier
// details never leak upward.
func (c *Coordinator) translate(err error) error {
	if errors.Is(err, storage.ErrAllTiersUnavailable) {
		return ErrUnavailable
	}
	return err
}
