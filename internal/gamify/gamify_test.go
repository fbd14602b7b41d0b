package gamify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revenuemediabot/DailycheckBot2025/internal/catalog"
	"github.com/revenuemediabot/DailycheckBot2025/internal/progress"
)

func TestLevelThresholds(t *testing.T) {
	cases := []struct {
		xp    int
		level int
	}{
		{-10, 1},
		{0, 1},
		{99, 1},
		{100, 2},
		{150, 2},
		{200, 3},
		{999, 10},
		{1000, 11},
		{1500, 16},
		{99999, 16},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.level, Level(tc.xp), "xp=%d", tc.xp)
	}
}

func TestLevelIsMonotonic(t *testing.T) {
	prev := Level(0)
	for xp := 1; xp <= 2000; xp++ {
		cur := Level(xp)
		if cur < prev {
			t.Fatalf("level dropped from %d to %d at xp=%d", prev, cur, xp)
		}
		prev = cur
	}
}

func TestLevelTitles(t *testing.T) {
	assert.Equal(t, "Novice", LevelTitle(1))
	assert.Equal(t, "Task Guru", LevelTitle(5))
	assert.Equal(t, "Iron Will", LevelTitle(16))
	// Out-of-range levels clamp to the ladder.
	assert.Equal(t, "Novice", LevelTitle(0))
	assert.Equal(t, "Iron Will", LevelTitle(99))
}

func TestXPToNext(t *testing.T) {
	assert.Equal(t, 100, XPToNext(0))
	assert.Equal(t, 1, XPToNext(99))
	assert.Equal(t, 100, XPToNext(100))
	assert.Equal(t, 0, XPToNext(1500))
	assert.Equal(t, 0, XPToNext(2500))
}

func TestUpdateStreak(t *testing.T) {
	day := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	// First ever activity starts a streak.
	assert.Equal(t, 1, UpdateStreak(0, time.Time{}, day))

	// Same calendar day leaves the streak unchanged.
	assert.Equal(t, 4, UpdateStreak(4, day, day.Add(10*time.Hour)))

	// The next calendar day extends it, even across a large clock gap.
	assert.Equal(t, 5, UpdateStreak(4, day, day.Add(26*time.Hour)))

	// A missed day resets to 1.
	assert.Equal(t, 1, UpdateStreak(4, day, day.AddDate(0, 0, 3)))

	// Day boundaries are UTC: 23:30 UTC to 00:30 UTC next day extends.
	late := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, 2, UpdateStreak(1, late, late.Add(time.Hour)))
}

func TestComputeReward(t *testing.T) {
	flat := &catalog.Task{ID: "t1", XPReward: 50}
	r := ComputeReward(flat)
	assert.Equal(t, 50, r.XP)
	assert.Equal(t, 50, TotalXP(r))

	rich := &catalog.Task{
		ID:       "t2",
		XPReward: 50,
		Rewards:  catalog.Reward{XP: 80, BonusXP: 20, AchievementID: "badge"},
	}
	r = ComputeReward(rich)
	assert.Equal(t, 80, r.XP)
	assert.Equal(t, 100, TotalXP(r))
	assert.Equal(t, "badge", r.AchievementID)
}

func TestNextStats(t *testing.T) {
	var s catalog.Stats

	s = NextStats(s, 10*time.Minute, true, 4)
	assert.Equal(t, 1, s.CompletionCount)
	assert.InDelta(t, 10, s.AvgCompletionTime, 1e-9)
	assert.InDelta(t, 1, s.SuccessRate, 1e-9)
	assert.InDelta(t, 4, s.AvgRating, 1e-9)

	s = NextStats(s, 20*time.Minute, false, 2)
	assert.Equal(t, 2, s.CompletionCount)
	assert.InDelta(t, 15, s.AvgCompletionTime, 1e-9)
	assert.InDelta(t, 0.5, s.SuccessRate, 1e-9)
	assert.InDelta(t, 3, s.AvgRating, 1e-9)

	// An untimed, unrated completion moves only the count and rate.
	s = NextStats(s, 0, true, 0)
	assert.Equal(t, 3, s.CompletionCount)
	assert.InDelta(t, 15, s.AvgCompletionTime, 1e-9)
	assert.InDelta(t, 3, s.AvgRating, 1e-9)
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	mk := func(id, cat string) catalog.Task {
		return catalog.Task{
			ID: id, Title: id, Category: cat,
			Difficulty: catalog.DifficultyEasy, XPReward: 10, Active: true,
		}
	}
	c, err := catalog.Load([]catalog.Task{
		mk("run", "health"), mk("swim", "health"), mk("read", "learning"),
	})
	require.NoError(t, err)
	return c
}

func TestEvalPredicates(t *testing.T) {
	cat := testCatalog(t)
	now := time.Now().UTC()

	p := progress.New("u1")
	p.Completed["run"] = now
	p.Completed["read"] = now
	p.XP = 250
	p.Level = Level(p.XP)
	p.Streak = 3

	assert.True(t, Eval(Predicate{Kind: PredCount, Count: 2}, p, cat))
	assert.False(t, Eval(Predicate{Kind: PredCount, Count: 3}, p, cat))
	assert.True(t, Eval(Predicate{Kind: PredCount, Count: 1, Category: "health"}, p, cat))
	assert.False(t, Eval(Predicate{Kind: PredCount, Count: 2, Category: "health"}, p, cat))
	assert.True(t, Eval(Predicate{Kind: PredStreak, Streak: 3}, p, cat))
	assert.False(t, Eval(Predicate{Kind: PredStreak, Streak: 4}, p, cat))
	assert.True(t, Eval(Predicate{Kind: PredLevel, Level: 3}, p, cat))
	assert.True(t, Eval(Predicate{Kind: PredXP, XP: 250}, p, cat))
	assert.False(t, Eval(Predicate{Kind: PredXP, XP: 251}, p, cat))

	composite := Predicate{Kind: PredAll, All: []Predicate{
		{Kind: PredStreak, Streak: 3},
		{Kind: PredCount, Count: 1, Category: "health"},
	}}
	assert.True(t, Eval(composite, p, cat))

	// An empty composite and an unknown kind never match.
	assert.False(t, Eval(Predicate{Kind: PredAll}, p, cat))
	assert.False(t, Eval(Predicate{Kind: "mystery"}, p, cat))
}

func TestEvaluateAchievementsFiresOnce(t *testing.T) {
	cat := testCatalog(t)
	defs := DefaultAchievements()

	p := progress.New("u1")
	p.Completed["run"] = time.Now().UTC()
	p.Streak = 1
	p.XP = 10
	p.Level = Level(p.XP)

	unlocked := EvaluateAchievements(p, cat, defs)
	assert.Equal(t, []string{"first_task"}, unlocked)

	// Once recorded, it never re-fires.
	p.Achievements["first_task"] = time.Now().UTC()
	assert.Empty(t, EvaluateAchievements(p, cat, defs))
}

func TestEvaluateAchievementsSorted(t *testing.T) {
	cat := testCatalog(t)
	defs := DefaultAchievements()

	p := progress.New("u1")
	now := time.Now().UTC()
	p.Completed["run"] = now
	p.Completed["swim"] = now
	p.Completed["read"] = now
	p.Streak = 7
	p.XP = 1000
	p.Level = Level(p.XP)

	unlocked := EvaluateAchievements(p, cat, defs)
	assert.Equal(t, []string{"first_task", "level_10", "level_5", "streak_3", "streak_7", "xp_1000"}, unlocked)
}
