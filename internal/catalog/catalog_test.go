package catalog

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revenuemediabot/DailycheckBot2025/internal/progress"
)

func task(id string, prereqs ...string) Task {
	return Task{
		ID:            id,
		Title:         "Task " + id,
		Difficulty:    DifficultyEasy,
		XPReward:      50,
		Active:        true,
		Prerequisites: prereqs,
	}
}

func TestLoadValidCatalog(t *testing.T) {
	c, err := Load([]Task{task("t1"), task("t2", "t1"), task("t3", "t1")})
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	got, ok := c.Task("t2")
	require.True(t, ok)
	assert.Equal(t, []string{"t1"}, got.Prerequisites)
}

func TestLoadRejectsBadDefinitions(t *testing.T) {
	until := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	from := until.Add(24 * time.Hour)
	zero := 0

	cases := []struct {
		name  string
		tasks []Task
		issue string
	}{
		{
			name:  "duplicate id",
			tasks: []Task{task("t1"), task("t1")},
			issue: `duplicate task id "t1"`,
		},
		{
			name: "invalid difficulty",
			tasks: []Task{{
				ID: "t1", Title: "x", Difficulty: "brutal", Active: true,
			}},
			issue: `task "t1" has invalid difficulty "brutal"`,
		},
		{
			name: "negative reward",
			tasks: func() []Task {
				bad := task("t1")
				bad.XPReward = -5
				return []Task{bad}
			}(),
			issue: `task "t1" has a negative reward`,
		},
		{
			name: "inverted window",
			tasks: func() []Task {
				bad := task("t1")
				bad.AvailableFrom = &from
				bad.AvailableUntil = &until
				return []Task{bad}
			}(),
			issue: `task "t1" availability window is inverted`,
		},
		{
			name: "non-positive time limit",
			tasks: func() []Task {
				bad := task("t1")
				bad.TimeLimit = &zero
				return []Task{bad}
			}(),
			issue: `task "t1" has a non-positive time limit`,
		},
		{
			name: "daily and weekly",
			tasks: func() []Task {
				bad := task("t1")
				bad.Daily = true
				bad.Weekly = true
				return []Task{bad}
			}(),
			issue: `task "t1" cannot be both daily and weekly`,
		},
		{
			name:  "unknown prerequisite",
			tasks: []Task{task("t1", "ghost")},
			issue: `task "t1" requires unknown task "ghost"`,
		},
		{
			name:  "self prerequisite",
			tasks: []Task{task("t1", "t1")},
			issue: `task "t1" lists itself as a prerequisite`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(tc.tasks)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Issues, tc.issue)
		})
	}
}

func TestLoadRejectsPrerequisiteCycle(t *testing.T) {
	_, err := Load([]Task{
		task("a", "c"),
		task("b", "a"),
		task("c", "b"),
		task("solo"),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Issues, 1)
	assert.Contains(t, verr.Issues[0], "prerequisite cycle")
	assert.Contains(t, verr.Issues[0], "a")
	assert.Contains(t, verr.Issues[0], "b")
	assert.Contains(t, verr.Issues[0], "c")
}

func TestTopologicalOrderIsDeterministic(t *testing.T) {
	tasks := []Task{
		task("d", "b", "c"),
		task("c", "a"),
		task("b", "a"),
		task("a"),
		task("e"),
	}
	c, err := Load(tasks)
	require.NoError(t, err)
	want := []string{"a", "b", "c", "d", "e"}
	assert.Equal(t, want, c.TopologicalOrder())

	// Loading the same set again yields the same order.
	c2, err := Load(tasks)
	require.NoError(t, err)
	assert.Equal(t, want, c2.TopologicalOrder())
}

func TestIsEligible(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	open := task("open")
	gated := task("gated", "open")
	inactive := task("inactive")
	inactive.Active = false
	early := task("early")
	early.AvailableFrom = &future
	late := task("late")
	late.AvailableUntil = &past

	c, err := Load([]Task{open, gated, inactive, early, late})
	require.NoError(t, err)

	p := progress.New("u1")

	ok, reason := c.IsEligible(p, "nope", now)
	assert.False(t, ok)
	assert.Equal(t, ReasonUnknownTask, reason)

	ok, reason = c.IsEligible(p, "inactive", now)
	assert.False(t, ok)
	assert.Equal(t, ReasonInactive, reason)

	ok, reason = c.IsEligible(p, "early", now)
	assert.False(t, ok)
	assert.Equal(t, ReasonNotYetAvailable, reason)

	ok, reason = c.IsEligible(p, "late", now)
	assert.False(t, ok)
	assert.Equal(t, ReasonWindowClosed, reason)

	ok, reason = c.IsEligible(p, "gated", now)
	assert.False(t, ok)
	assert.Equal(t, "missing prerequisite open", reason)

	ok, _ = c.IsEligible(p, "open", now)
	assert.True(t, ok)

	p.Completed["open"] = now
	ok, _ = c.IsEligible(p, "gated", now)
	assert.True(t, ok)

	ok, reason = c.IsEligible(p, "open", now)
	assert.False(t, ok)
	assert.Equal(t, ReasonAlreadyCompleted, reason)
}

func TestIsEligiblePeriodicTasks(t *testing.T) {
	daily := task("daily")
	daily.Daily = true
	weekly := task("weekly")
	weekly.Weekly = true
	c, err := Load([]Task{daily, weekly})
	require.NoError(t, err)

	// A Tuesday so the next day stays inside the same ISO week.
	done := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)
	p := progress.New("u1")
	p.Completed["daily"] = done
	p.Completed["weekly"] = done

	ok, reason := c.IsEligible(p, "daily", done.Add(time.Minute))
	assert.False(t, ok)
	assert.Equal(t, ReasonCompletedToday, reason)

	// One minute past midnight UTC is a new day.
	ok, _ = c.IsEligible(p, "daily", done.Add(31*time.Minute))
	assert.True(t, ok)

	ok, reason = c.IsEligible(p, "weekly", done.Add(24*time.Hour))
	assert.False(t, ok)
	assert.Equal(t, ReasonCompletedThisWeek, reason)

	ok, _ = c.IsEligible(p, "weekly", done.Add(7*24*time.Hour))
	assert.True(t, ok)
}

func TestPeriodKey(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) // ISO week 2026-W01

	daily := task("d")
	daily.Daily = true
	weekly := task("w")
	weekly.Weekly = true
	once := task("o")

	assert.Equal(t, "2026-01-01", PeriodKey(&daily, at))
	assert.Equal(t, "2026-W01", PeriodKey(&weekly, at))
	assert.Equal(t, "", PeriodKey(&once, at))

	// The key is computed in UTC regardless of the input location.
	est := time.FixedZone("EST", -5*3600)
	assert.Equal(t, "2026-01-01", PeriodKey(&daily, at.In(est)))
}

func TestCompletedInPeriod(t *testing.T) {
	daily := task("d")
	daily.Daily = true
	once := task("o")

	done := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	p := progress.New("u1")
	p.Completed["d"] = done
	p.Completed["o"] = done

	assert.True(t, CompletedInPeriod(&daily, p, done.Add(time.Hour)))
	assert.False(t, CompletedInPeriod(&daily, p, done.Add(24*time.Hour)))
	assert.True(t, CompletedInPeriod(&once, p, done.Add(1000*time.Hour)))

	fresh := progress.New("u2")
	assert.False(t, CompletedInPeriod(&daily, fresh, done))
}

func TestUpdateStatsSerializesFolds(t *testing.T) {
	c, err := Load([]Task{task("t1")})
	require.NoError(t, err)

	const n = 64
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.UpdateStats("t1", func(s Stats) Stats {
				s.CompletionCount++
				return s
			})
		}()
	}
	wg.Wait()

	stats, ok := c.TaskStats("t1")
	require.True(t, ok)
	assert.Equal(t, n, stats.CompletionCount)

	// Unknown ids are ignored.
	c.UpdateStats("ghost", func(s Stats) Stats {
		s.CompletionCount++
		return s
	})
	_, ok = c.TaskStats("ghost")
	assert.False(t, ok)

	snap, ok := c.Snapshot("t1")
	require.True(t, ok)
	assert.Equal(t, n, snap.Stats.CompletionCount)
	_, ok = c.Snapshot("ghost")
	assert.False(t, ok)
}

func TestRegistryKeepsOldVersionOnFailedReplace(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Replace([]Task{task("t1")}))
	require.Equal(t, 1, r.Active().Len())

	err := r.Replace([]Task{task("t1"), task("t1")})
	require.Error(t, err)
	assert.Equal(t, 1, r.Active().Len())
	_, ok := r.Active().Task("t1")
	assert.True(t, ok)
}

func TestCatalogFileRoundTrip(t *testing.T) {
	c, err := Load([]Task{task("t1"), task("t2", "t1")})
	require.NoError(t, err)

	data, err := c.Marshal()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	r := NewRegistry()
	require.NoError(t, r.ReplaceFromFile(path))
	assert.Equal(t, c.TopologicalOrder(), r.Active().TopologicalOrder())

	// A broken file leaves the active version untouched.
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	require.Error(t, r.ReplaceFromFile(path))
	assert.Equal(t, 2, r.Active().Len())
}
