package gamify

import (
	"sort"

	"github.com/revenuemediabot/DailycheckBot2025/internal/catalog"
	"github.com/revenuemediabot/DailycheckBot2025/internal/progress"
)

type PredicateKind string

const (
	PredCount  PredicateKind = "count"  // n completions, optionally in a category
	PredStreak PredicateKind = "streak" // streak >= k
	PredLevel  PredicateKind = "level"  // level >= n
	PredXP     PredicateKind = "xp"     // total xp >= n
	PredAll    PredicateKind = "all"    // composite AND
)

// Predicate is a declarative unlock condition. New kinds only need a new
// case in Eval; call sites stay unchanged.
type Predicate struct {
	Kind     PredicateKind `json:"kind"`
	Count    int           `json:"count,omitempty"`
	Category string        `json:"category,omitempty"`
	Streak   int           `json:"streak,omitempty"`
	Level    int           `json:"level,omitempty"`
	XP       int           `json:"xp,omitempty"`
	All      []Predicate   `json:"all,omitempty"`
}

// Achievement is an immutable definition; it is evaluated, never mutated.
type Achievement struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Predicate   Predicate      `json:"predicate"`
	Reward      catalog.Reward `json:"reward"`
}

// Eval interprets a predicate against the current snapshot.
func Eval(pred Predicate, p *progress.UserProgress, cat *catalog.Catalog) bool {
	switch pred.Kind {
	case PredCount:
		if pred.Category == "" {
			return p.CompletedCount() >= pred.Count
		}
		n := 0
		for id := range p.Completed {
			if t, ok := cat.Task(id); ok && t.Category == pred.Category {
				n++
			}
		}
		return n >= pred.Count
	case PredStreak:
		return p.Streak >= pred.Streak
	case PredLevel:
		return p.Level >= pred.Level
	case PredXP:
		return p.XP >= pred.XP
	case PredAll:
		for _, sub := range pred.All {
			if !Eval(sub, p, cat) {
				return false
			}
		}
		return len(pred.All) > 0
	default:
		return false
	}
}

// EvaluateAchievements returns the ids of achievements that are newly
// unlocked by the snapshot, sorted for determinism. Already-unlocked
// achievements never re-fire, which makes this idempotent.
func EvaluateAchievements(p *progress.UserProgress, cat *catalog.Catalog, defs []Achievement) []string {
	var unlocked []string
	for _, a := range defs {
		if p.HasAchievement(a.ID) {
			continue
		}
		if Eval(a.Predicate, p, cat) {
			unlocked = append(unlocked, a.ID)
		}
	}
	sort.Strings(unlocked)
	return unlocked
}

// DefaultAchievements is the built-in badge set.
func DefaultAchievements() []Achievement {
	return []Achievement{
		{ID: "first_task", Name: "First Task", Description: "Complete your first task",
			Predicate: Predicate{Kind: PredCount, Count: 1}, Reward: catalog.Reward{XP: 10}},
		{ID: "ten_tasks", Name: "Productive", Description: "Complete 10 tasks",
			Predicate: Predicate{Kind: PredCount, Count: 10}, Reward: catalog.Reward{XP: 25}},
		{ID: "fifty_tasks", Name: "Achiever", Description: "Complete 50 tasks",
			Predicate: Predicate{Kind: PredCount, Count: 50}, Reward: catalog.Reward{XP: 100}},
		{ID: "streak_3", Name: "Warming Up", Description: "3-day streak",
			Predicate: Predicate{Kind: PredStreak, Streak: 3}, Reward: catalog.Reward{XP: 15}},
		{ID: "streak_7", Name: "Week Without Gaps", Description: "7-day streak",
			Predicate: Predicate{Kind: PredStreak, Streak: 7}, Reward: catalog.Reward{XP: 50}},
		{ID: "streak_30", Name: "Iron Habit", Description: "30-day streak",
			Predicate: Predicate{Kind: PredStreak, Streak: 30}, Reward: catalog.Reward{XP: 200}},
		{ID: "level_5", Name: "Task Guru", Description: "Reach level 5",
			Predicate: Predicate{Kind: PredLevel, Level: 5}},
		{ID: "level_10", Name: "Inspirer", Description: "Reach level 10",
			Predicate: Predicate{Kind: PredLevel, Level: 10}},
		{ID: "xp_1000", Name: "Thousand Club", Description: "Earn 1000 total XP",
			Predicate: Predicate{Kind: PredXP, XP: 1000}},
		{ID: "health_hero", Name: "Health Hero", Description: "Complete 10 health tasks on a 7-day streak",
			Predicate: Predicate{Kind: PredAll, All: []Predicate{
				{Kind: PredCount, Count: 10, Category: "health"},
				{Kind: PredStreak, Streak: 7},
			}}, Reward: catalog.Reward{XP: 75}},
	}
}
