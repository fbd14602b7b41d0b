// Package gamify contains the pure progression math: level mapping,
// streak transitions, reward computation and achievement evaluation.
// Nothing in here touches storage.
package gamify

// levelThresholds is the fixed XP table: level N is reached at
// levelThresholds[N-1] total XP. Sixteen ranks, 100 XP apart.
var levelThresholds = [16]int{
	0, 100, 200, 300, 400, 500, 600, 700,
	800, 900, 1000, 1100, 1200, 1300, 1400, 1500,
}

// levelTitles mirrors the rank ladder of the original bot.
var levelTitles = [16]string{
	"Novice",
	"Beginner",
	"Explorer",
	"Planner",
	"Task Guru",
	"Leader",
	"Mentor",
	"Role Model",
	"Champion",
	"Inspirer",
	"Expert",
	"Coach",
	"Legend",
	"Hero of the Day",
	"Productivity Royalty",
	"Iron Will",
}

// MaxLevel is the top of the ladder.
const MaxLevel = len(levelThresholds)

// Level maps total XP to a level between 1 and MaxLevel. It is monotonic
// non-decreasing and a pure function of xp.
func Level(xp int) int {
	if xp < 0 {
		return 1
	}
	level := 1
	for i := 1; i < len(levelThresholds); i++ {
		if xp >= levelThresholds[i] {
			level = i + 1
		}
	}
	return level
}

// LevelTitle returns the rank name for a level; out-of-range levels are
// clamped to the ladder.
func LevelTitle(level int) string {
	if level < 1 {
		level = 1
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return levelTitles[level-1]
}

// XPForLevel returns the threshold at which the level is reached.
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return levelThresholds[level-1]
}

// XPToNext returns how much XP is missing until the next level, or 0 at
// the top of the ladder.
func XPToNext(xp int) int {
	level := Level(xp)
	if level >= MaxLevel {
		return 0
	}
	return levelThresholds[level] - xp
}
