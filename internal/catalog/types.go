package catalog

import "time"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

type VerificationKind string

const (
	VerifyManual   VerificationKind = "manual"
	VerifyAuto     VerificationKind = "auto"
	VerifyEvidence VerificationKind = "evidence"
)

func (v VerificationKind) IsValid() bool {
	switch v {
	case VerifyManual, VerifyAuto, VerifyEvidence:
		return true
	default:
		return false
	}
}

// Requirement is one checkable condition of a task.
type Requirement struct {
	ID           string           `json:"id"`
	Description  string           `json:"description"`
	Mandatory    bool             `json:"mandatory"`
	Verification VerificationKind `json:"verification"`
}

// Hint can be bought for XP once its unlock condition is met.
type Hint struct {
	Content         string `json:"content"`
	UnlockCondition string `json:"unlock_condition,omitempty"`
	XPCost          int    `json:"xp_cost"`
}

// Reward is the payload granted on completion. BonusXP is applied once,
// at the completion event, and never recomputed retroactively.
type Reward struct {
	XP            int      `json:"xp"`
	BonusXP       int      `json:"bonus_xp,omitempty"`
	Items         []string `json:"items,omitempty"`
	AchievementID string   `json:"achievement_id,omitempty"`
}

// Stats are append-only aggregates, updated only post-completion.
type Stats struct {
	CompletionCount   int     `json:"completion_count"`
	AvgCompletionTime float64 `json:"average_completion_time"`
	SuccessRate       float64 `json:"success_rate"`
	AvgRating         float64 `json:"average_rating"`
}

// Task is an immutable task definition. The JSON shape of this struct is
// the interchange contract with the authoring tooling and must round-trip
// losslessly.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category,omitempty"`
	Difficulty  Difficulty `json:"difficulty"`
	XPReward    int        `json:"xp_reward"`

	Active   bool `json:"is_active"`
	Featured bool `json:"is_featured,omitempty"`
	Daily    bool `json:"is_daily,omitempty"`
	Weekly   bool `json:"is_weekly,omitempty"`

	TimeLimit      *int       `json:"time_limit,omitempty"` // minutes
	AvailableFrom  *time.Time `json:"available_from,omitempty"`
	AvailableUntil *time.Time `json:"available_until,omitempty"`

	Prerequisites []string      `json:"prerequisites,omitempty"`
	Requirements  []Requirement `json:"requirements,omitempty"`
	Hints         []Hint        `json:"hints,omitempty"`
	Rewards       Reward        `json:"rewards"`
	Tags          []string      `json:"tags,omitempty"`

	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`

	Stats Stats `json:"stats"`
}

// Repeatable reports whether the task can be completed again in a later
// period (daily or weekly tasks).
func (t *Task) Repeatable() bool {
	return t.Daily || t.Weekly
}
