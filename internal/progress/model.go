package progress

import "time"

// UserProgress is the per-user completion record. It is owned by the
// Store and mutated only through the completion coordinator, so a copy
// handed out by Get is safe to modify until it is put back.
type UserProgress struct {
	UserID       string               `json:"user_id"`
	Completed    map[string]time.Time `json:"completed"`
	XP           int                  `json:"xp"`
	Level        int                  `json:"level"`
	Streak       int                  `json:"streak"`
	LastActivity time.Time            `json:"last_activity"`
	Achievements map[string]time.Time `json:"achievements"`

	// Persistence bookkeeping: Version increases by one on every accepted
	// write, OpID identifies the operation that produced the snapshot.
	Version int64  `json:"version"`
	OpID    string `json:"op_id"`
}

// New returns an empty progress record for the user.
func New(userID string) *UserProgress {
	return &UserProgress{
		UserID:       userID,
		Completed:    make(map[string]time.Time),
		Achievements: make(map[string]time.Time),
	}
}

// Clone returns a deep copy.
func (p *UserProgress) Clone() *UserProgress {
	cp := *p
	cp.Completed = make(map[string]time.Time, len(p.Completed))
	for k, v := range p.Completed {
		cp.Completed[k] = v
	}
	cp.Achievements = make(map[string]time.Time, len(p.Achievements))
	for k, v := range p.Achievements {
		cp.Achievements[k] = v
	}
	return &cp
}

// HasCompleted reports whether the task appears in the completion history.
func (p *UserProgress) HasCompleted(taskID string) bool {
	_, ok := p.Completed[taskID]
	return ok
}

// CompletedCount returns the number of distinct completed tasks.
func (p *UserProgress) CompletedCount() int {
	return len(p.Completed)
}

// HasAchievement reports whether the achievement is already unlocked.
func (p *UserProgress) HasAchievement(id string) bool {
	_, ok := p.Achievements[id]
	return ok
}
