package catalog

import (
	"fmt"
	"time"

	"github.com/revenuemediabot/DailycheckBot2025/internal/progress"
)

// Stable denial reasons surfaced to callers. Front-ends render these
// verbatim, so treat the strings as part of the interface.
const (
	ReasonUnknownTask       = "unknown task"
	ReasonInactive          = "task is inactive"
	ReasonNotYetAvailable   = "not yet available"
	ReasonWindowClosed      = "availability window closed"
	ReasonAlreadyCompleted  = "already completed"
	ReasonCompletedToday    = "already completed today"
	ReasonCompletedThisWeek = "already completed this week"
)

// MissingPrerequisiteReason names the first missing prerequisite.
func MissingPrerequisiteReason(taskID string) string {
	return fmt.Sprintf("missing prerequisite %s", taskID)
}

// PeriodKey identifies the completion period of a task at time t.
// One-time tasks have an empty key, daily tasks a UTC calendar date,
// weekly tasks an ISO week. All period math runs on server UTC time;
// the core never sees a per-user timezone.
func PeriodKey(t *Task, at time.Time) string {
	at = at.UTC()
	switch {
	case t.Daily:
		return at.Format("2006-01-02")
	case t.Weekly:
		year, week := at.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	default:
		return ""
	}
}

// IsEligible reports whether the user may complete the task at time now.
// A false result carries one of the stable reason strings above.
func (c *Catalog) IsEligible(p *progress.UserProgress, taskID string, now time.Time) (bool, string) {
	t, ok := c.tasks[taskID]
	if !ok {
		return false, ReasonUnknownTask
	}
	if !t.Active {
		return false, ReasonInactive
	}
	now = now.UTC()
	if t.AvailableFrom != nil && now.Before(*t.AvailableFrom) {
		return false, ReasonNotYetAvailable
	}
	if t.AvailableUntil != nil && now.After(*t.AvailableUntil) {
		return false, ReasonWindowClosed
	}

	// Prerequisites are checked in the catalog's deterministic order so
	// the first missing one reported is stable.
	for _, id := range c.order {
		for _, pre := range t.Prerequisites {
			if id == pre && !p.HasCompleted(pre) {
				return false, MissingPrerequisiteReason(pre)
			}
		}
	}

	if done, ok := p.Completed[taskID]; ok {
		if !t.Repeatable() {
			return false, ReasonAlreadyCompleted
		}
		if PeriodKey(t, done) == PeriodKey(t, now) {
			if t.Daily {
				return false, ReasonCompletedToday
			}
			return false, ReasonCompletedThisWeek
		}
	}

	return true, ""
}

// CompletedInPeriod reports whether the task counts as already completed
// for the period containing now. For one-time tasks any prior completion
// counts.
func CompletedInPeriod(t *Task, p *progress.UserProgress, now time.Time) bool {
	done, ok := p.Completed[t.ID]
	if !ok {
		return false
	}
	if !t.Repeatable() {
		return true
	}
	return PeriodKey(t, done) == PeriodKey(t, now)
}
