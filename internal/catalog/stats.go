package catalog

// Task definitions are immutable, but their aggregate stats block is
// updated after every completion. The catalog's stats mutex keeps
// concurrent completions of the same task from racing; readers of the
// Stats block take the same lock.

// UpdateStats applies fold to the task's aggregates while holding the
// stats lock. The read-fold-write must be one critical section or
// concurrent completions of the same task lose counts. No-op for
// unknown ids (the task may have been removed by a hot reload
// mid-flight).
func (c *Catalog) UpdateStats(taskID string, fold func(Stats) Stats) {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	if t, ok := c.tasks[taskID]; ok {
		t.Stats = fold(t.Stats)
	}
}

// Snapshot returns a copy of the task with a consistent Stats block.
// Use it wherever a whole Task value escapes to a caller; the pointer
// from Task is fine for the immutable fields only.
func (c *Catalog) Snapshot(taskID string) (Task, bool) {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	if t, ok := c.tasks[taskID]; ok {
		return *t, true
	}
	return Task{}, false
}

// TaskStats reads the current aggregates for a task.
func (c *Catalog) TaskStats(taskID string) (Stats, bool) {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	if t, ok := c.tasks[taskID]; ok {
		return t.Stats, true
	}
	return Stats{}, false
}
