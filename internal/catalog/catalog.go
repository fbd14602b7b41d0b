// Package catalog holds the immutable task definitions and the
// prerequisite graph, and answers eligibility questions against a user's
// progress snapshot.
package catalog

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// ValidationError rejects a whole catalog version at load time.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid catalog: %s", strings.Join(e.Issues, "; "))
}

// Catalog is an immutable, validated set of tasks. Build one with Load;
// never mutate it afterwards.
type Catalog struct {
	tasks map[string]*Task
	order []string // topological, ties broken by lower id

	statsMu sync.Mutex // guards the Stats block of every task
}

// Load validates the task definitions and builds a catalog. It fails with
// a *ValidationError listing every problem found, including any
// prerequisite cycles.
func Load(tasks []Task) (*Catalog, error) {
	var issues []string

	arena := make(map[string]*Task, len(tasks))
	for i := range tasks {
		t := tasks[i]
		if t.ID == "" {
			issues = append(issues, fmt.Sprintf("task #%d has an empty id", i))
			continue
		}
		if _, dup := arena[t.ID]; dup {
			issues = append(issues, fmt.Sprintf("duplicate task id %q", t.ID))
			continue
		}
		if t.Title == "" {
			issues = append(issues, fmt.Sprintf("task %q has an empty title", t.ID))
		}
		if !t.Difficulty.IsValid() {
			issues = append(issues, fmt.Sprintf("task %q has invalid difficulty %q", t.ID, t.Difficulty))
		}
		if t.XPReward < 0 || t.Rewards.XP < 0 || t.Rewards.BonusXP < 0 {
			issues = append(issues, fmt.Sprintf("task %q has a negative reward", t.ID))
		}
		if t.TimeLimit != nil && *t.TimeLimit <= 0 {
			issues = append(issues, fmt.Sprintf("task %q has a non-positive time limit", t.ID))
		}
		if t.AvailableFrom != nil && t.AvailableUntil != nil && t.AvailableFrom.After(*t.AvailableUntil) {
			issues = append(issues, fmt.Sprintf("task %q availability window is inverted", t.ID))
		}
		if t.Daily && t.Weekly {
			issues = append(issues, fmt.Sprintf("task %q cannot be both daily and weekly", t.ID))
		}
		for _, h := range t.Hints {
			if h.XPCost < 0 {
				issues = append(issues, fmt.Sprintf("task %q has a hint with negative xp cost", t.ID))
			}
		}
		arena[t.ID] = &t
	}

	for id, t := range arena {
		for _, pre := range t.Prerequisites {
			if pre == id {
				issues = append(issues, fmt.Sprintf("task %q lists itself as a prerequisite", id))
				continue
			}
			if _, ok := arena[pre]; !ok {
				issues = append(issues, fmt.Sprintf("task %q requires unknown task %q", id, pre))
			}
		}
	}

	if len(issues) == 0 {
		for _, cycle := range findCycles(arena) {
			issues = append(issues, "prerequisite cycle: "+strings.Join(cycle, " -> "))
		}
	}

	if len(issues) > 0 {
		sort.Strings(issues)
		return nil, &ValidationError{Issues: issues}
	}

	c := &Catalog{tasks: arena}
	c.order = topoOrder(arena)
	return c, nil
}

// Task returns the definition for id, if present.
func (c *Catalog) Task(id string) (*Task, bool) {
	t, ok := c.tasks[id]
	return t, ok
}

// Len returns the number of tasks.
func (c *Catalog) Len() int { return len(c.tasks) }

// TopologicalOrder returns task ids so that every prerequisite precedes
// its dependents; within a rank, lower ids come first. The order is
// deterministic for a given catalog.
func (c *Catalog) TopologicalOrder() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// findCycles runs an iterative DFS over the prerequisite relation and
// returns one witness path per cycle found.
func findCycles(arena map[string]*Task) [][]string {
	const (
		unseen = 0
		onPath = 1
		done   = 2
	)
	state := make(map[string]int, len(arena))
	var cycles [][]string

	ids := make([]string, 0, len(arena))
	for id := range arena {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var path []string
	var visit func(id string)
	visit = func(id string) {
		state[id] = onPath
		path = append(path, id)
		pres := append([]string(nil), arena[id].Prerequisites...)
		sort.Strings(pres)
		for _, pre := range pres {
			switch state[pre] {
			case unseen:
				visit(pre)
			case onPath:
				// Slice the current path from the first occurrence of pre.
				for i, p := range path {
					if p == pre {
						cycle := append([]string(nil), path[i:]...)
						cycle = append(cycle, pre)
						cycles = append(cycles, cycle)
						break
					}
				}
			}
		}
		path = path[:len(path)-1]
		state[id] = done
	}

	for _, id := range ids {
		if state[id] == unseen {
			visit(id)
		}
	}
	return cycles
}

// topoOrder is Kahn's algorithm with the ready set drained in ascending
// id order. Only called on validated (acyclic) arenas.
func topoOrder(arena map[string]*Task) []string {
	indeg := make(map[string]int, len(arena))
	dependents := make(map[string][]string, len(arena))
	for id, t := range arena {
		indeg[id] += 0
		for _, pre := range t.Prerequisites {
			indeg[id]++
			dependents[pre] = append(dependents[pre], id)
		}
	}

	var ready []string
	for id, d := range indeg {
		if d == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	out := make([]string, 0, len(arena))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		out = append(out, id)

		changed := false
		for _, dep := range dependents[id] {
			indeg[dep]--
			if indeg[dep] == 0 {
				ready = append(ready, dep)
				changed = true
			}
		}
		if changed {
			sort.Strings(ready)
		}
	}
	return out
}

// Registry holds the active catalog version. Replace swaps in a new
// version only after it validates; a failed load leaves the previous
// version in effect, which makes hot reload safe.
type Registry struct {
	active atomic.Pointer[Catalog]
}

// NewRegistry returns a registry with an empty active catalog.
func NewRegistry() *Registry {
	r := &Registry{}
	empty, _ := Load(nil)
	r.active.Store(empty)
	return r
}

// Active returns the current catalog.
func (r *Registry) Active() *Catalog {
	return r.active.Load()
}

// Replace validates tasks and atomically swaps the active catalog.
func (r *Registry) Replace(tasks []Task) error {
	c, err := Load(tasks)
	if err != nil {
		return err
	}
	r.active.Store(c)
	return nil
}
