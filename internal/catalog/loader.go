package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadFile reads a JSON task catalog: an array with one object per task,
// fields as in Task. This is the interchange contract with the authoring
// tooling; Marshal/LoadFile must round-trip losslessly.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a JSON catalog document.
func Parse(data []byte) (*Catalog, error) {
	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return Load(tasks)
}

// Marshal renders the catalog back to its interchange form, tasks in
// topological order. The copy happens under the stats lock so a
// concurrent completion cannot tear a Stats block.
func (c *Catalog) Marshal() ([]byte, error) {
	tasks := make([]Task, 0, len(c.order))
	c.statsMu.Lock()
	for _, id := range c.order {
		tasks = append(tasks, *c.tasks[id])
	}
	c.statsMu.Unlock()
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	return data, nil
}

// ReplaceFromFile hot-reloads the registry from a catalog file. On any
// error the previously active version stays in effect.
func (r *Registry) ReplaceFromFile(path string) error {
	c, err := LoadFile(path)
	if err != nil {
		return err
	}
	r.active.Store(c)
	return nil
}
