package checks

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	registry = make(map[string]Check)
	mu       sync.RWMutex
)

func Register(c Check) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[c.ID()]; exists {
		panic(fmt.Sprintf("check %s already registered", c.ID()))
	}
	registry[c.ID()] = c
}

func List() []Check {
	mu.RLock()
	defer mu.RUnlock()
	return listLocked()
}

func listLocked() []Check {
	out := make([]Check, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID() < out[j].ID()
	})
	return out
}

// Resolve selects checks by a comma-separated list of IDs. Empty selects all.
func Resolve(selector string) ([]Check, error) {
	mu.RLock()
	defer mu.RUnlock()

	if strings.TrimSpace(selector) == "" {
		return listLocked(), nil
	}

	var selected []Check
	seen := make(map[string]bool)
	for _, id := range strings.Split(selector, ",") {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		c, ok := registry[id]
		if !ok {
			return nil, fmt.Errorf("check not found: %s", id)
		}
		seen[id] = true
		selected = append(selected, c)
	}
	return selected, nil
}
