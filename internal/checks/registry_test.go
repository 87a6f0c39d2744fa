package checks

import (
	"context"
	"testing"

	"bakematrix/internal/bake"
)

type dummyCheck struct {
	id string
}

func (c *dummyCheck) ID() string          { return c.id }
func (c *dummyCheck) Title() string       { return "Dummy Check" }
func (c *dummyCheck) Description() string { return "Does nothing" }
func (c *dummyCheck) Run(ctx context.Context, p bake.Project) error {
	return nil
}

func resetRegistry(t *testing.T) {
	t.Helper()
	mu.Lock()
	saved := registry
	registry = make(map[string]Check)
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		registry = saved
		mu.Unlock()
	})
}

func TestRegistry(t *testing.T) {
	resetRegistry(t)

	Register(&dummyCheck{id: "check2"})
	Register(&dummyCheck{id: "check1"})

	all := List()
	if len(all) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(all))
	}
	if all[0].ID() != "check1" || all[1].ID() != "check2" {
		t.Fatalf("expected checks sorted by ID, got %s, %s", all[0].ID(), all[1].ID())
	}

	selected, err := Resolve("check2")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(selected) != 1 || selected[0].ID() != "check2" {
		t.Fatalf("expected check2, got %v", selected)
	}

	selected, err = Resolve("")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(selected) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(selected))
	}

	selected, err = Resolve(" check1 , check1,")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(selected) != 1 {
		t.Fatalf("expected duplicates to collapse, got %d", len(selected))
	}

	if _, err := Resolve("nope"); err == nil {
		t.Fatalf("expected error for unknown check")
	}
}

func TestRegister_DuplicatePanics(t *testing.T) {
	resetRegistry(t)

	Register(&dummyCheck{id: "dup"})
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate registration")
		}
	}()
	Register(&dummyCheck{id: "dup"})
}
