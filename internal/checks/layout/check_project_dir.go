package layout

import (
	"context"
	"fmt"
	"os"

	"bakematrix/internal/bake"
	"bakematrix/internal/checks"
)

type ProjectDirCheck struct{}

func (c *ProjectDirCheck) ID() string {
	return "project-dir"
}

func (c *ProjectDirCheck) Title() string {
	return "Project Directory Is Populated"
}

func (c *ProjectDirCheck) Description() string {
	return "Verifies that the baked project directory exists, is named after repo_name and is not empty."
}

func (c *ProjectDirCheck) Run(ctx context.Context, p bake.Project) error {
	entries, err := os.ReadDir(p.Dir)
	if err != nil {
		return fmt.Errorf("read project directory: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("project directory %s is empty", p.Dir)
	}
	return nil
}

func init() {
	checks.Register(&ProjectDirCheck{})
}
