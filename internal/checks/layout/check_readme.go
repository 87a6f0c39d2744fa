package layout

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bakematrix/internal/bake"
	"bakematrix/internal/checks"
	"bakematrix/internal/matrix"
)

type ReadmeCheck struct{}

func (c *ReadmeCheck) ID() string {
	return "readme"
}

func (c *ReadmeCheck) Title() string {
	return "README Mentions Project"
}

func (c *ReadmeCheck) Description() string {
	return "Verifies that README.md exists at the project root and mentions project_name."
}

func (c *ReadmeCheck) Run(ctx context.Context, p bake.Project) error {
	buf, err := os.ReadFile(filepath.Join(p.Dir, "README.md"))
	if err != nil {
		return fmt.Errorf("README.md: %w", err)
	}
	name := p.Config.String(matrix.KeyProjectName)
	if name != "" && !strings.Contains(string(buf), name) {
		return fmt.Errorf("README.md does not mention %q", name)
	}
	return nil
}

func init() {
	checks.Register(&ReadmeCheck{})
}
