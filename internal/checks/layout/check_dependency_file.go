package layout

import (
	"context"
	"fmt"

	"bakematrix/internal/bake"
	"bakematrix/internal/checks"
	"bakematrix/internal/matrix"
)

type DependencyFileCheck struct{}

func (c *DependencyFileCheck) ID() string {
	return "dependency-file"
}

func (c *DependencyFileCheck) Title() string {
	return "Dependency File Exists"
}

func (c *DependencyFileCheck) Description() string {
	return "Verifies that the file selected by dependency_file (requirements.txt, environment.yml, Pipfile, ...) exists at the project root."
}

func (c *DependencyFileCheck) Run(ctx context.Context, p bake.Project) error {
	name := p.Config.String(matrix.AxisDependencyFile)
	if name == "" {
		return fmt.Errorf("configuration has no %s", matrix.AxisDependencyFile)
	}
	return requireFile(p.Dir, name)
}

func init() {
	checks.Register(&DependencyFileCheck{})
}
