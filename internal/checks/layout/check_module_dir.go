package layout

import (
	"context"
	"fmt"
	"path/filepath"

	"bakematrix/internal/bake"
	"bakematrix/internal/checks"
	"bakematrix/internal/matrix"
)

type ModuleDirCheck struct{}

func (c *ModuleDirCheck) ID() string {
	return "module-dir"
}

func (c *ModuleDirCheck) Title() string {
	return "Source Module Exists"
}

func (c *ModuleDirCheck) Description() string {
	return "Verifies that the Python package named by module_name exists and contains __init__.py."
}

func (c *ModuleDirCheck) Run(ctx context.Context, p bake.Project) error {
	module := p.Config.String(matrix.KeyModuleName)
	if module == "" {
		return fmt.Errorf("configuration has no %s", matrix.KeyModuleName)
	}
	if err := requireDir(p.Dir, module); err != nil {
		return err
	}
	return requireFile(filepath.Join(p.Dir, module), "__init__.py")
}

func init() {
	checks.Register(&ModuleDirCheck{})
}
