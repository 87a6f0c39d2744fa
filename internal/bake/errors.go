package bake

import (
	"errors"
	"fmt"

	"bakematrix/internal/matrix"
)

// ErrNoProject means the renderer returned success without creating
// <root>/<repo_name>.
var ErrNoProject = errors.New("renderer produced no project directory")

// RenderError reports that the project under test could not be baked.
type RenderError struct {
	Config matrix.Configuration
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("[%s] bake failed: %v", e.Config.Label(), e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// CleanupError reports that the harness could not remove a temporary output
// root.
type CleanupError struct {
	Config matrix.Configuration
	Dir    string
	Err    error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("[%s] cleanup of %s failed: %v", e.Config.Label(), e.Dir, e.Err)
}

func (e *CleanupError) Unwrap() error {
	return e.Err
}
