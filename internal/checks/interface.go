package checks

import (
	"context"

	"bakematrix/internal/bake"
)

// Check inspects a baked project. A non-nil error from Run is a failed check.
type Check interface {
	ID() string
	Title() string
	Description() string

	Run(ctx context.Context, p bake.Project) error
}
