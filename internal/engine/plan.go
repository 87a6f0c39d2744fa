package engine

import (
	"context"
	"fmt"

	"bakematrix/internal/catalog"
	"bakematrix/internal/config"
	"bakematrix/internal/matrix"
)

// RunPlan is the set of configurations one run will bake.
type RunPlan struct {
	Catalog       *catalog.Catalog
	PythonVersion string
	Level         matrix.FastLevel
	Configs       []matrix.Configuration
}

// Plan loads the catalog, resolves the Python version and enumerates the
// configurations selected by the fast level. It bakes nothing.
func (e *Engine) Plan(ctx context.Context, cfg *config.Config) (*RunPlan, error) {
	cat, err := catalog.Load(cfg.Template.Catalog)
	if err != nil {
		return nil, err
	}

	version := cfg.Matrix.PythonVersion
	if version == "" {
		version, err = e.detectVersion(ctx, cfg.Matrix.Interpreter)
		if err != nil {
			return nil, fmt.Errorf("detect python version: %w", err)
		}
		e.Logger.Debug().Str("interpreter", cfg.Matrix.Interpreter).Str("version", version).Msg("detected python version")
	}

	gen, err := matrix.NewGenerator(cat, matrix.DefaultArgs(), version)
	if err != nil {
		return nil, err
	}

	level := cfg.FastLevel()
	return &RunPlan{
		Catalog:       cat,
		PythonVersion: version,
		Level:         level,
		Configs:       gen.All(level),
	}, nil
}

func (e *Engine) detectVersion(ctx context.Context, interpreter string) (string, error) {
	if e.detect != nil {
		return e.detect(ctx, interpreter)
	}
	return e.detector.Detect(ctx, interpreter)
}
