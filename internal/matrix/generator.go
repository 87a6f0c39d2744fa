package matrix

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"bakematrix/internal/catalog"
)

// Generator enumerates the valid, fully specified configurations of a
// catalog. It holds no state that changes between Enumerate calls.
type Generator struct {
	axes     []catalog.Axis
	defaults Defaults
}

// NewGenerator fixes the python version axis to pythonVersion and takes the
// remaining axes from the catalog. A catalog missing any of CatalogAxes, with
// an empty one, or with an empty or repeated value, is rejected with a
// *catalog.Error.
func NewGenerator(cat *catalog.Catalog, defaults Defaults, pythonVersion string) (*Generator, error) {
	if cat == nil {
		return nil, errors.New("catalog is nil")
	}
	pythonVersion = strings.TrimSpace(pythonVersion)
	if pythonVersion == "" {
		return nil, errors.New("python version is required")
	}
	if err := cat.Require(CatalogAxes...); err != nil {
		return nil, err
	}

	axes := []catalog.Axis{{Name: AxisPythonVersion, Values: []string{pythonVersion}}}
	for _, name := range CatalogAxes {
		a, _ := cat.Axis(name)
		axes = append(axes, a)
	}

	for _, a := range axes {
		if _, ok := defaults[a.Name]; ok {
			return nil, fmt.Errorf("default parameter %q collides with axis of the same name", a.Name)
		}
	}
	if repo, _ := defaults[KeyRepoName].(string); strings.TrimSpace(repo) == "" {
		return nil, fmt.Errorf("default parameter %q must be a non-empty string", KeyRepoName)
	}

	return &Generator{axes: axes, defaults: cloneMap(defaults)}, nil
}

// Enumerate yields configurations in product order (axis declaration order,
// last axis varying fastest). Single-config levels stop after the first.
func (g *Generator) Enumerate(level FastLevel) iter.Seq[Configuration] {
	return func(yield func(Configuration) bool) {
		for combo := range product(g.axes) {
			if !Valid(combo) {
				continue
			}
			if !yield(newConfiguration(combo, g.defaults)) {
				return
			}
			if level.Single() {
				return
			}
		}
	}
}

// All collects Enumerate into a slice.
func (g *Generator) All(level FastLevel) []Configuration {
	var out []Configuration
	for c := range g.Enumerate(level) {
		out = append(out, c)
	}
	return out
}

func product(axes []catalog.Axis) iter.Seq[Combination] {
	return func(yield func(Combination) bool) {
		if len(axes) == 0 {
			return
		}
		for _, a := range axes {
			if len(a.Values) == 0 {
				return
			}
		}

		idx := make([]int, len(axes))
		for {
			combo := make(Combination, len(axes))
			for i, a := range axes {
				combo[i] = Pair{Axis: a.Name, Value: a.Values[idx[i]]}
			}
			if !yield(combo) {
				return
			}

			i := len(axes) - 1
			for ; i >= 0; i-- {
				idx[i]++
				if idx[i] < len(axes[i].Values) {
					break
				}
				idx[i] = 0
			}
			if i < 0 {
				return
			}
		}
	}
}
