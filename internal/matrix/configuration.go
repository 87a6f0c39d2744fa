package matrix

import (
	"encoding/json"
	"strings"
)

// Pair assigns a value to one axis.
type Pair struct {
	Axis  string `json:"axis"`
	Value string `json:"value"`
}

// Combination is one element of the product over all axes, in axis order.
type Combination []Pair

func (c Combination) Get(axis string) (string, bool) {
	for _, p := range c {
		if p.Axis == axis {
			return p.Value, true
		}
	}
	return "", false
}

// Defaults are the fixed template parameters merged into every
// configuration. Values may be strings or nested maps/lists.
type Defaults map[string]any

const (
	KeyProjectName       = "project_name"
	KeyRepoName          = "repo_name"
	KeyModuleName        = "module_name"
	KeyAuthorName        = "author_name"
	KeyDescription       = "description"
	KeyOpenSourceLicense = "open_source_license"
	KeyDatasetStorage    = "dataset_storage"
)

// DefaultArgs returns the project metadata used for every baked project.
func DefaultArgs() Defaults {
	return Defaults{
		KeyProjectName:       "my_test_project",
		KeyRepoName:          "my-test-repo",
		KeyModuleName:        "project_module",
		KeyAuthorName:        "DrivenData",
		KeyDescription:       "A test project",
		KeyOpenSourceLicense: "MIT",
		KeyDatasetStorage: map[string]any{
			"azure": map[string]any{"container": "container-name"},
		},
	}
}

// Configuration is a valid combination merged with defaults. It is an
// immutable value; accessors hand out copies.
type Configuration struct {
	axes     Combination
	defaults Defaults
}

func newConfiguration(axes Combination, defaults Defaults) Configuration {
	return Configuration{
		axes:     append(Combination(nil), axes...),
		defaults: cloneMap(defaults),
	}
}

// Axes returns the axis assignments in product order.
func (c Configuration) Axes() Combination {
	return append(Combination(nil), c.axes...)
}

// Get looks a key up in the axes first, then in the defaults.
func (c Configuration) Get(key string) (any, bool) {
	if v, ok := c.axes.Get(key); ok {
		return v, true
	}
	v, ok := c.defaults[key]
	if !ok {
		return nil, false
	}
	return cloneValue(v), true
}

// String returns a string-valued key, or "" if absent or not a string.
func (c Configuration) String(key string) string {
	v, ok := c.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// RepoName is the directory the renderer creates under its output root.
func (c Configuration) RepoName() string {
	return c.String(KeyRepoName)
}

// Context returns a fresh template context holding every key exactly once.
func (c Configuration) Context() map[string]any {
	out := make(map[string]any, len(c.axes)+len(c.defaults))
	for _, p := range c.axes {
		out[p.Axis] = p.Value
	}
	for k, v := range c.defaults {
		out[k] = cloneValue(v)
	}
	return out
}

// Label identifies the configuration by its axis values, e.g.
// "python_version_number=3.12 environment_manager=conda ...".
func (c Configuration) Label() string {
	parts := make([]string, 0, len(c.axes))
	for _, p := range c.axes {
		parts = append(parts, p.Axis+"="+p.Value)
	}
	return strings.Join(parts, " ")
}

func (c Configuration) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Context())
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case Defaults:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
