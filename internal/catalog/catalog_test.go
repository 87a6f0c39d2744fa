package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const ccdsJSON = `{
  "project_name": "project_name",
  "repo_name": "{{ cookiecutter.project_name.lower().replace(' ', '_') }}",
  "environment_manager": ["virtualenv", "conda", "pipenv", "none"],
  "dependency_file": ["requirements.txt", "environment.yml", "Pipfile"],
  "pydata_packages": ["none", "basic"],
  "dataset_storage": [{"none": "none"}, {"azure": {"container": "container-name"}}],
  "_copy_without_render": ["*.ipynb"]
}`

func TestParse_JSON_KeepsStringListsInDeclarationOrder(t *testing.T) {
	c, err := Parse([]byte(ccdsJSON), FormatJSON)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	want := []Axis{
		{Name: "environment_manager", Values: []string{"virtualenv", "conda", "pipenv", "none"}},
		{Name: "dependency_file", Values: []string{"requirements.txt", "environment.yml", "Pipfile"}},
		{Name: "pydata_packages", Values: []string{"none", "basic"}},
		{Name: "_copy_without_render", Values: []string{"*.ipynb"}},
	}
	if diff := cmp.Diff(want, c.Axes()); diff != "" {
		t.Fatalf("axes mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_YAML(t *testing.T) {
	doc := `
environment_manager: [conda, venv]
dependency_file:
  - requirements.txt
  - environment.yml
project_name: demo
dataset_storage:
  - none: none
pydata_packages: [none]
`
	c, err := Parse([]byte(doc), FormatYAML)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want := []Axis{
		{Name: "environment_manager", Values: []string{"conda", "venv"}},
		{Name: "dependency_file", Values: []string{"requirements.txt", "environment.yml"}},
		{Name: "pydata_packages", Values: []string{"none"}},
	}
	if diff := cmp.Diff(want, c.Axes()); diff != "" {
		t.Fatalf("axes mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{name: "json_array", data: `["a"]`, format: FormatJSON},
		{name: "json_truncated", data: `{"a": [`, format: FormatJSON},
		{name: "json_trailing", data: `{} {}`, format: FormatJSON},
		{name: "yaml_scalar", data: `just a string`, format: FormatYAML},
		{name: "yaml_empty", data: ``, format: FormatYAML},
		{name: "unknown_format", data: `{}`, format: Format("toml")},
		{name: "json_duplicate_value", data: `{"environment_manager": ["conda", "conda"]}`, format: FormatJSON},
		{name: "json_null_value", data: `{"environment_manager": ["conda", null]}`, format: FormatJSON},
		{name: "json_empty_value", data: `{"environment_manager": ["conda", ""]}`, format: FormatJSON},
		{name: "yaml_duplicate_value", data: "environment_manager: [conda, venv, conda]", format: FormatYAML},
		{name: "yaml_null_value", data: "environment_manager:\n  - conda\n  - ~\n", format: FormatYAML},
		{name: "yaml_empty_value", data: "environment_manager:\n  - conda\n  - \"\"\n", format: FormatYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
			var ce *Error
			if !errors.As(err, &ce) {
				t.Fatalf("expected *Error, got %T", err)
			}
		})
	}
}

func TestParse_MalformedValueNamesAxis(t *testing.T) {
	_, err := Parse([]byte(`{"pydata_packages": ["none"], "environment_manager": ["conda", "conda"]}`), FormatJSON)
	var ce *Error
	if !errors.As(err, &ce) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if ce.Axis != "environment_manager" || !strings.Contains(err.Error(), `duplicate value "conda"`) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParse_QuotedNullIsAValue(t *testing.T) {
	c, err := Parse([]byte("pydata_packages: [none, \"null\"]"), FormatYAML)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	a, _ := c.Axis("pydata_packages")
	if diff := cmp.Diff([]string{"none", "null"}, a.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestRequire_RejectsDuplicateValues(t *testing.T) {
	c := New(Axis{Name: "environment_manager", Values: []string{"conda", "conda"}})
	err := c.Require("environment_manager")
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestRequire(t *testing.T) {
	c := New(
		Axis{Name: "environment_manager", Values: []string{"conda"}},
		Axis{Name: "dependency_file", Values: nil},
	)

	if err := c.Require("environment_manager"); err != nil {
		t.Fatalf("Require returned error: %v", err)
	}

	err := c.Require("environment_manager", "dependency_file")
	if !errors.Is(err, ErrEmptyAxis) {
		t.Fatalf("expected ErrEmptyAxis, got %v", err)
	}

	err = c.Require("pydata_packages")
	if !errors.Is(err, ErrMissingAxis) {
		t.Fatalf("expected ErrMissingAxis, got %v", err)
	}
	var ce *Error
	if !errors.As(err, &ce) || ce.Axis != "pydata_packages" {
		t.Fatalf("expected axis in error, got %#v", err)
	}
}

func TestAxes_ReturnsCopies(t *testing.T) {
	c := New(Axis{Name: "a", Values: []string{"x", "y"}})
	axes := c.Axes()
	axes[0].Values[0] = "mutated"

	a, _ := c.Axis("a")
	if a.Values[0] != "x" {
		t.Fatalf("catalog was mutated through Axes(): %v", a.Values)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ccds.json")
	if err := os.WriteFile(path, []byte(ccdsJSON), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if c.Path() != path {
		t.Fatalf("Path() = %q, want %q", c.Path(), path)
	}
	if _, ok := c.Axis("pydata_packages"); !ok {
		t.Fatalf("expected pydata_packages axis")
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	var ce *Error
	if !errors.As(err, &ce) {
		t.Fatalf("expected *Error for missing file, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}

	_, err = Load(filepath.Join(dir, "catalog.toml"))
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for unknown extension, got %v", err)
	}

	bad := filepath.Join(dir, "bad.yml")
	if err := os.WriteFile(bad, []byte("- a\n- b\n"), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	_, err = Load(bad)
	if !errors.As(err, &ce) || ce.Path != bad {
		t.Fatalf("expected *Error carrying path %q, got %v", bad, err)
	}
}
