package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bakematrix/internal/matrix"
	"bakematrix/internal/output"
	"bakematrix/internal/pyenv"
	"bakematrix/internal/render"
)

// CatalogFileNames are tried in order under the template root when no
// catalog path is given.
var CatalogFileNames = []string{"ccds.json", "cookiecutter.json"}

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields, keep the CLI
	// flags in internal/cli/bake.go and internal/cli/list.go in sync.
	Template Template
	Matrix   Matrix
	Checks   Checks
	Output   Output
	Runtime  Runtime
}

type Template struct {
	// Root is the template source directory passed to the renderer (see --template).
	// Defaults to the directory holding Catalog.
	Root string

	// Catalog is the option catalog document (see --catalog).
	// Defaults to the first of CatalogFileNames found under Root.
	Catalog string

	// Renderer is the cookiecutter-compatible command used to bake projects (see --renderer).
	Renderer string

	// TempDir is the parent directory for temporary output roots (see --temp-dir).
	// Empty means the system temp directory.
	TempDir string
}

type Matrix struct {
	// Fast is the number of times -F/--fast was given.
	// 0 = all configs with checks, 1 = single config with checks,
	// 2 = all configs without checks, 3+ = single config without checks.
	Fast int

	// PythonVersion fixes python_version_number as major.minor (see --python-version).
	// Empty means detect it from Interpreter.
	PythonVersion string

	// Interpreter is the Python executable used for version detection (see --python).
	Interpreter string
}

type Checks struct {
	// Selector is a comma-separated list of check IDs. Empty means all checks.
	Selector string
}

type Output struct {
	// ConsoleFormat controls the human-facing console sink format (see --console-format).
	// Allowed values: text, json, ndjson.
	ConsoleFormat string

	// ConsoleFilterStatus filters console output by result status (see --console-filter-status).
	// Allowed values: PASS, FAIL, ERROR.
	ConsoleFilterStatus []string

	// Report writes a Markdown report to this path (see --report).
	Report string

	// Out writes structured output to this path (see --out).
	Out string

	// OutFormat selects the format for --out (see --out-format).
	// Allowed values: json, ndjson. If empty, it is inferred from the --out file extension.
	OutFormat string

	// Emit writes an additional structured event stream to stdout (see --emit).
	// Allowed values: json, ndjson.
	Emit []string

	// NoConsole suppresses the console sink (see --no-console).
	NoConsole bool
}

type Runtime struct {
	// Concurrency controls how many configurations are baked at once (see --concurrency).
	// Must be >= 1.
	Concurrency int

	// Timeout bounds the whole run (see --timeout). Must be > 0.
	Timeout time.Duration

	// FailFast stops scheduling new configurations after the first failure (see --fail-fast).
	FailFast bool

	// Verbose enables debug logging.
	Verbose bool
}

func New() *Config {
	return &Config{
		Template: Template{
			Renderer: render.DefaultCommand,
		},
		Matrix: Matrix{
			Interpreter: pyenv.DefaultInterpreter,
		},
		Output: Output{
			ConsoleFormat: "text",
		},
		Runtime: Runtime{
			Concurrency: 1,
			Timeout:     30 * time.Minute,
		},
	}
}

// FastLevel maps the -F count to a matrix.FastLevel.
func (c *Config) FastLevel() matrix.FastLevel {
	return matrix.FastLevelFromCount(c.Matrix.Fast)
}

func (c *Config) Validate() error {
	c.Output.Emit = splitCommaList(c.Output.Emit)
	c.Output.ConsoleFilterStatus = splitCommaList(c.Output.ConsoleFilterStatus)

	// Template validation
	c.Template.Root = strings.TrimSpace(c.Template.Root)
	c.Template.Catalog = strings.TrimSpace(c.Template.Catalog)
	if c.Template.Root == "" && c.Template.Catalog == "" {
		return errors.New("at least one of --template or --catalog must be provided")
	}
	if c.Template.Catalog == "" {
		c.Template.Catalog = defaultCatalogPath(c.Template.Root)
	}
	if c.Template.Root == "" {
		c.Template.Root = filepath.Dir(c.Template.Catalog)
	}
	c.Template.Renderer = strings.TrimSpace(c.Template.Renderer)
	if c.Template.Renderer == "" {
		c.Template.Renderer = render.DefaultCommand
	}

	// Matrix validation
	if c.Matrix.Fast < 0 {
		return errors.New("--fast count must be >= 0")
	}
	c.Matrix.PythonVersion = strings.TrimSpace(c.Matrix.PythonVersion)
	if c.Matrix.PythonVersion != "" && !pyenv.ValidVersion(c.Matrix.PythonVersion) {
		return fmt.Errorf("unsupported --python-version: %s (must be major.minor, e.g. 3.12)", c.Matrix.PythonVersion)
	}
	c.Matrix.Interpreter = strings.TrimSpace(c.Matrix.Interpreter)
	if c.Matrix.Interpreter == "" {
		c.Matrix.Interpreter = pyenv.DefaultInterpreter
	}

	// Output validation
	c.Output.ConsoleFormat = normalizeEnumValue(c.Output.ConsoleFormat)
	if c.Output.ConsoleFormat == "" {
		return errors.New("--console-format must be one of: text, json, ndjson")
	}
	if c.Output.ConsoleFormat != "text" && c.Output.ConsoleFormat != "json" && c.Output.ConsoleFormat != "ndjson" {
		return fmt.Errorf("unsupported --console-format: %s (must be one of: text, json, ndjson)", c.Output.ConsoleFormat)
	}

	for i, st := range c.Output.ConsoleFilterStatus {
		v := strings.ToUpper(st)
		if v != "PASS" && v != "FAIL" && v != "ERROR" {
			return fmt.Errorf("unsupported --console-filter-status: %s (must be one of: PASS, FAIL, ERROR)", st)
		}
		c.Output.ConsoleFilterStatus[i] = v
	}

	for i, emit := range c.Output.Emit {
		v := normalizeEnumValue(emit)
		if v != "json" && v != "ndjson" {
			return fmt.Errorf("unsupported --emit value: %s (must be one of: json, ndjson)", emit)
		}
		c.Output.Emit[i] = v
	}

	if c.Output.Out != "" {
		c.Output.OutFormat = normalizeEnumValue(c.Output.OutFormat)
		if c.Output.OutFormat == "" {
			f, err := output.InferFormat(c.Output.Out)
			if err != nil {
				return fmt.Errorf("%w; use --out-format", err)
			}
			c.Output.OutFormat = f
		} else if c.Output.OutFormat != "json" && c.Output.OutFormat != "ndjson" {
			return fmt.Errorf("unsupported output format: %s", c.Output.OutFormat)
		}
	}

	// Runtime validation
	if c.Runtime.Concurrency <= 0 {
		return errors.New("--concurrency must be >= 1")
	}
	if c.Runtime.Timeout <= 0 {
		return errors.New("--timeout must be > 0")
	}

	return nil
}

func defaultCatalogPath(root string) string {
	for _, name := range CatalogFileNames {
		p := filepath.Join(root, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(root, CatalogFileNames[0])
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
