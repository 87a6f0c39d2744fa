package pyenv

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"golang.org/x/sync/singleflight"
)

// DefaultInterpreter is used when no interpreter is configured.
const DefaultInterpreter = "python3"

const versionScript = `import sys; print(f"{sys.version_info.major}.{sys.version_info.minor}")`

var versionPattern = regexp.MustCompile(`^\d+\.\d+$`)

// ValidVersion reports whether v looks like "major.minor".
func ValidVersion(v string) bool {
	return versionPattern.MatchString(v)
}

// Detector resolves the major.minor version of a Python interpreter.
// Concurrent calls for the same interpreter share one subprocess.
type Detector struct {
	group singleflight.Group

	// run is a test seam; nil means exec the interpreter.
	run func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func NewDetector() *Detector {
	return &Detector{}
}

func (d *Detector) Detect(ctx context.Context, interpreter string) (string, error) {
	if interpreter == "" {
		interpreter = DefaultInterpreter
	}
	v, err, _ := d.group.Do(interpreter, func() (interface{}, error) {
		return d.detect(ctx, interpreter)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (d *Detector) detect(ctx context.Context, interpreter string) (string, error) {
	run := d.run
	if run == nil {
		run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		}
	}

	out, err := run(ctx, interpreter, "-c", versionScript)
	if err != nil {
		return "", fmt.Errorf("detect python version with %s: %w", interpreter, err)
	}
	v := strings.TrimSpace(string(out))
	if !ValidVersion(v) {
		return "", fmt.Errorf("detect python version with %s: unexpected output %q", interpreter, v)
	}
	return v, nil
}
