package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// DefaultCommand is the cookiecutter-data-science entry point.
const DefaultCommand = "ccds"

// Command renders by running a cookiecutter-compatible CLI:
//
//	<name> <args...> <template> --output-dir <dir> --config-file <file> [--no-input] [--overwrite-if-exists]
//
// The template context is written to a temporary user config file as
// default_context so nested values reach the template intact.
type Command struct {
	Name string
	Args []string
	Env  []string

	// Stdout receives the child's stdout; nil discards it.
	Stdout io.Writer

	logger zerolog.Logger
}

type CommandOption func(*Command)

func WithArgs(args ...string) CommandOption {
	return func(c *Command) { c.Args = append(c.Args, args...) }
}

func WithEnv(env ...string) CommandOption {
	return func(c *Command) { c.Env = append(c.Env, env...) }
}

func WithStdout(w io.Writer) CommandOption {
	return func(c *Command) { c.Stdout = w }
}

func WithLogger(l zerolog.Logger) CommandOption {
	return func(c *Command) { c.logger = l }
}

func NewCommand(name string, opts ...CommandOption) *Command {
	if name == "" {
		name = DefaultCommand
	}
	c := &Command{Name: name, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Command) Render(ctx context.Context, req Request) error {
	if req.TemplateRoot == "" {
		return errors.New("template root is required")
	}
	if req.OutputDir == "" {
		return errors.New("output dir is required")
	}

	cfgFile, err := writeUserConfig(req.Context)
	if err != nil {
		return &Error{Kind: KindWrite, Err: err}
	}
	defer os.Remove(cfgFile)

	args := append([]string(nil), c.Args...)
	args = append(args, req.TemplateRoot, "--output-dir", req.OutputDir, "--config-file", cfgFile)
	if req.NoInput {
		args = append(args, "--no-input")
	}
	if req.OverwriteIfExists {
		args = append(args, "--overwrite-if-exists")
	}

	c.logger.Debug().Str("cmd", c.Name).Strs("args", args).Msg("rendering template")

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Name, args...)
	cmd.Stderr = &stderr
	cmd.Stdout = c.Stdout
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w (%v)", ctxErr, err)
		}
		return &Error{Kind: Classify(stderr.String()), Stderr: stderr.String(), Err: err}
	}
	return nil
}

func writeUserConfig(vars map[string]any) (string, error) {
	buf, err := yaml.Marshal(map[string]any{
		"default_context": vars,
		"abbreviations":   map[string]any{},
	})
	if err != nil {
		return "", fmt.Errorf("encode template context: %w", err)
	}

	f, err := os.CreateTemp("", "bakematrix-context-*.yml")
	if err != nil {
		return "", fmt.Errorf("create template context file: %w", err)
	}
	if _, err := f.Write(buf); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write template context file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close template context file: %w", err)
	}
	return f.Name(), nil
}
