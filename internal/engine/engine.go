package engine

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"bakematrix/internal/bake"
	"bakematrix/internal/checks"
	"bakematrix/internal/config"
	"bakematrix/internal/output"
	"bakematrix/internal/pyenv"
	"bakematrix/internal/render"
)

func exitCodeForRun(fatal, partial, failures bool) int {
	// Exit code contract:
	// 0 = every configuration baked and passed its checks
	// 1 = a check failed on a baked project
	// 2 = partial failure (a render, cleanup or harness step errored)
	// 3 = fatal error (the run did not start)
	if fatal {
		return 3
	}
	if partial {
		return 2
	}
	if failures {
		return 1
	}
	return 0
}

// setupOutputManager builds the sinks selected by cfg. On error every sink
// created so far is closed.
func setupOutputManager(cfg *config.Config) (*output.Manager, error) {
	outMgr := output.NewManager()
	add := func(s output.Sink, err error) error {
		if err == nil {
			err = outMgr.AddSink(s)
		}
		if err != nil {
			outMgr.Close()
		}
		return err
	}

	if !cfg.Output.NoConsole {
		if err := add(output.NewConsoleSink(nil, cfg.Output.ConsoleFormat, cfg.Output.ConsoleFilterStatus), nil); err != nil {
			return nil, err
		}
	}
	for _, emit := range cfg.Output.Emit {
		if err := add(output.NewEmitSink(os.Stdout, emit)); err != nil {
			return nil, err
		}
	}
	if cfg.Output.Out != "" {
		if err := add(output.NewFileSink(cfg.Output.Out, cfg.Output.OutFormat)); err != nil {
			return nil, err
		}
	}
	if cfg.Output.Report != "" {
		if err := add(output.NewReportSink(cfg.Output.Report)); err != nil {
			return nil, err
		}
	}
	return outMgr, nil
}

// detector is shared by every Engine so concurrent Plan calls in one process
// run the interpreter once.
var detector = pyenv.NewDetector()

type Engine struct {
	// Renderer bakes projects. If nil, Run uses a render.Command built from
	// cfg.Template.Renderer.
	Renderer render.Renderer
	Logger   zerolog.Logger

	detector *pyenv.Detector

	// Test seams. nil means the real implementation.
	detect   func(ctx context.Context, interpreter string) (string, error)
	newRunID func() string
	progress io.Writer
}

func NewEngine(r render.Renderer, logger zerolog.Logger) *Engine {
	return &Engine{
		Renderer: r,
		Logger:   logger,
		detector: detector,
	}
}

func (e *Engine) stderr(cfg *config.Config) io.Writer {
	if cfg.Output.NoConsole {
		return io.Discard
	}
	if e.progress != nil {
		return e.progress
	}
	return os.Stderr
}

func (e *Engine) renderer(cfg *config.Config) render.Renderer {
	if e.Renderer != nil {
		return e.Renderer
	}
	return render.NewCommand(cfg.Template.Renderer, render.WithLogger(e.Logger))
}

func (e *Engine) Run(ctx context.Context, cfg *config.Config) int {
	ctx, cancel := context.WithTimeout(ctx, cfg.Runtime.Timeout)
	defer cancel()

	progress := e.stderr(cfg)

	fmt.Fprintln(progress, "Loading catalog...")
	plan, err := e.Plan(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error planning run: %v\n", err)
		return exitCodeForRun(true, false, false)
	}

	var selected []checks.Check
	if plan.Level.RunsChecks() {
		selected, err = checks.Resolve(cfg.Checks.Selector)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error resolving checks: %v\n", err)
			return exitCodeForRun(true, false, false)
		}
	}
	fmt.Fprintf(progress, "Baking %d configurations (%s, python %s, %d checks)...\n",
		len(plan.Configs), plan.Level, plan.PythonVersion, len(selected))

	outMgr, err := setupOutputManager(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output sinks: %v\n", err)
		return exitCodeForRun(true, false, false)
	}
	defer func() {
		if err := outMgr.Close(); err != nil {
			e.Logger.Error().Err(err).Msg("closing output sinks")
		}
	}()

	runID := uuid.NewString()
	if e.newRunID != nil {
		runID = e.newRunID()
	}
	log := e.Logger.With().Str("run_id", runID).Logger()

	_ = outMgr.Write(output.Event{
		Type:    output.EventRunStarted,
		RunID:   runID,
		Level:   plan.Level.String(),
		Configs: len(plan.Configs),
		Checks:  len(selected),
	})

	m := bake.NewMaterializer(e.renderer(cfg), cfg.Template.Root,
		bake.WithTempDir(cfg.Template.TempDir),
		bake.WithLogger(log),
	)
	r := &runner{
		materializer: m,
		checks:       selected,
		out:          outMgr,
		runID:        runID,
		concurrency:  cfg.Runtime.Concurrency,
		failFast:     cfg.Runtime.FailFast,
		logger:       log,
	}
	outcome := r.run(ctx, plan.Configs)

	code := exitCodeForRun(false, outcome.errors, outcome.failures)
	_ = outMgr.Write(output.Event{Type: output.EventRunFinished, RunID: runID, ExitCode: code})
	log.Debug().Int("exit_code", code).Int("baked", outcome.baked).Msg("run finished")
	return code
}
