package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"bakematrix/internal/bake"
	"bakematrix/internal/checks"
	"bakematrix/internal/matrix"
	"bakematrix/internal/output"
)

var errFailFast = errors.New("stopped after first failing configuration (--fail-fast)")

type runOutcome struct {
	baked    int
	failures bool
	errors   bool
}

// runner bakes configurations with bounded concurrency. Each configuration's
// records reach the sinks as one contiguous block.
type runner struct {
	materializer *bake.Materializer
	checks       []checks.Check
	out          *output.Manager
	runID        string
	concurrency  int
	failFast     bool
	logger       zerolog.Logger

	mu      sync.Mutex
	outcome runOutcome
}

// run bakes configs in order. One configuration's failure never stops the
// others unless failFast is set. When ctx ends before a configuration is
// started, it is reported as a harness error, except after a fail-fast stop.
func (r *runner) run(ctx context.Context, configs []matrix.Configuration) runOutcome {
	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var g errgroup.Group
	g.SetLimit(r.concurrency)

	// skip reports whether cfg must not be baked because runCtx has ended.
	skip := func(cfg matrix.Configuration) bool {
		if runCtx.Err() == nil {
			return false
		}
		if cause := context.Cause(runCtx); !errors.Is(cause, errFailFast) {
			r.record(cfg, []checks.Result{notRun(cfg, cause)}, false)
		}
		return true
	}

	for _, cfg := range configs {
		if skip(cfg) {
			continue
		}
		// g.Go may block until a slot frees up, so check again once running.
		g.Go(func() error {
			if skip(cfg) {
				return nil
			}
			results := r.bakeOne(runCtx, cfg)
			if r.record(cfg, results, true) && r.failFast {
				cancel(errFailFast)
			}
			return nil
		})
	}
	_ = g.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outcome
}

// record writes one configuration's results and reports whether any of them
// was not a pass.
func (r *runner) record(cfg matrix.Configuration, results []checks.Result, attempted bool) bool {
	label := cfg.Label()
	failed := false

	r.mu.Lock()
	for _, res := range results {
		switch res.Status {
		case checks.StatusFail:
			r.outcome.failures = true
			failed = true
		case checks.StatusError:
			r.outcome.errors = true
			failed = true
		}
	}
	if attempted {
		r.outcome.baked++
	}
	r.mu.Unlock()

	records := make([]any, 0, len(results)+2)
	records = append(records, output.Event{Type: output.EventConfigStarted, RunID: r.runID, Config: label})
	for _, res := range results {
		records = append(records, res)
	}
	records = append(records, output.Event{Type: output.EventConfigFinished, RunID: r.runID, Config: label})
	if err := r.out.WriteAll(records...); err != nil {
		r.logger.Error().Err(err).Str("config", label).Msg("writing results")
	}
	return failed
}

// bakeOne renders cfg, runs the selected checks against the baked project and
// turns every outcome into results.
func (r *runner) bakeOne(ctx context.Context, cfg matrix.Configuration) []checks.Result {
	var results []checks.Result
	err := r.materializer.Bake(ctx, cfg, func(p bake.Project) error {
		if len(r.checks) == 0 {
			results = append(results, newResult(cfg, checks.BakeCheckID, checks.StatusPass, checks.KindRender, ""))
			return nil
		}
		for _, c := range r.checks {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := c.Run(ctx, p); err != nil {
				results = append(results, newResult(cfg, c.ID(), checks.StatusFail, checks.KindCheck, err.Error()))
				continue
			}
			results = append(results, newResult(cfg, c.ID(), checks.StatusPass, checks.KindCheck, ""))
		}
		return nil
	})
	if err == nil {
		return results
	}

	r.logger.Debug().Err(err).Str("config", cfg.Label()).Msg("configuration errored")

	handled := false
	var renderErr *bake.RenderError
	if errors.As(err, &renderErr) {
		results = append(results, newResult(cfg, checks.BakeCheckID, checks.StatusError, checks.KindRender, renderErr.Err.Error()))
		handled = true
	}
	var cleanupErr *bake.CleanupError
	if errors.As(err, &cleanupErr) {
		msg := fmt.Sprintf("remove %s: %v", cleanupErr.Dir, cleanupErr.Err)
		results = append(results, newResult(cfg, checks.BakeCheckID, checks.StatusError, checks.KindCleanup, msg))
		handled = true
	}
	if !handled {
		results = append(results, newResult(cfg, checks.BakeCheckID, checks.StatusError, checks.KindHarness, err.Error()))
	}
	return results
}

func notRun(cfg matrix.Configuration, cause error) checks.Result {
	return newResult(cfg, checks.BakeCheckID, checks.StatusError, checks.KindHarness, fmt.Sprintf("not baked: %v", cause))
}

func newResult(cfg matrix.Configuration, id string, status checks.Status, kind checks.Kind, msg string) checks.Result {
	axes := make(map[string]string, len(cfg.Axes()))
	for _, p := range cfg.Axes() {
		axes[p.Axis] = p.Value
	}
	return checks.Result{
		CheckID: id,
		Config:  cfg.Label(),
		Axes:    axes,
		Status:  status,
		Kind:    kind,
		Message: msg,
	}
}
