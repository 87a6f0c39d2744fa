package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"bakematrix/internal/engine"
	"bakematrix/internal/flags"
)

var bakeCmd = &cobra.Command{
	Use:   "bake",
	Short: "Bake every configuration of the template and run checks",
	Long: `Bake every valid configuration of the template's option matrix and run
checks against each baked project.

Each configuration is rendered into its own temporary directory
(<tmp>/<random>data-project/<repo_name>) which is removed as soon as its checks
finish, even when rendering or a check fails.

Fast levels (-F is repeatable):
	(none) = all configurations, with checks
	-F     = first configuration only, with checks
	-FF    = all configurations, without checks
	-FFF   = first configuration only, without checks

Output:
	Console output is controlled by --console-format (default: text).
	Structured outputs can be written via:
	- --out / --out-format: write an aggregate JSON array or NDJSON stream to a file
	- --emit: write an additional structured stream to stdout (json or ndjson)
	- --report: write a Markdown summary, one row per configuration
	- --no-console: suppress the console sink (use with --emit/--out for machine output)

	Every result carries a "kind": "check" when the baked project failed a check,
	"render" when the template could not be baked, "cleanup" when a temporary
	directory could not be removed and "harness" when a configuration never ran.

Exit codes:
	0 = every configuration baked and passed its checks
	1 = a check failed
	2 = partial failure (a render, cleanup or harness step errored)
	3 = fatal error (bake did not run)

Examples:
	bakematrix bake --template ./ccds
	bakematrix bake --template ./ccds -F --checks readme,module-dir
	bakematrix bake --template ./ccds --concurrency 4 --report report.md

	# AI Agent: stream machine-readable events to stdout
	bakematrix bake --template ./ccds --no-console --emit ndjson
`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().NFlag() == 0 {
			_ = cmd.Help()
			return
		}

		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(3)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		eng := engine.NewEngine(nil, newLogger(cfg.Runtime.Verbose))
		code := eng.Run(ctx, cfg)
		stop()
		os.Exit(code)
	},
}

func init() {
	rootCmd.AddCommand(bakeCmd)

	addMatrixFlags(bakeCmd, cfg)

	// Template
	bakeCmd.Flags().StringVar(&cfg.Template.Renderer, flags.FlagRenderer, cfg.Template.Renderer, "cookiecutter-compatible command used to bake projects")
	bakeCmd.Flags().StringVar(&cfg.Template.TempDir, flags.FlagTempDir, "", "Parent directory for temporary output roots (default: system temp dir)")

	// Checks
	bakeCmd.Flags().StringVar(&cfg.Checks.Selector, flags.FlagChecks, "", "Comma-separated check IDs to run (empty = all checks)")

	// Output
	bakeCmd.Flags().StringVar(&cfg.Output.ConsoleFormat, flags.FlagConsoleFormat, "text", "Console output format: text|json|ndjson (default: text)")
	bakeCmd.Flags().StringSliceVar(&cfg.Output.ConsoleFilterStatus, flags.FlagConsoleFilterStatus, nil, "Filter console output by status (PASS, FAIL, ERROR). Comma-separated.")
	bakeCmd.Flags().StringVar(&cfg.Output.Report, flags.FlagReport, "", "Write a Markdown report to this path")
	bakeCmd.Flags().StringVar(&cfg.Output.Out, flags.FlagOut, "", "Write structured output to this path")
	bakeCmd.Flags().StringVar(&cfg.Output.OutFormat, flags.FlagOutFormat, "", "Structured output format for --out: json|ndjson (default: inferred from file extension)")
	bakeCmd.Flags().StringSliceVar(&cfg.Output.Emit, flags.FlagEmit, nil, "Emit additional structured stream to stdout: json|ndjson (repeatable; comma-separated accepted)")
	bakeCmd.Flags().BoolVar(&cfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress console output (use with --emit/--out/--report)")

	// Runtime
	bakeCmd.Flags().IntVar(&cfg.Runtime.Concurrency, flags.FlagConcurrency, cfg.Runtime.Concurrency, "Configurations baked at once (default: 1)")
	bakeCmd.Flags().DurationVar(&cfg.Runtime.Timeout, flags.FlagTimeout, cfg.Runtime.Timeout, "Global timeout (default: 30m)")
	bakeCmd.Flags().BoolVar(&cfg.Runtime.FailFast, flags.FlagFailFast, false, "Stop baking new configurations after the first one that does not pass")
}
