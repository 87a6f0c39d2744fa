package flags

// Package flags defines canonical CLI flag names shared by the commands.
// IMPORTANT: These are flag *names* without leading dashes.
// Example usage:
//
//	cmd.Flags().StringVar(&cfg.Template.Root, flags.FlagTemplate, "", "...")
const (
	// Template
	FlagTemplate = "template"
	FlagCatalog  = "catalog"
	FlagRenderer = "renderer"
	FlagTempDir  = "temp-dir"

	// Matrix
	FlagFast          = "fast"
	FlagFastShort     = "F"
	FlagPythonVersion = "python-version"
	FlagInterpreter   = "python"

	// Checks
	FlagChecks = "checks"

	// Output
	FlagConsoleFormat       = "console-format"
	FlagConsoleFilterStatus = "console-filter-status"
	FlagReport              = "report"
	FlagOut                 = "out"
	FlagOutFormat           = "out-format"
	FlagEmit                = "emit"
	FlagNoConsole           = "no-console"

	// Runtime
	FlagConcurrency = "concurrency"
	FlagTimeout     = "timeout"
	FlagFailFast    = "fail-fast"
	FlagVerbose     = "verbose"
)
